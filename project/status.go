package project

import "time"

// Status is a point-in-time summary of one coordinator.
type Status struct {
	Root        string
	OutputPath  string
	Running     bool
	Files       int
	Symbols     int
	TotalSize   int64
	Languages   map[string]int
	Pending     int
	Renders     uint64
	Extractions uint64
	LastRender  time.Time
	LastScan    time.Time
	LastError   string
}

// Status reports the current state of the coordinator.
func (c *Coordinator) Status() Status {
	status := Status{
		Root:        c.root,
		OutputPath:  c.Config().OutputPath(),
		Running:     c.running.Load(),
		Files:       c.index.Len(),
		Symbols:     c.index.SymbolCount(),
		TotalSize:   c.index.TotalSize(),
		Languages:   c.index.LanguageCounts(),
		Pending:     c.debouncer.Pending(),
		Renders:     c.renders.Load(),
		Extractions: c.extractions.Load(),
		LastRender:  c.index.LastRender(),
		LastError:   c.lastError.Load().(string),
	}
	if nanos := c.lastScan.Load(); nanos != 0 {
		status.LastScan = time.Unix(0, nanos)
	}
	return status
}
