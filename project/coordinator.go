// Package project drives the index of one monitored root: it turns settled
// filesystem changes into index updates and keeps the generated document
// current.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lexandro/codemap/config"
	"github.com/lexandro/codemap/extract"
	"github.com/lexandro/codemap/fileio"
	"github.com/lexandro/codemap/ignore"
	"github.com/lexandro/codemap/index"
	"github.com/lexandro/codemap/render"
	"github.com/lexandro/codemap/watcher"
)

const defaultWorkers = 8

// Options carries the collaborators a Coordinator shares with others.
type Options struct {
	Logger *slog.Logger
	// Registry selects extractors; nil means extract.DefaultRegistry().
	Registry *extract.Registry
	// Cache and Symbols are optional and may be shared between coordinators.
	Cache   *extract.Cache
	Symbols *index.SymbolIndex
	// SyncInterval is the period of disk reconciliation; 0 disables it.
	SyncInterval time.Duration
	Workers      int
}

type reindexRequest struct {
	reply chan ScanResult
}

// Coordinator owns the debouncer, index and document of one project.
// Batches are processed strictly one after another by Run; configuration
// changes and reindex requests are applied between batches.
type Coordinator struct {
	logger       *slog.Logger
	registry     *extract.Registry
	cache        *extract.Cache
	symbols      *index.SymbolIndex
	syncInterval time.Duration
	workers      int

	root  string
	index *index.ProjectIndex

	mu      sync.RWMutex
	cfg     config.Project
	matcher *ignore.Matcher

	debouncer *watcher.Debouncer
	renderMu  sync.Mutex

	reconfigureCh chan config.Project
	reindexCh     chan reindexRequest
	started       atomic.Bool
	running       atomic.Bool
	done          chan struct{}

	renders     atomic.Uint64
	extractions atomic.Uint64
	lastScan    atomic.Int64
	lastError   atomic.Value // string
}

// New validates cfg and creates a coordinator for it. Invalid roots and
// patterns are rejected here.
func New(cfg config.Project, opts Options) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if opts.Registry == nil {
		opts.Registry = extract.DefaultRegistry()
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	c := &Coordinator{
		logger:        opts.Logger.With("root", cfg.Path),
		registry:      opts.Registry,
		cache:         opts.Cache,
		symbols:       opts.Symbols,
		syncInterval:  opts.SyncInterval,
		workers:       opts.Workers,
		root:          cfg.Path,
		index:         index.NewProjectIndex(cfg.Path),
		cfg:           cfg,
		matcher:       newMatcher(cfg),
		debouncer:     watcher.NewDebouncer(cfg.DebounceDelay()),
		reconfigureCh: make(chan config.Project),
		reindexCh:     make(chan reindexRequest),
		done:          make(chan struct{}),
	}
	c.lastError.Store("")
	return c, nil
}

func newMatcher(cfg config.Project) *ignore.Matcher {
	output := cfg.OutputFile
	if output == "" {
		output = config.DefaultOutputFile
	}
	return ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          cfg.Path,
		ExcludePatterns:  cfg.Exclude,
		IncludePatterns:  cfg.Include,
		ConfigFiles:      cfg.ConfigFiles,
		MaxFileSizeBytes: cfg.MaxFileSize,
		MaxDepth:         cfg.MaxDepth,
		OutputFile:       output,
	})
}

// Root returns the project root.
func (c *Coordinator) Root() string {
	return c.root
}

// Index returns the project index. Callers must treat it as read-only.
func (c *Coordinator) Index() *index.ProjectIndex {
	return c.index
}

// Config returns the configuration currently in effect.
func (c *Coordinator) Config() config.Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Done is closed when Run returns.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) currentMatcher() *ignore.Matcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matcher
}

// ShouldIgnore and ShouldIgnoreDir let the watcher follow configuration
// changes without being recreated.
func (c *Coordinator) ShouldIgnore(absolutePath string) bool {
	return c.currentMatcher().ShouldIgnore(absolutePath)
}

func (c *Coordinator) ShouldIgnoreDir(absolutePath string) bool {
	return c.currentMatcher().ShouldIgnoreDir(absolutePath)
}

// Run watches the root until ctx is cancelled. It performs an initial scan
// and render, then processes settled batches one at a time. A batch or
// render in progress when ctx is cancelled runs to completion.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("coordinator for %s was already started", c.root)
	}
	defer close(c.done)
	c.running.Store(true)
	defer c.running.Store(false)

	fileWatcher, err := watcher.NewWatcher(c.root, c, c.logger)
	if err != nil {
		return fmt.Errorf("watching %s: %w", c.root, err)
	}
	go fileWatcher.Start()
	defer fileWatcher.Close()
	defer c.debouncer.Stop()

	if ctx.Err() != nil {
		return nil
	}

	result := c.Scan(ctx)
	if ctx.Err() != nil {
		return nil
	}
	c.logger.Info("initial indexing complete",
		"files", c.index.Len(),
		"symbols", c.index.SymbolCount(),
		"duration", result.Duration,
	)
	c.renderAndLog()

	var syncTick <-chan time.Time
	if c.syncInterval > 0 {
		ticker := time.NewTicker(c.syncInterval)
		defer ticker.Stop()
		syncTick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopped watching")
			return nil

		case event := <-fileWatcher.Events():
			c.handleEvent(ctx, event)

		case <-c.debouncer.Ready():
			batch := c.debouncer.Settle()
			if len(batch) == 0 {
				continue
			}
			result := c.ProcessBatch(ctx, batch)
			if result.IgnoreReloaded {
				c.logger.Info("reloaded ignore rules, rescanning")
				if scan := c.Scan(ctx); scan.Dirty() {
					result.Changed++
				}
			}
			if result.Dirty() {
				c.renderAndLog()
			}

		case cfg := <-c.reconfigureCh:
			c.applyConfig(cfg)
			c.Scan(ctx)
			c.renderAndLog()

		case request := <-c.reindexCh:
			result := c.Scan(ctx)
			c.renderAndLog()
			request.reply <- result

		case <-syncTick:
			result := c.Sync(ctx)
			if result.Total() > 0 {
				c.logger.Info("sync verification complete",
					"missing", result.MissingFiles,
					"stale", result.StaleFiles,
					"modified", result.ModifiedFiles,
					"duration", result.Duration,
				)
				c.renderAndLog()
			} else {
				c.logger.Debug("sync verification complete, index is in sync", "duration", result.Duration)
			}
		}
	}
}

func (c *Coordinator) handleEvent(ctx context.Context, event watcher.Event) {
	if event.Op == watcher.OpRescan {
		if c.Scan(ctx).Dirty() {
			c.renderAndLog()
		}
		return
	}
	relativePath, ok := c.currentMatcher().Relative(event.Path)
	if !ok || relativePath == "." {
		return
	}
	c.logger.Debug("file event", "path", relativePath, "op", event.Op)
	c.debouncer.Add(relativePath)
}

// Reconfigure replaces the project configuration. The root cannot change.
// While Run is active the change is applied between batches and followed by
// a rescan.
func (c *Coordinator) Reconfigure(cfg config.Project) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Path != c.root {
		return fmt.Errorf("cannot move project %s to %s", c.root, cfg.Path)
	}
	if c.running.Load() {
		select {
		case c.reconfigureCh <- cfg:
			return nil
		case <-c.done:
		}
	}
	c.applyConfig(cfg)
	return nil
}

func (c *Coordinator) applyConfig(cfg config.Project) {
	c.mu.Lock()
	c.cfg = cfg
	c.matcher = newMatcher(cfg)
	c.mu.Unlock()
	c.debouncer.SetInterval(cfg.DebounceDelay())
	c.logger.Info("configuration updated", "updateDelay", cfg.DebounceDelay())
}

// Reindex forces a full rescan and render.
func (c *Coordinator) Reindex(ctx context.Context) (ScanResult, error) {
	if c.running.Load() {
		request := reindexRequest{reply: make(chan ScanResult, 1)}
		select {
		case c.reindexCh <- request:
		case <-c.done:
			return ScanResult{}, fmt.Errorf("coordinator for %s stopped", c.root)
		case <-ctx.Done():
			return ScanResult{}, ctx.Err()
		}
		select {
		case result := <-request.reply:
			return result, nil
		case <-ctx.Done():
			return ScanResult{}, ctx.Err()
		}
	}

	result := c.Scan(ctx)
	if _, err := c.Render(); err != nil {
		return result, err
	}
	return result, nil
}

// Render writes the document for the current index state. The existing
// document is kept untouched, and false returned, when the new bytes would
// be identical.
func (c *Coordinator) Render() (bool, error) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	outputPath := c.Config().OutputPath()
	existing, err := os.ReadFile(outputPath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading %s: %w", outputPath, err)
	}

	document := render.Splice(string(existing), render.Render(c.index.Snapshot()))
	if err == nil && document == string(existing) {
		return false, nil
	}
	if err := fileio.WriteAtomic(outputPath, []byte(document), 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", outputPath, err)
	}
	c.index.MarkRendered(time.Now())
	c.renders.Add(1)
	return true, nil
}

func (c *Coordinator) renderAndLog() {
	written, err := c.Render()
	if err != nil {
		c.lastError.Store(err.Error())
		c.logger.Error("failed to write index document", "error", err)
		return
	}
	c.lastError.Store("")
	if written {
		c.logger.Debug("index document updated", "files", c.index.Len())
	}
}
