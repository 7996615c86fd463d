package watcher

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects changed paths of one project and reports when they have
// been quiet for the configured delay. There is a single countdown per
// project, restarted by every Add, so a burst of events settles once.
//
// Settlement is pulled: Ready signals that the countdown elapsed, and the
// owner calls Settle when it is free to process the batch. A countdown that
// was superseded by a newer Add never makes the set settleable.
type Debouncer struct {
	interval time.Duration

	mu         sync.Mutex
	pending    map[string]struct{}
	timer      *time.Timer
	generation uint64
	due        bool
	stopped    bool

	ready chan struct{}
}

// NewDebouncer creates a debouncer with the specified quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]struct{}),
		ready:    make(chan struct{}, 1),
	}
}

// Ready receives a value when the pending set has become settleable.
func (d *Debouncer) Ready() <-chan struct{} {
	return d.ready
}

// Add records path and restarts the countdown. Repeated paths collapse.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}
	d.generation++
	d.due = false

	if d.timer != nil {
		d.timer.Stop()
	}
	generation := d.generation
	d.timer = time.AfterFunc(d.interval, func() {
		d.fire(generation)
	})
}

// fire runs when a countdown elapses. Only the latest countdown counts.
func (d *Debouncer) fire(generation uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || generation != d.generation || len(d.pending) == 0 {
		return
	}
	d.due = true
	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// Settle returns the pending paths in sorted order and clears them, or nil
// when the countdown has not elapsed since the last Add.
func (d *Debouncer) Settle() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.due || len(d.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(d.pending))
	for path := range d.pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	d.pending = make(map[string]struct{})
	d.due = false
	return paths
}

// SetInterval changes the quiet period. It takes effect with the next Add.
func (d *Debouncer) SetInterval(interval time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interval = interval
}

// Pending returns the number of paths waiting to settle.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels the countdown and drops pending paths. Later Adds are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.due = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = make(map[string]struct{})
}
