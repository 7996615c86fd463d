// Package daemon keeps one project coordinator running per monitored root
// and applies registry changes to the running set.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lexandro/codemap/config"
	"github.com/lexandro/codemap/project"
)

var (
	// ErrUnknownProject is returned for a root that is not monitored.
	ErrUnknownProject = errors.New("project is not monitored")
	// ErrAlreadyMonitored is returned when adding a root twice.
	ErrAlreadyMonitored = errors.New("project is already monitored")
)

type entry struct {
	coordinator *project.Coordinator
	cancel      context.CancelFunc
}

// Supervisor owns the running coordinators. Coordinators share only the
// extraction cache and symbol index carried in the options.
type Supervisor struct {
	ctx    context.Context
	opts   project.Options
	logger *slog.Logger

	mu       sync.Mutex
	projects map[string]*entry // key: project root
}

// NewSupervisor creates an empty supervisor. Coordinators it starts live
// until they are removed, the supervisor is shut down, or ctx is cancelled.
func NewSupervisor(ctx context.Context, opts project.Options) *Supervisor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Supervisor{
		ctx:      ctx,
		opts:     opts,
		logger:   opts.Logger,
		projects: make(map[string]*entry),
	}
}

// Add validates cfg and starts a coordinator for it.
func (s *Supervisor) Add(cfg config.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[cfg.Path]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyMonitored, cfg.Path)
	}
	coordinator, err := project.New(cfg, s.opts)
	if err != nil {
		return fmt.Errorf("adding %s: %w", cfg.Path, err)
	}

	runCtx, cancel := context.WithCancel(s.ctx)
	s.projects[cfg.Path] = &entry{coordinator: coordinator, cancel: cancel}
	go func() {
		if err := coordinator.Run(runCtx); err != nil {
			s.logger.Error("coordinator stopped", "root", cfg.Path, "error", err)
		}
	}()
	s.logger.Info("monitoring project", "root", cfg.Path)
	return nil
}

// Remove stops the coordinator of root. It waits for a batch or render in
// progress to finish.
func (s *Supervisor) Remove(root string) error {
	s.mu.Lock()
	e, exists := s.projects[root]
	delete(s.projects, root)
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownProject, root)
	}
	e.cancel()
	<-e.coordinator.Done()

	if s.opts.Symbols != nil {
		if err := s.opts.Symbols.RemoveProject(root); err != nil {
			s.logger.Warn("failed to drop symbols", "root", root, "error", err)
		}
	}
	s.logger.Info("stopped monitoring project", "root", root)
	return nil
}

// Reconfigure hands a new configuration to the coordinator of cfg.Path.
func (s *Supervisor) Reconfigure(cfg config.Project) error {
	coordinator, ok := s.Get(cfg.Path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProject, cfg.Path)
	}
	return coordinator.Reconfigure(cfg)
}

// Sync makes the running set match projects: missing roots are added,
// roots not listed are removed, and changed configurations are applied.
// A failure for one project does not stop the others.
func (s *Supervisor) Sync(projects []config.Project) error {
	desired := make(map[string]config.Project, len(projects))
	for _, cfg := range projects {
		desired[cfg.Path] = cfg
	}

	var errs []error
	for _, root := range s.Roots() {
		if _, keep := desired[root]; !keep {
			if err := s.Remove(root); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, cfg := range projects {
		coordinator, running := s.Get(cfg.Path)
		switch {
		case !running:
			if err := s.Add(cfg); err != nil {
				errs = append(errs, err)
			}
		case !reflect.DeepEqual(coordinator.Config(), cfg):
			if err := coordinator.Reconfigure(cfg); err != nil {
				errs = append(errs, fmt.Errorf("reconfiguring %s: %w", cfg.Path, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Reindex forces a full rescan of root.
func (s *Supervisor) Reindex(ctx context.Context, root string) (project.ScanResult, error) {
	coordinator, ok := s.Get(root)
	if !ok {
		return project.ScanResult{}, fmt.Errorf("%w: %s", ErrUnknownProject, root)
	}
	return coordinator.Reindex(ctx)
}

// Get returns the coordinator of root.
func (s *Supervisor) Get(root string) (*project.Coordinator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.projects[root]
	if !ok {
		return nil, false
	}
	return e.coordinator, true
}

// Lookup returns the coordinator whose root contains path. With nested
// roots the innermost one wins.
func (s *Supervisor) Lookup(path string) (*project.Coordinator, bool) {
	path = filepath.Clean(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	var best *project.Coordinator
	for root, e := range s.projects {
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(root) > len(best.Root()) {
			best = e.coordinator
		}
	}
	return best, best != nil
}

// Roots returns the monitored roots in sorted order.
func (s *Supervisor) Roots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	roots := make([]string, 0, len(s.projects))
	for root := range s.projects {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// Status returns the status of every coordinator, ordered by root.
func (s *Supervisor) Status() []project.Status {
	var statuses []project.Status
	for _, root := range s.Roots() {
		if coordinator, ok := s.Get(root); ok {
			statuses = append(statuses, coordinator.Status())
		}
	}
	return statuses
}

// Shutdown stops every coordinator concurrently and waits for them, or for
// ctx to expire.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	entries := s.projects
	s.projects = make(map[string]*entry)
	s.mu.Unlock()

	var g errgroup.Group
	for root, e := range entries {
		g.Go(func() error {
			e.cancel()
			select {
			case <-e.coordinator.Done():
				return nil
			case <-ctx.Done():
				return fmt.Errorf("stopping %s: %w", root, ctx.Err())
			}
		})
	}
	return g.Wait()
}
