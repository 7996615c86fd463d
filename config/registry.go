package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/lexandro/codemap/fileio"
)

// registryFile is the on-disk layout of projects.toml.
type registryFile struct {
	Projects []Project `toml:"project"`
}

// Registry is the persisted set of monitored projects, keyed by root path.
type Registry struct {
	mu       sync.RWMutex
	path     string
	projects map[string]Project
}

// LoadRegistry reads the registry at path. A missing file yields an empty registry.
func LoadRegistry(path string) (*Registry, error) {
	registry := &Registry{path: path, projects: make(map[string]Project)}

	var file registryFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return registry, nil
		}
		return nil, fmt.Errorf("decoding registry %s: %w", path, err)
	}
	for _, project := range file.Projects {
		project.Path = filepath.Clean(project.Path)
		registry.projects[project.Path] = project
	}
	return registry, nil
}

// Path returns the file the registry is stored in.
func (r *Registry) Path() string {
	return r.path
}

// Save writes the registry atomically.
func (r *Registry) Save() error {
	file := registryFile{Projects: r.List()}

	var builder strings.Builder
	builder.WriteString("# Projects monitored by codemap. Edited by `codemap add` and `codemap remove`.\n\n")
	if err := toml.NewEncoder(&builder).Encode(file); err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(r.path), err)
	}
	return fileio.WriteAtomic(r.path, []byte(builder.String()), 0644)
}

// Add stores project. Returns false if a project with the same root was
// already registered; the existing entry is kept.
func (r *Registry) Add(project Project) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	project.Path = filepath.Clean(project.Path)
	if _, exists := r.projects[project.Path]; exists {
		return false
	}
	r.projects[project.Path] = project
	return true
}

// Put stores project, replacing any entry with the same root.
func (r *Registry) Put(project Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project.Path = filepath.Clean(project.Path)
	r.projects[project.Path] = project
}

// Remove deletes the project rooted at root.
func (r *Registry) Remove(root string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	root = filepath.Clean(root)
	if _, exists := r.projects[root]; !exists {
		return false
	}
	delete(r.projects, root)
	return true
}

// Get returns the project rooted at root.
func (r *Registry) Get(root string) (Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	project, ok := r.projects[filepath.Clean(root)]
	return project, ok
}

// List returns all projects sorted by root.
func (r *Registry) List() []Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	projects := make([]Project, 0, len(r.projects))
	for _, project := range r.projects {
		projects = append(projects, project)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Path < projects[j].Path
	})
	return projects
}

// Enabled returns the enabled projects sorted by root.
func (r *Registry) Enabled() []Project {
	var enabled []Project
	for _, project := range r.List() {
		if project.Enabled {
			enabled = append(enabled, project)
		}
	}
	return enabled
}

// CleanupStale removes projects whose root no longer exists and returns
// their paths.
func (r *Registry) CleanupStale() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for root := range r.projects {
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			removed = append(removed, root)
			delete(r.projects, root)
		}
	}
	sort.Strings(removed)
	return removed
}
