package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Project is the configuration of one monitored root.
type Project struct {
	Path               string   `toml:"path"`
	Enabled            bool     `toml:"enabled"`
	Include            []string `toml:"include,omitempty"`
	Exclude            []string `toml:"exclude,omitempty"`
	FileExtensions     []string `toml:"file_extensions,omitempty"`
	ConfigFiles        []string `toml:"config_files,omitempty"`
	UpdateDelay        float64  `toml:"update_delay"`
	MaxFileSize        int64    `toml:"max_file_size"`
	MaxDepth           int      `toml:"max_depth"`
	IncludeConfigFiles bool     `toml:"include_config_files"`
	IncludeOtherFiles  bool     `toml:"include_other_files"`
	OutputFile         string   `toml:"output_file"`
}

// NewProject returns a project for root with settings copied from g.
func (g Global) NewProject(root string) Project {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return Project{
		Path:               filepath.Clean(root),
		Enabled:            true,
		Exclude:            append([]string(nil), g.IgnorePatterns...),
		FileExtensions:     append([]string(nil), g.FileExtensions...),
		ConfigFiles:        append([]string(nil), g.ConfigFiles...),
		UpdateDelay:        g.UpdateDelay,
		MaxFileSize:        g.MaxFileSize,
		MaxDepth:           g.MaxDepth,
		IncludeConfigFiles: true,
		IncludeOtherFiles:  g.IncludeOtherFiles,
		OutputFile:         g.OutputFile,
	}
}

// Validate rejects a missing root or a malformed glob. It runs before a
// coordinator is created, so a running project never fails on configuration.
func (p Project) Validate() error {
	if !filepath.IsAbs(p.Path) {
		return fmt.Errorf("%w: %s is not absolute", ErrInvalidRoot, p.Path)
	}
	info, err := os.Stat(p.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, p.Path)
	}
	if err := validatePatterns(p.Include); err != nil {
		return err
	}
	if err := validatePatterns(p.Exclude); err != nil {
		return err
	}
	if p.UpdateDelay < 0 {
		return fmt.Errorf("update_delay must not be negative, got %v", p.UpdateDelay)
	}
	if clean := filepath.Clean(p.OutputFile); filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output_file must be relative to the project root, got %q", p.OutputFile)
	}
	return nil
}

// DebounceDelay returns the quiet period before a burst of changes is processed.
func (p Project) DebounceDelay() time.Duration {
	if p.UpdateDelay <= 0 {
		return time.Duration(DefaultUpdateDelay * float64(time.Second))
	}
	return time.Duration(p.UpdateDelay * float64(time.Second))
}

// OutputPath returns the absolute path of the generated document.
func (p Project) OutputPath() string {
	output := p.OutputFile
	if output == "" {
		output = DefaultOutputFile
	}
	return filepath.Join(p.Path, output)
}

func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if pattern == "" || !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
	}
	return nil
}
