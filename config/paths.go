package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths locates the files codemap keeps outside of projects.
type Paths struct {
	Dir          string
	ConfigFile   string
	RegistryFile string
	PIDFile      string
	LogFile      string
}

// DefaultPaths uses $CODEMAP_HOME, falling back to <user config dir>/codemap.
func DefaultPaths() (Paths, error) {
	dir := os.Getenv("CODEMAP_HOME")
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf("locating config directory: %w", err)
		}
		dir = filepath.Join(base, "codemap")
	}
	return PathsIn(dir), nil
}

// PathsIn lays out the codemap files inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		Dir:          dir,
		ConfigFile:   filepath.Join(dir, "config.toml"),
		RegistryFile: filepath.Join(dir, "projects.toml"),
		PIDFile:      filepath.Join(dir, "codemap.pid"),
		LogFile:      filepath.Join(dir, "codemap.log"),
	}
}

// Ensure creates the codemap directory.
func (p Paths) Ensure() error {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", p.Dir, err)
	}
	return nil
}
