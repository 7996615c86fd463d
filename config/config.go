// Package config loads the global settings and the registry of monitored
// projects. Both live as TOML files in the codemap home directory; any global
// setting can be overridden with a CODEMAP_* environment variable.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lexandro/codemap/fileio"
	"github.com/lexandro/codemap/ignore"
)

var (
	// ErrInvalidRoot is returned for a project root that is missing or not a directory.
	ErrInvalidRoot = errors.New("invalid project root")
	// ErrInvalidPattern is returned for a malformed include or exclude glob.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

const (
	DefaultUpdateDelay  = 2.0
	DefaultMaxFileSize  = 1024 * 1024
	DefaultMaxDepth     = 10
	DefaultOutputFile   = "CLAUDE.md"
	DefaultSyncInterval = 300
	DefaultCacheSize    = 4096
)

// Global holds settings shared by every project. Fields left out of the TOML
// file keep their defaults.
type Global struct {
	UpdateDelay       float64  `toml:"update_delay"`
	IgnorePatterns    []string `toml:"ignore_patterns"`
	FileExtensions    []string `toml:"file_extensions"`
	ConfigFiles       []string `toml:"config_files"`
	MaxFileSize       int64    `toml:"max_file_size"`
	MaxDepth          int      `toml:"max_depth"`
	OutputFile        string   `toml:"output_file"`
	IncludeOtherFiles bool     `toml:"include_other_files"`
	SyncInterval      int      `toml:"sync_interval"`
	CacheSize         int      `toml:"cache_size"`
	LogLevel          string   `toml:"log_level"`
	LogFile           string   `toml:"log_file"`
}

// Default returns the built-in global settings.
func Default() Global {
	return Global{
		UpdateDelay:       DefaultUpdateDelay,
		IgnorePatterns:    []string{".pytest_cache", ".mypy_cache", ".coverage"},
		ConfigFiles:       append([]string(nil), ignore.DefaultConfigFiles...),
		MaxFileSize:       DefaultMaxFileSize,
		MaxDepth:          DefaultMaxDepth,
		OutputFile:        DefaultOutputFile,
		IncludeOtherFiles: true,
		SyncInterval:      DefaultSyncInterval,
		CacheSize:         DefaultCacheSize,
		LogLevel:          "info",
	}
}

// Load reads the global settings from path on top of the defaults and then
// applies environment overrides. A missing file is not an error.
func Load(path string) (Global, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Global{}, fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnvOverrides(os.LookupEnv); err != nil {
		return Global{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Global{}, err
	}
	return cfg, nil
}

// Save writes the settings to path atomically.
func (g Global) Save(path string) error {
	var builder strings.Builder
	builder.WriteString("# codemap global configuration\n\n")
	if err := toml.NewEncoder(&builder).Encode(g); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return fileio.WriteAtomic(path, []byte(builder.String()), 0644)
}

// ApplyEnvOverrides sets fields from CODEMAP_* variables found by lookup.
func (g *Global) ApplyEnvOverrides(lookup func(string) (string, bool)) error {
	if v, ok := lookup("CODEMAP_UPDATE_DELAY"); ok {
		delay, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("CODEMAP_UPDATE_DELAY: %w", err)
		}
		g.UpdateDelay = delay
	}
	if v, ok := lookup("CODEMAP_MAX_FILE_SIZE"); ok {
		size, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("CODEMAP_MAX_FILE_SIZE: %w", err)
		}
		g.MaxFileSize = size
	}
	for name, target := range map[string]*int{
		"CODEMAP_MAX_DEPTH":     &g.MaxDepth,
		"CODEMAP_SYNC_INTERVAL": &g.SyncInterval,
		"CODEMAP_CACHE_SIZE":    &g.CacheSize,
	} {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*target = n
		}
	}
	if v, ok := lookup("CODEMAP_INCLUDE_OTHER_FILES"); ok {
		include, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CODEMAP_INCLUDE_OTHER_FILES: %w", err)
		}
		g.IncludeOtherFiles = include
	}
	if v, ok := lookup("CODEMAP_IGNORE_PATTERNS"); ok {
		g.IgnorePatterns = splitList(v)
	}
	if v, ok := lookup("CODEMAP_OUTPUT_FILE"); ok && strings.TrimSpace(v) != "" {
		g.OutputFile = strings.TrimSpace(v)
	}
	if v, ok := lookup("CODEMAP_LOG_LEVEL"); ok && strings.TrimSpace(v) != "" {
		g.LogLevel = strings.TrimSpace(v)
	}
	if v, ok := lookup("CODEMAP_LOG_FILE"); ok {
		g.LogFile = strings.TrimSpace(v)
	}
	return nil
}

// Validate checks ranges and patterns of the global settings.
func (g Global) Validate() error {
	if g.UpdateDelay < 0 {
		return fmt.Errorf("update_delay must not be negative, got %v", g.UpdateDelay)
	}
	if g.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", g.MaxFileSize)
	}
	if g.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", g.MaxDepth)
	}
	if g.SyncInterval < 0 {
		return fmt.Errorf("sync_interval must not be negative, got %d", g.SyncInterval)
	}
	if strings.TrimSpace(g.OutputFile) == "" {
		return fmt.Errorf("output_file must not be empty")
	}
	switch strings.ToLower(g.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", g.LogLevel)
	}
	return validatePatterns(g.IgnorePatterns)
}

// SyncPeriod returns the interval of the periodic disk reconciliation;
// zero disables it.
func (g Global) SyncPeriod() time.Duration {
	return time.Duration(g.SyncInterval) * time.Second
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
