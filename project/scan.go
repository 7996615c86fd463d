package project

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// walkDir is replaced in tests to simulate unreadable directories.
var walkDir = filepath.WalkDir

// ScanResult summarizes a full reconciliation of the index with the disk.
type ScanResult struct {
	Files     int // eligible files found on disk
	Added     int
	Modified  int
	Removed   int
	Unchanged int
	Failed    int
	Duration  time.Duration
}

// Dirty reports whether the scan altered the index.
func (r ScanResult) Dirty() bool {
	return r.Added+r.Modified+r.Removed+r.Failed > 0
}

// Scan walks the whole root, prunes ignored directories, drops records of
// files that are gone or no longer eligible, and runs every remaining file
// through the same pipeline as a settled batch.
func (c *Coordinator) Scan(ctx context.Context) ScanResult {
	start := time.Now()
	var result ScanResult

	disk, complete := c.walk(ctx)
	if !complete {
		// A partial walk cannot tell deleted files from unvisited ones.
		result.Duration = time.Since(start)
		return result
	}
	diskFiles := disk.files
	result.Files = len(diskFiles)

	for _, relativePath := range c.index.Paths() {
		if disk.gone(relativePath) {
			if c.forget(relativePath) == outcomeRemoved {
				result.Removed++
			}
		}
	}

	paths := make([]string, 0, len(diskFiles))
	for relativePath := range diskFiles {
		paths = append(paths, relativePath)
	}
	for _, o := range c.runPool(ctx, paths, c.processPath) {
		switch o {
		case outcomeAdded:
			result.Added++
		case outcomeModified:
			result.Modified++
		case outcomeUnchanged:
			result.Unchanged++
		case outcomeFailed:
			result.Failed++
		case outcomeRemoved:
			result.Removed++
		}
	}

	c.lastScan.Store(time.Now().UnixNano())
	result.Duration = time.Since(start)
	return result
}

// walkResult is the eligible files found by a walk plus the directories
// that exist but could not be read.
type walkResult struct {
	files      map[string]os.FileInfo // key: relative path (forward slashes)
	unreadable []string               // relative directory paths, "." for the root
}

// gone reports whether a tracked path was not seen by the walk and does not
// sit under an unreadable directory.
func (w walkResult) gone(relativePath string) bool {
	if _, exists := w.files[relativePath]; exists {
		return false
	}
	for _, dir := range w.unreadable {
		if dir == "." || strings.HasPrefix(relativePath, dir+"/") {
			return false
		}
	}
	return true
}

// walk returns the eligible files on disk keyed by relative path. complete
// is false when ctx was cancelled before the walk finished.
func (c *Coordinator) walk(ctx context.Context) (walkResult, bool) {
	matcher := c.currentMatcher()
	result := walkResult{files: make(map[string]os.FileInfo)}

	walkDir(c.root, func(path string, d os.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			if d != nil && !d.IsDir() {
				return nil
			}
			if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
				return nil
			}
			relativePath := "."
			if path != c.root {
				relativePath, _ = matcher.Relative(path)
			}
			c.logger.Warn("cannot read directory, keeping its records", "path", relativePath, "error", err)
			result.unreadable = append(result.unreadable, relativePath)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != c.root && matcher.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matcher.ShouldIgnore(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if matcher.IsFileTooLarge(info.Size()) {
			return nil
		}
		relativePath, ok := matcher.Relative(path)
		if !ok {
			return nil
		}
		result.files[relativePath] = info
		return nil
	})
	return result, ctx.Err() == nil
}
