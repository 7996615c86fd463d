package project

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lexandro/codemap/config"
	"github.com/lexandro/codemap/extract"
	"github.com/lexandro/codemap/fileio"
	"github.com/lexandro/codemap/ignore"
	"github.com/lexandro/codemap/index"
	"github.com/lexandro/codemap/language"
)

// outcome is what processing one path did to the index.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeUnchanged
	outcomeAdded
	outcomeModified
	outcomeFailed
	outcomeRemoved
	outcomeStale
	outcomeSkipped
)

// BatchResult counts the outcomes of one settlement batch.
type BatchResult struct {
	Changed        int
	Removed        int
	Unchanged      int
	Failed         int
	Skipped        int
	IgnoreReloaded bool
}

// Dirty reports whether the batch altered the index.
func (r BatchResult) Dirty() bool {
	return r.Changed+r.Removed+r.Failed > 0
}

func (r *BatchResult) count(o outcome) {
	switch o {
	case outcomeAdded, outcomeModified:
		r.Changed++
	case outcomeRemoved:
		r.Removed++
	case outcomeUnchanged:
		r.Unchanged++
	case outcomeFailed:
		r.Failed++
	case outcomeSkipped, outcomeStale:
		r.Skipped++
	}
}

// ProcessBatch re-checks every path of a settled batch against the disk.
// Paths are relative to the root. Each distinct path is handled exactly
// once, so there is never more than one extraction in flight per path.
func (c *Coordinator) ProcessBatch(ctx context.Context, relativePaths []string) BatchResult {
	var result BatchResult

	seen := make(map[string]bool, len(relativePaths))
	paths := make([]string, 0, len(relativePaths))
	for _, relativePath := range relativePaths {
		relativePath = filepath.ToSlash(filepath.Clean(relativePath))
		if seen[relativePath] || relativePath == "." {
			continue
		}
		seen[relativePath] = true
		paths = append(paths, relativePath)
	}

	matcher := c.currentMatcher()
	for _, relativePath := range paths {
		if matcher.IsIgnoreFile(relativePath) {
			matcher.Reload()
			result.IgnoreReloaded = true
			break
		}
	}

	outcomes := c.runPool(ctx, paths, c.processPath)
	for _, o := range outcomes {
		result.count(o)
	}
	c.logger.Debug("processed batch",
		"paths", len(paths),
		"changed", result.Changed,
		"removed", result.Removed,
		"failed", result.Failed,
	)
	return result
}

// runPool applies fn to every path using a bounded worker pool and returns
// the outcomes in input order. Paths not yet started when ctx is cancelled
// are reported as skipped.
func (c *Coordinator) runPool(ctx context.Context, paths []string, fn func(string) outcome) []outcome {
	outcomes := make([]outcome, len(paths))
	jobs := make(chan int, 100)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					outcomes[job] = outcomeSkipped
					continue
				}
				outcomes[job] = fn(paths[job])
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return outcomes
}

// processPath brings the record of one path in line with the disk.
func (c *Coordinator) processPath(relativePath string) outcome {
	c.mu.RLock()
	cfg, matcher := c.cfg, c.matcher
	c.mu.RUnlock()

	absolutePath := filepath.Join(c.root, filepath.FromSlash(relativePath))
	info, err := os.Stat(absolutePath)
	if errors.Is(err, fs.ErrNotExist) {
		return c.forget(relativePath)
	}
	if err != nil {
		c.logger.Warn("cannot stat file, keeping previous state", "path", relativePath, "error", err)
		return outcomeSkipped
	}
	if info.IsDir() {
		return outcomeNone
	}
	if matcher.ShouldIgnore(absolutePath) || matcher.IsFileTooLarge(info.Size()) {
		return c.forget(relativePath)
	}

	content, err := readFile(absolutePath)
	if err != nil {
		if _, statErr := os.Stat(absolutePath); errors.Is(statErr, fs.ErrNotExist) {
			return c.forget(relativePath)
		}
		c.logger.Warn("cannot read file, keeping previous state", "path", relativePath, "error", err)
		return outcomeSkipped
	}

	category, extractor, ok := c.classify(relativePath, content, cfg, matcher)
	if !ok {
		return c.forget(relativePath)
	}

	previous, existed := c.index.Get(relativePath)
	status, fp := c.index.Observe(relativePath, content)
	if status == index.Unchanged && existed && previous.Fingerprint == fp && previous.Category == category {
		if !previous.Failed && !previous.ModTime.Equal(info.ModTime()) {
			return c.refreshStat(previous, fp, info)
		}
		return outcomeUnchanged
	}

	extraction := index.Extraction{
		Category: category,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Language: language.Detect(relativePath),
	}
	if category != index.CategoryOther {
		extraction.Description = extract.Describe(content)
	}

	if extractor != nil {
		extraction.Language = extractor.Language()
		symbols, err := c.extract(extractor, fp, relativePath, content)
		if err != nil {
			c.logger.Warn("extraction failed", "path", relativePath, "error", err)
			if err := c.index.MarkFailed(relativePath, fp, extraction, err); err != nil {
				c.logger.Debug("discarded stale failure", "path", relativePath, "error", err)
				return outcomeStale
			}
			c.updateSymbols(relativePath)
			return outcomeFailed
		}
		extraction.Symbols = symbols
	}

	if err := c.index.ApplyExtraction(relativePath, fp, extraction); err != nil {
		c.logger.Debug("discarded stale extraction", "path", relativePath, "error", err)
		return outcomeStale
	}
	c.updateSymbols(relativePath)
	if existed {
		return outcomeModified
	}
	return outcomeAdded
}

var defaultReadFile = fileio.ReadWithRetry

// readFile is a variable so tests can simulate read failures.
var readFile = defaultReadFile

// classify decides the category of a file and the extractor for code files.
// ok is false when the file is not indexed at all.
func (c *Coordinator) classify(relativePath string, content []byte, cfg config.Project, matcher *ignore.Matcher) (index.Category, extract.Extractor, bool) {
	if cfg.IncludeConfigFiles && matcher.IsConfigFile(relativePath) {
		return index.CategoryConfig, nil, true
	}
	if extractor, ok := c.registry.ForPath(relativePath); ok && extensionAllowed(cfg.FileExtensions, relativePath) {
		if !language.IsBinaryContent(content) {
			return index.CategoryCode, extractor, true
		}
	}
	if cfg.IncludeOtherFiles {
		return index.CategoryOther, nil, true
	}
	return 0, nil, false
}

func extensionAllowed(extensions []string, relativePath string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(relativePath))
	for _, allowed := range extensions {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}

func (c *Coordinator) extract(e extract.Extractor, fp index.Fingerprint, relativePath string, content []byte) ([]index.Symbol, error) {
	c.extractions.Add(1)
	if c.cache != nil {
		return c.cache.Extract(e, fp, relativePath, content)
	}
	return extract.Run(e, relativePath, content)
}

// forget drops the record of a path, or of every path below it when it
// was a directory.
func (c *Coordinator) forget(relativePath string) outcome {
	removed := c.index.Remove(relativePath)
	if removed {
		c.dropSymbols(relativePath)
	}
	for _, path := range c.index.RemoveTree(relativePath) {
		c.dropSymbols(path)
		removed = true
	}
	if removed {
		c.logger.Debug("removed from index", "path", relativePath)
		return outcomeRemoved
	}
	return outcomeNone
}

func (c *Coordinator) updateSymbols(relativePath string) {
	if c.symbols == nil {
		return
	}
	record, ok := c.index.Get(relativePath)
	if !ok {
		return
	}
	if err := c.symbols.ReplaceFile(c.root, relativePath, record.Symbols); err != nil {
		c.logger.Warn("failed to update symbol search", "path", relativePath, "error", err)
	}
}

func (c *Coordinator) dropSymbols(relativePath string) {
	if c.symbols == nil {
		return
	}
	if err := c.symbols.RemoveFile(c.root, relativePath); err != nil {
		c.logger.Warn("failed to update symbol search", "path", relativePath, "error", err)
	}
}

// refreshStat records new size and modification time for a file that was
// touched without a content change. The previous extraction is kept.
func (c *Coordinator) refreshStat(previous index.FileRecord, fp index.Fingerprint, info os.FileInfo) outcome {
	err := c.index.ApplyExtraction(previous.Path, fp, index.Extraction{
		Language:    previous.Language,
		Category:    previous.Category,
		Description: previous.Description,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Symbols:     previous.Symbols,
	})
	if err != nil {
		c.logger.Debug("discarded stale stat refresh", "path", previous.Path, "error", err)
		return outcomeStale
	}
	return outcomeUnchanged
}
