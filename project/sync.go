package project

import (
	"context"
	"time"
)

// SyncResult holds the outcome of a single sync verification run.
type SyncResult struct {
	MissingFiles  int // files on disk but not in index
	StaleFiles    int // files in index but not on disk
	ModifiedFiles int // files whose size or ModTime differs
	Duration      time.Duration
}

// Total returns the number of discrepancies that were repaired.
func (r SyncResult) Total() int {
	return r.MissingFiles + r.StaleFiles + r.ModifiedFiles
}

// Sync compares the disk with the index and repairs what the watcher
// missed. Unlike Scan it only reads files that are missing from the index
// or whose size or modification time differs from the record.
func (c *Coordinator) Sync(ctx context.Context) SyncResult {
	start := time.Now()
	var result SyncResult

	disk, complete := c.walk(ctx)
	if !complete {
		result.Duration = time.Since(start)
		return result
	}
	diskFiles := disk.files

	for _, relativePath := range c.index.Paths() {
		if disk.gone(relativePath) {
			if c.forget(relativePath) == outcomeRemoved {
				c.logger.Info("sync: removed stale file", "path", relativePath)
				result.StaleFiles++
			}
		}
	}

	var missing, modified []string
	for relativePath, info := range diskFiles {
		record, exists := c.index.Get(relativePath)
		switch {
		case !exists:
			missing = append(missing, relativePath)
		case record.Size != info.Size() || !record.ModTime.Equal(info.ModTime()):
			modified = append(modified, relativePath)
		}
	}

	for i, o := range c.runPool(ctx, missing, c.processPath) {
		if o == outcomeAdded || o == outcomeFailed {
			c.logger.Info("sync: indexed missing file", "path", missing[i])
			result.MissingFiles++
		}
	}
	for i, o := range c.runPool(ctx, modified, c.processPath) {
		if o == outcomeModified || o == outcomeFailed {
			c.logger.Info("sync: re-indexed modified file", "path", modified[i])
			result.ModifiedFiles++
		}
	}

	result.Duration = time.Since(start)
	return result
}
