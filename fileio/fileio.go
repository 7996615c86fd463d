// Package fileio holds the small file helpers shared by the indexer and the CLI.
package fileio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TempPattern is the name pattern of temp files created by WriteAtomic.
// Watchers and ignore rules use it to skip our own intermediate files.
const TempPattern = ".codemap-*.tmp"

// retryDelay is how long ReadWithRetry waits before its second attempt.
const retryDelay = 50 * time.Millisecond

// WriteAtomic replaces path with data. The data is written to a temp file in
// the same directory, synced and renamed over the target, so readers see
// either the old or the new document, never a partial one.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, TempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting mode on %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}

// ReadWithRetry reads a file, retrying once after a short delay if the first
// read fails (editors briefly lock files while saving on some platforms).
func ReadWithRetry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		time.Sleep(retryDelay)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// IsTempFile reports whether name looks like a WriteAtomic temp file.
func IsTempFile(name string) bool {
	matched, _ := filepath.Match(TempPattern, filepath.Base(name))
	return matched
}
