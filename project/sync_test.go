package project

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func Test_Sync_DetectsMissingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	c, _ := newTestCoordinator(t, testProject(t, tmpDir))

	// Create a file on disk but don't index it
	writeFile(t, tmpDir, "missing.py", "def f():\n")

	result := c.Sync(context.Background())

	if result.MissingFiles != 1 {
		t.Errorf("expected 1 missing file, got %d", result.MissingFiles)
	}
	if result.StaleFiles != 0 {
		t.Errorf("expected 0 stale files, got %d", result.StaleFiles)
	}
	if result.ModifiedFiles != 0 {
		t.Errorf("expected 0 modified files, got %d", result.ModifiedFiles)
	}

	// Verify the file was actually indexed
	if _, ok := c.Index().Get("missing.py"); !ok {
		t.Error("expected missing.py to be indexed after sync")
	}
}

func Test_Sync_DetectsStaleFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "deleted.py", "def f():\n")
	c, _ := newTestCoordinator(t, testProject(t, tmpDir))
	c.Scan(context.Background())

	// Delete behind the watcher's back
	os.Remove(filepath.Join(tmpDir, "deleted.py"))

	result := c.Sync(context.Background())

	if result.StaleFiles != 1 {
		t.Errorf("expected 1 stale file, got %d", result.StaleFiles)
	}
	if c.Index().Len() != 0 {
		t.Errorf("expected empty index after sync, got %d records", c.Index().Len())
	}
}

func Test_Sync_DetectsModifiedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "changed.py", "def old():\n")
	c, extractor := newTestCoordinator(t, testProject(t, tmpDir))
	c.Scan(context.Background())

	writeFile(t, tmpDir, "changed.py", "def renamed():\n")
	future := time.Now().Add(time.Hour)
	os.Chtimes(filepath.Join(tmpDir, "changed.py"), future, future)

	result := c.Sync(context.Background())

	if result.ModifiedFiles != 1 {
		t.Errorf("expected 1 modified file, got %d", result.ModifiedFiles)
	}
	record, _ := c.Index().Get("changed.py")
	if len(record.Symbols) != 1 || record.Symbols[0].Name != "renamed" {
		t.Errorf("expected symbol renamed, got %+v", record.Symbols)
	}
	if extractor.calls.Load() != 2 {
		t.Errorf("expected 2 extractions, got %d", extractor.calls.Load())
	}
}

func Test_Sync_TouchedFileIsNotReextracted(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "same.py", "def same():\n")
	c, extractor := newTestCoordinator(t, testProject(t, tmpDir))
	c.Scan(context.Background())

	future := time.Now().Add(time.Hour)
	os.Chtimes(filepath.Join(tmpDir, "same.py"), future, future)

	result := c.Sync(context.Background())
	if result.Total() != 0 {
		t.Errorf("expected no discrepancies for a touched file, got %+v", result)
	}
	if extractor.calls.Load() != 1 {
		t.Errorf("expected no re-extraction, got %d calls", extractor.calls.Load())
	}

	// The refreshed modification time keeps the next sync cheap.
	record, _ := c.Index().Get("same.py")
	if record.ModTime.Unix() != future.Unix() {
		t.Errorf("expected modification time to be refreshed, got %v", record.ModTime)
	}
}

func Test_Sync_InSync(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.py", "def a():\n")
	c, _ := newTestCoordinator(t, testProject(t, tmpDir))
	c.Scan(context.Background())

	result := c.Sync(context.Background())
	if result.Total() != 0 {
		t.Errorf("expected index to be in sync, got %+v", result)
	}
}

// failReadingDir makes every walk report a permission error for dir after
// visiting it, the way filepath.WalkDir does when ReadDir fails.
func failReadingDir(t *testing.T, dir string) {
	t.Helper()
	walkDir = func(root string, fn fs.WalkDirFunc) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() && path == dir {
				if err := fn(path, d, nil); err != nil {
					return err
				}
				fn(path, d, &fs.PathError{Op: "readdirent", Path: path, Err: fs.ErrPermission})
				return filepath.SkipDir
			}
			return fn(path, d, err)
		})
	}
	t.Cleanup(func() { walkDir = filepath.WalkDir })
}

func Test_Sync_UnreadableDirectoryKeepsRecords(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "sub/a.py", "def a():\n")
	writeFile(t, tmpDir, "sub/deep/b.py", "def b():\n")
	writeFile(t, tmpDir, "top.py", "def top():\n")
	c, _ := newTestCoordinator(t, testProject(t, tmpDir))
	c.Scan(context.Background())
	if c.Index().Len() != 3 {
		t.Fatalf("expected 3 indexed files, got %d", c.Index().Len())
	}

	failReadingDir(t, filepath.Join(tmpDir, "sub"))
	os.Remove(filepath.Join(tmpDir, "top.py"))

	result := c.Sync(context.Background())
	if result.StaleFiles != 1 {
		t.Errorf("expected only top.py to be stale, got %d", result.StaleFiles)
	}
	scan := c.Scan(context.Background())
	if scan.Removed != 0 {
		t.Errorf("expected scan to keep records under sub/, removed %d", scan.Removed)
	}
	for _, path := range []string{"sub/a.py", "sub/deep/b.py"} {
		if _, ok := c.Index().Get(path); !ok {
			t.Errorf("expected %s to survive an unreadable directory", path)
		}
	}
	if _, ok := c.Index().Get("top.py"); ok {
		t.Error("expected deleted top.py to be removed")
	}
}
