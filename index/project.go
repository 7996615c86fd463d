package index

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrStaleWrite is matched by every StaleWriteError.
var ErrStaleWrite = errors.New("stale extraction result")

// StaleWriteError is returned when an extraction was computed against a
// fingerprint that is no longer the one on record for the path.
type StaleWriteError struct {
	Path     string
	Expected Fingerprint
	Current  Fingerprint // empty when the path is no longer tracked
}

func (e *StaleWriteError) Error() string {
	current := e.Current.Short()
	if current == "" {
		current = "none"
	}
	return fmt.Sprintf("stale extraction for %s: computed against %s, current %s", e.Path, e.Expected.Short(), current)
}

func (e *StaleWriteError) Is(target error) bool {
	return target == ErrStaleWrite
}

// ProjectIndex holds the fingerprints and extraction results of one project root.
// It keeps a map for O(1) lookups and a sorted slice for ordered snapshots.
type ProjectIndex struct {
	mu           sync.RWMutex
	root         string
	fingerprints *FingerprintStore
	files        map[string]*FileRecord // key: relative path (forward slashes)
	sortedPaths  []string
	lastRender   time.Time
}

// NewProjectIndex creates an empty index for root.
func NewProjectIndex(root string) *ProjectIndex {
	return &ProjectIndex{
		root:         root,
		fingerprints: NewFingerprintStore(),
		files:        make(map[string]*FileRecord),
		sortedPaths:  make([]string, 0),
	}
}

// Root returns the project root the index was created for.
func (pi *ProjectIndex) Root() string {
	return pi.root
}

// Observe fingerprints content and compares it with the stored fingerprint.
// Unchanged content leaves the index untouched; otherwise the new fingerprint
// is stored before returning Changed.
func (pi *ProjectIndex) Observe(path string, content []byte) (Status, Fingerprint) {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	status, fp := pi.fingerprints.Compare(path, content)
	if status == Changed {
		pi.fingerprints.Set(path, fp)
	}
	return status, fp
}

// ApplyExtraction replaces the record for path with the extraction result.
// It fails with a StaleWriteError if fp is no longer the fingerprint on record.
func (pi *ProjectIndex) ApplyExtraction(path string, fp Fingerprint, ex Extraction) error {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	if err := pi.checkFingerprint(path, fp); err != nil {
		return err
	}

	pi.put(&FileRecord{
		Path:        path,
		Fingerprint: fp,
		Size:        ex.Size,
		ModTime:     ex.ModTime,
		Language:    ex.Language,
		Category:    ex.Category,
		Description: ex.Description,
		Symbols:     append([]Symbol(nil), ex.Symbols...),
	})
	return nil
}

// MarkFailed records that extracting fp failed. Symbols from the previous
// successful extraction are kept; a file seen for the first time gets an
// empty placeholder record. Both are flagged with the failure reason.
func (pi *ProjectIndex) MarkFailed(path string, fp Fingerprint, ex Extraction, cause error) error {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	if err := pi.checkFingerprint(path, fp); err != nil {
		return err
	}

	reason := "extraction failed"
	if cause != nil {
		reason = cause.Error()
	}

	record := &FileRecord{
		Path:     path,
		Size:     ex.Size,
		ModTime:  ex.ModTime,
		Language: ex.Language,
		Category: ex.Category,
	}
	if previous, ok := pi.files[path]; ok {
		copied := previous.clone()
		record = &copied
	}
	record.Fingerprint = fp
	record.Failed = true
	record.FailReason = reason
	pi.put(record)
	return nil
}

func (pi *ProjectIndex) checkFingerprint(path string, fp Fingerprint) error {
	current, ok := pi.fingerprints.Get(path)
	if !ok || current != fp {
		return &StaleWriteError{Path: path, Expected: fp, Current: current}
	}
	return nil
}

func (pi *ProjectIndex) put(record *FileRecord) {
	_, exists := pi.files[record.Path]
	pi.files[record.Path] = record
	if !exists {
		idx := sort.SearchStrings(pi.sortedPaths, record.Path)
		pi.sortedPaths = append(pi.sortedPaths, "")
		copy(pi.sortedPaths[idx+1:], pi.sortedPaths[idx:])
		pi.sortedPaths[idx] = record.Path
	}
}

// Remove deletes the record and fingerprint for path. Returns false if the
// path was not tracked.
func (pi *ProjectIndex) Remove(path string) bool {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	return pi.remove(path)
}

func (pi *ProjectIndex) remove(path string) bool {
	_, hadFingerprint := pi.fingerprints.Get(path)
	pi.fingerprints.Delete(path)

	if _, exists := pi.files[path]; !exists {
		return hadFingerprint
	}
	delete(pi.files, path)

	idx := sort.SearchStrings(pi.sortedPaths, path)
	if idx < len(pi.sortedPaths) && pi.sortedPaths[idx] == path {
		pi.sortedPaths = append(pi.sortedPaths[:idx], pi.sortedPaths[idx+1:]...)
	}
	return true
}

// RemoveTree removes every record below dir and returns the removed paths.
func (pi *ProjectIndex) RemoveTree(dir string) []string {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	prefix := strings.TrimSuffix(dir, "/") + "/"
	var removed []string
	for _, path := range pi.sortedPaths {
		if strings.HasPrefix(path, prefix) {
			removed = append(removed, path)
		}
	}
	for _, path := range removed {
		pi.remove(path)
	}
	return removed
}

// Get returns a copy of the record for path.
func (pi *ProjectIndex) Get(path string) (FileRecord, bool) {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	record, ok := pi.files[path]
	if !ok {
		return FileRecord{}, false
	}
	return record.clone(), true
}

// Paths returns all tracked record paths in sorted order.
func (pi *ProjectIndex) Paths() []string {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return append([]string(nil), pi.sortedPaths...)
}

// Snapshot returns a deep copy of all records in lexicographic path order.
func (pi *ProjectIndex) Snapshot() Snapshot {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	files := make([]FileRecord, 0, len(pi.sortedPaths))
	for _, path := range pi.sortedPaths {
		if record, ok := pi.files[path]; ok {
			files = append(files, record.clone())
		}
	}
	return Snapshot{Root: pi.root, Files: files, RenderedAt: pi.lastRender}
}

// Len returns the number of records.
func (pi *ProjectIndex) Len() int {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return len(pi.files)
}

// TotalSize returns the summed size of all records.
func (pi *ProjectIndex) TotalSize() int64 {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	var total int64
	for _, record := range pi.files {
		total += record.Size
	}
	return total
}

// SymbolCount returns the number of symbols across all records.
func (pi *ProjectIndex) SymbolCount() int {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	total := 0
	for _, record := range pi.files {
		total += len(record.Symbols)
	}
	return total
}

// LanguageCounts returns a map of language -> record count.
func (pi *ProjectIndex) LanguageCounts() map[string]int {
	pi.mu.RLock()
	defer pi.mu.RUnlock()

	counts := make(map[string]int)
	for _, record := range pi.files {
		counts[record.Language]++
	}
	return counts
}

// MarkRendered stores the time of the last successful render.
func (pi *ProjectIndex) MarkRendered(at time.Time) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.lastRender = at
}

// LastRender returns the time of the last successful render.
func (pi *ProjectIndex) LastRender() time.Time {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return pi.lastRender
}
