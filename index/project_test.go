package index

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func testExtraction(symbols ...Symbol) Extraction {
	return Extraction{
		Language: "Python",
		Category: CategoryCode,
		Size:     42,
		ModTime:  time.Unix(1700000000, 0),
		Symbols:  symbols,
	}
}

func Test_ProjectIndex_ObserveUnchanged(t *testing.T) {
	pi := NewProjectIndex("/repo")

	status, first := pi.Observe("a.py", []byte("def foo(): pass\n"))
	if status != Changed {
		t.Fatalf("expected first observation to be changed, got %s", status)
	}

	status, second := pi.Observe("a.py", []byte("def foo(): pass\n"))
	if status != Unchanged {
		t.Errorf("expected identical content to be unchanged, got %s", status)
	}
	if first != second {
		t.Errorf("expected identical fingerprints, got %s and %s", first, second)
	}
}

func Test_ProjectIndex_ObserveChanged(t *testing.T) {
	pi := NewProjectIndex("/repo")

	_, first := pi.Observe("a.py", []byte("def foo(): pass\n"))
	status, second := pi.Observe("a.py", []byte("def bar(): pass\n"))
	if status != Changed {
		t.Fatalf("expected changed, got %s", status)
	}
	if first == second {
		t.Error("expected fingerprints to differ")
	}

	// The newer fingerprint is now on record.
	status, _ = pi.Observe("a.py", []byte("def bar(): pass\n"))
	if status != Unchanged {
		t.Errorf("expected unchanged after re-observing, got %s", status)
	}
}

func Test_ProjectIndex_ApplyExtraction(t *testing.T) {
	pi := NewProjectIndex("/repo")
	_, fp := pi.Observe("a.py", []byte("def foo(): pass\n"))

	err := pi.ApplyExtraction("a.py", fp, testExtraction(Symbol{Kind: KindFunction, Name: "foo", StartLine: 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, ok := pi.Get("a.py")
	if !ok {
		t.Fatal("expected a.py to be recorded")
	}
	if record.Fingerprint != fp {
		t.Errorf("expected fingerprint %s, got %s", fp, record.Fingerprint)
	}
	if len(record.Symbols) != 1 || record.Symbols[0].Name != "foo" {
		t.Errorf("expected symbol foo, got %+v", record.Symbols)
	}
	if record.Failed {
		t.Error("expected record not to be failed")
	}
}

func Test_ProjectIndex_ApplyExtractionStale(t *testing.T) {
	pi := NewProjectIndex("/repo")
	_, oldFP := pi.Observe("a.py", []byte("def foo(): pass\n"))
	_, newFP := pi.Observe("a.py", []byte("def bar(): pass\n"))

	err := pi.ApplyExtraction("a.py", oldFP, testExtraction(Symbol{Kind: KindFunction, Name: "foo", StartLine: 1}))
	if !errors.Is(err, ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite, got %v", err)
	}

	var staleErr *StaleWriteError
	if !errors.As(err, &staleErr) {
		t.Fatalf("expected *StaleWriteError, got %T", err)
	}
	if staleErr.Current != newFP {
		t.Errorf("expected current %s, got %s", newFP, staleErr.Current)
	}
	if _, ok := pi.Get("a.py"); ok {
		t.Error("stale result must not be recorded")
	}
}

func Test_ProjectIndex_ApplyExtractionAfterRemove(t *testing.T) {
	pi := NewProjectIndex("/repo")
	_, fp := pi.Observe("a.py", []byte("x = 1\n"))
	pi.Remove("a.py")

	err := pi.ApplyExtraction("a.py", fp, testExtraction())
	if !errors.Is(err, ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite for removed path, got %v", err)
	}
	if pi.Len() != 0 {
		t.Errorf("expected empty index, got %d records", pi.Len())
	}
}

func Test_ProjectIndex_MarkFailedKeepsPreviousSymbols(t *testing.T) {
	pi := NewProjectIndex("/repo")
	_, fp := pi.Observe("a.py", []byte("def foo(): pass\n"))
	if err := pi.ApplyExtraction("a.py", fp, testExtraction(Symbol{Kind: KindFunction, Name: "foo", StartLine: 1})); err != nil {
		t.Fatal(err)
	}

	_, brokenFP := pi.Observe("a.py", []byte("def (\n"))
	if err := pi.MarkFailed("a.py", brokenFP, testExtraction(), fmt.Errorf("parser crashed")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, _ := pi.Get("a.py")
	if !record.Failed {
		t.Error("expected record to be flagged failed")
	}
	if record.FailReason != "parser crashed" {
		t.Errorf("expected fail reason 'parser crashed', got %q", record.FailReason)
	}
	if len(record.Symbols) != 1 || record.Symbols[0].Name != "foo" {
		t.Errorf("expected previous symbols to be retained, got %+v", record.Symbols)
	}
	if record.Fingerprint != brokenFP {
		t.Errorf("expected fingerprint to advance to %s, got %s", brokenFP, record.Fingerprint)
	}
}

func Test_ProjectIndex_MarkFailedPlaceholder(t *testing.T) {
	pi := NewProjectIndex("/repo")
	_, fp := pi.Observe("new.py", []byte("def (\n"))

	if err := pi.MarkFailed("new.py", fp, testExtraction(), nil); err != nil {
		t.Fatal(err)
	}

	record, ok := pi.Get("new.py")
	if !ok {
		t.Fatal("expected placeholder record")
	}
	if !record.Failed || record.FailReason == "" {
		t.Errorf("expected failed placeholder with reason, got %+v", record)
	}
	if len(record.Symbols) != 0 {
		t.Errorf("expected no symbols, got %d", len(record.Symbols))
	}
	if record.Language != "Python" {
		t.Errorf("expected language Python, got %q", record.Language)
	}
}

func Test_ProjectIndex_Remove(t *testing.T) {
	pi := NewProjectIndex("/repo")
	_, fp := pi.Observe("a.py", []byte("x = 1\n"))
	pi.ApplyExtraction("a.py", fp, testExtraction())

	if !pi.Remove("a.py") {
		t.Error("expected Remove to report a tracked path")
	}
	if pi.Remove("a.py") {
		t.Error("expected second Remove to be a no-op")
	}
	if pi.Len() != 0 {
		t.Errorf("expected 0 records, got %d", pi.Len())
	}

	// Same content after removal is a change again.
	status, _ := pi.Observe("a.py", []byte("x = 1\n"))
	if status != Changed {
		t.Errorf("expected changed after removal, got %s", status)
	}
}

func Test_ProjectIndex_RemoveTree(t *testing.T) {
	pi := NewProjectIndex("/repo")
	for _, path := range []string{"pkg/a.go", "pkg/sub/b.go", "pkgx/c.go", "main.go"} {
		_, fp := pi.Observe(path, []byte(path))
		pi.ApplyExtraction(path, fp, testExtraction())
	}

	removed := pi.RemoveTree("pkg")
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed paths, got %v", removed)
	}

	paths := pi.Paths()
	expected := []string{"main.go", "pkgx/c.go"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, paths)
	}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Errorf("paths[%d]: expected %s, got %s", i, expected[i], paths[i])
		}
	}
}

func Test_ProjectIndex_SnapshotSortedAndDetached(t *testing.T) {
	pi := NewProjectIndex("/repo")
	for _, path := range []string{"z.py", "a.py", "m/b.py"} {
		_, fp := pi.Observe(path, []byte(path))
		pi.ApplyExtraction(path, fp, testExtraction(Symbol{Kind: KindFunction, Name: "f", StartLine: 1}))
	}

	snapshot := pi.Snapshot()
	if snapshot.Root != "/repo" {
		t.Errorf("expected root /repo, got %s", snapshot.Root)
	}
	expected := []string{"a.py", "m/b.py", "z.py"}
	for i, record := range snapshot.Files {
		if record.Path != expected[i] {
			t.Errorf("files[%d]: expected %s, got %s", i, expected[i], record.Path)
		}
	}

	snapshot.Files[0].Symbols[0].Name = "mutated"
	record, _ := pi.Get("a.py")
	if record.Symbols[0].Name != "f" {
		t.Error("mutating a snapshot must not affect the index")
	}
}

func Test_ProjectIndex_Stats(t *testing.T) {
	pi := NewProjectIndex("/repo")
	_, fp := pi.Observe("a.py", []byte("a"))
	pi.ApplyExtraction("a.py", fp, testExtraction(
		Symbol{Kind: KindFunction, Name: "f", StartLine: 1},
		Symbol{Kind: KindClass, Name: "C", StartLine: 3},
	))
	_, fp = pi.Observe("b.go", []byte("b"))
	pi.ApplyExtraction("b.go", fp, Extraction{Language: "Go", Size: 8})

	if got := pi.TotalSize(); got != 50 {
		t.Errorf("expected total size 50, got %d", got)
	}
	if got := pi.SymbolCount(); got != 2 {
		t.Errorf("expected 2 symbols, got %d", got)
	}
	counts := pi.LanguageCounts()
	if counts["Python"] != 1 || counts["Go"] != 1 {
		t.Errorf("unexpected language counts: %v", counts)
	}

	at := time.Unix(1700000100, 0)
	pi.MarkRendered(at)
	if !pi.LastRender().Equal(at) {
		t.Errorf("expected last render %v, got %v", at, pi.LastRender())
	}
}

func Test_Fingerprint_Compute(t *testing.T) {
	fp := Compute([]byte("hello"))
	if len(fp) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(fp))
	}
	if fp != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("unexpected fingerprint %s", fp)
	}
	if fp.Short() != "2cf24dba5fb0" {
		t.Errorf("unexpected short form %s", fp.Short())
	}
}
