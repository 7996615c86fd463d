package tools

import (
	"strings"
	"testing"

	"github.com/lexandro/codemap/index"
)

func Test_FormatFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{-1, "0 B"},
		{0, "0 B"},
		{512, "512 B"},
		{1000, "1.0 kB"},
		{1500000, "1.5 MB"},
	}
	for _, tt := range tests {
		if got := formatFileSize(tt.bytes); got != tt.expected {
			t.Errorf("formatFileSize(%d) = %q, want %q", tt.bytes, got, tt.expected)
		}
	}
}

func Test_FormatSymbolHits(t *testing.T) {
	if got := FormatSymbolHits(nil, false); got != "No symbols matched." {
		t.Errorf("unexpected empty output: %q", got)
	}

	hits := []index.SymbolHit{
		{Project: "/repo", Path: "a.go", Symbol: index.Symbol{Kind: index.KindFunction, Name: "run", Signature: "func run() error", StartLine: 4}},
		{Project: "/repo", Path: "b.py", Symbol: index.Symbol{Kind: index.KindClass, Name: "Widget", StartLine: 1}},
	}

	single := FormatSymbolHits(hits, false)
	if !strings.HasPrefix(single, "Found 2 symbols:") {
		t.Errorf("expected header, got: %s", single)
	}
	if !strings.Contains(single, "func run() error  a.go:4") {
		t.Errorf("expected signature and location, got: %s", single)
	}
	if !strings.Contains(single, "Widget  b.py:1") {
		t.Errorf("expected name fallback, got: %s", single)
	}
	if strings.Contains(single, "/repo") {
		t.Errorf("single-project output must omit the root, got: %s", single)
	}

	if multi := FormatSymbolHits(hits, true); !strings.Contains(multi, "/repo a.go:4") {
		t.Errorf("expected project root in multi-project output, got: %s", multi)
	}
}

func Test_FormatOutline(t *testing.T) {
	record := index.FileRecord{
		Path:        "app.py",
		Language:    "Python",
		Size:        512,
		Description: "Application entry point",
		Symbols: []index.Symbol{
			{Kind: index.KindFunction, Name: "main", StartLine: 3, EndLine: 9, Doc: "Runs the app"},
			{Kind: index.KindClass, Name: "App", StartLine: 12, EndLine: 12},
		},
	}

	got := FormatOutline(record)
	expected := "── app.py (Python, 512 B) ──\n" +
		"Application entry point\n" +
		" 3-9│ function main - Runs the app\n" +
		"12│ class App\n"
	if got != expected {
		t.Errorf("unexpected outline:\n%s\nwant:\n%s", got, expected)
	}
}

func Test_FormatOutline_FailedWithoutSymbols(t *testing.T) {
	record := index.FileRecord{Path: "bad.go", Language: "Go", Failed: true, FailReason: "parser crashed"}

	got := FormatOutline(record)
	if !strings.Contains(got, "extraction failed: parser crashed") {
		t.Errorf("expected failure line, got: %s", got)
	}
	if !strings.HasSuffix(got, "(no symbols)\n") {
		t.Errorf("expected no-symbols marker, got: %s", got)
	}
}
