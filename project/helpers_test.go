package project

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lexandro/codemap/config"
	"github.com/lexandro/codemap/extract"
	"github.com/lexandro/codemap/index"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingExtractor reports one function per "def name(" line and counts
// how often it runs.
type countingExtractor struct {
	calls atomic.Int32
}

func (e *countingExtractor) Language() string { return "Python" }

func (e *countingExtractor) Extract(path string, content []byte) []index.Symbol {
	e.calls.Add(1)
	var symbols []index.Symbol
	for i, line := range strings.Split(string(content), "\n") {
		if !strings.HasPrefix(line, "def ") {
			continue
		}
		name := strings.TrimPrefix(line, "def ")
		if paren := strings.Index(name, "("); paren >= 0 {
			name = name[:paren]
		}
		symbols = append(symbols, index.Symbol{Kind: index.KindFunction, Name: name, StartLine: i + 1, EndLine: i + 2})
	}
	return symbols
}

type panickingExtractor struct{}

func (panickingExtractor) Language() string { return "Boom" }

func (panickingExtractor) Extract(path string, content []byte) []index.Symbol {
	panic("grammar exploded")
}

func testProject(t *testing.T, root string) config.Project {
	t.Helper()
	cfg := config.Default().NewProject(root)
	cfg.UpdateDelay = 0.05
	return cfg
}

func newTestCoordinator(t *testing.T, cfg config.Project) (*Coordinator, *countingExtractor) {
	t.Helper()
	extractor := &countingExtractor{}
	registry := extract.NewRegistry()
	registry.Register(extractor, ".py")
	registry.Register(panickingExtractor{}, ".boom")

	c, err := New(cfg, Options{Logger: testLogger(), Registry: registry, Workers: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, extractor
}

func writeFile(t *testing.T, root, relativePath, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readDocument(t *testing.T, c *Coordinator) string {
	t.Helper()
	data, err := os.ReadFile(c.Config().OutputPath())
	if err != nil {
		t.Fatalf("reading document: %v", err)
	}
	return string(data)
}
