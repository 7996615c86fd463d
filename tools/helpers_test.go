package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codemap/config"
	"github.com/lexandro/codemap/index"
	"github.com/lexandro/codemap/project"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProjects serves coordinators that were scanned but never started.
type fakeProjects struct {
	coordinators map[string]*project.Coordinator
}

func (f *fakeProjects) Roots() []string {
	roots := make([]string, 0, len(f.coordinators))
	for root := range f.coordinators {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

func (f *fakeProjects) Get(root string) (*project.Coordinator, bool) {
	c, ok := f.coordinators[root]
	return c, ok
}

func (f *fakeProjects) Lookup(path string) (*project.Coordinator, bool) {
	for root, c := range f.coordinators {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return c, true
		}
	}
	return nil, false
}

func (f *fakeProjects) Status() []project.Status {
	var statuses []project.Status
	for _, root := range f.Roots() {
		statuses = append(statuses, f.coordinators[root].Status())
	}
	return statuses
}

func (f *fakeProjects) Reindex(ctx context.Context, root string) (project.ScanResult, error) {
	c, ok := f.coordinators[root]
	if !ok {
		return project.ScanResult{}, fmt.Errorf("unknown project %s", root)
	}
	return c.Reindex(ctx)
}

func newTestSymbolIndex(t *testing.T) *index.SymbolIndex {
	t.Helper()
	si, err := index.NewSymbolIndex()
	if err != nil {
		t.Fatalf("failed to create symbol index: %v", err)
	}
	t.Cleanup(func() { si.Close() })
	return si
}

// newTestProject writes files into a fresh root and scans it.
func newTestProject(t *testing.T, projects *fakeProjects, symbols *index.SymbolIndex, files map[string]string) *project.Coordinator {
	t.Helper()
	root := t.TempDir()
	for relativePath, content := range files {
		path := filepath.Join(root, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	c, err := project.New(config.Default().NewProject(root), project.Options{
		Logger:  testLogger(),
		Symbols: symbols,
		Workers: 2,
	})
	if err != nil {
		t.Fatalf("failed to create coordinator: %v", err)
	}
	c.Scan(context.Background())

	if projects.coordinators == nil {
		projects.coordinators = make(map[string]*project.Coordinator)
	}
	projects.coordinators[c.Root()] = c
	return c
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	return result.Content[0].(*mcp.TextContent).Text
}

const serverSource = `package server

import "net/http"

// Server answers requests.
type Server struct {
	addr string
}

// Start listens on the configured address.
func (s *Server) Start() error {
	return http.ListenAndServe(s.addr, nil)
}

func NewServer(addr string) *Server {
	return &Server{addr: addr}
}
`
