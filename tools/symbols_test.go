package tools

import (
	"context"
	"strings"
	"testing"
)

func newTestSymbolsHandler(t *testing.T) (*SymbolsHandler, *fakeProjects) {
	t.Helper()
	projects := &fakeProjects{}
	symbols := newTestSymbolIndex(t)
	newTestProject(t, projects, symbols, map[string]string{"src/server.go": serverSource})
	return &SymbolsHandler{Symbols: symbols, Projects: projects, Logger: testLogger()}, projects
}

func Test_SymbolsHandler_EmptyQuery(t *testing.T) {
	h, _ := newTestSymbolsHandler(t)

	result, _, err := h.Handle(context.Background(), nil, SymbolsArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for empty query")
	}
}

func Test_SymbolsHandler_FindsStruct(t *testing.T) {
	h, _ := newTestSymbolsHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SymbolsArgs{Query: "Server"})
	text := resultText(t, result)
	if !strings.Contains(text, "Found 1 symbols") {
		t.Fatalf("expected exactly the Server struct, got: %s", text)
	}
	if !strings.Contains(text, "struct") || !strings.Contains(text, "src/server.go:6") {
		t.Errorf("expected struct location src/server.go:6, got: %s", text)
	}
}

func Test_SymbolsHandler_WildcardAndKind(t *testing.T) {
	h, _ := newTestSymbolsHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SymbolsArgs{Query: "new*"})
	if text := resultText(t, result); !strings.Contains(text, "NewServer") {
		t.Errorf("expected NewServer for new*, got: %s", text)
	}

	result, _, _ = h.Handle(context.Background(), nil, SymbolsArgs{Query: "start", Kind: "function"})
	if text := resultText(t, result); text != "No symbols matched." {
		t.Errorf("Start is a method, expected no function hits, got: %s", text)
	}

	result, _, _ = h.Handle(context.Background(), nil, SymbolsArgs{Query: "start", Kind: "method"})
	if text := resultText(t, result); !strings.Contains(text, "Start") {
		t.Errorf("expected method Start, got: %s", text)
	}
}

func Test_SymbolsHandler_ProjectFilter(t *testing.T) {
	h, projects := newTestSymbolsHandler(t)
	other := newTestProject(t, projects, h.Symbols, map[string]string{"other.go": "package other\n\ntype Server struct{}\n"})

	result, _, _ := h.Handle(context.Background(), nil, SymbolsArgs{Query: "Server"})
	text := resultText(t, result)
	if !strings.Contains(text, "Found 2 symbols") {
		t.Fatalf("expected hits from both projects, got: %s", text)
	}
	if !strings.Contains(text, other.Root()) {
		t.Errorf("expected project roots in multi-project output, got: %s", text)
	}

	result, _, _ = h.Handle(context.Background(), nil, SymbolsArgs{Query: "Server", Project: other.Root()})
	text = resultText(t, result)
	if !strings.Contains(text, "Found 1 symbols") || !strings.Contains(text, "other.go:3") {
		t.Errorf("expected only the other project's hit, got: %s", text)
	}
}

func Test_SymbolsHandler_UnknownProject(t *testing.T) {
	h, _ := newTestSymbolsHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, SymbolsArgs{Query: "Server", Project: "/no/such/project"})
	if !result.IsError {
		t.Errorf("expected error for unknown project, got: %s", resultText(t, result))
	}
}
