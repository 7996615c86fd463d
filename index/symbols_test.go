package index

import (
	"testing"
)

func newTestSymbolIndex(t *testing.T) *SymbolIndex {
	t.Helper()
	si, err := NewSymbolIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { si.Close() })
	return si
}

func Test_SymbolIndex_ReplaceAndSearch(t *testing.T) {
	si := newTestSymbolIndex(t)

	err := si.ReplaceFile("/repo", "server.go", []Symbol{
		{Kind: KindFunction, Name: "handleRequest", StartLine: 10, EndLine: 20, Signature: "func handleRequest(w, r)"},
		{Kind: KindStruct, Name: "Server", StartLine: 3, EndLine: 8},
	})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := si.Search(SymbolSearchOptions{Query: "Server"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	hit := hits[0]
	if hit.Path != "server.go" || hit.Project != "/repo" {
		t.Errorf("unexpected hit location: %+v", hit)
	}
	if hit.Symbol.Kind != KindStruct || hit.Symbol.StartLine != 3 || hit.Symbol.EndLine != 8 {
		t.Errorf("unexpected hit symbol: %+v", hit.Symbol)
	}
}

func Test_SymbolIndex_PrefixSearch(t *testing.T) {
	si := newTestSymbolIndex(t)
	si.ReplaceFile("/repo", "a.py", []Symbol{
		{Kind: KindFunction, Name: "parse_config", StartLine: 1},
		{Kind: KindFunction, Name: "render", StartLine: 5},
	})

	hits, err := si.Search(SymbolSearchOptions{Query: "pars"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Symbol.Name != "parse_config" {
		t.Errorf("expected parse_config, got %+v", hits)
	}
}

func Test_SymbolIndex_WildcardSearch(t *testing.T) {
	si := newTestSymbolIndex(t)
	si.ReplaceFile("/repo", "a.go", []Symbol{
		{Kind: KindFunction, Name: "NewServer", StartLine: 1},
		{Kind: KindFunction, Name: "NewClient", StartLine: 5},
		{Kind: KindFunction, Name: "Close", StartLine: 9},
	})

	hits, err := si.Search(SymbolSearchOptions{Query: "new*"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits for new*, got %d", len(hits))
	}
}

func Test_SymbolIndex_KindAndProjectFilters(t *testing.T) {
	si := newTestSymbolIndex(t)
	si.ReplaceFile("/one", "a.py", []Symbol{
		{Kind: KindClass, Name: "Widget", StartLine: 1},
		{Kind: KindFunction, Name: "widget", StartLine: 9},
	})
	si.ReplaceFile("/two", "b.py", []Symbol{
		{Kind: KindClass, Name: "Widget", StartLine: 1},
	})

	hits, err := si.Search(SymbolSearchOptions{Query: "widget", Kind: "class"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 class hits, got %d", len(hits))
	}

	hits, err = si.Search(SymbolSearchOptions{Query: "widget", Project: "/two"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Project != "/two" {
		t.Errorf("expected only /two hit, got %+v", hits)
	}
}

func Test_SymbolIndex_ReplaceDropsOldSymbols(t *testing.T) {
	si := newTestSymbolIndex(t)
	si.ReplaceFile("/repo", "a.py", []Symbol{{Kind: KindFunction, Name: "foo", StartLine: 1}})
	si.ReplaceFile("/repo", "a.py", []Symbol{{Kind: KindFunction, Name: "bar", StartLine: 1}})

	hits, _ := si.Search(SymbolSearchOptions{Query: "foo"})
	if len(hits) != 0 {
		t.Errorf("expected foo to be gone, got %+v", hits)
	}
	hits, _ = si.Search(SymbolSearchOptions{Query: "bar"})
	if len(hits) != 1 {
		t.Errorf("expected bar, got %+v", hits)
	}
	if si.DocumentCount() != 1 {
		t.Errorf("expected 1 document, got %d", si.DocumentCount())
	}
}

func Test_SymbolIndex_RemoveFileAndProject(t *testing.T) {
	si := newTestSymbolIndex(t)
	si.ReplaceFile("/one", "a.py", []Symbol{{Kind: KindFunction, Name: "alpha", StartLine: 1}})
	si.ReplaceFile("/one", "b.py", []Symbol{{Kind: KindFunction, Name: "beta", StartLine: 1}})
	si.ReplaceFile("/two", "c.py", []Symbol{{Kind: KindFunction, Name: "gamma", StartLine: 1}})

	if err := si.RemoveFile("/one", "a.py"); err != nil {
		t.Fatal(err)
	}
	if si.DocumentCount() != 2 {
		t.Errorf("expected 2 documents, got %d", si.DocumentCount())
	}

	if err := si.RemoveProject("/one"); err != nil {
		t.Fatal(err)
	}
	if si.DocumentCount() != 1 {
		t.Errorf("expected 1 document, got %d", si.DocumentCount())
	}
	hits, _ := si.Search(SymbolSearchOptions{Query: "gamma"})
	if len(hits) != 1 {
		t.Errorf("expected gamma to survive, got %+v", hits)
	}
}

func Test_SymbolIndex_EmptyQuery(t *testing.T) {
	si := newTestSymbolIndex(t)
	if _, err := si.Search(SymbolSearchOptions{Query: "  "}); err == nil {
		t.Error("expected error for empty query")
	}
}
