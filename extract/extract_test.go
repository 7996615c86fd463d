package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexandro/codemap/index"
)

func findSymbol(t *testing.T, symbols []index.Symbol, name string) index.Symbol {
	t.Helper()
	for _, sym := range symbols {
		if sym.Name == name {
			return sym
		}
	}
	t.Fatalf("symbol %q not found in %+v", name, symbols)
	return index.Symbol{}
}

type panickingExtractor struct{}

func (panickingExtractor) Language() string { return "Broken" }
func (panickingExtractor) Extract(string, []byte) []index.Symbol {
	panic("boom")
}

type countingExtractor struct {
	calls int
}

func (c *countingExtractor) Language() string { return "Counting" }
func (c *countingExtractor) Extract(string, []byte) []index.Symbol {
	c.calls++
	return []index.Symbol{{Kind: index.KindFunction, Name: "f", StartLine: 1}}
}

func Test_Run_RecoversPanic(t *testing.T) {
	symbols, err := Run(panickingExtractor{}, "a.broken", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Nil(t, symbols)
}

func Test_Normalize_SortsAndDeduplicates(t *testing.T) {
	symbols := Normalize([]index.Symbol{
		{Kind: index.KindFunction, Name: "b", StartLine: 5},
		{Kind: index.KindFunction, Name: "a", StartLine: 5},
		{Kind: index.KindImport, Name: "os", StartLine: 1},
		{Kind: index.KindFunction, Name: "a", StartLine: 5},
		{Kind: index.KindFunction, Name: " ", StartLine: 2},
	})

	require.Len(t, symbols, 3)
	assert.Equal(t, "os", symbols[0].Name)
	assert.Equal(t, "a", symbols[1].Name)
	assert.Equal(t, "b", symbols[2].Name)
	assert.Nil(t, Normalize(nil))
}

func Test_Describe(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"go package comment", "// Package foo does things.\npackage foo\n", "Package foo does things."},
		{"python hash comment", "# Utilities for parsing.\nimport os\n", "Utilities for parsing."},
		{"shebang skipped", "#!/usr/bin/env python\n# Entry point.\n", "Entry point."},
		{"docstring", "\"\"\"Models for the app.\"\"\"\n", "Models for the app."},
		{"block comment", "/* Core widgets */\n", "Core widgets"},
		{"no comment", "package foo\n", ""},
		{"c include is not a comment", "#include <stdio.h>\n", ""},
		{"leading blank lines", "\n\n// Later.\n", "Later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe([]byte(tt.content)))
		})
	}
}

func Test_Registry_ForPath(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		path     string
		language string
	}{
		{"main.go", "Go"},
		{"app/models.py", "Python"},
		{"web/App.TSX", "TSX"},
		{"lib/index.ts", "TypeScript"},
		{"src/lib.rs", "Rust"},
		{"include/point.h", "C"},
		{"src/point.cpp", "C++"},
		{"scripts/keys.ahk", "AutoHotkey"},
	}
	for _, tt := range tests {
		e, ok := registry.ForPath(tt.path)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.language, e.Language(), tt.path)
	}

	_, ok := registry.ForPath("README.md")
	assert.False(t, ok)
	assert.Contains(t, registry.Languages(), "Python")
	assert.Contains(t, registry.Extensions(), ".py")
}

func Test_Registry_RegisterReplaces(t *testing.T) {
	registry := NewRegistry()
	first := &countingExtractor{}
	registry.Register(first, "x")
	registry.Register(panickingExtractor{}, ".X")

	e, ok := registry.ForPath("file.x")
	require.True(t, ok)
	assert.Equal(t, "Broken", e.Language())
}

func Test_Cache_SkipsRepeatedExtraction(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)
	extractor := &countingExtractor{}
	fp := index.Compute([]byte("content"))

	first, err := cache.Extract(extractor, fp, "a.x", []byte("content"))
	require.NoError(t, err)
	second, err := cache.Extract(extractor, fp, "b.x", []byte("content"))
	require.NoError(t, err)

	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}

func Test_Cache_DoesNotCacheFailures(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)

	_, err = cache.Extract(panickingExtractor{}, index.Compute([]byte("x")), "a.broken", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}
