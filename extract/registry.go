package extract

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry maps lowercase file extensions to extractors. New languages are
// added by registering another Extractor.
type Registry struct {
	mu          sync.RWMutex
	byExtension map[string]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExtension: make(map[string]Extractor)}
}

// Register binds e to every given extension (with or without the dot).
// A later registration for the same extension replaces the earlier one.
func (r *Registry) Register(e Extractor, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.byExtension[ext] = e
	}
}

// ForPath returns the extractor registered for the extension of path.
func (r *Registry) ForPath(path string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byExtension[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Languages returns the distinct languages of the registered extractors.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var langs []string
	for _, e := range r.byExtension {
		if !seen[e.Language()] {
			seen[e.Language()] = true
			langs = append(langs, e.Language())
		}
	}
	sort.Strings(langs)
	return langs
}

// DefaultRegistry returns a registry with every built-in extractor.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGoExtractor(), ".go")
	r.Register(NewAHKExtractor(), ".ahk", ".ah2")
	r.Register(newTreeSitterExtractor(pythonGrammar), ".py", ".pyi", ".pyw")
	r.Register(newTreeSitterExtractor(javascriptGrammar), ".js", ".jsx", ".mjs", ".cjs")
	r.Register(newTreeSitterExtractor(typescriptGrammar), ".ts", ".mts", ".cts")
	r.Register(newTreeSitterExtractor(tsxGrammar), ".tsx")
	r.Register(newTreeSitterExtractor(rustGrammar), ".rs")
	r.Register(newTreeSitterExtractor(javaGrammar), ".java")
	r.Register(newTreeSitterExtractor(cGrammar), ".c", ".h")
	r.Register(newTreeSitterExtractor(cppGrammar), ".cpp", ".cc", ".cxx", ".hpp", ".hxx", ".hh")
	r.Register(newTreeSitterExtractor(rubyGrammar), ".rb", ".rake")
	r.Register(newTreeSitterExtractor(phpGrammar), ".php")
	return r
}
