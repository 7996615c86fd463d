package index

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SymbolIndex provides name search over the symbols of every monitored project
// using an in-memory Bleve index. Documents are keyed per file so a
// re-extraction replaces all of a file's symbols at once.
type SymbolIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	// docIDs tracks the Bleve document IDs indexed for each project file.
	docIDs map[string][]string // key: fileKey(project, path)
}

// symbolDocument is the document structure stored in Bleve.
type symbolDocument struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Path      string  `json:"path"`
	Project   string  `json:"project"`
	Signature string  `json:"signature"`
	StartLine float64 `json:"start_line"`
	EndLine   float64 `json:"end_line"`
}

// SymbolHit is one search result.
type SymbolHit struct {
	Project string
	Path    string
	Symbol  Symbol
	Score   float64
}

// SymbolSearchOptions configures a symbol search.
type SymbolSearchOptions struct {
	Query      string
	Kind       string // exact kind filter, optional
	Project    string // exact project root filter, optional
	MaxResults int
}

// NewSymbolIndex creates an empty in-memory symbol index.
func NewSymbolIndex() (*SymbolIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildSymbolMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &SymbolIndex{
		index:  bleveIndex,
		docIDs: make(map[string][]string),
	}, nil
}

func buildSymbolMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	nameField := bleve.NewTextFieldMapping()
	nameField.Store = true
	nameField.IncludeInAll = true
	docMapping.AddFieldMappingsAt("name", nameField)

	for _, keyword := range []string{"kind", "path", "project"} {
		field := bleve.NewKeywordFieldMapping()
		field.Store = true
		field.IncludeInAll = false
		docMapping.AddFieldMappingsAt(keyword, field)
	}

	signatureField := bleve.NewTextFieldMapping()
	signatureField.Store = true
	signatureField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("signature", signatureField)

	for _, numeric := range []string{"start_line", "end_line"} {
		field := bleve.NewNumericFieldMapping()
		field.Store = true
		field.IncludeInAll = false
		docMapping.AddFieldMappingsAt(numeric, field)
	}

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func fileKey(project, path string) string {
	return project + "\x00" + path
}

// ReplaceFile swaps all indexed symbols of one file for the given list.
func (si *SymbolIndex) ReplaceFile(project, path string, symbols []Symbol) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	key := fileKey(project, path)
	batch := si.index.NewBatch()
	for _, id := range si.docIDs[key] {
		batch.Delete(id)
	}

	ids := make([]string, 0, len(symbols))
	for i, sym := range symbols {
		id := fmt.Sprintf("%s\x00%d", key, i)
		doc := symbolDocument{
			Name:      sym.Name,
			Kind:      string(sym.Kind),
			Path:      path,
			Project:   project,
			Signature: sym.Signature,
			StartLine: float64(sym.StartLine),
			EndLine:   float64(sym.EndLine),
		}
		if err := batch.Index(id, doc); err != nil {
			return fmt.Errorf("indexing symbol %s in %s: %w", sym.Name, path, err)
		}
		ids = append(ids, id)
	}

	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("updating symbols of %s: %w", path, err)
	}
	if len(ids) == 0 {
		delete(si.docIDs, key)
	} else {
		si.docIDs[key] = ids
	}
	return nil
}

// RemoveFile drops every symbol of one file.
func (si *SymbolIndex) RemoveFile(project, path string) error {
	return si.ReplaceFile(project, path, nil)
}

// RemoveProject drops every symbol belonging to project.
func (si *SymbolIndex) RemoveProject(project string) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	prefix := project + "\x00"
	batch := si.index.NewBatch()
	for key, ids := range si.docIDs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, id := range ids {
			batch.Delete(id)
		}
		delete(si.docIDs, key)
	}
	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("removing symbols of %s: %w", project, err)
	}
	return nil
}

// Search finds symbols whose name matches the query.
// Query format:
//   - contains * or ?: wildcard match on the name
//   - otherwise: word match or prefix match on the name
func (si *SymbolIndex) Search(options SymbolSearchOptions) ([]SymbolHit, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	queryString := strings.TrimSpace(options.Query)
	if queryString == "" {
		return nil, fmt.Errorf("empty symbol query")
	}

	conjuncts := []query.Query{buildNameQuery(queryString)}
	if options.Kind != "" {
		kindQuery := bleve.NewTermQuery(options.Kind)
		kindQuery.SetField("kind")
		conjuncts = append(conjuncts, kindQuery)
	}
	if options.Project != "" {
		projectQuery := bleve.NewTermQuery(options.Project)
		projectQuery.SetField("project")
		conjuncts = append(conjuncts, projectQuery)
	}

	searchRequest := bleve.NewSearchRequest(bleve.NewConjunctionQuery(conjuncts...))
	searchRequest.Size = options.MaxResults
	searchRequest.Fields = []string{"name", "kind", "path", "project", "signature", "start_line", "end_line"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("searching symbols: %w", err)
	}

	hits := make([]SymbolHit, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		hits = append(hits, SymbolHit{
			Project: stringField(hit.Fields, "project"),
			Path:    stringField(hit.Fields, "path"),
			Score:   hit.Score,
			Symbol: Symbol{
				Kind:      SymbolKind(stringField(hit.Fields, "kind")),
				Name:      stringField(hit.Fields, "name"),
				Signature: stringField(hit.Fields, "signature"),
				StartLine: intField(hit.Fields, "start_line"),
				EndLine:   intField(hit.Fields, "end_line"),
			},
		})
	}
	return hits, nil
}

// buildNameQuery parses the query string into a Bleve query on the name field.
func buildNameQuery(queryString string) query.Query {
	lower := strings.ToLower(queryString)

	if strings.ContainsAny(queryString, "*?") {
		wildcard := bleve.NewWildcardQuery(lower)
		wildcard.SetField("name")
		return wildcard
	}

	match := bleve.NewMatchQuery(queryString)
	match.SetField("name")
	prefix := bleve.NewPrefixQuery(lower)
	prefix.SetField("name")
	return bleve.NewDisjunctionQuery(match, prefix)
}

func stringField(fields map[string]interface{}, name string) string {
	if value, ok := fields[name].(string); ok {
		return value
	}
	return ""
}

func intField(fields map[string]interface{}, name string) int {
	if value, ok := fields[name].(float64); ok {
		return int(value)
	}
	return 0
}

// DocumentCount returns the number of symbols in the index.
func (si *SymbolIndex) DocumentCount() uint64 {
	si.mu.RLock()
	defer si.mu.RUnlock()
	count, _ := si.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (si *SymbolIndex) Close() error {
	si.mu.Lock()
	defer si.mu.Unlock()
	return si.index.Close()
}
