package extract

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/lexandro/codemap/index"
)

// nodeRule describes how one syntax node type becomes a symbol.
type nodeRule struct {
	kind      index.SymbolKind
	nameField string // field holding the name; declarator chains are followed
	needsBody bool   // skip forward declarations and type references
	// valueTypes restricts the rule to nodes whose "value" field has one of
	// these types (const handler = () => {}).
	valueTypes []string
	// refine picks a more precise kind from the type of the "type" field.
	refine map[string]index.SymbolKind
}

// grammar is the per-language table driving the generic tree-sitter walk.
type grammar struct {
	name     string
	language func() *sitter.Language
	symbols  map[string]nodeRule
	// imports maps node types to the field holding the imported path;
	// an empty field means the whole statement.
	imports map[string]string
	// containers are node types whose nested functions become methods.
	containers map[string]bool
	docstrings bool
}

// TreeSitterExtractor extracts symbols by walking a tree-sitter syntax tree.
type TreeSitterExtractor struct {
	grammar  *grammar
	once     sync.Once
	language *sitter.Language
}

func newTreeSitterExtractor(g *grammar) *TreeSitterExtractor {
	return &TreeSitterExtractor{grammar: g}
}

func (e *TreeSitterExtractor) Language() string {
	return e.grammar.name
}

func (e *TreeSitterExtractor) Extract(path string, content []byte) []index.Symbol {
	e.once.Do(func() {
		e.language = e.grammar.language()
	})

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.language)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	w := &walker{grammar: e.grammar, src: content}
	w.walk(tree.RootNode(), false)
	return w.symbols
}

type walker struct {
	grammar *grammar
	src     []byte
	symbols []index.Symbol
}

func (w *walker) walk(node *sitter.Node, inContainer bool) {
	if node == nil {
		return
	}
	nodeType := node.Type()

	if field, ok := w.grammar.imports[nodeType]; ok {
		w.addImport(node, field)
		return
	}

	if rule, ok := w.grammar.symbols[nodeType]; ok {
		if kind, added := w.addSymbol(node, rule, inContainer); added {
			// Function bodies are not descended into; nested helpers are noise.
			if kind == index.KindFunction || kind == index.KindMethod {
				return
			}
		}
	}

	childInContainer := inContainer || w.grammar.containers[nodeType]
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		w.walk(node.NamedChild(i), childInContainer)
	}
}

func (w *walker) addSymbol(node *sitter.Node, rule nodeRule, inContainer bool) (index.SymbolKind, bool) {
	if rule.needsBody && node.ChildByFieldName("body") == nil {
		return "", false
	}

	var value *sitter.Node
	if len(rule.valueTypes) > 0 {
		value = node.ChildByFieldName("value")
		if value == nil || !containsString(rule.valueTypes, value.Type()) {
			return "", false
		}
	}

	name := w.nameOf(node, rule.nameField)
	if name == "" {
		return "", false
	}

	kind := rule.kind
	if rule.refine != nil {
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			if refined, ok := rule.refine[typeNode.Type()]; ok {
				kind = refined
			}
		}
	}
	if kind == index.KindFunction && inContainer {
		kind = index.KindMethod
	}

	signature := ""
	if value != nil {
		signature = name + w.parameters(value)
	} else {
		signature = w.signature(node)
	}

	w.symbols = append(w.symbols, index.Symbol{
		Kind:      kind,
		Name:      name,
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		Signature: signature,
		Doc:       w.doc(node),
	})
	return kind, true
}

func (w *walker) addImport(node *sitter.Node, field string) {
	target := node
	if field != "" {
		target = node.ChildByFieldName(field)
		if target == nil {
			return
		}
	}
	name := summarize(target.Content(w.src))
	name = strings.TrimSuffix(name, ";")
	if field != "" {
		name = strings.Trim(name, "\"'`")
	} else {
		name = strings.TrimPrefix(strings.TrimPrefix(name, "import "), "use ")
	}
	if name == "" {
		return
	}
	w.symbols = append(w.symbols, index.Symbol{
		Kind:      index.KindImport,
		Name:      name,
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
	})
}

// nameOf reads the name from field, descending through nested declarators
// (C function and pointer declarators).
func (w *walker) nameOf(node *sitter.Node, field string) string {
	target := node.ChildByFieldName(field)
	for target != nil {
		inner := target.ChildByFieldName("declarator")
		if inner == nil {
			break
		}
		target = inner
	}
	if target == nil {
		return ""
	}
	name := strings.TrimSpace(target.Content(w.src))
	if name == "" || strings.ContainsAny(name, "\n{;") {
		return ""
	}
	return name
}

// signature is the source text of node up to its body, on one line.
func (w *walker) signature(node *sitter.Node) string {
	start, end := node.StartByte(), node.EndByte()
	if body := node.ChildByFieldName("body"); body != nil && body.StartByte() >= start {
		end = body.StartByte()
	}
	text := string(w.src[start:end])
	if node.ChildByFieldName("body") == nil {
		text = strings.SplitN(text, "\n", 2)[0]
	}
	text = summarize(text)
	return strings.TrimSpace(strings.TrimRight(text, "{:;= "))
}

func (w *walker) parameters(fn *sitter.Node) string {
	if params := fn.ChildByFieldName("parameters"); params != nil {
		return summarize(params.Content(w.src))
	}
	if param := fn.ChildByFieldName("parameter"); param != nil {
		return "(" + summarize(param.Content(w.src)) + ")"
	}
	return "()"
}

// doc returns the first line of a docstring or of the comment directly
// above node.
func (w *walker) doc(node *sitter.Node) string {
	if w.grammar.docstrings {
		if doc := w.docstring(node); doc != "" {
			return doc
		}
	}
	prev := node.PrevNamedSibling()
	if prev == nil || !strings.Contains(prev.Type(), "comment") {
		return ""
	}
	if prev.EndPoint().Row+1 < node.StartPoint().Row {
		return ""
	}
	return firstLine(stripCommentMarkers(prev.Content(w.src)))
}

// docstring reads a leading string literal in the body (Python).
func (w *walker) docstring(node *sitter.Node) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Type() != "string" {
		return ""
	}
	text := strings.TrimLeft(str.Content(w.src), "rRuUbBfF")
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, quote) && strings.HasSuffix(text, quote) && len(text) >= 2*len(quote) {
			text = text[len(quote) : len(text)-len(quote)]
			break
		}
	}
	return firstLine(text)
}

func stripCommentMarkers(comment string) string {
	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimLeft(line, "/#*!")
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
