package extract

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"

	"github.com/lexandro/codemap/index"
)

// GoExtractor extracts Go symbols with go/ast. Files that go/parser cannot
// turn into any syntax tree are handed to the tree-sitter Go grammar, which
// recovers from errors more aggressively.
type GoExtractor struct {
	fallback *TreeSitterExtractor
}

func NewGoExtractor() *GoExtractor {
	return &GoExtractor{fallback: newTreeSitterExtractor(goFallbackGrammar)}
}

func (e *GoExtractor) Language() string {
	return "Go"
}

func (e *GoExtractor) Extract(path string, content []byte) []index.Symbol {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, parser.ParseComments|parser.SkipObjectResolution)
	if file == nil || (err != nil && len(file.Decls) == 0 && len(file.Imports) == 0) {
		return e.fallback.Extract(path, content)
	}

	var symbols []index.Symbol
	for _, imp := range file.Imports {
		start, end := lineSpan(fset, imp)
		symbols = append(symbols, index.Symbol{
			Kind:      index.KindImport,
			Name:      strings.Trim(imp.Path.Value, "`\""),
			StartLine: start,
			EndLine:   end,
		})
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Name == nil {
				continue
			}
			kind := index.KindFunction
			if d.Recv != nil && len(d.Recv.List) > 0 {
				kind = index.KindMethod
			}
			start, end := lineSpan(fset, d)
			symbols = append(symbols, index.Symbol{
				Kind:      kind,
				Name:      d.Name.Name,
				StartLine: start,
				EndLine:   end,
				Signature: functionSignature(d),
				Doc:       docSummary(d.Doc),
			})
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok || typeSpec.Name == nil {
					continue
				}
				doc := typeSpec.Doc
				if doc == nil && len(d.Specs) == 1 {
					doc = d.Doc
				}
				start, end := lineSpan(fset, typeSpec)
				symbols = append(symbols, index.Symbol{
					Kind:      typeKind(typeSpec),
					Name:      typeSpec.Name.Name,
					StartLine: start,
					EndLine:   end,
					Signature: typeSignature(typeSpec),
					Doc:       docSummary(doc),
				})
			}
		}
	}
	return symbols
}

func lineSpan(fset *token.FileSet, node ast.Node) (int, int) {
	return fset.Position(node.Pos()).Line, fset.Position(node.End()).Line
}

func typeKind(spec *ast.TypeSpec) index.SymbolKind {
	switch spec.Type.(type) {
	case *ast.StructType:
		return index.KindStruct
	case *ast.InterfaceType:
		return index.KindInterface
	}
	return index.KindType
}

func docSummary(group *ast.CommentGroup) string {
	if group == nil {
		return ""
	}
	return firstLine(group.Text())
}

func functionSignature(fn *ast.FuncDecl) string {
	var builder strings.Builder
	builder.WriteString("func ")
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		builder.WriteString("(")
		builder.WriteString(fieldString(fn.Recv.List[0]))
		builder.WriteString(") ")
	}
	builder.WriteString(fn.Name.Name)
	if fn.Type.TypeParams != nil && len(fn.Type.TypeParams.List) > 0 {
		builder.WriteString("[")
		builder.WriteString(fieldListString(fn.Type.TypeParams))
		builder.WriteString("]")
	}
	builder.WriteString("(")
	builder.WriteString(fieldListString(fn.Type.Params))
	builder.WriteString(")")

	if results := fn.Type.Results; results != nil && len(results.List) > 0 {
		if len(results.List) == 1 && len(results.List[0].Names) == 0 {
			builder.WriteString(" ")
			builder.WriteString(fieldListString(results))
		} else {
			builder.WriteString(" (")
			builder.WriteString(fieldListString(results))
			builder.WriteString(")")
		}
	}
	return summarize(builder.String())
}

// typeSignature keeps struct and interface bodies out of the signature.
func typeSignature(spec *ast.TypeSpec) string {
	var builder strings.Builder
	builder.WriteString("type ")
	builder.WriteString(spec.Name.Name)
	if spec.Assign.IsValid() {
		builder.WriteString(" =")
	}
	switch spec.Type.(type) {
	case *ast.StructType:
		builder.WriteString(" struct")
	case *ast.InterfaceType:
		builder.WriteString(" interface")
	default:
		builder.WriteString(" ")
		builder.WriteString(exprString(spec.Type))
	}
	return summarize(builder.String())
}

func fieldListString(list *ast.FieldList) string {
	if list == nil {
		return ""
	}
	parts := make([]string, 0, len(list.List))
	for _, field := range list.List {
		parts = append(parts, fieldString(field))
	}
	return strings.Join(parts, ", ")
}

func fieldString(field *ast.Field) string {
	typeText := exprString(field.Type)
	if len(field.Names) == 0 {
		return typeText
	}
	names := make([]string, 0, len(field.Names))
	for _, name := range field.Names {
		names = append(names, name.Name)
	}
	return strings.Join(names, ", ") + " " + typeText
}

func exprString(expr ast.Expr) string {
	if expr == nil {
		return ""
	}
	var buffer bytes.Buffer
	_ = printer.Fprint(&buffer, token.NewFileSet(), expr)
	return buffer.String()
}
