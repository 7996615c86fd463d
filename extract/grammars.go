package extract

import (
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/lexandro/codemap/index"
)

var pythonGrammar = &grammar{
	name:     "Python",
	language: python.GetLanguage,
	symbols: map[string]nodeRule{
		"function_definition": {kind: index.KindFunction, nameField: "name"},
		"class_definition":    {kind: index.KindClass, nameField: "name"},
	},
	imports: map[string]string{
		"import_statement":      "name",
		"import_from_statement": "module_name",
	},
	containers: map[string]bool{"class_definition": true},
	docstrings: true,
}

var jsFunctionValues = []string{"arrow_function", "function_expression", "function"}

func javascriptSymbols() map[string]nodeRule {
	return map[string]nodeRule{
		"function_declaration":           {kind: index.KindFunction, nameField: "name"},
		"generator_function_declaration": {kind: index.KindFunction, nameField: "name"},
		"class_declaration":              {kind: index.KindClass, nameField: "name"},
		"method_definition":              {kind: index.KindMethod, nameField: "name"},
		"variable_declarator":            {kind: index.KindFunction, nameField: "name", valueTypes: jsFunctionValues},
	}
}

func typescriptSymbols() map[string]nodeRule {
	symbols := javascriptSymbols()
	symbols["abstract_class_declaration"] = nodeRule{kind: index.KindClass, nameField: "name"}
	symbols["interface_declaration"] = nodeRule{kind: index.KindInterface, nameField: "name"}
	symbols["type_alias_declaration"] = nodeRule{kind: index.KindType, nameField: "name"}
	symbols["enum_declaration"] = nodeRule{kind: index.KindEnum, nameField: "name"}
	symbols["internal_module"] = nodeRule{kind: index.KindModule, nameField: "name"}
	return symbols
}

var javascriptGrammar = &grammar{
	name:     "JavaScript",
	language: javascript.GetLanguage,
	symbols:  javascriptSymbols(),
	imports:  map[string]string{"import_statement": "source"},
}

var typescriptGrammar = &grammar{
	name:     "TypeScript",
	language: ts.GetLanguage,
	symbols:  typescriptSymbols(),
	imports:  map[string]string{"import_statement": "source"},
}

var tsxGrammar = &grammar{
	name:     "TSX",
	language: tsx.GetLanguage,
	symbols:  typescriptSymbols(),
	imports:  map[string]string{"import_statement": "source"},
}

var rustGrammar = &grammar{
	name:     "Rust",
	language: rust.GetLanguage,
	symbols: map[string]nodeRule{
		"function_item":           {kind: index.KindFunction, nameField: "name"},
		"function_signature_item": {kind: index.KindFunction, nameField: "name"},
		"struct_item":             {kind: index.KindStruct, nameField: "name"},
		"enum_item":               {kind: index.KindEnum, nameField: "name"},
		"union_item":              {kind: index.KindUnion, nameField: "name"},
		"trait_item":              {kind: index.KindTrait, nameField: "name"},
		"mod_item":                {kind: index.KindModule, nameField: "name"},
		"type_item":               {kind: index.KindType, nameField: "name"},
	},
	imports:    map[string]string{"use_declaration": "argument"},
	containers: map[string]bool{"impl_item": true, "trait_item": true},
}

var javaGrammar = &grammar{
	name:     "Java",
	language: java.GetLanguage,
	symbols: map[string]nodeRule{
		"class_declaration":           {kind: index.KindClass, nameField: "name"},
		"record_declaration":          {kind: index.KindClass, nameField: "name"},
		"interface_declaration":       {kind: index.KindInterface, nameField: "name"},
		"annotation_type_declaration": {kind: index.KindInterface, nameField: "name"},
		"enum_declaration":            {kind: index.KindEnum, nameField: "name"},
		"method_declaration":          {kind: index.KindMethod, nameField: "name"},
		"constructor_declaration":     {kind: index.KindMethod, nameField: "name"},
	},
	imports: map[string]string{"import_declaration": ""},
}

func cSymbols() map[string]nodeRule {
	return map[string]nodeRule{
		"function_definition": {kind: index.KindFunction, nameField: "declarator"},
		"struct_specifier":    {kind: index.KindStruct, nameField: "name", needsBody: true},
		"union_specifier":     {kind: index.KindUnion, nameField: "name", needsBody: true},
		"enum_specifier":      {kind: index.KindEnum, nameField: "name", needsBody: true},
		"type_definition":     {kind: index.KindType, nameField: "declarator"},
	}
}

var cGrammar = &grammar{
	name:     "C",
	language: c.GetLanguage,
	symbols:  cSymbols(),
	imports:  map[string]string{"preproc_include": "path"},
}

var cppGrammar = &grammar{
	name:     "C++",
	language: cpp.GetLanguage,
	symbols: func() map[string]nodeRule {
		symbols := cSymbols()
		symbols["class_specifier"] = nodeRule{kind: index.KindClass, nameField: "name", needsBody: true}
		symbols["namespace_definition"] = nodeRule{kind: index.KindModule, nameField: "name"}
		return symbols
	}(),
	imports:    map[string]string{"preproc_include": "path"},
	containers: map[string]bool{"class_specifier": true, "struct_specifier": true},
}

var rubyGrammar = &grammar{
	name:     "Ruby",
	language: ruby.GetLanguage,
	symbols: map[string]nodeRule{
		"method":           {kind: index.KindFunction, nameField: "name"},
		"singleton_method": {kind: index.KindFunction, nameField: "name"},
		"class":            {kind: index.KindClass, nameField: "name"},
		"module":           {kind: index.KindModule, nameField: "name"},
	},
	containers: map[string]bool{"class": true, "module": true, "singleton_class": true},
}

var phpGrammar = &grammar{
	name:     "PHP",
	language: php.GetLanguage,
	symbols: map[string]nodeRule{
		"function_definition":   {kind: index.KindFunction, nameField: "name"},
		"class_declaration":     {kind: index.KindClass, nameField: "name"},
		"interface_declaration": {kind: index.KindInterface, nameField: "name"},
		"trait_declaration":     {kind: index.KindTrait, nameField: "name"},
		"enum_declaration":      {kind: index.KindEnum, nameField: "name"},
		"method_declaration":    {kind: index.KindMethod, nameField: "name"},
	},
	imports: map[string]string{"namespace_use_declaration": ""},
}

// goFallbackGrammar is used when go/parser cannot produce any syntax tree.
var goFallbackGrammar = &grammar{
	name:     "Go",
	language: golang.GetLanguage,
	symbols: map[string]nodeRule{
		"function_declaration": {kind: index.KindFunction, nameField: "name"},
		"method_declaration":   {kind: index.KindMethod, nameField: "name"},
		"type_spec": {kind: index.KindType, nameField: "name", refine: map[string]index.SymbolKind{
			"struct_type":    index.KindStruct,
			"interface_type": index.KindInterface,
		}},
	},
	imports: map[string]string{"import_spec": "path"},
}
