// Package language labels files by language for the index document.
package language

import (
	"path/filepath"
	"strings"
)

// Unknown is returned for files whose language cannot be determined.
const Unknown = "Unknown"

var byExtension = map[string]string{
	".go": "Go",

	".py": "Python", ".pyi": "Python", ".pyw": "Python",
	".js": "JavaScript", ".jsx": "JavaScript", ".mjs": "JavaScript", ".cjs": "JavaScript",
	".ts": "TypeScript", ".mts": "TypeScript", ".cts": "TypeScript",
	".tsx": "TSX",

	".rs":   "Rust",
	".java": "Java",
	".kt":   "Kotlin", ".kts": "Kotlin",
	".c": "C", ".h": "C",
	".cpp": "C++", ".cc": "C++", ".cxx": "C++", ".hpp": "C++", ".hxx": "C++", ".hh": "C++",
	".cs":    "C#",
	".swift": "Swift",
	".rb":    "Ruby", ".rake": "Ruby",
	".php": "PHP",
	".ahk": "AutoHotkey", ".ah2": "AutoHotkey",
	".lua":   "Lua",
	".scala": "Scala",
	".ex":    "Elixir", ".exs": "Elixir",
	".hs":  "Haskell",
	".zig": "Zig",

	".sh": "Shell", ".bash": "Shell", ".zsh": "Shell", ".fish": "Shell",
	".ps1": "PowerShell", ".psm1": "PowerShell",
	".bat": "Batch", ".cmd": "Batch",

	".html": "HTML", ".htm": "HTML",
	".css": "CSS", ".scss": "SCSS", ".sass": "Sass", ".less": "Less",
	".vue": "Vue", ".svelte": "Svelte",

	".json": "JSON", ".jsonc": "JSON",
	".yaml": "YAML", ".yml": "YAML",
	".toml": "TOML",
	".xml":  "XML",
	".ini":  "INI", ".cfg": "INI",
	".env":   "Env",
	".sql":   "SQL",
	".proto": "Protobuf",
	".graphql": "GraphQL", ".gql": "GraphQL",
	".tf": "Terraform",

	".md": "Markdown", ".mdx": "Markdown",
	".rst": "reStructuredText",
	".txt": "Text",
	".csv": "CSV",
}

var byFileName = map[string]string{
	"makefile":           "Makefile",
	"gnumakefile":        "Makefile",
	"dockerfile":         "Dockerfile",
	"docker-compose.yml": "YAML",
	"cmakelists.txt":     "CMake",
	"gemfile":            "Ruby",
	"rakefile":           "Ruby",
	".gitignore":         "Git Config",
	".claudeignore":      "Git Config",
	".env.example":       "Env",
	"go.mod":             "Go Module",
	"go.sum":             "Go Module",
}

// Detect returns the language label for a path. File names are checked
// before extensions so Dockerfile and go.mod get their own labels.
func Detect(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if lang, ok := byFileName[base]; ok {
		return lang
	}
	if lang, ok := byExtension[strings.ToLower(filepath.Ext(base))]; ok {
		return lang
	}
	return Unknown
}
