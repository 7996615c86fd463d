package extract

import (
	"regexp"
	"strings"

	"github.com/lexandro/codemap/index"
)

// AHKExtractor extracts AutoHotkey symbols line by line with regular
// expressions. No tree-sitter grammar is bundled for the language.
type AHKExtractor struct{}

func NewAHKExtractor() *AHKExtractor {
	return &AHKExtractor{}
}

func (e *AHKExtractor) Language() string {
	return "AutoHotkey"
}

var (
	ahkHotstring = regexp.MustCompile(`^:[^:\s]*:([^:]+)::`)
	ahkHotkey    = regexp.MustCompile(`^([^\s:;][^:;]*?)::`)
	ahkLabel     = regexp.MustCompile(`^([A-Za-z_][\w]*):\s*$`)
	ahkFunction  = regexp.MustCompile(`^([A-Za-z_]\w*)\(([^)]*)\)\s*(\{)?\s*$`)
	ahkClass     = regexp.MustCompile(`(?i)^class\s+([A-Za-z_]\w*)(\s+extends\s+[A-Za-z_][\w.]*)?`)
	ahkInclude   = regexp.MustCompile(`(?i)^#include(?:again)?\s+(?:\*i\s+)?(.+)$`)
)

func (e *AHKExtractor) Extract(path string, content []byte) []index.Symbol {
	var symbols []index.Symbol
	lines := strings.Split(string(content), "\n")
	inComment := false
	classDepth := 0
	depth := 0

	for i, raw := range lines {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		lineNo := i + 1

		if inComment {
			if strings.HasPrefix(line, "*/") {
				inComment = false
			}
			continue
		}
		if strings.HasPrefix(line, "/*") {
			inComment = !strings.Contains(line, "*/")
			continue
		}
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		switch {
		case ahkInclude.MatchString(line):
			m := ahkInclude.FindStringSubmatch(line)
			symbols = append(symbols, index.Symbol{Kind: index.KindImport, Name: strings.TrimSpace(m[1]), StartLine: lineNo})
		case ahkClass.MatchString(line):
			m := ahkClass.FindStringSubmatch(line)
			symbols = append(symbols, index.Symbol{
				Kind:      index.KindClass,
				Name:      m[1],
				StartLine: lineNo,
				Signature: summarize(strings.TrimSuffix(strings.TrimSpace(m[0]), "{")),
			})
			classDepth = depth + 1
		case ahkHotstring.MatchString(line):
			m := ahkHotstring.FindStringSubmatch(line)
			symbols = append(symbols, index.Symbol{Kind: index.KindHotkey, Name: "::" + m[1], StartLine: lineNo})
		case ahkFunction.MatchString(line) && isAHKDefinition(lines, i):
			m := ahkFunction.FindStringSubmatch(line)
			kind := index.KindFunction
			if classDepth > 0 && depth >= classDepth {
				kind = index.KindMethod
			}
			symbols = append(symbols, index.Symbol{
				Kind:      kind,
				Name:      m[1],
				StartLine: lineNo,
				Signature: m[1] + "(" + summarize(m[2]) + ")",
			})
		case ahkHotkey.MatchString(line):
			m := ahkHotkey.FindStringSubmatch(line)
			symbols = append(symbols, index.Symbol{Kind: index.KindHotkey, Name: strings.TrimSpace(m[1]), StartLine: lineNo})
		case ahkLabel.MatchString(line) && depth == 0:
			m := ahkLabel.FindStringSubmatch(line)
			symbols = append(symbols, index.Symbol{Kind: index.KindLabel, Name: m[1], StartLine: lineNo})
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth < 0 {
			depth = 0
		}
		if classDepth > 0 && depth < classDepth && strings.Contains(line, "}") {
			classDepth = 0
		}
	}
	return symbols
}

// isAHKDefinition tells a function definition from a call on its own line:
// a definition opens a brace on the same or the next non-empty line.
func isAHKDefinition(lines []string, i int) bool {
	line := strings.TrimSpace(lines[i])
	lower := strings.ToLower(line)
	for _, keyword := range []string{"if(", "while(", "for(", "loop(", "switch(", "return("} {
		if strings.HasPrefix(lower, keyword) {
			return false
		}
	}
	if strings.HasSuffix(line, "{") {
		return true
	}
	for _, next := range lines[i+1:] {
		next = strings.TrimSpace(next)
		if next == "" {
			continue
		}
		return strings.HasPrefix(next, "{")
	}
	return false
}
