// Package extract turns file content into the structural symbols listed in
// the index document. One Extractor exists per supported language; the
// Registry picks one by file extension.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lexandro/codemap/index"
)

// Extractor produces the symbols of one file. Implementations must be pure:
// the same content always yields the same symbols. Malformed input yields a
// best-effort partial list rather than an error.
type Extractor interface {
	Language() string
	Extract(path string, content []byte) []index.Symbol
}

// Run invokes e and normalizes its output. A panicking extractor is turned
// into an error so one bad file cannot take down its coordinator.
func Run(e Extractor, path string, content []byte) (symbols []index.Symbol, err error) {
	defer func() {
		if r := recover(); r != nil {
			symbols = nil
			err = fmt.Errorf("%s extractor panicked on %s: %v", e.Language(), path, r)
		}
	}()
	return Normalize(e.Extract(path, content)), nil
}

// Normalize orders symbols by start line, then name, and drops entries with
// an empty name or the same kind, name and line as a previous one.
func Normalize(symbols []index.Symbol) []index.Symbol {
	if len(symbols) == 0 {
		return nil
	}
	sorted := make([]index.Symbol, 0, len(symbols))
	for _, sym := range symbols {
		if strings.TrimSpace(sym.Name) == "" {
			continue
		}
		sorted = append(sorted, sym)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartLine != sorted[j].StartLine {
			return sorted[i].StartLine < sorted[j].StartLine
		}
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Kind < sorted[j].Kind
	})

	out := sorted[:0]
	for i, sym := range sorted {
		if i > 0 {
			prev := out[len(out)-1]
			if prev.Kind == sym.Kind && prev.Name == sym.Name && prev.StartLine == sym.StartLine {
				continue
			}
		}
		out = append(out, sym)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

const maxSummaryLength = 120

// Describe returns the file's leading comment line, used as a one-line
// description in the index document. A shebang line is skipped.
func Describe(content []byte) string {
	lines := strings.Split(string(content), "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if i == 0 && strings.HasPrefix(line, "#!") {
			continue
		}
		return summarize(commentText(line))
	}
	return ""
}

// commentText strips comment markers from line. Returns "" when line is not
// a comment.
func commentText(line string) string {
	switch {
	case strings.HasPrefix(line, "//"):
		return strings.TrimLeft(line, "/!")
	case strings.HasPrefix(line, "/*"):
		return strings.TrimSuffix(strings.TrimLeft(line, "/*!"), "*/")
	case strings.HasPrefix(line, `"""`), strings.HasPrefix(line, "'''"):
		quote := line[:3]
		return strings.TrimSuffix(strings.TrimPrefix(line, quote), quote)
	case strings.HasPrefix(line, "<!--"):
		return strings.TrimSuffix(strings.TrimPrefix(line, "<!--"), "-->")
	case strings.HasPrefix(line, "--"):
		return strings.TrimPrefix(line, "--")
	case strings.HasPrefix(line, ";"):
		return strings.TrimLeft(line, ";")
	case line == "#", strings.HasPrefix(line, "# "), strings.HasPrefix(line, "##"):
		return strings.TrimLeft(line, "#")
	}
	return ""
}

// summarize collapses whitespace and caps the length of a one-line text.
func summarize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len([]rune(text)) > maxSummaryLength {
		return string([]rune(text)[:maxSummaryLength-3]) + "..."
	}
	return text
}

// firstLine returns the first non-empty line of text, summarized.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return summarize(line)
		}
	}
	return ""
}
