package render

import "strings"

// Splice replaces the generated section of existing with generated and keeps
// everything else. The section runs from the Marker heading to the next
// top-level heading outside a code fence, or to the end of the document.
// Without a marker, generated is appended. Splice(Splice(e, g), g) equals
// Splice(e, g).
func Splice(existing, generated string) string {
	generated = strings.TrimRight(generated, "\n") + "\n"

	lines := strings.SplitAfter(existing, "\n")
	start, end := findSection(lines)
	if start < 0 {
		before := strings.TrimRight(existing, "\n\t ")
		if before == "" {
			return generated
		}
		return before + "\n\n" + generated
	}

	before := strings.TrimRight(strings.Join(lines[:start], ""), "\n\t ")
	after := strings.Join(lines[end:], "")

	var b strings.Builder
	if before != "" {
		b.WriteString(before)
		b.WriteString("\n\n")
	}
	b.WriteString(generated)
	if strings.TrimSpace(after) != "" {
		b.WriteString("\n")
		b.WriteString(after)
	}
	return b.String()
}

// findSection returns the line range [start, end) of the generated section,
// or start -1 when the document has no marker.
func findSection(lines []string) (int, int) {
	start := -1
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r\n\t ")
		if isFence(trimmed) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if start < 0 {
			if trimmed == Marker {
				start = i
			}
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return start, i
		}
	}
	return start, len(lines)
}

func isFence(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}
