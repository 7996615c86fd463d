package tools

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/lexandro/codemap/index"
)

// FormatSymbolHits formats symbol search results as human-readable text,
// one symbol per line with its location.
func FormatSymbolHits(hits []index.SymbolHit, multiProject bool) string {
	if len(hits) == 0 {
		return "No symbols matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d symbols:\n\n", len(hits)))

	for _, hit := range hits {
		text := hit.Symbol.Signature
		if text == "" {
			text = hit.Symbol.Name
		}
		location := fmt.Sprintf("%s:%d", hit.Path, hit.Symbol.StartLine)
		if multiProject {
			location = hit.Project + " " + location
		}
		builder.WriteString(fmt.Sprintf("  %-10s %s  %s\n", hit.Symbol.Kind, text, location))
	}

	return builder.String()
}

// FormatFileResults formats indexed file records as human-readable text.
func FormatFileResults(records []index.FileRecord, nameOnly bool) string {
	if len(records) == 0 {
		return "No files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d files:\n\n", len(records)))

	for _, record := range records {
		if nameOnly {
			builder.WriteString(record.Path)
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(fmt.Sprintf("  %s  (%s, %s, %d symbols)\n",
			record.Path,
			record.Language,
			formatFileSize(record.Size),
			len(record.Symbols),
		))
	}

	return builder.String()
}

// FormatOutline formats the structure of one file: a header line followed
// by one line per symbol with its line range.
func FormatOutline(record index.FileRecord) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s (%s, %s) ──\n", record.Path, record.Language, formatFileSize(record.Size)))

	if record.Description != "" {
		builder.WriteString(record.Description + "\n")
	}
	if record.Failed {
		builder.WriteString(fmt.Sprintf("extraction failed: %s\n", record.FailReason))
	}
	if len(record.Symbols) == 0 {
		builder.WriteString("(no symbols)\n")
		return builder.String()
	}

	width := len(fmt.Sprintf("%d", record.Symbols[len(record.Symbols)-1].StartLine))
	for _, symbol := range record.Symbols {
		text := symbol.Signature
		if text == "" {
			text = symbol.Name
		}
		lines := fmt.Sprintf("%*d", width, symbol.StartLine)
		if symbol.EndLine > symbol.StartLine {
			lines += fmt.Sprintf("-%d", symbol.EndLine)
		}
		line := fmt.Sprintf("%s│ %s %s", lines, symbol.Kind, text)
		if symbol.Doc != "" {
			line += " - " + symbol.Doc
		}
		builder.WriteString(line + "\n")
	}

	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}
