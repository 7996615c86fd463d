// Package render turns project index snapshots into the generated index
// document and splices it into an existing file.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/lexandro/codemap/index"
)

// Marker is the heading that opens the generated section.
const Marker = "# Current Code Index"

const notice = "*This section is maintained automatically by codemap. Manual edits inside it are overwritten.*"

// kindGroups fixes the order and headings of symbol groups inside a file.
var kindGroups = []struct {
	kind  index.SymbolKind
	label string
}{
	{index.KindModule, "Modules"},
	{index.KindClass, "Classes"},
	{index.KindStruct, "Structs"},
	{index.KindInterface, "Interfaces"},
	{index.KindTrait, "Traits"},
	{index.KindEnum, "Enums"},
	{index.KindUnion, "Unions"},
	{index.KindType, "Types"},
	{index.KindFunction, "Functions"},
	{index.KindMethod, "Methods"},
	{index.KindLabel, "Labels"},
	{index.KindHotkey, "Hotkeys"},
}

// Render produces the generated section for one or more snapshots. Output
// depends only on the snapshots' records, so identical state renders to
// identical bytes.
func Render(snapshots ...index.Snapshot) string {
	var b strings.Builder
	b.WriteString(Marker + "\n\n")
	b.WriteString(notice + "\n\n")

	if len(snapshots) == 1 {
		writeProject(&b, snapshots[0], "##")
		return finish(&b)
	}

	ordered := append([]index.Snapshot(nil), snapshots...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Root < ordered[j].Root })
	for _, snapshot := range ordered {
		fmt.Fprintf(&b, "## Project `%s`\n\n", snapshot.Root)
		writeProject(&b, snapshot, "###")
	}
	return finish(&b)
}

func finish(b *strings.Builder) string {
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeProject(b *strings.Builder, snapshot index.Snapshot, heading string) {
	files := append([]index.FileRecord(nil), snapshot.Files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	var configFiles, codeFiles, otherFiles []index.FileRecord
	for _, record := range files {
		switch record.Category {
		case index.CategoryConfig:
			configFiles = append(configFiles, record)
		case index.CategoryCode:
			codeFiles = append(codeFiles, record)
		default:
			otherFiles = append(otherFiles, record)
		}
	}

	fmt.Fprintf(b, "%s Directory Structure\n\n", heading)
	b.WriteString("```\n")
	if len(files) == 0 {
		b.WriteString("(no indexed files)\n")
	} else {
		paths := make([]string, len(files))
		for i, record := range files {
			paths[i] = record.Path
		}
		b.WriteString(Tree(paths))
	}
	b.WriteString("```\n\n")

	if len(configFiles) > 0 {
		fmt.Fprintf(b, "%s Configuration Files\n\n", heading)
		for _, record := range configFiles {
			fmt.Fprintf(b, "- `%s`%s\n", record.Path, describe(record.Description))
		}
		b.WriteString("\n")
	}

	if len(codeFiles) > 0 {
		fmt.Fprintf(b, "%s Code Structure\n\n", heading)
		for _, record := range codeFiles {
			writeFile(b, record, heading+"#")
		}
	}

	if len(otherFiles) > 0 {
		fmt.Fprintf(b, "%s Other Files\n\n", heading)
		for _, record := range otherFiles {
			fmt.Fprintf(b, "- `%s` (%s)\n", record.Path, humanize.Bytes(uint64(record.Size)))
		}
		b.WriteString("\n")
	}
}

func writeFile(b *strings.Builder, record index.FileRecord, heading string) {
	if record.Language != "" {
		fmt.Fprintf(b, "%s `%s` (%s)\n\n", heading, record.Path, record.Language)
	} else {
		fmt.Fprintf(b, "%s `%s`\n\n", heading, record.Path)
	}
	if record.Description != "" {
		fmt.Fprintf(b, "*%s*\n\n", record.Description)
	}
	if record.Failed {
		fmt.Fprintf(b, "> Extraction failed: %s\n\n", oneLine(record.FailReason))
	}

	byKind := make(map[index.SymbolKind][]index.Symbol)
	var imports []string
	for _, symbol := range record.Symbols {
		if symbol.Kind == index.KindImport {
			imports = append(imports, symbol.Name)
			continue
		}
		byKind[symbol.Kind] = append(byKind[symbol.Kind], symbol)
	}

	for _, group := range kindGroups {
		symbols := byKind[group.kind]
		if len(symbols) == 0 {
			continue
		}
		fmt.Fprintf(b, "**%s:**\n", group.label)
		for _, symbol := range symbols {
			b.WriteString(symbolLine(symbol))
		}
		b.WriteString("\n")
	}

	if len(imports) > 0 {
		fmt.Fprintf(b, "**Imports:** %s\n\n", importList(imports))
	}
}

func symbolLine(symbol index.Symbol) string {
	text := symbol.Signature
	if text == "" {
		text = symbol.Name
	}
	return fmt.Sprintf("- `%s` %s%s\n", oneLine(text), lineRange(symbol), describe(symbol.Doc))
}

func lineRange(symbol index.Symbol) string {
	if symbol.EndLine > symbol.StartLine {
		return fmt.Sprintf("(lines %d-%d)", symbol.StartLine, symbol.EndLine)
	}
	return fmt.Sprintf("(line %d)", symbol.StartLine)
}

func importList(names []string) string {
	sort.Strings(names)
	quoted := make([]string, 0, len(names))
	for i, name := range names {
		if i > 0 && name == names[i-1] {
			continue
		}
		quoted = append(quoted, "`"+name+"`")
	}
	return strings.Join(quoted, ", ")
}

func describe(text string) string {
	if text == "" {
		return ""
	}
	return " - " + oneLine(text)
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
