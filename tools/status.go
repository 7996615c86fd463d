package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codemap/project"
)

// StatusArgs defines the input parameters for the codemap_status tool.
type StatusArgs struct {
	Project string `json:"project,omitempty" jsonschema:"Project root to report on (default: all monitored projects)"`
}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Projects  Projects
	StartTime time.Time
	Logger    *slog.Logger
}

// Handle processes a codemap_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	statuses := h.Projects.Status()
	if args.Project != "" {
		coordinator, err := resolveProject(h.Projects, args.Project)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		statuses = []project.Status{coordinator.Status()}
	}
	uptime := time.Since(h.StartTime)

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("codemap_status",
		"projects", len(statuses),
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	builder.WriteString("=== codemap Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Monitored projects: %d\n", len(statuses)))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	for _, status := range statuses {
		writeProjectStatus(&builder, status)
	}

	return textResult(builder.String()), nil, nil
}

func writeProjectStatus(builder *strings.Builder, status project.Status) {
	state := "watching"
	if !status.Running {
		state = "stopped"
	}
	builder.WriteString(fmt.Sprintf("\n--- %s (%s) ---\n", status.Root, state))
	builder.WriteString(fmt.Sprintf("Document: %s\n", status.OutputPath))
	builder.WriteString(fmt.Sprintf("Indexed files: %d\n", status.Files))
	builder.WriteString(fmt.Sprintf("Symbols: %d\n", status.Symbols))
	builder.WriteString(fmt.Sprintf("Total indexed size: %s\n", formatFileSize(status.TotalSize)))
	builder.WriteString(fmt.Sprintf("Pending changes: %d\n", status.Pending))
	builder.WriteString(fmt.Sprintf("Renders: %d, extractions: %d\n", status.Renders, status.Extractions))
	if status.LastRender.IsZero() {
		builder.WriteString("Last render: never\n")
	} else {
		builder.WriteString(fmt.Sprintf("Last render: %s\n", humanize.Time(status.LastRender)))
	}
	if status.LastError != "" {
		builder.WriteString(fmt.Sprintf("Last error: %s\n", status.LastError))
	}

	// Language breakdown
	if len(status.Languages) > 0 {
		builder.WriteString("Languages:\n")

		// Sort by count descending, then name
		type langEntry struct {
			lang  string
			count int
		}
		entries := make([]langEntry, 0, len(status.Languages))
		for lang, count := range status.Languages {
			entries = append(entries, langEntry{lang, count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count != entries[j].count {
				return entries[i].count > entries[j].count
			}
			return entries[i].lang < entries[j].lang
		})

		for _, entry := range entries {
			builder.WriteString(fmt.Sprintf("  %-20s %d files\n", entry.lang, entry.count))
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
