package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codemap/index"
)

const defaultMaxResults = 50

// FilesArgs defines the input parameters for the codemap_files tool.
type FilesArgs struct {
	Pattern    string `json:"pattern" jsonschema:"Glob pattern to match indexed files (e.g. **/*.ts or src/**/*.go)"`
	Project    string `json:"project,omitempty" jsonschema:"Project root to list (default: the only monitored project)"`
	NameOnly   bool   `json:"nameOnly,omitempty" jsonschema:"If true return only file paths without metadata"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FilesHandler holds the dependencies for the files tool.
type FilesHandler struct {
	Projects Projects
	Logger   *slog.Logger
}

// Handle processes a codemap_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern == "" {
		h.Logger.Warn("codemap_files called with empty pattern")
		return errorResult("Error: pattern parameter is required"), nil, nil
	}
	if !doublestar.ValidatePattern(args.Pattern) {
		return errorResult(fmt.Sprintf("Search error: invalid glob pattern %q", args.Pattern)), nil, nil
	}

	coordinator, err := resolveProject(h.Projects, args.Project)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	var results []index.FileRecord
	for _, record := range coordinator.Index().Snapshot().Files {
		if matched, _ := doublestar.Match(args.Pattern, record.Path); !matched {
			continue
		}
		results = append(results, record)
		if len(results) >= maxResults {
			break
		}
	}

	elapsed := time.Since(start)
	h.Logger.Info("codemap_files",
		"pattern", args.Pattern,
		"results", len(results),
		"elapsed", elapsed,
	)

	return textResult(FormatFileResults(results, args.NameOnly)), nil, nil
}
