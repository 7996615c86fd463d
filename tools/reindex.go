package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReindexArgs defines the input parameters for the codemap_reindex tool.
type ReindexArgs struct {
	Project string `json:"project,omitempty" jsonschema:"Project root to rescan (default: the only monitored project)"`
}

// ReindexHandler holds the dependencies for the reindex tool.
type ReindexHandler struct {
	Projects Projects
	Logger   *slog.Logger
}

// Handle processes a codemap_reindex request.
func (h *ReindexHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReindexArgs) (*mcp.CallToolResult, any, error) {
	coordinator, err := resolveProject(h.Projects, args.Project)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	root := coordinator.Root()
	h.Logger.Info("codemap_reindex started", "root", root)

	result, err := h.Projects.Reindex(ctx, root)
	if err != nil {
		h.Logger.Error("codemap_reindex failed", "root", root, "error", err)
		return errorResult(fmt.Sprintf("Reindex error: %v", err)), nil, nil
	}

	elapsed := result.Duration.Round(time.Millisecond)
	h.Logger.Info("codemap_reindex complete",
		"root", root,
		"files", result.Files,
		"elapsed", elapsed,
	)

	output := fmt.Sprintf("Reindex complete: %s\n%d files (%d added, %d modified, %d removed, %d failed) in %s",
		root, result.Files, result.Added, result.Modified, result.Removed, result.Failed, elapsed)

	return textResult(output), nil, nil
}
