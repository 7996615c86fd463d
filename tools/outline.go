package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codemap/project"
)

// OutlineArgs defines the input parameters for the codemap_outline tool.
type OutlineArgs struct {
	FilePath string `json:"filePath" jsonschema:"File to outline: absolute, or relative to the project root (e.g. src/main.go)"`
	Project  string `json:"project,omitempty" jsonschema:"Project root for a relative filePath (default: the only monitored project)"`
}

// OutlineHandler holds the dependencies for the outline tool.
type OutlineHandler struct {
	Projects Projects
	Logger   *slog.Logger
}

// Handle processes a codemap_outline request.
func (h *OutlineHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args OutlineArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.FilePath == "" {
		h.Logger.Warn("codemap_outline called with empty filePath")
		return errorResult("Error: filePath parameter is required"), nil, nil
	}

	coordinator, relativePath, err := h.locate(args)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	record, ok := coordinator.Index().Get(relativePath)
	if !ok {
		h.Logger.Info("codemap_outline file not found", "filePath", args.FilePath)
		return errorResult(fmt.Sprintf("File not found in index: %s", relativePath)), nil, nil
	}

	elapsed := time.Since(start)
	h.Logger.Info("codemap_outline", "filePath", relativePath, "elapsed", elapsed)

	return textResult(FormatOutline(record)), nil, nil
}

// locate returns the coordinator owning the requested file and the file's
// path relative to its root.
func (h *OutlineHandler) locate(args OutlineArgs) (*project.Coordinator, string, error) {
	if filepath.IsAbs(args.FilePath) {
		coordinator, ok := h.Projects.Lookup(args.FilePath)
		if !ok {
			return nil, "", fmt.Errorf("no monitored project contains %s", args.FilePath)
		}
		relativePath, err := filepath.Rel(coordinator.Root(), args.FilePath)
		if err != nil {
			return nil, "", err
		}
		return coordinator, filepath.ToSlash(relativePath), nil
	}

	coordinator, err := resolveProject(h.Projects, args.Project)
	if err != nil {
		return nil, "", err
	}
	return coordinator, filepath.ToSlash(filepath.Clean(args.FilePath)), nil
}
