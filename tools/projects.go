package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codemap/project"
)

// Projects is the view of the monitored projects the tools work on.
// *daemon.Supervisor implements it.
type Projects interface {
	Roots() []string
	Get(root string) (*project.Coordinator, bool)
	Lookup(path string) (*project.Coordinator, bool)
	Status() []project.Status
	Reindex(ctx context.Context, root string) (project.ScanResult, error)
}

// resolveProject picks the coordinator named by root. An empty root is
// accepted when exactly one project is monitored.
func resolveProject(projects Projects, root string) (*project.Coordinator, error) {
	if root != "" {
		if coordinator, ok := projects.Get(filepath.Clean(root)); ok {
			return coordinator, nil
		}
		if coordinator, ok := projects.Lookup(root); ok {
			return coordinator, nil
		}
		return nil, fmt.Errorf("project is not monitored: %s", root)
	}

	roots := projects.Roots()
	switch len(roots) {
	case 0:
		return nil, fmt.Errorf("no projects are monitored")
	case 1:
		if coordinator, ok := projects.Get(roots[0]); ok {
			return coordinator, nil
		}
		return nil, fmt.Errorf("project is not monitored: %s", roots[0])
	default:
		return nil, fmt.Errorf("several projects are monitored, pass project as one of: %s", strings.Join(roots, ", "))
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
