package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codemap/index"
)

// SymbolsArgs defines the input parameters for the codemap_symbols tool.
type SymbolsArgs struct {
	Query      string `json:"query" jsonschema:"Symbol name to look for. Plain text for word or prefix match, * and ? for wildcards"`
	Kind       string `json:"kind,omitempty" jsonschema:"Optional symbol kind filter (function, method, class, struct, interface, enum, import, ...)"`
	Project    string `json:"project,omitempty" jsonschema:"Optional project root to restrict the search to"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// SymbolsHandler holds the dependencies for the symbols tool.
type SymbolsHandler struct {
	Symbols  *index.SymbolIndex
	Projects Projects
	Logger   *slog.Logger
}

// Handle processes a codemap_symbols request.
func (h *SymbolsHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SymbolsArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" {
		h.Logger.Warn("codemap_symbols called with empty query")
		return errorResult("Error: query parameter is required"), nil, nil
	}

	projectRoot := ""
	if args.Project != "" {
		coordinator, err := resolveProject(h.Projects, args.Project)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		projectRoot = coordinator.Root()
	}

	hits, err := h.Symbols.Search(index.SymbolSearchOptions{
		Query:      args.Query,
		Kind:       args.Kind,
		Project:    projectRoot,
		MaxResults: args.MaxResults,
	})
	if err != nil {
		h.Logger.Error("codemap_symbols failed", "query", args.Query, "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	elapsed := time.Since(start)
	h.Logger.Info("codemap_symbols",
		"query", args.Query,
		"results", len(hits),
		"elapsed", elapsed,
	)

	return textResult(FormatSymbolHits(hits, len(h.Projects.Roots()) > 1)), nil, nil
}
