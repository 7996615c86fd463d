package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/codemap/tools"
)

// Version is reported to MCP clients and by the version command.
const Version = "0.1.0"

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	statusHandler *tools.StatusHandler,
	symbolsHandler *tools.SymbolsHandler,
	outlineHandler *tools.OutlineHandler,
	filesHandler *tools.FilesHandler,
	reindexHandler *tools.ReindexHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "codemap",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server exposes the structural code index that codemap keeps in CLAUDE.md for every monitored project. The index is updated automatically when files change.

Use these tools to navigate code by structure:
- Use codemap_symbols to find where a function, class, struct or other symbol is defined
- Use codemap_outline to see the symbols of one file with their line ranges before reading it
- Use codemap_files to list indexed files by glob pattern
- Use codemap_status to see which projects are monitored and how current their index is`,
		},
	)

	// Register codemap_symbols tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "codemap_symbols",
		Description: `Find symbol definitions by name across the monitored projects.

Query formats:
  - Plain text: word or prefix match on the symbol name (e.g., "handleRequest", "pars")
  - Wildcards: * and ? (e.g., "New*", "*Handler")

Filtering:
  - kind: function, method, class, struct, interface, enum, union, trait, module, type, import, label, hotkey
  - project: project root to restrict the search to`,
	}, symbolsHandler.Handle)

	// Register codemap_outline tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "codemap_outline",
		Description: `Show the structure of one indexed file: every symbol with its kind, signature, line range and doc summary. Format: "START-END│ kind signature - doc".`,
	}, outlineHandler.Handle)

	// Register codemap_files tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "codemap_files",
		Description: `Find indexed files by glob pattern.

Pattern examples:
  - "**/*.go" - all Go files
  - "src/**/*.ts" - TypeScript files under src/
  - "*.toml" - TOML files in root only`,
	}, filesHandler.Handle)

	// Register codemap_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "codemap_status",
		Description: "Show monitored projects: indexed files, symbols, languages, pending changes, last render, memory usage and uptime.",
	}, statusHandler.Handle)

	// Register codemap_reindex tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "codemap_reindex",
		Description: "Force a full rescan of a project and rewrite its CLAUDE.md index.",
	}, reindexHandler.Handle)

	return mcpServer
}
