package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/hl/internal/config"
)

// DefaultAgent names the AI author recorded for writes when no --agent flag
// is given.
const DefaultAgent = "claude"

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"hl_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"hl_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"hl_show": {
		def:     showToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleShow },
	},
	"hl_recent": {
		def:     recentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecent },
	},
}

// AllToolNames returns a list of all registered tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates a new MCP server with the hl tools registered. Every
// write performed through it is attributed to ai:<agent>.
func NewServer(db *sql.DB, cfg *config.Config, version, agent string) *server.MCPServer {
	s := server.NewMCPServer(
		"hl",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, agent)
	for _, tool := range toolRegistry {
		s.AddTool(tool.def, tool.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport. Nothing but the protocol
// stream may be written to stdout while it runs.
func Run(db *sql.DB, cfg *config.Config, version, agent string) error {
	s := NewServer(db, cfg, version, agent)
	return server.ServeStdio(s)
}
