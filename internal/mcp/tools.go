package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. The descriptions are what an agent reads when deciding
// which tool to call, so they lead with the action and name the defaults.

var addToolDef = mcp.NewTool("hl_add",
	mcp.WithDescription("Save a highlight to the local store. Returns the assigned id."),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("The highlight text to save"),
	),
	mcp.WithString("source",
		mcp.Description("Optional attribution: a URL, book title, or other provenance"),
	),
)

var searchToolDef = mcp.NewTool("hl_search",
	mcp.WithDescription("Full-text search over saved highlights, most relevant first."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Search terms; every term must match"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum results to return (default 20, max 100)"),
	),
)

var showToolDef = mcp.NewTool("hl_show",
	mcp.WithDescription("Show one highlight in full, including its source and timestamps."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("The highlight id"),
	),
)

var recentToolDef = mcp.NewTool("hl_recent",
	mcp.WithDescription("List the most recently saved highlights, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum entries to return (default 20, max 100)"),
	),
	mcp.WithString("author",
		mcp.Description(`Filter by author kind: "human", "ai", or "ai:<agent>"`),
	),
)
