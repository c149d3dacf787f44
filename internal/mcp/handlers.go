package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/hl/internal/config"
	"github.com/hpungsan/hl/internal/entry"
	"github.com/hpungsan/hl/internal/errors"
	"github.com/hpungsan/hl/internal/ops"
)

// busyRetries bounds re-attempts when the store reports transient
// contention. The driver's busy_timeout absorbs most of it already; this
// catches what leaks through.
const busyRetries = 3

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db    *sql.DB
	cfg   *config.Config
	agent string
}

// NewHandlers creates a new Handlers instance. agent names the AI author
// recorded for every write, so "claude" tags entries ai:claude.
func NewHandlers(db *sql.DB, cfg *config.Config, agent string) *Handlers {
	agent = strings.TrimSpace(agent)
	if agent == "" {
		agent = DefaultAgent
	}
	return &Handlers{db: db, cfg: cfg, agent: agent}
}

// Request types for each tool

// AddRequest represents the arguments for hl_add.
type AddRequest struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// SearchRequest represents the arguments for hl_search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// ShowRequest represents the arguments for hl_show.
type ShowRequest struct {
	ID int64 `json:"id"`
}

// RecentRequest represents the arguments for hl_recent.
type RecentRequest struct {
	Limit  int    `json:"limit,omitempty"`
	Author string `json:"author,omitempty"`
}

// HandleAdd handles the hl_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := withBusyRetry(func() (*ops.AddOutput, error) {
		return ops.Add(ctx, h.db, ops.AddInput{
			Body:   input.Content,
			Source: input.Source,
			Author: entry.AI(h.agent),
		})
	})
	if err != nil {
		return errorResult(err), nil
	}

	return textResult(fmt.Sprintf("Saved highlight #%d", result.Entry.ID)), nil
}

// HandleSearch handles the hl_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := withBusyRetry(func() (*ops.SearchOutput, error) {
		return ops.Search(ctx, h.db, ops.SearchInput{
			Query: input.Query,
			Limit: limitOr(input.Limit, h.cfg.Limits.Search),
		})
	})
	if err != nil {
		return errorResult(err), nil
	}

	if len(result.Results) == 0 {
		return textResult(fmt.Sprintf("No highlights found for: %s", strings.TrimSpace(input.Query))), nil
	}

	lines := make([]string, 0, len(result.Results)+1)
	lines = append(lines, fmt.Sprintf("Found %d results:", len(result.Results)))
	for _, r := range result.Results {
		lines = append(lines, entry.FormatShort(r.Entry, false))
	}
	return textResult(strings.Join(lines, "\n")), nil
}

// HandleShow handles the hl_show tool call.
func (h *Handlers) HandleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ShowRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := withBusyRetry(func() (*ops.GetOutput, error) {
		return ops.Get(ctx, h.db, ops.GetInput{ID: input.ID})
	})
	if err != nil {
		return errorResult(err), nil
	}

	return textResult(entry.FormatFull(result.Entry)), nil
}

// HandleRecent handles the hl_recent tool call.
func (h *Handlers) HandleRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecentRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := withBusyRetry(func() (*ops.RecentOutput, error) {
		return ops.Recent(ctx, h.db, ops.RecentInput{
			Limit:  limitOr(input.Limit, h.cfg.Limits.Recent),
			Author: input.Author,
		})
	})
	if err != nil {
		return errorResult(err), nil
	}

	if len(result.Entries) == 0 {
		return textResult("No highlights yet."), nil
	}

	lines := make([]string, 0, len(result.Entries)+1)
	lines = append(lines, fmt.Sprintf("%d recent highlights:", len(result.Entries)))
	for _, e := range result.Entries {
		lines = append(lines, entry.FormatShort(e, false))
	}
	return textResult(strings.Join(lines, "\n")), nil
}

// limitOr falls back to the configured default when the caller omits one.
func limitOr(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	return configured
}

// withBusyRetry runs fn, retrying a bounded number of times while the store
// reports contention. Anything else is returned as is.
func withBusyRetry[T any](fn func() (T, error)) (T, error) {
	var result T
	var err error
	for attempt := 0; ; attempt++ {
		result, err = fn()
		if err == nil || !errors.IsRetryable(err) || attempt >= busyRetries {
			return result, err
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
}

// errorResult creates an MCP error result from an error. The payload keeps
// the structured code so agents can branch on it.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var hlErr *errors.HLError
	if stderrors.As(err, &hlErr) {
		errorObj := map[string]any{
			"code":    hlErr.Code,
			"message": hlErr.Message,
			"status":  hlErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if hlErr.Code != errors.ErrInternal && hlErr.Details != nil {
			errorObj["details"] = hlErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// textResult creates an MCP success result with plain text content.
func textResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}
