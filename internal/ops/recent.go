package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/hl/internal/db"
	"github.com/hpungsan/hl/internal/entry"
	"github.com/hpungsan/hl/internal/errors"
)

// RecentInput contains parameters for the Recent operation.
type RecentInput struct {
	Limit  int    // default: 20, max: 100
	Author string // optional filter: "human", "ai", or "ai:<agent>"
}

// RecentOutput contains the result of the Recent operation.
type RecentOutput struct {
	Entries []*entry.Entry `json:"entries"`
}

// Recent returns the newest entries, optionally restricted by author kind.
// The bare filter "ai" matches every agent.
func Recent(ctx context.Context, database *sql.DB, input RecentInput) (*RecentOutput, error) {
	author := strings.TrimSpace(input.Author)
	if author != "" && !entry.ValidAuthorFilter(author) {
		return nil, errors.NewValidation(`author filter must be "human", "ai", or "ai:<agent>"`)
	}

	limit := clampLimit(input.Limit, DefaultRecentLimit)

	entries, err := db.ListRecent(ctx, database, author, limit)
	if err != nil {
		return nil, err
	}

	return &RecentOutput{Entries: entries}, nil
}
