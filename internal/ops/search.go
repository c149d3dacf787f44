package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/hl/internal/db"
	"github.com/hpungsan/hl/internal/errors"
)

// MaxQueryChars bounds the length of a search query.
const MaxQueryChars = 1000

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query string // required
	Limit int    // default: 20, max: 100
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Results []db.SearchResult `json:"results"`
}

// Search runs ranked full-text search across body and source. An empty
// query is a validation error; a query that matches nothing returns an
// empty result set.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewValidation("query must not be empty")
	}
	if utf8.RuneCountInString(query) > MaxQueryChars {
		return nil, errors.NewValidation(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryChars))
	}

	limit := clampLimit(input.Limit, DefaultSearchLimit)

	results, err := db.SearchEntries(ctx, database, query, limit)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Results: results}, nil
}
