package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/hl/internal/entry"
)

// SearchResult pairs an entry with its relevance rank. Rank is the raw
// FTS5 bm25 value: negative, with smaller values meaning more relevant.
type SearchResult struct {
	Entry *entry.Entry
	Rank  float64
}

// SearchEntries runs a full-text match across body and source, ordered by
// relevance with ties broken by creation time (newest first). The query is
// tokenized on whitespace and each token quoted, so user input cannot
// invoke FTS5 operator syntax; tokens combine with implicit AND.
func SearchEntries(ctx context.Context, db *sql.DB, query string, limit int) ([]SearchResult, error) {
	match := sanitizeQuery(query)
	if match == "" {
		return []SearchResult{}, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT e.id, e.body, e.source, e.author, e.created_at, e.updated_at, f.rank
		FROM entries e
		JOIN entries_fts f ON e.id = f.rowid
		WHERE entries_fts MATCH ?
		ORDER BY f.rank, e.created_at DESC
		LIMIT ?`,
		match, limit,
	)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0)
	for rows.Next() {
		var (
			e      entry.Entry
			author string
			rank   sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.Body, &e.Source, &author, &e.CreatedAt, &e.UpdatedAt, &rank); err != nil {
			return nil, storeErr(err)
		}
		kind, err := entry.ParseAuthorKind(author)
		if err != nil {
			return nil, err
		}
		e.Author = kind
		results = append(results, SearchResult{Entry: &e, Rank: rank.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return results, nil
}

// sanitizeQuery turns free text into a safe FTS5 match expression: each
// whitespace-separated token is stripped of surrounding quotes, has inner
// quotes doubled, and is wrapped in double quotes.
func sanitizeQuery(query string) string {
	words := strings.Fields(query)
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, `"`)
		if w == "" {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(w, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}
