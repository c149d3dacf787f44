package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/hl/internal/db"
	"github.com/hpungsan/hl/internal/entry"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Body   string           // required
	Source string           // optional attribution (URL, book, label)
	Author entry.AuthorKind // required
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	Entry *entry.Entry `json:"entry"`
}

// Add validates and stores a new entry. The store assigns the id and
// timestamps; the returned entry carries them.
func Add(ctx context.Context, database *sql.DB, input AddInput) (*AddOutput, error) {
	e, err := entry.New(input.Body, input.Source, input.Author)
	if err != nil {
		return nil, err
	}

	if err := db.InsertEntry(ctx, database, e); err != nil {
		return nil, err
	}

	return &AddOutput{Entry: e}, nil
}
