package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/hl/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID int64
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// Delete permanently removes an entry. The id is retired, never reused.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}

	if err := db.DeleteEntry(ctx, database, input.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{Deleted: true, ID: input.ID}, nil
}
