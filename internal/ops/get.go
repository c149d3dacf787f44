package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/hl/internal/db"
	"github.com/hpungsan/hl/internal/entry"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID int64
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	Entry *entry.Entry `json:"entry"`
}

// Get retrieves a single entry by id.
func Get(ctx context.Context, database *sql.DB, input GetInput) (*GetOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}

	e, err := db.GetEntry(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Entry: e}, nil
}
