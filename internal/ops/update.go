package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/hl/internal/db"
	"github.com/hpungsan/hl/internal/entry"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	ID     int64
	Body   string  // required, replaces the existing body
	Source *string // nil keeps the existing source; empty string clears it
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	Entry *entry.Entry `json:"entry"`
}

// Update replaces an entry's body and, when requested, its source. Author
// and created_at are never touched; updated_at moves strictly forward.
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*UpdateOutput, error) {
	if err := ValidateID(input.ID); err != nil {
		return nil, err
	}

	body, err := entry.ValidateBody(input.Body)
	if err != nil {
		return nil, err
	}

	var source *string
	if input.Source != nil {
		trimmed := strings.TrimSpace(*input.Source)
		source = &trimmed
	}

	e, err := db.UpdateEntry(ctx, database, input.ID, body, source)
	if err != nil {
		return nil, err
	}

	return &UpdateOutput{Entry: e}, nil
}
