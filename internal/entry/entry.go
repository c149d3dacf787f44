package entry

import (
	"strings"

	"github.com/hpungsan/hl/internal/errors"
)

// Entry represents a single captured highlight.
type Entry struct {
	// ID is the monotonically assigned integer id. Ids are never reused,
	// even after deletion.
	ID int64

	// Body is the highlight text. Never empty after a successful add/edit.
	Body string

	// Source is optional free-text provenance (URL, book, label). Empty
	// when absent.
	Source string

	// Author records who captured the entry. Set once at creation and
	// never changed by edits.
	Author AuthorKind

	// CreatedAt is the creation time in Unix nanoseconds, immutable.
	CreatedAt int64

	// UpdatedAt is the last content-edit time in Unix nanoseconds. Equals
	// CreatedAt until the first edit.
	UpdatedAt int64
}

// New validates and assembles an Entry ready for persistence. ID and
// timestamps are assigned by the store at insert time.
func New(body, source string, author AuthorKind) (*Entry, error) {
	trimmed, err := ValidateBody(body)
	if err != nil {
		return nil, err
	}
	if !author.Valid() {
		return nil, errors.NewValidation("author kind is required")
	}
	return &Entry{
		Body:   trimmed,
		Source: strings.TrimSpace(source),
		Author: author,
	}, nil
}

// ValidateBody trims body and rejects empty or whitespace-only content.
func ValidateBody(body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", errors.NewValidation("body must not be empty")
	}
	return trimmed, nil
}
