// Package ops implements the operations shared by the CLI, the MCP server,
// and the web viewer. Each operation validates its input, applies defaults,
// and delegates persistence to the db package.
package ops

import (
	"github.com/hpungsan/hl/internal/errors"
)

// Limits applied when callers pass no explicit value.
const (
	DefaultRecentLimit = 20
	DefaultSearchLimit = 20
	MaxLimit           = 100
)

// clampLimit applies the default and the upper bound for list operations.
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ValidateID rejects ids that can never address an entry.
func ValidateID(id int64) error {
	if id <= 0 {
		return errors.NewValidation("id must be a positive integer")
	}
	return nil
}
