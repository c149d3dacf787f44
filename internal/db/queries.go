package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/hl/internal/entry"
	"github.com/hpungsan/hl/internal/errors"
)

const entryColumns = "id, body, source, author, created_at, updated_at"

// InsertEntry stores a new entry and fills in its assigned id and
// timestamps. CreatedAt/UpdatedAt are honored when pre-set (import
// preserves original times); otherwise both are set to now. The FTS rows
// are derived by the insert trigger inside the same transaction.
func InsertEntry(ctx context.Context, db *sql.DB, e *entry.Entry) error {
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixNano()
	}
	if e.UpdatedAt == 0 {
		e.UpdatedAt = e.CreatedAt
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"INSERT INTO entries (body, source, author, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		e.Body, e.Source, e.Author.String(), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return storeErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	e.ID = id

	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}
	return nil
}

// GetEntry retrieves an entry by id. Deleted ids yield NOT_FOUND.
func GetEntry(ctx context.Context, db *sql.DB, id int64) (*entry.Entry, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE id = ?", id)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return e, nil
}

// UpdateEntry replaces an entry's body (and source, when non-nil) and bumps
// updated_at to a strictly greater value. Author and created_at are never
// touched. The update trigger re-derives the FTS rows in the same
// transaction, so no stale index rows can survive a commit.
func UpdateEntry(ctx context.Context, db *sql.DB, id int64, body string, source *string) (*entry.Entry, error) {
	now := time.Now().UnixNano()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr(err)
	}
	defer tx.Rollback()

	// MAX(?, updated_at+1) keeps updated_at strictly increasing even if
	// the wall clock stalls or steps backwards between writes.
	result, err := tx.ExecContext(ctx, `
		UPDATE entries
		SET body = ?, source = COALESCE(?, source), updated_at = MAX(?, updated_at + 1)
		WHERE id = ?`,
		body, toNullString(source), now, id,
	)
	if err != nil {
		return nil, storeErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return nil, errors.NewNotFound(id)
	}

	row := tx.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	e, err := scanEntry(row)
	if err != nil {
		return nil, storeErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr(err)
	}
	return e, nil
}

// DeleteEntry removes an entry and, via the delete trigger, its index rows
// in one transaction. Unknown ids yield NOT_FOUND; a second delete of the
// same id therefore also yields NOT_FOUND.
func DeleteEntry(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return storeErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// ListRecent returns entries ordered by creation time, newest first.
// authorFilter restricts results when non-empty: a full kind matches
// exactly ("human", "ai:claude"), a bare prefix matches every agent
// ("ai" matches all "ai:*").
func ListRecent(ctx context.Context, db *sql.DB, authorFilter string, limit int) ([]*entry.Entry, error) {
	query := "SELECT " + entryColumns + " FROM entries"
	args := []any{}
	if authorFilter != "" {
		query += " WHERE (author = ? OR author LIKE ? || ':%')"
		args = append(args, authorFilter, authorFilter)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	entries := make([]*entry.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}

// StreamForExport returns all entries ordered by id. The caller owns the
// returned rows and must close them.
func StreamForExport(ctx context.Context, db *sql.DB) (*sql.Rows, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries ORDER BY id")
	if err != nil {
		return nil, storeErr(err)
	}
	return rows, nil
}

// ScanEntryFromRows scans the current row of a StreamForExport result set.
func ScanEntryFromRows(rows *sql.Rows) (*entry.Entry, error) {
	return scanEntry(rows)
}

// CountEntries returns the total number of stored entries.
func CountEntries(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry scans a single row into an Entry.
func scanEntry(row rowScanner) (*entry.Entry, error) {
	var (
		e      entry.Entry
		author string
	)
	if err := row.Scan(&e.ID, &e.Body, &e.Source, &author, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	kind, err := entry.ParseAuthorKind(author)
	if err != nil {
		return nil, err
	}
	e.Author = kind

	return &e, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
