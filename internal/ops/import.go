package ops

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hpungsan/hl/internal/db"
	"github.com/hpungsan/hl/internal/entry"
	"github.com/hpungsan/hl/internal/errors"
)

// maxImportLineBytes bounds a single JSONL line; bodies can exceed
// bufio.Scanner's default token size.
const maxImportLineBytes = 1 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError describes a line that could not be imported.
type ImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Import reads a JSONL export file and stores its records as new entries.
// Ids are reassigned by the store; body, source, author, and timestamps
// are preserved. Malformed records are skipped and reported, not fatal.
func Import(ctx context.Context, database *sql.DB, input ImportInput) (*ImportOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return nil, errors.NewValidation("path is required")
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewValidation(fmt.Sprintf("no such file: %s", path))
		}
		return nil, errors.NewInternal(fmt.Errorf("open import file: %w", err))
	}
	defer file.Close()

	out := &ImportOutput{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLineBytes)

	lineNum := 0
	sawHeader := false
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record entry.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    lineNum,
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			out.Skipped++
			continue
		}

		if record.HLExport {
			if record.SchemaVersion != ExportSchemaVersion {
				return nil, errors.NewValidation(fmt.Sprintf("unsupported export schema version %q", record.SchemaVersion))
			}
			sawHeader = true
			continue
		}

		// The header must precede any data line.
		if !sawHeader {
			return nil, errors.NewValidation("not an export file (missing header line)")
		}

		e, err := record.ToEntry()
		if err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    lineNum,
				Message: err.Error(),
			})
			out.Skipped++
			continue
		}

		if err := db.InsertEntry(ctx, database, e); err != nil {
			return nil, err
		}
		out.Imported++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("read import file: %w", err))
	}
	if !sawHeader {
		return nil, errors.NewValidation("not an export file (missing header line)")
	}

	return out, nil
}
