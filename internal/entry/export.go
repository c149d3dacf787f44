package entry

// ExportRecord represents an entry record in JSONL export format.
// It is also used for parsing export files during import.
type ExportRecord struct {
	// Header detection field, true only for the header line
	HLExport bool `json:"hl_export,omitempty"`

	// Header fields (only present in the header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	// Entry fields
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	Source    string `json:"source,omitempty"`
	Author    string `json:"author"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// ToEntry converts an ExportRecord to an Entry, validating body and author.
// The record id is informational only; the store assigns a fresh id on
// import. Timestamps are carried through unchanged.
func (r *ExportRecord) ToEntry() (*Entry, error) {
	author, err := ParseAuthorKind(r.Author)
	if err != nil {
		return nil, err
	}
	e, err := New(r.Body, r.Source, author)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = r.CreatedAt
	e.UpdatedAt = r.UpdatedAt
	return e, nil
}

// ToExportRecord converts an Entry to an ExportRecord for export.
func ToExportRecord(e *Entry) *ExportRecord {
	return &ExportRecord{
		ID:        e.ID,
		Body:      e.Body,
		Source:    e.Source,
		Author:    e.Author.String(),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
