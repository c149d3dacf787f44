package ops

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/hl/internal/db"
	"github.com/hpungsan/hl/internal/entry"
)

func TestExport(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	first, err := Add(ctx, database, AddInput{
		Body:   "First highlight.",
		Source: "book one",
		Author: entry.Human(),
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := Add(ctx, database, AddInput{
		Body:   "Second highlight.",
		Author: entry.AI("claude"),
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	exportPath := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := Export(ctx, database, tmpDir, ExportInput{Path: exportPath})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}
	if out.Path != exportPath {
		t.Errorf("Path = %q, want %q", out.Path, exportPath)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("export has %d lines, want 3 (header + 2 records)", len(lines))
	}

	var header ExportHeader
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatalf("failed to parse header: %v", err)
	}
	if !header.HLExport {
		t.Error("header.HLExport = false, want true")
	}
	if header.SchemaVersion != ExportSchemaVersion {
		t.Errorf("header.SchemaVersion = %q, want %q", header.SchemaVersion, ExportSchemaVersion)
	}

	var record entry.ExportRecord
	if err := json.Unmarshal([]byte(lines[1]), &record); err != nil {
		t.Fatalf("failed to parse record: %v", err)
	}
	if record.ID != first.Entry.ID {
		t.Errorf("record.ID = %d, want %d", record.ID, first.Entry.ID)
	}
	if record.Body != "First highlight." {
		t.Errorf("record.Body = %q, want %q", record.Body, "First highlight.")
	}
	if record.Source != "book one" {
		t.Errorf("record.Source = %q, want %q", record.Source, "book one")
	}
	if record.Author != "human" {
		t.Errorf("record.Author = %q, want %q", record.Author, "human")
	}
}

func TestExport_DefaultPath(t *testing.T) {
	stateDir := t.TempDir()
	database, err := db.Init(stateDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	defer database.Close()

	out, err := Export(context.Background(), database, stateDir, ExportInput{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	wantDir := filepath.Join(stateDir, "exports")
	if filepath.Dir(out.Path) != wantDir {
		t.Errorf("Path dir = %q, want %q", filepath.Dir(out.Path), wantDir)
	}
	base := filepath.Base(out.Path)
	if !strings.HasPrefix(base, "highlights-") || !strings.HasSuffix(base, ".jsonl") {
		t.Errorf("Path base = %q, want highlights-<timestamp>.jsonl", base)
	}
	if _, err := os.Stat(out.Path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestExport_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	defer database.Close()

	exportPath := filepath.Join(t.TempDir(), "empty.jsonl")
	out, err := Export(context.Background(), database, tmpDir, ExportInput{Path: exportPath})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("Count = %d, want 0", out.Count)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Errorf("export has %d lines, want 1 (header only)", len(lines))
	}
}
