package entry

import (
	"testing"

	"github.com/hpungsan/hl/internal/errors"
)

func TestNew_Valid(t *testing.T) {
	e, err := New("hello world", "https://example.com", Human())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if e.Body != "hello world" {
		t.Errorf("Body = %q, want %q", e.Body, "hello world")
	}
	if e.Source != "https://example.com" {
		t.Errorf("Source = %q, want %q", e.Source, "https://example.com")
	}
	if e.Author != Human() {
		t.Errorf("Author = %v, want human", e.Author)
	}
	if e.ID != 0 {
		t.Errorf("ID = %d, want 0 before persistence", e.ID)
	}
}

func TestNew_TrimsBodyAndSource(t *testing.T) {
	e, err := New("  padded  ", "  url  ", Human())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if e.Body != "padded" {
		t.Errorf("Body = %q, want %q", e.Body, "padded")
	}
	if e.Source != "url" {
		t.Errorf("Source = %q, want %q", e.Source, "url")
	}
}

func TestNew_EmptyBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"newlines and tabs", "\n\t \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.body, "", Human())
			if !errors.Is(err, errors.ErrValidation) {
				t.Errorf("New(%q) error = %v, want VALIDATION", tt.body, err)
			}
		})
	}
}

func TestNew_ZeroAuthor(t *testing.T) {
	_, err := New("body", "", AuthorKind{})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("New with zero author error = %v, want VALIDATION", err)
	}
}

func TestValidateBody(t *testing.T) {
	got, err := ValidateBody("  keep me  ")
	if err != nil {
		t.Fatalf("ValidateBody failed: %v", err)
	}
	if got != "keep me" {
		t.Errorf("ValidateBody = %q, want %q", got, "keep me")
	}

	if _, err := ValidateBody(" \t "); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("ValidateBody(whitespace) error = %v, want VALIDATION", err)
	}
}
