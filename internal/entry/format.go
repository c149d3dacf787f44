package entry

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// previewRunes bounds the first-line preview in short listings.
const previewRunes = 60

var (
	idStyle   = lipgloss.NewStyle().Bold(true)
	metaStyle = lipgloss.NewStyle().Faint(true)
)

// FormatShort renders the two-line list form:
//
//	[id] 2025-06-01 10:22 (ai:claude)  knuth.pdf
//	     Premature optimization is the root of all evil
//
// The author mark is omitted for human entries. With color enabled the id is
// bold and the metadata dimmed.
func FormatShort(e *Entry, color bool) string {
	meta := ShortMeta(e)
	preview := Preview(e.Body)
	if color {
		return fmt.Sprintf("%s %s\n     %s",
			idStyle.Render(fmt.Sprintf("[%d]", e.ID)),
			metaStyle.Render(meta),
			preview)
	}
	return fmt.Sprintf("[%d] %s\n     %s", e.ID, meta, preview)
}

// ShortMeta renders the metadata portion of the short form: timestamp,
// author mark for AI entries, and the source when present.
func ShortMeta(e *Entry) string {
	var b strings.Builder
	b.WriteString(formatShortTime(e.CreatedAt))
	if e.Author.IsAI() {
		b.WriteString(" (")
		b.WriteString(e.Author.String())
		b.WriteString(")")
	}
	if e.Source != "" {
		b.WriteString("  ")
		b.WriteString(e.Source)
	}
	return b.String()
}

// FormatFull renders the complete entry:
//
//	id: 2
//	author: ai:claude
//	created: 2025-06-01 10:22:03
//	source: knuth.pdf
//
//	Premature optimization is the root of all evil
//
// The source line is omitted when empty; an updated line appears once the
// entry has been edited.
func FormatFull(e *Entry) string {
	lines := []string{
		fmt.Sprintf("id: %d", e.ID),
		fmt.Sprintf("author: %s", e.Author),
		fmt.Sprintf("created: %s", formatFullTime(e.CreatedAt)),
	}
	if e.UpdatedAt != e.CreatedAt {
		lines = append(lines, fmt.Sprintf("updated: %s", formatFullTime(e.UpdatedAt)))
	}
	if e.Source != "" {
		lines = append(lines, fmt.Sprintf("source: %s", e.Source))
	}
	lines = append(lines, "", e.Body)
	return strings.Join(lines, "\n")
}

// Preview returns the first line of body truncated to previewRunes runes.
func Preview(body string) string {
	first, _, _ := strings.Cut(body, "\n")
	runes := []rune(first)
	if len(runes) > previewRunes {
		return string(runes[:previewRunes])
	}
	return first
}

func formatShortTime(unixNano int64) string {
	return time.Unix(0, unixNano).Format("2006-01-02 15:04")
}

func formatFullTime(unixNano int64) string {
	return time.Unix(0, unixNano).Format("2006-01-02 15:04:05")
}
