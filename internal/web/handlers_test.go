package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hpungsan/hl/internal/config"
	"github.com/hpungsan/hl/internal/db"
	"github.com/hpungsan/hl/internal/entry"
	"github.com/hpungsan/hl/internal/ops"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer := NewRenderer(templateSub, "test")

	return &Handlers{
		db:       database,
		cfg:      cfg,
		renderer: renderer,
	}
}

// seedEntry stores a highlight and returns its id.
func seedEntry(t *testing.T, h *Handlers, body, source string, author entry.AuthorKind) int64 {
	t.Helper()
	out, err := ops.Add(context.Background(), h.db, ops.AddInput{
		Body:   body,
		Source: source,
		Author: author,
	})
	if err != nil {
		t.Fatalf("seed entry %q: %v", body, err)
	}
	return out.Entry.ID
}

// --- HandleList ---

func TestHandleList_Default(t *testing.T) {
	h := setupTest(t)
	seedEntry(t, h, "The first highlight worth keeping.", "", entry.Human())
	seedEntry(t, h, "A second thought entirely.", "", entry.AI("claude"))

	req := httptest.NewRequest("GET", "/entries", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "The first highlight worth keeping.") {
		t.Error("expected first entry body in response")
	}
	if !strings.Contains(body, "A second thought entirely.") {
		t.Error("expected second entry body in response")
	}
	if !strings.Contains(body, "Highlights") {
		t.Error("expected page title in response")
	}
}

func TestHandleList_AuthorFilter(t *testing.T) {
	h := setupTest(t)
	seedEntry(t, h, "typed by hand", "", entry.Human())
	seedEntry(t, h, "captured by an agent", "", entry.AI("claude"))

	req := httptest.NewRequest("GET", "/entries?author=ai", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "captured by an agent") {
		t.Error("expected ai entry in filtered response")
	}
	if strings.Contains(body, "typed by hand") {
		t.Error("human entry leaked through ai filter")
	}
}

func TestHandleList_InvalidAuthorFilter(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/entries?author=robot", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleList_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/entries", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No highlights yet.") {
		t.Error("expected empty state message")
	}
}

func TestHandleList_LimitParam(t *testing.T) {
	h := setupTest(t)
	seedEntry(t, h, "older entry", "", entry.Human())
	seedEntry(t, h, "newer entry", "", entry.Human())

	req := httptest.NewRequest("GET", "/entries?limit=1", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "newer entry") {
		t.Error("expected newest entry with limit=1")
	}
	if strings.Contains(body, "older entry") {
		t.Error("limit=1 should drop the older entry")
	}
}

// --- HandleSearch ---

func TestHandleSearch_EmptyQueryShowsForm(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/entries/search", nil)
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "search-form") {
		t.Error("expected search form in response")
	}
	if strings.Contains(body, "result") {
		t.Error("empty query should not render a results section")
	}
}

func TestHandleSearch_Results(t *testing.T) {
	h := setupTest(t)
	seedEntry(t, h, "Premature optimization is the root of all evil.", "Knuth", entry.Human())
	seedEntry(t, h, "A note about gardening on weekends.", "", entry.Human())

	req := httptest.NewRequest("GET", "/entries/search?q=optimization", nil)
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Premature optimization") {
		t.Error("expected matching entry in results")
	}
	if strings.Contains(body, "gardening") {
		t.Error("unrelated entry leaked into results")
	}
}

func TestHandleSearch_NoMatches(t *testing.T) {
	h := setupTest(t)
	seedEntry(t, h, "something entirely different", "", entry.Human())

	req := httptest.NewRequest("GET", "/entries/search?q=nonexistent", nil)
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No highlights found") {
		t.Error("expected no-results message")
	}
}

// --- HandleDetail ---

func TestHandleDetail(t *testing.T) {
	h := setupTest(t)
	id := seedEntry(t, h, "Simplicity is prerequisite for reliability.", "https://example.com/ewd", entry.Human())

	req := httptest.NewRequest("GET", "/entries/1", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Simplicity is prerequisite for reliability.") {
		t.Error("expected entry body in response")
	}
	if !strings.Contains(body, `href="https://example.com/ewd"`) {
		t.Error("expected source rendered as a link")
	}
	if id != 1 {
		t.Fatalf("seed id = %d, want 1", id)
	}
}

func TestHandleDetail_RendersMarkdown(t *testing.T) {
	h := setupTest(t)
	seedEntry(t, h, "Some **bold** claims here.", "", entry.Human())

	req := httptest.NewRequest("GET", "/entries/1", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<strong>bold</strong>") {
		t.Error("expected markdown emphasis rendered to HTML")
	}
}

func TestHandleDetail_BodyCannotInjectHTML(t *testing.T) {
	h := setupTest(t)
	seedEntry(t, h, `a quote with <script>alert("x")</script> inside`, "", entry.Human())

	req := httptest.NewRequest("GET", "/entries/1", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<script>alert") {
		t.Error("raw HTML from entry body must not reach the page")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/entries/999", nil)
	req.SetPathValue("id", "999")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDetail_NotFoundJSON(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/entries/999", nil)
	req.SetPathValue("id", "999")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatal("expected error object in JSON response")
	}
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("error code = %v, want NOT_FOUND", errObj["code"])
	}
}

func TestHandleDetail_InvalidID(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/entries/abc", nil)
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- Server wiring ---

func TestNewServer_RootRedirect(t *testing.T) {
	h := setupTest(t)
	srv := NewServer(h.db, h.cfg, "test", "127.0.0.1", 0)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/entries" {
		t.Errorf("redirect location = %q, want /entries", loc)
	}
}

func TestNewServer_StaticCSS(t *testing.T) {
	h := setupTest(t)
	srv := NewServer(h.db, h.cfg, "test", "127.0.0.1", 0)

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestNewServer_SecurityHeaders(t *testing.T) {
	h := setupTest(t)
	srv := NewServer(h.db, h.cfg, "test", "127.0.0.1", 0)

	req := httptest.NewRequest("GET", "/entries", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	headers := map[string]string{
		"Content-Security-Policy": "default-src 'self'; script-src 'none'; style-src 'self'",
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestNewServer_WriteMethodsRejected(t *testing.T) {
	h := setupTest(t)
	seedEntry(t, h, "immutable through the web", "", entry.Human())
	srv := NewServer(h.db, h.cfg, "test", "127.0.0.1", 0)

	for _, method := range []string{"POST", "PUT", "DELETE"} {
		req := httptest.NewRequest(method, "/entries/1", nil)
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s status = %d, want 405", method, rec.Code)
		}
	}
}
