package web

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/hpungsan/hl/internal/config"
	"github.com/hpungsan/hl/internal/errors"
	"github.com/hpungsan/hl/internal/ops"
)

// Handlers contains HTTP route handlers for the highlight viewer.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /entries, the most recent highlights first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	author := r.URL.Query().Get("author")

	result, err := ops.Recent(r.Context(), h.db, ops.RecentInput{
		Limit:  parseIntParam(r, "limit", h.cfg.Limits.Recent),
		Author: author,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Highlights",
			Version: h.renderer.version,
			Nav:     "entries",
		},
		Entries: result.Entries,
		Author:  author,
		Count:   len(result.Entries),
	})
}

// HandleSearch handles GET /entries/search. An empty q renders the bare
// search form rather than a validation error; the box starts empty on every
// first visit.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	data := SearchPageData{
		PageData: PageData{
			Title:   "Search",
			Version: h.renderer.version,
			Nav:     "search",
		},
		Query:    query,
		HasQuery: query != "",
	}

	if query == "" {
		h.renderer.renderPage(w, "search", data)
		return
	}

	result, err := ops.Search(r.Context(), h.db, ops.SearchInput{
		Query: query,
		Limit: parseIntParam(r, "limit", h.cfg.Limits.Search),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data.Results = result.Results
	h.renderer.renderPage(w, "search", data)
}

// HandleDetail handles GET /entries/{id}, one highlight rendered in full.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("entry id must be an integer"))
		return
	}

	result, err := ops.Get(r.Context(), h.db, ops.GetInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	e := result.Entry
	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   "Highlight #" + strconv.FormatInt(e.ID, 10),
			Version: h.renderer.version,
			Nav:     "entries",
		},
		Entry:        e,
		RenderedBody: renderMarkdown(e.Body),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
