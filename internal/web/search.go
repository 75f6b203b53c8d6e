package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kosara/inventar/internal/store"
)

// Search handles GET /search?q=. Returns a JSON array of item
// summaries; an empty query yields an empty array.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		// Older page scripts used ?query=.
		q = r.URL.Query().Get("query")
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := store.SearchItems(r.Context(), s.DB, q, limit)
	if err != nil {
		slog.Error("search failed", "query", q, "error", err)
		jsonError(w, http.StatusInternalServerError, "search failed")
		return
	}

	jsonResponse(w, http.StatusOK, results)
}
