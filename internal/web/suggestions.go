package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/kosara/inventar/internal/model"
)

// GetSuggestions handles POST /get_suggestions: asks the suggestion
// service for catalog candidates matching the submitted title. Failures
// stay scoped to this endpoint; the rest of the page keeps working.
func (s *Server) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	if s.Suggester == nil {
		jsonError(w, http.StatusServiceUnavailable, "suggestions are not configured")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		req.Title = r.FormValue("title")
	}
	if strings.TrimSpace(req.Title) == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}

	candidates, err := s.Suggester.Suggest(r.Context(), req.Title)
	if err != nil {
		slog.Warn("suggestion request failed", "title", req.Title, "error", err)
		jsonError(w, http.StatusBadGateway, "could not get suggestions")
		return
	}
	if candidates == nil {
		candidates = []model.Candidate{}
	}

	jsonResponse(w, http.StatusOK, candidates)
}
