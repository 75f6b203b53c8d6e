package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/kosara/inventar/internal/store"
)

// LocationsList handles GET /locations: a JSON array of known location
// names for the filter dropdown and autocomplete.
func (s *Server) LocationsList(w http.ResponseWriter, r *http.Request) {
	locations, err := store.ListLocations(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list locations")
		return
	}

	names := []string{}
	for _, l := range locations {
		names = append(names, l.Name)
	}
	jsonResponse(w, http.StatusOK, names)
}

// LocationAdd handles POST /locations. Accepts a JSON body or a form
// field; answers {"success": false} for empty or duplicate names.
func (s *Server) LocationAdd(w http.ResponseWriter, r *http.Request) {
	var name string
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		name = req.Name
	} else {
		name = r.FormValue("name")
	}

	added, err := store.AddLocation(r.Context(), s.DB, name)
	if err != nil {
		slog.Error("failed to add location", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to add location")
		return
	}

	if added {
		slog.Info("location added", "name", name)
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"success": added})
}
