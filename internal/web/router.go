package web

import (
	"database/sql"
	"net/http"

	"github.com/kosara/inventar/internal/suggest"
	webembed "github.com/kosara/inventar/web"
)

// NewRouter creates the router with all routes registered. suggester
// may be nil when no API key is configured.
func NewRouter(db *sql.DB, suggester *suggest.Client) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		Suggester: suggester,
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Listing and item pages.
	mux.HandleFunc("GET /{$}", s.Index)
	mux.HandleFunc("POST /{$}", s.ItemCreateSubmit)
	mux.HandleFunc("GET /item/{id}", s.ItemDetail)
	mux.HandleFunc("GET /item/{id}/image", s.ItemImage)
	mux.HandleFunc("GET /add-item", s.AddItemPage)
	mux.HandleFunc("POST /add-item", s.AddItemSubmit)
	mux.HandleFunc("GET /item/{id}/edit", s.EditItemPage)
	mux.HandleFunc("POST /item/{id}/edit", s.EditItemSubmit)
	mux.HandleFunc("POST /edit-item/{id}", s.EditItemSubmit)
	mux.HandleFunc("POST /delete/{id}", s.DeleteItem)
	mux.HandleFunc("POST /item/{id}/update_quantity", s.UpdateQuantity)

	// JSON endpoints used by the page scripts.
	mux.HandleFunc("GET /search", s.Search)
	mux.HandleFunc("GET /locations", s.LocationsList)
	mux.HandleFunc("POST /locations", s.LocationAdd)
	mux.HandleFunc("POST /get_suggestions", s.GetSuggestions)

	return mux, nil
}
