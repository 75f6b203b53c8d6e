package web

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/kosara/inventar/internal/imaging"
	"github.com/kosara/inventar/internal/model"
	"github.com/kosara/inventar/internal/store"
)

// maxUploadBytes caps request bodies carrying image uploads.
const maxUploadBytes = 16 << 20

// indexData is the template data for the listing page.
type indexData struct {
	PageData
	Page      *model.ItemPage
	Locations []model.Location
	Location  string
	Sort      string
}

// Index handles GET /: the paginated, filtered, sorted item listing.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageNum, _ := strconv.Atoi(q.Get("page"))

	page, err := store.ListItems(r.Context(), s.DB, store.ListOptions{
		Page:     pageNum,
		Location: q.Get("location"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		slog.Error("failed to list items", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	locations, err := store.ListLocations(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
	}

	data := &indexData{
		PageData:  PageData{Title: "Inventory"},
		Page:      page,
		Locations: locations,
		Location:  q.Get("location"),
		Sort:      q.Get("sort"),
	}
	if q.Get("error") == "add" {
		data.Error = "Error adding item. Please try again."
	}
	s.Templates.Render(w, "index.html", data)
}

// ItemCreateSubmit handles POST /: item creation from the listing page form.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	item, err := s.createItemFromForm(w, r)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		http.Redirect(w, r, "/?error=add", http.StatusSeeOther)
		return
	}

	slog.Info("item created", "item", item.Title, "id", item.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AddItemPage handles GET /add-item.
func (s *Server) AddItemPage(w http.ResponseWriter, r *http.Request) {
	locations, err := store.ListLocations(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
	}

	s.Templates.Render(w, "add_item.html", &struct {
		PageData
		Locations []model.Location
	}{
		PageData:  PageData{Title: "Add item"},
		Locations: locations,
	})
}

// AddItemSubmit handles POST /add-item. The page scripts submit via
// XHR and expect a JSON answer; a plain form submit gets a redirect.
func (s *Server) AddItemSubmit(w http.ResponseWriter, r *http.Request) {
	item, err := s.createItemFromForm(w, r)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		if wantsJSON(r) {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrValidation) {
				status = http.StatusBadRequest
			}
			jsonError(w, status, "error adding item")
			return
		}
		http.Redirect(w, r, "/?error=add", http.StatusSeeOther)
		return
	}

	slog.Info("item created", "item", item.Title, "id", item.ID)
	if wantsJSON(r) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":  true,
			"redirect": fmt.Sprintf("/item/%d", item.ID),
		})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/item/%d", item.ID), http.StatusSeeOther)
}

// createItemFromForm reads the add-item form and persists the item.
// Image problems degrade to an item without an image.
func (s *Server) createItemFromForm(w http.ResponseWriter, r *http.Request) (*model.Item, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parsing form: %w", err)
	}

	quantity, err := formQuantity(r, 1)
	if err != nil {
		return nil, err
	}

	image := s.resolveFormImage(r)
	return store.CreateItem(r.Context(), s.DB,
		r.FormValue("title"), r.FormValue("description"), r.FormValue("location"),
		quantity, image,
	)
}

// ItemDetail handles GET /item/{id}.
func (s *Server) ItemDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	item, err := store.GetItem(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "item.html", &struct {
		PageData
		Item *model.Item
	}{
		PageData: PageData{Title: item.Title},
		Item:     item,
	})
}

// ItemImage handles GET /item/{id}/image.
func (s *Server) ItemImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, err := store.GetItemImage(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get image", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	// Stored images are always normalized JPEG.
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}

// EditItemPage handles GET /item/{id}/edit.
func (s *Server) EditItemPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	item, err := store.GetItem(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	locations, err := store.ListLocations(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
	}

	s.Templates.Render(w, "edit_item.html", &struct {
		PageData
		Item      *model.Item
		Locations []model.Location
	}{
		PageData:  PageData{Title: "Edit " + item.Title},
		Item:      item,
		Locations: locations,
	})
}

// EditItemSubmit handles POST /item/{id}/edit and POST /edit-item/{id}.
// With neither a new file nor a URL the stored image is left untouched;
// the remove_image checkbox clears it.
func (s *Server) EditItemSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "form too large or invalid", http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	location := r.FormValue("location")
	quantity, err := formQuantity(r, 1)
	if err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	up := store.ItemUpdate{
		Title:       &title,
		Description: &description,
		Location:    &location,
		Quantity:    &quantity,
	}
	if r.FormValue("remove_image") != "" {
		up.Image = store.ImageClear
	} else if image := s.resolveFormImage(r); image != nil {
		up.Image = store.ImageReplace
		up.ImageData = image
	}

	item, err := store.UpdateItem(r.Context(), s.DB, id, up)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, store.ErrValidation) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("failed to update item", "error", err)
		http.Error(w, "failed to update", http.StatusInternalServerError)
		return
	}

	slog.Info("item updated", "item", item.Title, "id", item.ID)
	http.Redirect(w, r, fmt.Sprintf("/item/%d", id), http.StatusSeeOther)
}

// DeleteItem handles POST /delete/{id}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err = store.DeleteItem(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		if wantsJSON(r) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to delete item", "error", err)
		if wantsJSON(r) {
			jsonError(w, http.StatusInternalServerError, "error deleting item")
			return
		}
		http.Error(w, "error deleting item", http.StatusInternalServerError)
		return
	}

	slog.Info("item deleted", "id", id)
	if wantsJSON(r) {
		jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UpdateQuantity handles POST /item/{id}/update_quantity.
func (s *Server) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid quantity")
		return
	}

	item, err := store.UpdateQuantity(r.Context(), s.DB, id, quantity)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if errors.Is(err, store.ErrValidation) {
		jsonError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}
	if err != nil {
		slog.Error("failed to update quantity", "error", err)
		jsonError(w, http.StatusInternalServerError, "error updating quantity")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]int{"quantity": item.Quantity})
}

// resolveFormImage pulls an image out of the submitted form, from an
// uploaded file or a remote URL. Failures degrade to no image so a bad
// image never blocks recording the item.
func (s *Server) resolveFormImage(r *http.Request) []byte {
	var file multipart.File
	var header *multipart.FileHeader
	if f, h, err := r.FormFile("image"); err == nil {
		defer f.Close()
		file = f
		header = h
	}

	data, err := imaging.Resolve(r.Context(), file, header, r.FormValue("image_url"))
	if err != nil {
		slog.Warn("image resolution failed, saving item without image", "error", err)
		return nil
	}
	return data
}

// formQuantity parses the quantity form field, defaulting when absent.
func formQuantity(r *http.Request, def int) (int, error) {
	v := r.FormValue("quantity")
	if v == "" {
		return def, nil
	}
	quantity, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", v, store.ErrValidation)
	}
	return quantity, nil
}
