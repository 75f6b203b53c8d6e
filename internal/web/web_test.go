package web

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kosara/inventar/internal/db"
	"github.com/kosara/inventar/internal/model"
	"github.com/kosara/inventar/internal/store"
	"github.com/kosara/inventar/internal/suggest"
)

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)

	router, err := NewRouter(database, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, database
}

// itemForm builds a multipart form body from the given fields,
// optionally attaching a PNG upload.
func itemForm(t *testing.T, fields map[string]string, imageField string, imageData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if imageField != "" {
		fw, err := mw.CreateFormFile("image", imageField)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		fw.Write(imageData)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for x := 0; x < 20; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.NRGBA{120, 80, 40, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

// addItemXHR creates an item through the XHR add flow and returns the
// redirect target.
func addItemXHR(t *testing.T, server *httptest.Server, fields map[string]string, imageName string, imageData []byte) string {
	t.Helper()
	body, contentType := itemForm(t, fields, imageName, imageData)

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/add-item", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("add-item request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add-item failed: %d", resp.StatusCode)
	}

	var result struct {
		Success  bool   `json:"success"`
		Redirect string `json:"redirect"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if !result.Success || result.Redirect == "" {
		t.Fatalf("unexpected add-item response: %+v", result)
	}
	return result.Redirect
}

func TestIndexPage(t *testing.T) {
	server, database := setupTestServer(t)
	store.CreateItem(context.Background(), database, "Lamp", "", "Office", 1, nil)

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAddItemXHRWithoutImage(t *testing.T) {
	server, database := setupTestServer(t)

	redirect := addItemXHR(t, server, map[string]string{
		"title":    "Lamp",
		"quantity": "2",
	}, "", nil)
	if redirect != "/item/1" {
		t.Errorf("expected redirect to /item/1, got %s", redirect)
	}

	item, err := store.GetItem(context.Background(), database, 1)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", item.Quantity)
	}
	if item.HasImage {
		t.Error("expected item without image")
	}
}

func TestAddItemXHRValidation(t *testing.T) {
	server, _ := setupTestServer(t)
	body, contentType := itemForm(t, map[string]string{"title": ""}, "", nil)

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/add-item", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("add-item request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing title, got %d", resp.StatusCode)
	}
}

func TestAddItemWithUploadedImage(t *testing.T) {
	server, _ := setupTestServer(t)

	redirect := addItemXHR(t, server, map[string]string{"title": "Photo"}, "pic.png", testPNG(t))

	resp, err := http.Get(server.URL + redirect + "/image")
	if err != nil {
		t.Fatalf("GET image: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected image, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", ct)
	}
}

func TestAddItemBadImageStillSaves(t *testing.T) {
	server, database := setupTestServer(t)

	// A corrupt upload degrades to an item without an image.
	addItemXHR(t, server, map[string]string{"title": "Broken"}, "pic.png", []byte("not a png"))

	item, err := store.GetItem(context.Background(), database, 1)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.HasImage {
		t.Error("expected item saved without image")
	}
}

func TestItemDetailNotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/item/999")
	if err != nil {
		t.Fatalf("GET /item/999: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteItemJSON(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()
	item, _ := store.CreateItem(ctx, database, "Delete Me", "", "", 1, nil)

	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/delete/%d", server.URL, item.ID), nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]bool
	json.NewDecoder(resp.Body).Decode(&result)
	if !result["success"] {
		t.Error("expected success response")
	}

	if _, err := store.GetItem(ctx, database, item.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected item gone, got %v", err)
	}

	// Deleting again reports not found.
	req, _ = http.NewRequest(http.MethodPost, fmt.Sprintf("%s/delete/%d", server.URL, item.ID), nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on double delete, got %d", resp2.StatusCode)
	}
}

func TestUpdateQuantityEndpoint(t *testing.T) {
	server, database := setupTestServer(t)
	item, _ := store.CreateItem(context.Background(), database, "Lamp", "", "", 1, nil)

	post := func(quantity string) *http.Response {
		t.Helper()
		resp, err := http.PostForm(
			fmt.Sprintf("%s/item/%d/update_quantity", server.URL, item.ID),
			url.Values{"quantity": {quantity}},
		)
		if err != nil {
			t.Fatalf("update_quantity request: %v", err)
		}
		return resp
	}

	resp := post("5")
	defer resp.Body.Close()
	var result map[string]int
	json.NewDecoder(resp.Body).Decode(&result)
	if result["quantity"] != 5 {
		t.Errorf("expected quantity 5, got %d", result["quantity"])
	}

	resp = post("oops")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unparseable quantity, got %d", resp.StatusCode)
	}

	resp = post("-2")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for negative quantity, got %d", resp.StatusCode)
	}
}

func TestEditLeavesImageWhenNoneSupplied(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()
	item, _ := store.CreateItem(ctx, database, "Lamp", "", "", 1, []byte("image bytes"))

	body, contentType := itemForm(t, map[string]string{
		"title":    "Lamp",
		"quantity": "1",
	}, "", nil)
	resp, err := http.Post(fmt.Sprintf("%s/item/%d/edit", server.URL, item.ID), contentType, body)
	if err != nil {
		t.Fatalf("edit request: %v", err)
	}
	resp.Body.Close()

	data, _ := store.GetItemImage(ctx, database, item.ID)
	if string(data) != "image bytes" {
		t.Error("expected existing image untouched by an edit without an image")
	}

	// The remove_image checkbox clears it.
	body, contentType = itemForm(t, map[string]string{
		"title":        "Lamp",
		"quantity":     "1",
		"remove_image": "1",
	}, "", nil)
	resp, err = http.Post(fmt.Sprintf("%s/item/%d/edit", server.URL, item.ID), contentType, body)
	if err != nil {
		t.Fatalf("edit request: %v", err)
	}
	resp.Body.Close()

	data, _ = store.GetItemImage(ctx, database, item.ID)
	if data != nil {
		t.Error("expected image cleared")
	}
}

func TestSearchEndpoint(t *testing.T) {
	server, database := setupTestServer(t)
	ctx := context.Background()
	store.CreateItem(ctx, database, "Desk Lamp", "", "", 1, nil)
	store.CreateItem(ctx, database, "Chair", "", "", 1, nil)

	resp, err := http.Get(server.URL + "/search?q=lamp")
	if err != nil {
		t.Fatalf("GET /search: %v", err)
	}
	defer resp.Body.Close()

	var results []model.ItemSummary
	json.NewDecoder(resp.Body).Decode(&results)
	if len(results) != 1 || results[0].Title != "Desk Lamp" {
		t.Errorf("unexpected search results: %+v", results)
	}

	// Empty query yields an empty array.
	resp2, err := http.Get(server.URL + "/search?q=")
	if err != nil {
		t.Fatalf("search request failed: %v", err)
	}
	defer resp2.Body.Close()
	var empty []model.ItemSummary
	json.NewDecoder(resp2.Body).Decode(&empty)
	if len(empty) != 0 {
		t.Errorf("expected no results for empty query, got %d", len(empty))
	}
}

func TestLocationsEndpoints(t *testing.T) {
	server, _ := setupTestServer(t)

	postLocation := func(name string) map[string]bool {
		t.Helper()
		body, _ := json.Marshal(map[string]string{"name": name})
		resp, err := http.Post(server.URL+"/locations", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST /locations: %v", err)
		}
		defer resp.Body.Close()
		var result map[string]bool
		json.NewDecoder(resp.Body).Decode(&result)
		return result
	}

	if result := postLocation("Garage"); !result["success"] {
		t.Error("expected first add to succeed")
	}
	if result := postLocation("Garage"); result["success"] {
		t.Error("expected duplicate add to report success=false")
	}
	if result := postLocation(""); result["success"] {
		t.Error("expected empty name to report success=false")
	}

	resp, err := http.Get(server.URL + "/locations")
	if err != nil {
		t.Fatalf("GET /locations: %v", err)
	}
	defer resp.Body.Close()
	var names []string
	json.NewDecoder(resp.Body).Decode(&names)
	if len(names) != 1 || names[0] != "Garage" {
		t.Errorf("unexpected locations: %v", names)
	}
}

func TestSuggestionsUnavailableWithoutClient(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"title": "Lamp"})
	resp, err := http.Post(server.URL+"/get_suggestions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /get_suggestions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a configured client, got %d", resp.StatusCode)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	// Mock the generation API and wire a real client through the router.
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{
					map[string]any{"text": `Here you go: [{"title":"Desk Lamp","description":"A lamp"}]`},
				}}},
			},
		})
	}))
	defer mock.Close()

	database := db.NewTestDB(t)
	client, err := suggest.NewClient(suggest.Config{APIKey: "k", APIURL: mock.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	router, err := NewRouter(database, client)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	server := httptest.NewServer(router)
	defer server.Close()

	body, _ := json.Marshal(map[string]string{"title": "Lamp"})
	resp, err := http.Post(server.URL+"/get_suggestions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /get_suggestions: %v", err)
	}
	defer resp.Body.Close()

	var candidates []model.Candidate
	json.NewDecoder(resp.Body).Decode(&candidates)
	if len(candidates) != 1 || candidates[0].Title != "Desk Lamp" {
		t.Errorf("unexpected candidates: %+v", candidates)
	}
	if !strings.Contains(candidates[0].ImageURL, "Desk+Lamp") {
		t.Errorf("expected synthesized image URL, got %s", candidates[0].ImageURL)
	}
}

func TestListPastTheEnd(t *testing.T) {
	server, database := setupTestServer(t)
	store.CreateItem(context.Background(), database, "Only", "", "", 1, nil)

	resp, err := http.Get(server.URL + "/?page=42")
	if err != nil {
		t.Fatalf("GET /?page=42: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for page past the end, got %d", resp.StatusCode)
	}
}
