package model

import "time"

// Item represents an inventory item. Image bytes are stored in the
// database and fetched separately; HasImage signals presence.
type Item struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Quantity    int       `json:"quantity"`
	HasImage    bool      `json:"has_image"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemSummary is the compact item shape returned by search.
type ItemSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// ItemPage is one page of a paginated item listing.
type ItemPage struct {
	Items      []Item `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalItems int    `json:"total_items"`
	TotalPages int    `json:"total_pages"`
}

// Sort orders for item listings.
const (
	SortDateDesc  = "date_desc"
	SortDateAsc   = "date_asc"
	SortTitleAsc  = "title_asc"
	SortTitleDesc = "title_desc"
)
