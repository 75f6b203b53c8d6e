package model

// Location is a named place items can be stored at, used for the
// filter dropdown and autocomplete. Names are unique.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
