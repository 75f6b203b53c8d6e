package model

// Candidate is an AI-suggested item that has not been persisted.
// ImageURL is synthesized locally, never taken from model output.
type Candidate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}
