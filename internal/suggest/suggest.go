// Package suggest generates catalog entry candidates for an item title
// using the Gemini Generative Language API. The model's raw text reply
// is not guaranteed to be pure JSON, so the candidate array is carved
// out between the first '[' and the last ']' before parsing.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kosara/inventar/internal/model"
)

// ErrMalformedResponse indicates the model reply contained no parseable
// JSON array.
var ErrMalformedResponse = errors.New("malformed suggestion response")

const (
	defaultModel   = "gemini-2.5-flash"
	defaultAPIURL  = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 30 * time.Second

	// MaxCandidates caps how many suggestions are returned per request.
	MaxCandidates = 5
)

const promptTemplate = `Suggest up to %d inventory catalog entries for an item called %q.
Respond with a JSON array of objects, each with "title" and "description" fields.
Descriptions should be one short sentence.`

// Config configures a suggestion client. Only APIKey is required.
type Config struct {
	APIKey     string
	Model      string
	APIURL     string
	HTTPClient *http.Client
}

// Client calls the Gemini API to suggest catalog entries. Construct one
// at startup and inject it; it is safe for concurrent use.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

// NewClient creates a suggestion client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("suggest: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		apiURL:     cfg.APIURL,
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
	}, nil
}

// Wire types for the generateContent endpoint, reduced to the fields
// this client uses.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Suggest asks the model for catalog entry candidates matching title.
// Candidates without a title are dropped; image URLs are synthesized
// locally rather than trusted from model output.
func (c *Client) Suggest(ctx context.Context, title string) ([]model.Candidate, error) {
	prompt := fmt.Sprintf(promptTemplate, MaxCandidates, title)
	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	array, err := extractArray(raw)
	if err != nil {
		return nil, err
	}

	var parsed []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(array), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var candidates []model.Candidate
	for _, p := range parsed {
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		candidates = append(candidates, model.Candidate{
			Title:       p.Title,
			Description: p.Description,
			ImageURL:    placeholderURL(p.Title),
		})
		if len(candidates) == MaxCandidates {
			break
		}
	}
	return candidates, nil
}

// generate sends a content generation request and returns the
// concatenated text of the first candidate.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.apiURL, c.model, c.apiKey)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("suggest: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("suggest: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("suggest: calling API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("suggest: API error %d: %s", resp.StatusCode, string(raw))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("suggest: decoding response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrMalformedResponse)
	}

	var text strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

// extractArray returns the substring from the first '[' to the last
// ']' inclusive.
func extractArray(s string) (string, error) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON array in reply", ErrMalformedResponse)
	}
	return s[start : end+1], nil
}

// placeholderURL derives a deterministic placeholder image URL from a
// candidate title.
func placeholderURL(title string) string {
	return "https://via.placeholder.com/400x300?text=" + strings.ReplaceAll(title, " ", "+")
}
