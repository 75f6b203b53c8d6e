package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kosara/inventar/internal/model"
)

// DefaultPageSize is the number of items per listing page.
const DefaultPageSize = 10

// SearchLimit caps the number of search results.
const SearchLimit = 10

// summaryMaxDescription is the truncation point for search result
// descriptions.
const summaryMaxDescription = 100

// ListOptions controls item listing.
type ListOptions struct {
	Page     int    // 1-indexed; values < 1 are treated as 1
	PageSize int    // defaults to DefaultPageSize
	Location string // optional exact location filter
	Sort     string // one of the model.Sort* constants; unknown falls back to date_desc
}

// ListItems returns one page of items. A page past the end yields an
// empty page, not an error.
func ListItems(ctx context.Context, db *sql.DB, opts ListOptions) (*model.ItemPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	where := ""
	args := []any{}
	if opts.Location != "" {
		where = "WHERE location = ?"
		args = append(args, opts.Location)
	}

	var total int
	err := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM items %s`, where), args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	var order string
	switch opts.Sort {
	case model.SortDateAsc:
		order = "created_at ASC, id ASC"
	case model.SortTitleAsc:
		order = "title COLLATE NOCASE ASC"
	case model.SortTitleDesc:
		order = "title COLLATE NOCASE DESC"
	default:
		order = "created_at DESC, id DESC"
	}

	query := fmt.Sprintf(
		`SELECT id, title, description, location, quantity, image IS NOT NULL, created_at
		 FROM items %s ORDER BY %s LIMIT ? OFFSET ?`, where, order,
	)
	args = append(args, opts.PageSize, (opts.Page-1)*opts.PageSize)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	page := &model.ItemPage{
		Items:      []model.Item{},
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalItems: total,
		TotalPages: (total + opts.PageSize - 1) / opts.PageSize,
	}
	for rows.Next() {
		var item model.Item
		var description, location sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &description, &location, &item.Quantity, &item.HasImage, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Description = description.String
		item.Location = location.String
		page.Items = append(page.Items, item)
	}
	return page, rows.Err()
}

// SearchItems returns up to limit items whose title, description or
// location contains the query, case-insensitively. An empty query
// matches nothing.
func SearchItems(ctx context.Context, db *sql.DB, query string, limit int) ([]model.ItemSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.ItemSummary{}, nil
	}
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, description, location FROM items
		 WHERE title LIKE ? ESCAPE '\'
		    OR description LIKE ? ESCAPE '\'
		    OR location LIKE ? ESCAPE '\'
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	defer rows.Close()

	results := []model.ItemSummary{}
	for rows.Next() {
		var s model.ItemSummary
		var description, location sql.NullString
		if err := rows.Scan(&s.ID, &s.Title, &description, &location); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		s.Description = truncate(description.String, summaryMaxDescription)
		s.Location = location.String
		results = append(results, s)
	}
	return results, rows.Err()
}

// escapeLike escapes LIKE metacharacters so the query matches as a
// literal substring.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// truncate shortens s to max runes, appending an ellipsis marker.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
