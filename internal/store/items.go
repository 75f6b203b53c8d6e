package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kosara/inventar/internal/model"
)

// ImageAction says what to do with an item's image on update.
type ImageAction int

const (
	// ImageUnchanged leaves the stored image as is.
	ImageUnchanged ImageAction = iota
	// ImageReplace stores new image bytes, discarding the old ones.
	ImageReplace
	// ImageClear removes the stored image.
	ImageClear
)

// ItemUpdate describes a partial item update. Nil fields are left
// unchanged; the image is an explicit tri-state so that "no new image
// supplied" and "remove the image" stay distinguishable.
type ItemUpdate struct {
	Title       *string
	Description *string
	Location    *string
	Quantity    *int
	Image       ImageAction
	ImageData   []byte
}

// CreateItem creates a new item. The image, if any, must already be
// normalized. The location name, if any, is recorded in the locations
// table in the same transaction.
func CreateItem(ctx context.Context, db *sql.DB, title, description, location string, quantity int, image []byte) (*model.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", ErrValidation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (title, description, location, quantity, image) VALUES (?, ?, ?, ?, ?)`,
		title, description, location, quantity, image,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if err := syncLocation(ctx, tx, location); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item creation: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	var description, location sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, title, description, location, quantity, image IS NOT NULL, created_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Title, &description, &location, &item.Quantity, &item.HasImage, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Description = description.String
	item.Location = location.String
	return item, nil
}

// UpdateItem applies a partial update to an item. Only supplied fields
// change; a replaced image discards the old bytes.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, up ItemUpdate) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var title string
	var description, location sql.NullString
	var quantity int
	err = tx.QueryRowContext(ctx,
		`SELECT title, description, location, quantity FROM items WHERE id = ?`, id,
	).Scan(&title, &description, &location, &quantity)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item for update: %w", err)
	}

	if up.Title != nil {
		title = strings.TrimSpace(*up.Title)
	}
	if up.Description != nil {
		description.String = *up.Description
	}
	if up.Location != nil {
		location.String = *up.Location
	}
	if up.Quantity != nil {
		quantity = *up.Quantity
	}

	if title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", ErrValidation)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, location = ?, quantity = ? WHERE id = ?`,
		title, description.String, location.String, quantity, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	switch up.Image {
	case ImageReplace:
		_, err = tx.ExecContext(ctx, `UPDATE items SET image = ? WHERE id = ?`, up.ImageData, id)
	case ImageClear:
		_, err = tx.ExecContext(ctx, `UPDATE items SET image = NULL WHERE id = ?`, id)
	}
	if err != nil {
		return nil, fmt.Errorf("updating item image: %w", err)
	}

	if err := syncLocation(ctx, tx, location.String); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item update: %w", err)
	}

	return GetItem(ctx, db, id)
}

// DeleteItem removes an item and its image bytes permanently.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateQuantity sets an item's quantity directly.
func UpdateQuantity(ctx context.Context, db *sql.DB, id int64, quantity int) (*model.Item, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", ErrValidation)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET quantity = ? WHERE id = ?`, quantity, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating quantity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating quantity: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}

	return GetItem(ctx, db, id)
}

// GetItemImage returns an item's normalized image bytes, or nil if the
// item has no image.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, error) {
	var image []byte
	err := db.QueryRowContext(ctx,
		`SELECT image FROM items WHERE id = ?`, id,
	).Scan(&image)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item image: %w", err)
	}
	return image, nil
}

// syncLocation records a location name in the locations table so the
// filter dropdown stays in sync with item writes.
func syncLocation(ctx context.Context, tx *sql.Tx, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO locations (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name,
	)
	if err != nil {
		return fmt.Errorf("syncing location: %w", err)
	}
	return nil
}
