package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kosara/inventar/internal/model"
)

// ListLocations returns all known locations ordered by name. The
// locations table is the canonical source; item rows carry a
// denormalized copy of the name.
func ListLocations(ctx context.Context, db *sql.DB) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name FROM locations ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// AddLocation inserts a location name. Returns false without error if
// the name is empty or already exists.
func AddLocation(ctx context.Context, db *sql.DB, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO locations (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name,
	)
	if err != nil {
		return false, fmt.Errorf("adding location: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adding location: %w", err)
	}
	return n > 0, nil
}
