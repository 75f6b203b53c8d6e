package store

import (
	"context"
	"testing"

	"github.com/kosara/inventar/internal/db"
)

func TestAddAndListLocations(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	added, err := AddLocation(ctx, database, "Garage")
	if err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	if !added {
		t.Error("expected location to be added")
	}
	AddLocation(ctx, database, "Attic")

	locations, err := ListLocations(ctx, database)
	if err != nil {
		t.Fatalf("ListLocations: %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(locations))
	}
	// Ordered by name.
	if locations[0].Name != "Attic" || locations[1].Name != "Garage" {
		t.Errorf("expected name order, got %+v", locations)
	}
}

func TestAddLocationDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	AddLocation(ctx, database, "Garage")
	added, err := AddLocation(ctx, database, "Garage")
	if err != nil {
		t.Fatalf("AddLocation duplicate: %v", err)
	}
	if added {
		t.Error("duplicate name must not be added")
	}

	// Names are case-sensitive; a different casing is a new location.
	added, _ = AddLocation(ctx, database, "garage")
	if !added {
		t.Error("expected differently-cased name to be added")
	}
}

func TestAddLocationEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	added, err := AddLocation(context.Background(), database, "   ")
	if err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	if added {
		t.Error("empty name must not be added")
	}
}
