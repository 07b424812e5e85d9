package social

import (
	"context"
	"errors"
	"testing"

	"pawpark.app/internal/docstore"
)

func TestSetDogsReplacesRoster(t *testing.T) {
	store := docstore.NewMemory()
	d := NewDogs(store)
	ctx := context.Background()
	newTestProfile(t, store, "alice")

	stored, err := d.SetDogs(ctx, "alice", []Dog{{Name: "Rex"}, {Name: "Maple"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 dogs, got %v", stored)
	}
	for _, dog := range stored {
		if dog.ID == "" {
			t.Fatalf("dog %q missing id", dog.Name)
		}
	}

	loaded, err := d.LoadDogs(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 || loaded[0].Name != "Rex" || loaded[1].Name != "Maple" {
		t.Fatalf("unexpected roster: %v", loaded)
	}

	// Full replacement with the empty list clears the roster.
	if _, err := d.SetDogs(ctx, "alice", nil); err != nil {
		t.Fatal(err)
	}
	loaded, _ = d.LoadDogs(ctx, "alice")
	if len(loaded) != 0 {
		t.Fatalf("roster not cleared: %v", loaded)
	}
}

func TestSetDogsTrimsBlankNames(t *testing.T) {
	store := docstore.NewMemory()
	d := NewDogs(store)
	ctx := context.Background()
	newTestProfile(t, store, "alice")

	stored, err := d.SetDogs(ctx, "alice", []Dog{
		{Name: "Rex"},
		{Name: "   "},
		{Name: ""},
		{Name: "  Maple "},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || stored[0].Name != "Rex" || stored[1].Name != "Maple" {
		t.Fatalf("blank names not trimmed out: %v", stored)
	}
}

func TestSetDogsKeepsStableIDs(t *testing.T) {
	store := docstore.NewMemory()
	d := NewDogs(store)
	ctx := context.Background()
	newTestProfile(t, store, "alice")

	first, err := d.SetDogs(ctx, "alice", []Dog{{Name: "Rex"}})
	if err != nil {
		t.Fatal(err)
	}
	rexID := first[0].ID

	// Renaming through a full replacement keeps the existing id.
	second, err := d.SetDogs(ctx, "alice", []Dog{{ID: rexID, Name: "Rexford"}})
	if err != nil {
		t.Fatal(err)
	}
	if second[0].ID != rexID {
		t.Fatalf("id changed across edit: %q vs %q", second[0].ID, rexID)
	}
}

func TestLoadDogsDropsMalformedEntries(t *testing.T) {
	store := docstore.NewMemory()
	d := NewDogs(store)
	ctx := context.Background()

	_ = store.Set(ctx, "users/alice", docstore.Document{
		"dogs": []any{
			map[string]any{"id": "d1", "name": "Rex"},
			map[string]any{"name": "NoID"},
			"not an object",
			map[string]any{"id": "d2", "name": "Maple"},
		},
	})

	loaded, err := d.LoadDogs(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 || loaded[0].ID != "d1" || loaded[1].ID != "d2" {
		t.Fatalf("malformed entries not dropped: %v", loaded)
	}
}

func TestSetDogsErrors(t *testing.T) {
	d := NewDogs(docstore.NewMemory())
	ctx := context.Background()

	if _, err := d.SetDogs(ctx, "", []Dog{{Name: "Rex"}}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := d.SetDogs(ctx, "nobody", []Dog{{Name: "Rex"}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing profile, got %v", err)
	}
}
