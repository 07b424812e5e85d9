package docstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSplitPath(t *testing.T) {
	cases := []struct {
		path       string
		collection string
		id         string
		ok         bool
	}{
		{"users/u1", "users", "u1", true},
		{"connections/u1/peers/u2", "connections/u1/peers", "u2", true},
		{"users", "", "", false},
		{"users/u1/dogs", "", "", false},
		{"users//peers/u2", "", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		collection, id, err := SplitPath(c.path)
		if c.ok && err != nil {
			t.Fatalf("SplitPath(%q): unexpected error %v", c.path, err)
		}
		if !c.ok {
			if !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("SplitPath(%q): expected ErrInvalidPath, got %v", c.path, err)
			}
			continue
		}
		if collection != c.collection || id != c.id {
			t.Fatalf("SplitPath(%q)=(%q,%q), want (%q,%q)", c.path, collection, id, c.collection, c.id)
		}
	}
}

func TestMemoryGetSetUpdate(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if _, err := s.Get(ctx, "users/u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Update(ctx, "users/u1", Document{"displayName": "Ada"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update on missing doc: expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "users/u1", Document{"displayName": "Ada"}); err != nil {
		t.Fatal(err)
	}
	doc, err := s.Get(ctx, "users/u1")
	if err != nil {
		t.Fatal(err)
	}
	if doc["displayName"] != "Ada" {
		t.Fatalf("unexpected doc: %#v", doc)
	}

	// Mutating the returned document must not leak into the store.
	doc["displayName"] = "Eve"
	again, _ := s.Get(ctx, "users/u1")
	if again["displayName"] != "Ada" {
		t.Fatalf("store aliased a returned document: %#v", again)
	}

	if err := s.Update(ctx, "users/u1", Document{"displayName": "Grace"}); err != nil {
		t.Fatal(err)
	}
	doc, _ = s.Get(ctx, "users/u1")
	if doc["displayName"] != "Grace" {
		t.Fatalf("update not applied: %#v", doc)
	}
}

func TestMemoryMergeCreatesMissing(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	if err := s.Merge(ctx, "users/u1", Document{"displayName": "Ada"}); err != nil {
		t.Fatal(err)
	}
	doc, err := s.Get(ctx, "users/u1")
	if err != nil {
		t.Fatal(err)
	}
	if doc["displayName"] != "Ada" {
		t.Fatalf("unexpected doc: %#v", doc)
	}
}

func TestMemoryArrayUnionRemove(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	if err := s.Set(ctx, "users/u1", Document{}); err != nil {
		t.Fatal(err)
	}

	if err := s.Update(ctx, "users/u1", Document{"favoriteParkIDs": ArrayUnion("p1")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, "users/u1", Document{"favoriteParkIDs": ArrayUnion("p2", "p1")}); err != nil {
		t.Fatal(err)
	}
	doc, _ := s.Get(ctx, "users/u1")
	arr, _ := doc["favoriteParkIDs"].([]any)
	if len(arr) != 2 || arr[0] != "p1" || arr[1] != "p2" {
		t.Fatalf("union did not dedupe: %#v", arr)
	}

	if err := s.Update(ctx, "users/u1", Document{"favoriteParkIDs": ArrayRemove("p1")}); err != nil {
		t.Fatal(err)
	}
	doc, _ = s.Get(ctx, "users/u1")
	arr, _ = doc["favoriteParkIDs"].([]any)
	if len(arr) != 1 || arr[0] != "p2" {
		t.Fatalf("remove failed: %#v", arr)
	}
}

func TestMemoryServerTimestamp(t *testing.T) {
	fixed := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)
	s := NewMemory(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	if err := s.Set(ctx, "ratings/r1", Document{"timestamp": ServerTimestamp}); err != nil {
		t.Fatal(err)
	}
	doc, _ := s.Get(ctx, "ratings/r1")
	got, ok := doc["timestamp"].(time.Time)
	if !ok || !got.Equal(fixed) {
		t.Fatalf("server timestamp not resolved: %#v", doc["timestamp"])
	}
}

func TestMemoryQueryFilterAndOrder(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)

	docs := map[string]Document{
		"ratings/r1": {"parkID": "p1", "timestamp": base.Add(1 * time.Minute)},
		"ratings/r2": {"parkID": "p1", "timestamp": base.Add(3 * time.Minute)},
		"ratings/r3": {"parkID": "p1", "timestamp": base.Add(2 * time.Minute)},
		"ratings/r4": {"parkID": "p2", "timestamp": base},
	}
	for path, doc := range docs {
		if err := s.Set(ctx, path, doc); err != nil {
			t.Fatal(err)
		}
	}

	out, err := s.Query(ctx, Query{
		Collection: "ratings",
		Filters:    []Filter{{Field: "parkID", Value: "p1"}},
		OrderBy:    "timestamp",
		Desc:       true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	if out[0].ID != "r2" || out[1].ID != "r3" || out[2].ID != "r1" {
		t.Fatalf("wrong order: %s %s %s", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestMemoryQueryOrdersStringTimestamps(t *testing.T) {
	// The Postgres store round-trips timestamps through jsonb as RFC3339
	// strings; the ordering rules must treat those as times too.
	s := NewMemory()
	ctx := context.Background()
	_ = s.Set(ctx, "ratings/a", Document{"timestamp": "2025-07-25T12:00:00.1Z"})
	_ = s.Set(ctx, "ratings/b", Document{"timestamp": "2025-07-25T12:00:00.12Z"})

	out, err := s.Query(ctx, Query{Collection: "ratings", OrderBy: "timestamp"})
	if err != nil {
		t.Fatal(err)
	}
	if out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("fractional-second ordering broken: %s %s", out[0].ID, out[1].ID)
	}
}

func TestMemoryBatchCommit(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	b := s.Batch()
	b.Set("connections/a/peers/b", Document{"friendID": "b", "createdAt": ServerTimestamp})
	b.Set("connections/b/peers/a", Document{"friendID": "a", "createdAt": ServerTimestamp})
	if err := b.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"connections/a/peers/b", "connections/b/peers/a"} {
		if _, err := s.Get(ctx, path); err != nil {
			t.Fatalf("missing %s after batch commit: %v", path, err)
		}
	}
}

func TestMemoryBatchAllOrNothing(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	b := s.Batch()
	b.Set("connections/a/peers/b", Document{"friendID": "b"})
	b.Set("connections/b/peers", Document{"friendID": "a"}) // odd segments: invalid
	if err := b.Commit(ctx); err == nil {
		t.Fatal("expected commit to fail")
	}

	if _, err := s.Get(ctx, "connections/a/peers/b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("half of a failed batch is visible: %v", err)
	}
}
