package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"pawpark.app/internal/docstore"
)

// failingBatchStore delegates to a memory store but refuses batch commits,
// simulating a network failure at the worst possible moment of the pairing
// protocol.
type failingBatchStore struct {
	docstore.Store
	err error
}

func (s *failingBatchStore) Batch() docstore.WriteBatch {
	return &failingBatch{err: s.err}
}

type failingBatch struct{ err error }

func (b *failingBatch) Set(path string, doc docstore.Document) {}
func (b *failingBatch) Commit(ctx context.Context) error       { return b.err }

func hasEdgeTo(edges []Connection, peer string) bool {
	for _, e := range edges {
		if e.FriendID == peer {
			return true
		}
	}
	return false
}

func TestAddMutualConnectionSymmetry(t *testing.T) {
	store := docstore.NewMemory()
	c := NewConnections(store)
	ctx := context.Background()

	if err := c.AddMutualConnection(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}

	aliceEdges, err := c.LoadConnections(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	bobEdges, err := c.LoadConnections(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if !hasEdgeTo(aliceEdges, "bob") || !hasEdgeTo(bobEdges, "alice") {
		t.Fatalf("pairing is not symmetric: alice=%v bob=%v", aliceEdges, bobEdges)
	}
}

func TestAddMutualConnectionIdempotent(t *testing.T) {
	store := docstore.NewMemory()
	c := NewConnections(store)
	ctx := context.Background()

	if err := c.AddMutualConnection(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	if err := c.AddMutualConnection(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}

	aliceEdges, _ := c.LoadConnections(ctx, "alice")
	bobEdges, _ := c.LoadConnections(ctx, "bob")
	if len(aliceEdges) != 1 || len(bobEdges) != 1 {
		t.Fatalf("re-pairing duplicated edges: alice=%d bob=%d", len(aliceEdges), len(bobEdges))
	}
}

func TestAddMutualConnectionAtomicUnderFailure(t *testing.T) {
	mem := docstore.NewMemory()
	store := &failingBatchStore{Store: mem, err: errors.New("connection reset")}
	c := NewConnections(store)
	ctx := context.Background()

	if err := c.AddMutualConnection(ctx, "alice", "bob"); err == nil {
		t.Fatal("expected pairing to fail")
	}

	// Neither edge may be visible through the real store afterwards.
	direct := NewConnections(mem)
	aliceEdges, _ := direct.LoadConnections(ctx, "alice")
	bobEdges, _ := direct.LoadConnections(ctx, "bob")
	if len(aliceEdges) != 0 || len(bobEdges) != 0 {
		t.Fatalf("failed pairing left edges behind: alice=%v bob=%v", aliceEdges, bobEdges)
	}
}

func TestAddMutualConnectionValidation(t *testing.T) {
	c := NewConnections(docstore.NewMemory())
	ctx := context.Background()

	if err := c.AddMutualConnection(ctx, "", "bob"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("empty initiator: expected ErrUnauthenticated, got %v", err)
	}
	if err := c.AddMutualConnection(ctx, "alice", ""); !errors.Is(err, ErrEmptyPeer) {
		t.Fatalf("empty peer: expected ErrEmptyPeer, got %v", err)
	}
	if err := c.AddMutualConnection(ctx, "alice", "not a valid id!"); !errors.Is(err, ErrInvalidPeerID) {
		t.Fatalf("bad peer: expected ErrInvalidPeerID, got %v", err)
	}
	if err := c.AddMutualConnection(ctx, "alice", "alice"); !errors.Is(err, ErrSelfPair) {
		t.Fatalf("self pair: expected ErrSelfPair, got %v", err)
	}
}

func TestAddMutualConnectionNonexistentPeerSucceeds(t *testing.T) {
	// Pairing only checks the scanned id syntactically: an identifier that
	// belongs to no real user still produces both edges.
	c := NewConnections(docstore.NewMemory())
	ctx := context.Background()

	if err := c.AddMutualConnection(ctx, "alice", "ghost-user"); err != nil {
		t.Fatal(err)
	}
	edges, _ := c.LoadConnections(ctx, "alice")
	if !hasEdgeTo(edges, "ghost-user") {
		t.Fatal("orphaned edge not written")
	}
}

func TestLoadConnectionsOrderAndResilience(t *testing.T) {
	base := time.Date(2025, 7, 25, 12, 0, 0, 0, time.UTC)
	clock := base
	store := docstore.NewMemory(docstore.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	c := NewConnections(store)
	ctx := context.Background()

	for _, peer := range []string{"bob", "carol", "dave"} {
		if err := c.AddMutualConnection(ctx, "alice", peer); err != nil {
			t.Fatal(err)
		}
	}
	// Two malformed edge documents: one missing friendID, one missing createdAt.
	_ = store.Set(ctx, "connections/alice/peers/broken1", docstore.Document{"createdAt": base})
	_ = store.Set(ctx, "connections/alice/peers/broken2", docstore.Document{"friendID": "x"})

	edges, err := c.LoadConnections(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 3 {
		t.Fatalf("expected malformed edges skipped, got %d", len(edges))
	}
	if edges[0].FriendID != "bob" || edges[1].FriendID != "carol" || edges[2].FriendID != "dave" {
		t.Fatalf("edges not in createdAt order: %v", edges)
	}
}

func TestLoadConnectionsUnauthenticated(t *testing.T) {
	c := NewConnections(docstore.NewMemory())
	edges, err := c.LoadConnections(context.Background(), "")
	if err != nil {
		t.Fatalf("unauthenticated load should be a soft no-op, got %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("expected no edges, got %v", edges)
	}
}

func TestHalfEdges(t *testing.T) {
	store := docstore.NewMemory()
	c := NewConnections(store)
	ctx := context.Background()

	if err := c.AddMutualConnection(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	// Write a one-sided edge directly, bypassing the pairing protocol.
	_ = store.Set(ctx, "connections/alice/peers/mallory", docstore.Document{
		"friendID":  "mallory",
		"createdAt": time.Now().UTC(),
	})

	missing, err := c.HalfEdges(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 1 || missing[0] != "mallory" {
		t.Fatalf("expected only the bypassed edge, got %v", missing)
	}

	// Repair is re-running the protocol for the broken pair.
	if err := c.AddMutualConnection(ctx, "alice", "mallory"); err != nil {
		t.Fatal(err)
	}
	missing, _ = c.HalfEdges(ctx, "alice")
	if len(missing) != 0 {
		t.Fatalf("repair left half edges: %v", missing)
	}
}
