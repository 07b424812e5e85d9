package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pawpark.app/internal/docstore"
	"pawpark.app/internal/identity"
)

// Connections owns the symmetric is-connected-to relation and the QR pairing
// write protocol. An edge lives at connections/{owner}/peers/{peer}; a mutual
// connection is the pair of edges in both directions and must never exist as
// only one half.
type Connections struct {
	store docstore.Store
}

func NewConnections(store docstore.Store) *Connections {
	return &Connections{store: store}
}

// LoadConnections returns the owner's edges ordered by creation time
// ascending. An empty owner loads nothing rather than failing, and edges
// missing their peer id or timestamp are skipped.
func (c *Connections) LoadConnections(ctx context.Context, ownerID string) ([]Connection, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, nil
	}
	snaps, err := c.store.Query(ctx, docstore.Query{
		Collection: peersCollection(ownerID),
		OrderBy:    "createdAt",
	})
	if err != nil {
		return nil, fmt.Errorf("load connections: %w", err)
	}
	out := make([]Connection, 0, len(snaps))
	for _, snap := range snaps {
		if conn, ok := decodeConnection(ownerID, snap); ok {
			out = append(out, conn)
		}
	}
	return out, nil
}

// AddMutualConnection runs the pairing protocol: both edge documents are
// staged into a single batch and committed all-or-nothing, so a crash or
// rejected write can never leave a half connection behind. Edge documents are
// keyed by the peer identity, which makes re-pairing the same two users an
// overwrite rather than a duplicate.
//
// The scanned peer is only checked syntactically; pairing with an identifier
// that belongs to no real user still succeeds and leaves an orphaned edge.
func (c *Connections) AddMutualConnection(ctx context.Context, initiatorID, scannedPeerID string) error {
	if strings.TrimSpace(initiatorID) == "" {
		return ErrUnauthenticated
	}
	scannedPeerID = strings.TrimSpace(scannedPeerID)
	if scannedPeerID == "" {
		return ErrEmptyPeer
	}
	if !identity.ValidUserID(scannedPeerID) {
		return ErrInvalidPeerID
	}
	if scannedPeerID == initiatorID {
		return ErrSelfPair
	}

	batch := c.store.Batch()
	batch.Set(peerPath(initiatorID, scannedPeerID), docstore.Document{
		"friendID":  scannedPeerID,
		"createdAt": docstore.ServerTimestamp,
	})
	batch.Set(peerPath(scannedPeerID, initiatorID), docstore.Document{
		"friendID":  initiatorID,
		"createdAt": docstore.ServerTimestamp,
	})
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("pair %s with %s: %w", initiatorID, scannedPeerID, err)
	}
	return nil
}

// HalfEdges returns the owner's peers whose reverse edge is missing. With
// atomic batch commits this should always be empty; a non-empty result means
// the store was written by something that bypassed the pairing protocol, and
// each entry can be repaired by re-running AddMutualConnection for the pair.
func (c *Connections) HalfEdges(ctx context.Context, ownerID string) ([]string, error) {
	edges, err := c.LoadConnections(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, edge := range edges {
		_, err := c.store.Get(ctx, peerPath(edge.FriendID, ownerID))
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			missing = append(missing, edge.FriendID)
		case err != nil:
			return nil, err
		}
	}
	return missing, nil
}
