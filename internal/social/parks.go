package social

import (
	"context"
	"errors"
	"fmt"

	"pawpark.app/internal/docstore"
)

// ParkCache is an optional read-through cache in front of the park catalog.
// A miss returns ok=false; cache failures are treated as misses.
type ParkCache interface {
	GetParks(ctx context.Context) ([]Park, bool)
	SetParks(ctx context.Context, parks []Park)
}

// Parks is the read-mostly park catalog. The collection is assumed small:
// loads are full scans with no pagination.
type Parks struct {
	store docstore.Store
	cache ParkCache
}

func NewParks(store docstore.Store, cache ParkCache) *Parks {
	return &Parks{store: store, cache: cache}
}

// LoadParks returns the catalog, serving from the cache when possible.
// Malformed park documents are dropped.
func (p *Parks) LoadParks(ctx context.Context) ([]Park, error) {
	if p.cache != nil {
		if parks, ok := p.cache.GetParks(ctx); ok {
			return parks, nil
		}
	}

	snaps, err := p.store.Query(ctx, docstore.Query{Collection: parksCollection})
	if err != nil {
		return nil, fmt.Errorf("load parks: %w", err)
	}
	parks := make([]Park, 0, len(snaps))
	for _, snap := range snaps {
		if park, ok := decodePark(snap); ok {
			parks = append(parks, park)
		}
	}

	if p.cache != nil {
		p.cache.SetParks(ctx, parks)
	}
	return parks, nil
}

// GetPark returns one catalog record by id.
func (p *Parks) GetPark(ctx context.Context, parkID string) (Park, error) {
	if parkID == "" {
		return Park{}, ErrInvalidInput
	}
	doc, err := p.store.Get(ctx, parkPath(parkID))
	if errors.Is(err, docstore.ErrNotFound) {
		return Park{}, ErrNotFound
	}
	if err != nil {
		return Park{}, err
	}
	park, ok := decodePark(docstore.Snapshot{ID: parkID, Data: doc})
	if !ok {
		return Park{}, ErrNotFound
	}
	return park, nil
}
