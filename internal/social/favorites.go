package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pawpark.app/internal/docstore"
)

// Favorites owns the favoriteParkIDs set on the user profile document.
type Favorites struct {
	store docstore.Store
}

func NewFavorites(store docstore.Store) *Favorites {
	return &Favorites{store: store}
}

// LoadFavorites returns the owner's favorited park ids. Missing profile,
// missing field, or an empty owner all load as the empty set.
func (f *Favorites) LoadFavorites(ctx context.Context, ownerID string) (map[string]bool, error) {
	out := make(map[string]bool)
	if strings.TrimSpace(ownerID) == "" {
		return out, nil
	}
	doc, err := f.store.Get(ctx, userPath(ownerID))
	if errors.Is(err, docstore.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	if ids, ok := stringSliceField(doc, "favoriteParkIDs"); ok {
		for _, id := range ids {
			out[id] = true
		}
	}
	return out, nil
}

// IsFavorite reports current membership of parkID in the owner's set.
func (f *Favorites) IsFavorite(ctx context.Context, ownerID, parkID string) (bool, error) {
	favs, err := f.LoadFavorites(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return favs[parkID], nil
}

// ToggleFavorite flips parkID's membership using the store's native
// array-union/array-remove operations, so two devices toggling different
// parks at once cannot overwrite each other's sets. Returns the new
// membership state.
func (f *Favorites) ToggleFavorite(ctx context.Context, ownerID, parkID string) (bool, error) {
	if strings.TrimSpace(ownerID) == "" {
		return false, ErrUnauthenticated
	}
	if strings.TrimSpace(parkID) == "" {
		return false, ErrInvalidInput
	}
	favorite, err := f.IsFavorite(ctx, ownerID, parkID)
	if err != nil {
		return false, err
	}

	var op any
	if favorite {
		op = docstore.ArrayRemove(parkID)
	} else {
		op = docstore.ArrayUnion(parkID)
	}
	err = f.store.Update(ctx, userPath(ownerID), docstore.Document{"favoriteParkIDs": op})
	if errors.Is(err, docstore.ErrNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return !favorite, nil
}
