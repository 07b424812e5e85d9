package social

import (
	"context"
	"errors"
	"strings"

	"pawpark.app/internal/docstore"
)

// Profiles owns the users/{userID} documents.
type Profiles struct {
	store docstore.Store
}

func NewProfiles(store docstore.Store) *Profiles {
	return &Profiles{store: store}
}

// EnsureProfile creates the profile document for a newly seen identity with
// default empty values. An existing profile is never overwritten; calling this
// on every sign-in is safe.
func (p *Profiles) EnsureProfile(ctx context.Context, userID string, isGuest bool, email string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthenticated
	}
	_, err := p.store.Get(ctx, userPath(userID))
	if err == nil {
		return nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	doc := docstore.Document{
		"isGuest":         isGuest,
		"displayName":     "",
		"favoriteParkIDs": []any{},
		"dogs":            []any{},
		"createdAt":       docstore.ServerTimestamp,
	}
	if email != "" {
		doc["email"] = email
	}
	return p.store.Set(ctx, userPath(userID), doc)
}

// GetProfile loads a user's profile. Missing optional fields decode to their
// zero values rather than failing the load.
func (p *Profiles) GetProfile(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, ErrUnauthenticated
	}
	doc, err := p.store.Get(ctx, userPath(userID))
	if errors.Is(err, docstore.ErrNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return decodeProfile(userID, doc), nil
}

// UpdateDisplayName writes the new name through to the profile document,
// creating it if the bootstrap write has not landed yet.
func (p *Profiles) UpdateDisplayName(ctx context.Context, userID, name string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	return p.store.Merge(ctx, userPath(userID), docstore.Document{
		"displayName": name,
		"updatedAt":   docstore.ServerTimestamp,
	})
}
