package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pawpark.app/internal/docstore"
)

// Dogs owns the roster array on the user profile document. Edits replace the
// whole roster; there is no incremental add/remove on the wire.
type Dogs struct {
	store docstore.Store
}

func NewDogs(store docstore.Store) *Dogs {
	return &Dogs{store: store}
}

// LoadDogs returns the owner's roster. Entries missing an id or name are
// dropped; an empty owner or missing profile loads as an empty roster.
func (d *Dogs) LoadDogs(ctx context.Context, ownerID string) ([]Dog, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, nil
	}
	doc, err := d.store.Get(ctx, userPath(ownerID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load dogs: %w", err)
	}
	return decodeDogs(doc), nil
}

// SetDogs replaces the roster. Names are trimmed and blank entries dropped;
// entries without an id get a fresh one. Returns the roster as stored, so
// callers only adopt the new list once the write has succeeded.
func (d *Dogs) SetDogs(ctx context.Context, ownerID string, dogs []Dog) ([]Dog, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrUnauthenticated
	}

	normalized := make([]Dog, 0, len(dogs))
	encoded := make([]any, 0, len(dogs))
	for _, dog := range dogs {
		name := strings.TrimSpace(dog.Name)
		if name == "" {
			continue
		}
		if dog.ID == "" {
			dog.ID = uuid.NewString()
		}
		dog.Name = name
		normalized = append(normalized, dog)
		encoded = append(encoded, docstore.Document{"id": dog.ID, "name": dog.Name})
	}

	err := d.store.Update(ctx, userPath(ownerID), docstore.Document{"dogs": encoded})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set dogs: %w", err)
	}
	return normalized, nil
}
