package social

import (
	"context"
	"fmt"
	"strings"

	"pawpark.app/internal/docstore"
	"pawpark.app/internal/ids"
)

// Ratings owns the append-mostly ratings collection. Ratings are immutable
// once written; there is no edit or delete path.
type Ratings struct {
	store docstore.Store
}

func NewRatings(store docstore.Store) *Ratings {
	return &Ratings{store: store}
}

// AddRating appends a new rating document under a fresh key and returns the
// stored record. Write failures surface to the caller; nothing is shown as
// submitted until the store has confirmed it.
func (r *Ratings) AddRating(ctx context.Context, rating Rating) (Rating, error) {
	if strings.TrimSpace(rating.UserID) == "" {
		return Rating{}, ErrUnauthenticated
	}
	if strings.TrimSpace(rating.ParkID) == "" {
		return Rating{}, ErrInvalidInput
	}
	if rating.Stars < 1 || rating.Stars > 5 {
		return Rating{}, ErrInvalidStars
	}

	rating.ID = ids.New()
	err := r.store.Set(ctx, ratingPath(rating.ID), docstore.Document{
		"parkID":    rating.ParkID,
		"userID":    rating.UserID,
		"stars":     rating.Stars,
		"comment":   rating.Comment,
		"timestamp": docstore.ServerTimestamp,
	})
	if err != nil {
		return Rating{}, fmt.Errorf("add rating: %w", err)
	}

	stored, err := r.store.Get(ctx, ratingPath(rating.ID))
	if err != nil {
		// The write landed; fall back to the submitted values with a
		// client-side timestamp unresolved.
		return rating, nil
	}
	if ts, ok := timeField(stored, "timestamp"); ok {
		rating.Timestamp = ts
	}
	return rating, nil
}

// FetchRatings returns all ratings for a park, newest first. Records missing
// required fields are dropped.
func (r *Ratings) FetchRatings(ctx context.Context, parkID string) ([]Rating, error) {
	if strings.TrimSpace(parkID) == "" {
		return nil, ErrInvalidInput
	}
	snaps, err := r.store.Query(ctx, docstore.Query{
		Collection: ratingsCollection,
		Filters:    []docstore.Filter{{Field: "parkID", Value: parkID}},
		OrderBy:    "timestamp",
		Desc:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch ratings: %w", err)
	}
	out := make([]Rating, 0, len(snaps))
	for _, snap := range snaps {
		if rating, ok := decodeRating(snap); ok {
			out = append(out, rating)
		}
	}
	return out, nil
}
