// Package social implements the PawPark data model: user profiles with dog
// rosters and favorite parks, the mutual connection graph behind QR pairing,
// park ratings, and the park catalog. All state lives in the document store;
// the services here shape documents into typed records and enforce the write
// protocols.
package social

import (
	"sort"
	"time"
)

// Profile is the per-user document at users/{userID}.
type Profile struct {
	UserID          string    `json:"user_id"`
	DisplayName     string    `json:"display_name"`
	Dogs            []Dog     `json:"dogs"`
	FavoriteParkIDs []string  `json:"favorite_park_ids"`
	IsGuest         bool      `json:"is_guest"`
	Email           string    `json:"email,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Dog is one entry in a profile's roster. Its id is minted locally and stays
// stable across edits; dogs are never referenced outside their profile.
type Dog struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Connection is one directed edge of the friend graph: UserID acknowledges
// FriendID as a connection. A mutual connection is the pair of edges in both
// directions, created atomically.
type Connection struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Rating is one park review. Immutable once created.
type Rating struct {
	ID        string    `json:"id"`
	ParkID    string    `json:"park_id"`
	UserID    string    `json:"user_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// Park is a catalog record, authored out of band and read-only here.
type Park struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	City            string   `json:"city"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	HasFreeWater    bool     `json:"has_free_water"`
	OffLeashAreaSqM float64  `json:"off_leash_area_sqm"`
	PhotoURLs       []string `json:"photo_urls"`
}

// EqualArea is the park equality relation: two parks compare equal exactly
// when their off-leash areas match, regardless of id or name.
func (p Park) EqualArea(o Park) bool {
	return p.OffLeashAreaSqM == o.OffLeashAreaSqM
}

// LessArea is the natural ordering of parks, by off-leash area ascending.
func (p Park) LessArea(o Park) bool {
	return p.OffLeashAreaSqM < o.OffLeashAreaSqM
}

// SortParksByArea sorts parks by area ascending. The sort is stable so that
// parks with equal areas keep their incoming relative order.
func SortParksByArea(parks []Park) {
	sort.SliceStable(parks, func(i, j int) bool {
		return parks[i].LessArea(parks[j])
	})
}
