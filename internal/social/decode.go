package social

import (
	"time"

	"pawpark.app/internal/docstore"
)

// Document decoding. Fetched documents are classified up front: a record
// missing a required field, or carrying the wrong shape, is malformed and gets
// dropped; the rest of the collection is still processed. Loads never abort
// because of a single bad record.

func stringField(doc docstore.Document, key string) (string, bool) {
	v, ok := doc[key].(string)
	return v, ok
}

func boolField(doc docstore.Document, key string) (bool, bool) {
	v, ok := doc[key].(bool)
	return v, ok
}

// numberField accepts the numeric representations a document can come back
// with: int from the memory store, float64 from jsonb round-trips.
func numberField(doc docstore.Document, key string) (float64, bool) {
	switch v := doc[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// timeField accepts time.Time from the memory store and RFC3339 strings from
// jsonb round-trips.
func timeField(doc docstore.Document, key string) (time.Time, bool) {
	switch v := doc[key].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

func stringSliceField(doc docstore.Document, key string) ([]string, bool) {
	raw, ok := doc[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func decodeConnection(owner string, snap docstore.Snapshot) (Connection, bool) {
	friendID, ok := stringField(snap.Data, "friendID")
	if !ok || friendID == "" {
		return Connection{}, false
	}
	createdAt, ok := timeField(snap.Data, "createdAt")
	if !ok {
		return Connection{}, false
	}
	return Connection{
		ID:        snap.ID,
		UserID:    owner,
		FriendID:  friendID,
		CreatedAt: createdAt,
	}, true
}

func decodeRating(snap docstore.Snapshot) (Rating, bool) {
	parkID, ok := stringField(snap.Data, "parkID")
	if !ok || parkID == "" {
		return Rating{}, false
	}
	userID, ok := stringField(snap.Data, "userID")
	if !ok {
		return Rating{}, false
	}
	stars, ok := numberField(snap.Data, "stars")
	if !ok {
		return Rating{}, false
	}
	comment, ok := stringField(snap.Data, "comment")
	if !ok {
		return Rating{}, false
	}
	ts, ok := timeField(snap.Data, "timestamp")
	if !ok {
		return Rating{}, false
	}
	return Rating{
		ID:        snap.ID,
		ParkID:    parkID,
		UserID:    userID,
		Stars:     int(stars),
		Comment:   comment,
		Timestamp: ts,
	}, true
}

func decodePark(snap docstore.Snapshot) (Park, bool) {
	name, ok := stringField(snap.Data, "name")
	if !ok {
		return Park{}, false
	}
	city, ok := stringField(snap.Data, "city")
	if !ok {
		return Park{}, false
	}
	lat, ok := numberField(snap.Data, "latitude")
	if !ok {
		return Park{}, false
	}
	lon, ok := numberField(snap.Data, "longitude")
	if !ok {
		return Park{}, false
	}
	water, ok := boolField(snap.Data, "hasFreeWater")
	if !ok {
		return Park{}, false
	}
	area, ok := numberField(snap.Data, "offLeashAreaSqM")
	if !ok || area < 0 {
		return Park{}, false
	}
	// photoURLs is optional; when present it must be a string array.
	urls, ok := stringSliceField(snap.Data, "photoURLs")
	if !ok && snap.Data["photoURLs"] != nil {
		return Park{}, false
	}
	return Park{
		ID:              snap.ID,
		Name:            name,
		City:            city,
		Latitude:        lat,
		Longitude:       lon,
		HasFreeWater:    water,
		OffLeashAreaSqM: area,
		PhotoURLs:       urls,
	}, true
}

func decodeDog(raw any) (Dog, bool) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return Dog{}, false
	}
	id, ok := entry["id"].(string)
	if !ok || id == "" {
		return Dog{}, false
	}
	name, ok := entry["name"].(string)
	if !ok {
		return Dog{}, false
	}
	return Dog{ID: id, Name: name}, true
}

func decodeDogs(doc docstore.Document) []Dog {
	raw, ok := doc["dogs"].([]any)
	if !ok {
		return nil
	}
	dogs := make([]Dog, 0, len(raw))
	for _, item := range raw {
		if dog, ok := decodeDog(item); ok {
			dogs = append(dogs, dog)
		}
	}
	return dogs
}

func decodeProfile(userID string, doc docstore.Document) Profile {
	p := Profile{UserID: userID, Dogs: decodeDogs(doc)}
	p.DisplayName, _ = stringField(doc, "displayName")
	p.IsGuest, _ = boolField(doc, "isGuest")
	p.Email, _ = stringField(doc, "email")
	p.CreatedAt, _ = timeField(doc, "createdAt")
	if ids, ok := stringSliceField(doc, "favoriteParkIDs"); ok {
		p.FavoriteParkIDs = ids
	}
	return p
}
