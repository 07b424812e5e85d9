package social

import "fmt"

const (
	usersCollection   = "users"
	parksCollection   = "parks"
	ratingsCollection = "ratings"
)

func userPath(userID string) string {
	return fmt.Sprintf("%s/%s", usersCollection, userID)
}

// peersCollection is the per-owner subcollection holding the owner's outgoing
// connection edges, one document per peer.
func peersCollection(ownerID string) string {
	return fmt.Sprintf("connections/%s/peers", ownerID)
}

// peerPath keys the edge document by the peer's identity. Re-pairing the same
// two users therefore overwrites the existing edges instead of appending
// duplicates; this is what makes AddMutualConnection idempotent.
func peerPath(ownerID, peerID string) string {
	return fmt.Sprintf("connections/%s/peers/%s", ownerID, peerID)
}

func ratingPath(ratingID string) string {
	return fmt.Sprintf("%s/%s", ratingsCollection, ratingID)
}

func parkPath(parkID string) string {
	return fmt.Sprintf("%s/%s", parksCollection, parkID)
}
