package social

import "errors"

var (
	ErrNotFound        = errors.New("social: not found")
	ErrUnauthenticated = errors.New("social: no authenticated user")
	ErrInvalidInput    = errors.New("social: invalid input")
	ErrInvalidStars    = errors.New("social: stars must be between 1 and 5")
	ErrEmptyPeer       = errors.New("social: scanned peer id is empty")
	ErrInvalidPeerID   = errors.New("social: scanned peer id is not a valid identifier")
	ErrSelfPair        = errors.New("social: cannot pair with yourself")
)
