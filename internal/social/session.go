package social

import (
	"context"
	"sync"

	"pawpark.app/internal/identity"
)

// Session owns the cached replicas of one user session's connections,
// favorites and dog roster. The caches follow the single-writer rule: only the
// session mutates them, readers get copies, and a completed load fully
// replaces the previous snapshot (last-write-wins if two loads race through
// the same session). Construct one per signed-in session and inject it; there
// is no shared process-wide instance.
type Session struct {
	profiles    *Profiles
	connections *Connections
	favorites   *Favorites
	dogs        *Dogs

	mu        sync.RWMutex
	userID    string
	isGuest   bool
	connCache []Connection
	favCache  map[string]bool
	dogCache  []Dog
}

func NewSession(profiles *Profiles, connections *Connections, favorites *Favorites, dogs *Dogs) *Session {
	return &Session{
		profiles:    profiles,
		connections: connections,
		favorites:   favorites,
		dogs:        dogs,
		favCache:    make(map[string]bool),
	}
}

// Run consumes identity events until the context ends. Sign-in binds the
// session to the user, bootstraps the profile document and reloads every
// cache; sign-out clears everything.
func (s *Session) Run(ctx context.Context, events <-chan identity.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			switch evt.Kind {
			case identity.SignedIn:
				s.mu.Lock()
				s.userID = evt.UserID
				s.isGuest = evt.IsGuest
				s.mu.Unlock()
				// Bootstrap before loading so a brand-new user sees
				// their (empty) profile rather than load errors.
				_ = s.profiles.EnsureProfile(ctx, evt.UserID, evt.IsGuest, "")
				_ = s.Reload(ctx)
			case identity.SignedOut:
				s.mu.Lock()
				s.userID = ""
				s.isGuest = false
				s.connCache = nil
				s.favCache = make(map[string]bool)
				s.dogCache = nil
				s.mu.Unlock()
			}
		}
	}
}

// UserID returns the currently bound user, empty when signed out.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Reload refreshes every cache from the store. Each cache is replaced
// wholesale on success and left untouched on failure.
func (s *Session) Reload(ctx context.Context) error {
	owner := s.UserID()

	conns, connErr := s.connections.LoadConnections(ctx, owner)
	if connErr == nil {
		s.mu.Lock()
		s.connCache = conns
		s.mu.Unlock()
	}
	favs, favErr := s.favorites.LoadFavorites(ctx, owner)
	if favErr == nil {
		s.mu.Lock()
		s.favCache = favs
		s.mu.Unlock()
	}
	dogs, dogErr := s.dogs.LoadDogs(ctx, owner)
	if dogErr == nil {
		s.mu.Lock()
		s.dogCache = dogs
		s.mu.Unlock()
	}

	switch {
	case connErr != nil:
		return connErr
	case favErr != nil:
		return favErr
	default:
		return dogErr
	}
}

// Connections returns a copy of the cached edge list.
func (s *Session) Connections() []Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Connection, len(s.connCache))
	copy(out, s.connCache)
	return out
}

// FavoriteParkIDs returns a copy of the cached favorites set.
func (s *Session) FavoriteParkIDs() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.favCache))
	for id, v := range s.favCache {
		out[id] = v
	}
	return out
}

// Dogs returns a copy of the cached roster.
func (s *Session) Dogs() []Dog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Dog, len(s.dogCache))
	copy(out, s.dogCache)
	return out
}

// IsFavorite answers from the cache without touching the store.
func (s *Session) IsFavorite(parkID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favCache[parkID]
}

// ToggleFavorite flips membership in the store and applies the result to the
// cache only after the store has acknowledged the write.
func (s *Session) ToggleFavorite(ctx context.Context, parkID string) (bool, error) {
	favorite, err := s.favorites.ToggleFavorite(ctx, s.UserID(), parkID)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	if favorite {
		s.favCache[parkID] = true
	} else {
		delete(s.favCache, parkID)
	}
	s.mu.Unlock()
	return favorite, nil
}

// SetDogs replaces the roster in the store; the cache keeps the previous
// roster if the write fails, so a failed edit never shows partially applied.
func (s *Session) SetDogs(ctx context.Context, dogs []Dog) ([]Dog, error) {
	stored, err := s.dogs.SetDogs(ctx, s.UserID(), dogs)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.dogCache = stored
	s.mu.Unlock()
	return stored, nil
}

// Pair runs the mutual-connection protocol against the scanned peer and then
// refreshes the cached edge list.
func (s *Session) Pair(ctx context.Context, scannedPeerID string) error {
	if err := s.connections.AddMutualConnection(ctx, s.UserID(), scannedPeerID); err != nil {
		return err
	}
	conns, err := s.connections.LoadConnections(ctx, s.UserID())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.connCache = conns
	s.mu.Unlock()
	return nil
}
