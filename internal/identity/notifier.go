package identity

import (
	"context"
	"sync"
	"time"
)

// EventKind distinguishes sign-in from sign-out notifications.
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event is one auth-state change for a user session.
type Event struct {
	Kind    EventKind `json:"kind"`
	UserID  UserID    `json:"user_id,omitempty"`
	IsGuest bool      `json:"is_guest,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier fan-outs auth-state events to all active subscribers. Components
// that need to react to sign-in (profile bootstrap, session cache reloads)
// subscribe explicitly instead of registering implicit listeners.
type Notifier struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewNotifier initialises an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (n *Notifier) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs, id)
		close(ch)
		n.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (n *Notifier) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, ch := range n.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// SignIn publishes a signed-in event for the given user.
func (n *Notifier) SignIn(userID UserID, isGuest bool) {
	n.Publish(Event{Kind: SignedIn, UserID: userID, IsGuest: isGuest})
}

// SignOut publishes a signed-out event for the given user.
func (n *Notifier) SignOut(userID UserID) {
	n.Publish(Event{Kind: SignedOut, UserID: userID})
}
