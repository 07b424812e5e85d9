package social

import (
	"context"

	"pawpark.app/internal/identity"
	"pawpark.app/internal/obs"
)

// Bootstrapper creates profile documents for newly seen identities. It reacts
// to the identity provider's sign-in notifications rather than to any user
// action: the profile write is a side effect of authentication. EnsureProfile
// is check-then-create, so replayed or duplicate events are harmless.
type Bootstrapper struct {
	profiles *Profiles
}

func NewBootstrapper(profiles *Profiles) *Bootstrapper {
	return &Bootstrapper{profiles: profiles}
}

// Run consumes sign-in events until the context ends. Bootstrap failures are
// logged and skipped; the next sign-in of the same user retries naturally.
func (b *Bootstrapper) Run(ctx context.Context, events <-chan identity.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.Kind != identity.SignedIn {
				continue
			}
			if err := b.profiles.EnsureProfile(ctx, evt.UserID, evt.IsGuest, ""); err != nil {
				obs.Log(map[string]any{
					"level":   "error",
					"msg":     "profile bootstrap failed",
					"user_id": evt.UserID,
					"error":   err.Error(),
				})
			}
		}
	}
}
