package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"pawpark.app/internal/identity"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth attaches the verified user to the context when a bearer token is
// present. Requests without a token pass through anonymous; handlers that
// need a user sit behind requireUser. A token that is present but invalid is
// rejected outright.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a == nil || a.verifier == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get(authHeader))
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		userID, claims, err := a.verifier.Verify(token)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) {
				writeError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "authentication error")
			return
		}

		a.announceSignIn(userID, claims.Guest)
		ctx := identity.ContextWithUser(r.Context(), userID, claims.Guest)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser guards routes that only make sense for a signed-in user.
func (a *API) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.UserIDFromContext(r.Context()); !ok {
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// announceSignIn publishes a sign-in event the first time a user shows up, so
// the profile bootstrapper can create their document.
func (a *API) announceSignIn(userID identity.UserID, isGuest bool) {
	if a.notifier == nil {
		return
	}
	a.mu.Lock()
	_, known := a.seen[userID]
	if !known {
		a.seen[userID] = struct{}{}
	}
	a.mu.Unlock()
	if !known {
		a.notifier.SignIn(userID, isGuest)
	}
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
