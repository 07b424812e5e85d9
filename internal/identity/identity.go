// Package identity is the boundary to the identity provider: it verifies
// bearer tokens into stable opaque user identifiers and fans out
// sign-in/sign-out notifications to interested components.
package identity

import (
	"context"
	"errors"
	"strings"
)

// UserID is the opaque identifier the provider issues for a user. It is never
// generated inside this system.
type UserID = string

const maxUserIDLen = 128

var (
	// ErrInvalidToken indicates the bearer token failed validation.
	ErrInvalidToken = errors.New("identity: invalid token")
	// ErrInvalidUserID indicates a string is not a syntactically valid identifier.
	ErrInvalidUserID = errors.New("identity: invalid user id")
)

// ValidUserID reports whether s is syntactically a provider-issued identifier:
// non-empty, bounded, and limited to URL-safe characters. It says nothing
// about whether such a user exists.
func ValidUserID(s string) bool {
	if s == "" || len(s) > maxUserIDLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

type ctxKey string

const (
	userIDKey  ctxKey = "identity_user_id"
	isGuestKey ctxKey = "identity_is_guest"
)

// ContextWithUser stores the authenticated user in the context.
func ContextWithUser(ctx context.Context, userID UserID, isGuest bool) context.Context {
	ctx = context.WithValue(ctx, userIDKey, strings.TrimSpace(userID))
	return context.WithValue(ctx, isGuestKey, isGuest)
}

// UserIDFromContext extracts the authenticated user id from the context.
func UserIDFromContext(ctx context.Context) (UserID, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(userIDKey).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// IsGuestFromContext reports whether the context user signed in anonymously.
func IsGuestFromContext(ctx context.Context) bool {
	v, ok := ctx.Value(isGuestKey).(bool)
	return ok && v
}
