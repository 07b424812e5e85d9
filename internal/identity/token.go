package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "pawpark"

// Claims are the JWT claims the provider embeds in its tokens.
type Claims struct {
	Guest bool `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates provider tokens and extracts the user identity. It is
// constructed once and injected; there is no ambient shared instance.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier builds a Verifier around an HS256 shared secret.
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("identity: auth secret is not configured")
	}
	return &Verifier{
		secret: []byte(secret),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// GenerateToken signs a token for the given user. Used by dev tooling and the
// smoke client; in production the provider issues tokens itself.
func (v *Verifier) GenerateToken(userID UserID, isGuest bool, ttl time.Duration) (string, error) {
	if !ValidUserID(userID) {
		return "", ErrInvalidUserID
	}
	if ttl <= 0 {
		return "", errors.New("identity: ttl must be greater than zero")
	}
	now := v.now()
	claims := Claims{
		Guest: isGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and claims and returns the user identity.
func (v *Verifier) Verify(token string) (UserID, *Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return "", nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", nil, ErrInvalidToken
	}
	if err := v.validateClaims(claims); err != nil {
		return "", nil, ErrInvalidToken
	}
	return claims.Subject, claims, nil
}

func (v *Verifier) validateClaims(claims *Claims) error {
	if claims.Issuer != issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if !ValidUserID(claims.Subject) {
		return ErrInvalidUserID
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	now := v.now()
	if now.After(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}
