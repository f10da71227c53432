package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the panel can read from a bearer token without
// verifying it; the backend remains the only verifier.
type Identity struct {
	Subject   string
	Username  string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry before now.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// DisplayName prefers the username claim over the subject.
func (i Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	return i.Subject
}

// ReadIdentity decodes the claims of a JWT bearer token. Opaque tokens
// return an error and callers fall back to the stored username.
func ReadIdentity(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("reading token claims: %w", err)
	}

	var id Identity
	if sub, err := claims.GetSubject(); err == nil {
		id.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	for _, key := range []string{"username", "preferred_username", "name"} {
		if name, ok := claims[key].(string); ok && name != "" {
			id.Username = name
			break
		}
	}
	return id, nil
}
