package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime for session tokens. Grants frozen
// into a token stay effective until it expires, so this bounds the staleness
// window after an entitlement change.
const DefaultSessionTTL = time.Hour

// Claims are the session-token claims. The subject is the user id and Roles is
// the snapshot of entitlement names held at issuance time.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated user.
	Username string `json:"username,omitempty"`

	// Roles is the set of entitlement names granted when the token was issued.
	Roles []string `json:"roles,omitempty"`
}

// NewSessionClaims builds minimally-correct session claims.
func NewSessionClaims(
	subject, username string,
	roles []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
		Roles:    roles,
	}
}

// HasRole reports whether the claims carry the named role. Membership is a
// flat set test: no hierarchy, no wildcards.
func (c *Claims) HasRole(name string) bool {
	return slices.Contains(c.Roles, name)
}

// HasAnyRole reports whether the claims carry at least one of the named roles.
func (c *Claims) HasAnyRole(names ...string) bool {
	for _, n := range names {
		if c.HasRole(n) {
			return true
		}
	}
	return false
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
