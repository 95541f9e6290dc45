package service

import (
	"context"
	"errors"
	"time"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/store"
	"github.com/doorman-auth/doorman/pkg/cryptox"
	"github.com/doorman-auth/doorman/pkg/jwtx"
	"github.com/doorman-auth/doorman/pkg/slogx"
)

// TokenService authenticates credentials and issues signed session tokens.
// Verification of issued tokens is pure and lives in pkg/jwtx; this service
// only owns the login path.
type TokenService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Issuer     string
	SessionTTL time.Duration
}

// Session is the result of a successful login.
type Session struct {
	User      domain.User
	Roles     []string
	Token     string
	ExpiresAt time.Time
}

// Login verifies the credentials and issues a session token carrying the
// user's current entitlement names. The role set is a snapshot: grants changed
// after issuance only take effect once the caller re-authenticates.
//
// Every failure cause returns ErrInvalidCredentials. Inactive users are
// rejected the same way.
func (s *TokenService) Login(ctx context.Context, username, password string) (Session, error) {
	log := slogx.FromContext(ctx)

	if username == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, storeFailure("lookup user", err)
	}

	if !user.Active {
		log.Info("login rejected for inactive user", "username", username)
		return Session{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	ents, err := s.Store.Grants().ListEntitlementsForUser(ctx, user.ID)
	if err != nil {
		return Session{}, storeFailure("load grants", err)
	}

	roles := make([]string, 0, len(ents))
	for _, e := range ents {
		roles = append(roles, e.Name)
	}

	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(user.ID, user.Username, roles, ttl, s.Issuer, now)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return Session{}, err
	}

	return Session{
		User:      user,
		Roles:     roles,
		Token:     token,
		ExpiresAt: now.Add(ttl),
	}, nil
}
