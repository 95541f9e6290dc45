package service

import (
	"context"
	"testing"
	"time"

	"github.com/doorman-auth/doorman/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T) (*TokenService, *jwtx.HS256) {
	t.Helper()

	s, _ := newTestStore(t)
	signer := jwtx.NewHS256([]byte("test-secret"), "doorman-test")
	return &TokenService{
		Store:      s,
		Signer:     signer,
		Issuer:     "doorman-test",
		SessionTTL: time.Hour,
	}, signer
}

func TestLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("issues a verifiable token with the grant snapshot", func(t *testing.T) {
		t.Parallel()
		svc, signer := newTokenService(t)

		u := seedUser(t, svc.Store, "alice", "hunter22", true)
		admin := seedEntitlement(t, svc.Store, "ROLE_ADMIN")
		lobby := seedEntitlement(t, svc.Store, "Lobby")
		seedGrant(t, svc.Store, u.ID, admin.ID)
		seedGrant(t, svc.Store, u.ID, lobby.ID)

		session, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)
		require.Equal(t, "alice", session.User.Username)
		require.ElementsMatch(t, []string{"ROLE_ADMIN", "Lobby"}, session.Roles)
		require.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

		claims, err := signer.Verify(session.Token)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
		require.Equal(t, "alice", claims.Username)
		require.True(t, claims.HasRole("ROLE_ADMIN"))
		require.False(t, claims.HasRole("ROLE_END_USER"))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTokenService(t)

		seedUser(t, svc.Store, "alice", "hunter22", true)

		_, err := svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTokenService(t)

		_, err := svc.Login(ctx, "ghost", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTokenService(t)

		seedUser(t, svc.Store, "alice", "hunter22", false)

		_, err := svc.Login(ctx, "alice", "hunter22")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty credentials", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTokenService(t)

		_, err := svc.Login(ctx, "", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "alice", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("user with no grants gets an empty role set", func(t *testing.T) {
		t.Parallel()
		svc, signer := newTokenService(t)

		seedUser(t, svc.Store, "alice", "hunter22", true)

		session, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)
		require.Empty(t, session.Roles)

		claims, err := signer.Verify(session.Token)
		require.NoError(t, err)
		require.False(t, claims.HasRole("ROLE_ADMIN"))
	})
}
