package service

import (
	"context"
	"testing"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestEnsureSeed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("seeds an empty store", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		svc := &BootstrapService{Store: s}

		require.NoError(t, svc.EnsureSeed(ctx, "admin-pw", "user-pw"))

		admin, err := s.Users().GetByUsername(ctx, "admin")
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifyPassword("admin-pw", admin.PasswordHash))

		adminEnts, err := s.Grants().ListEntitlementsForUser(ctx, admin.ID)
		require.NoError(t, err)
		require.Len(t, adminEnts, 4)

		user, err := s.Users().GetByUsername(ctx, "user")
		require.NoError(t, err)

		userEnts, err := s.Grants().ListEntitlementsForUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, userEnts, 2)

		names := []string{userEnts[0].Name, userEnts[1].Name}
		require.ElementsMatch(t, []string{domain.RoleEndUser, "Lobby"}, names)

		// Seeding happens before any authenticated actor exists, so it must
		// not fabricate audit records.
		require.Equal(t, 0, auditCount(t, s))
	})

	t.Run("no-op when users exist", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		svc := &BootstrapService{Store: s}

		seedUser(t, s, "existing", "pw", true)

		require.NoError(t, svc.EnsureSeed(ctx, "admin-pw", "user-pw"))

		_, err := s.Users().GetByUsername(ctx, "admin")
		require.Error(t, err)

		ents, err := s.Entitlements().List(ctx)
		require.NoError(t, err)
		require.Empty(t, ents)
	})

	t.Run("idempotent across restarts", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		svc := &BootstrapService{Store: s}

		require.NoError(t, svc.EnsureSeed(ctx, "admin-pw", "user-pw"))
		require.NoError(t, svc.EnsureSeed(ctx, "other-pw", "other-pw"))

		users, err := s.Users().List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
	})
}
