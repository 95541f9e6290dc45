package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/store"
	"github.com/doorman-auth/doorman/internal/access/store/drivers/sqlite"
	"github.com/doorman-auth/doorman/pkg/cryptox"
	"github.com/doorman-auth/doorman/pkg/idx"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// newTestStore returns a migrated store backed by a throwaway database file,
// plus the file path for tests that need to sabotage the schema directly.
func newTestStore(t *testing.T) (store.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s, path
}

func seedUser(t *testing.T, s store.Store, username, password string, active bool) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Email:        username + "@example.com",
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedEntitlement(t *testing.T, s store.Store, name string) domain.Entitlement {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	e := domain.Entitlement{
		ID:          idx.New().String(),
		Name:        name,
		Description: "entitlement " + name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.Entitlements().Create(context.Background(), e))
	return e
}

func seedGrant(t *testing.T, s store.Store, userID, entitlementID string) {
	t.Helper()

	require.NoError(t, s.Grants().Create(context.Background(), domain.Grant{
		ID:            idx.New().String(),
		UserID:        userID,
		EntitlementID: entitlementID,
		CreatedAt:     time.Now().UTC(),
	}))
}

// dropTable removes a table out from under the store so the next write to it
// fails at the driver level.
func dropTable(t *testing.T, path, table string) {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("DROP TABLE " + table)
	require.NoError(t, err)
}

func auditCount(t *testing.T, s store.Store) int {
	t.Helper()

	recs, err := s.Audit().ListRecent(context.Background(), MaxRecentRecords)
	require.NoError(t, err)
	return len(recs)
}
