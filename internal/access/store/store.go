package store

import (
	"context"
	"errors"

	"github.com/doorman-auth/doorman/internal/access/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrReferenced reports a delete rejected because other rows still point at
	// the target. The constraint lives in the store so the check and the delete
	// are a single atomic decision.
	ErrReferenced = errors.New("store: row is still referenced")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	Entitlements() Entitlements
	Grants() Grants
	Audit() Audit

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rolled back when fn returns an
	// error, committed otherwise. This is the recommended way to make a
	// mutation and its audit record one durable unit.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetByID returns a user by id.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByUsername is used during login and on all username-addressed admin
	// operations.
	GetByUsername(ctx context.Context, username string) (domain.User, error)

	// List returns all users ordered by username.
	List(ctx context.Context) ([]domain.User, error)

	// Create inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists on a username collision.
	Create(ctx context.Context, u domain.User) error

	// Update persists the mutable profile fields and bumps updated_at.
	Update(ctx context.Context, u domain.User) error

	// Delete removes a user. Grants cascade per schema.
	Delete(ctx context.Context, id string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Entitlements interface {
	// GetByID returns an entitlement by id.
	GetByID(ctx context.Context, id string) (domain.Entitlement, error)

	// GetByName returns an entitlement by its unique name.
	GetByName(ctx context.Context, name string) (domain.Entitlement, error)

	// List returns all entitlements ordered by name. No pagination.
	List(ctx context.Context) ([]domain.Entitlement, error)

	// Create inserts a new entitlement. Returns ErrAlreadyExists when the name
	// is taken; name uniqueness is enforced by the store.
	Create(ctx context.Context, e domain.Entitlement) error

	// Delete removes an entitlement. Returns ErrReferenced while any grant
	// still points at it; the FK constraint makes the check atomic with
	// respect to concurrent grant creation.
	Delete(ctx context.Context, id string) error
}

type Grants interface {
	// Create inserts a grant. Returns ErrAlreadyExists when the
	// (user, entitlement) pair already exists; the uniqueness lives in a store
	// constraint, not a pre-check.
	Create(ctx context.Context, g domain.Grant) error

	// Delete removes the grant for the pair. Returns ErrNotFound when no such
	// grant exists.
	Delete(ctx context.Context, userID, entitlementID string) error

	// ListEntitlementsForUser resolves a user's grants to their entitlements,
	// ordered by name. This is the identity snapshot used at token issuance.
	ListEntitlementsForUser(ctx context.Context, userID string) ([]domain.Entitlement, error)
}

type Audit interface {
	// Insert appends one immutable record. There is no update or delete.
	Insert(ctx context.Context, rec domain.AuditRecord) error

	// ListRecent returns the newest records first, at most limit of them.
	ListRecent(ctx context.Context, limit int) ([]domain.AuditRecord, error)
}
