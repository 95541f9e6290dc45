package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/store"
	"github.com/doorman-auth/doorman/pkg/cryptox"
	"github.com/doorman-auth/doorman/pkg/idx"
)

// UsersService owns user lifecycle and the grant relation between users and
// entitlements. All operations are admin-gated at the HTTP layer.
type UsersService struct {
	Store store.Store
}

// CreateUserParams carries the fields for a new user. The password arrives in
// plaintext and is hashed here; it is never stored or logged as given.
type CreateUserParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

// UserWithEntitlements is a user plus their grants resolved to entitlements.
type UserWithEntitlements struct {
	User         domain.User
	Entitlements []domain.Entitlement
}

// List returns all users with their grant sets resolved.
func (s *UsersService) List(ctx context.Context) ([]UserWithEntitlements, error) {
	users, err := s.Store.Users().List(ctx)
	if err != nil {
		return nil, storeFailure("list users", err)
	}

	out := make([]UserWithEntitlements, 0, len(users))
	for _, u := range users {
		ents, err := s.Store.Grants().ListEntitlementsForUser(ctx, u.ID)
		if err != nil {
			return nil, storeFailure("load grants", err)
		}
		out = append(out, UserWithEntitlements{User: u, Entitlements: ents})
	}
	return out, nil
}

// Get returns one user by username with their grant set resolved.
func (s *UsersService) Get(ctx context.Context, username string) (UserWithEntitlements, error) {
	user, err := s.Store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return UserWithEntitlements{}, ErrUserNotFound
		}
		return UserWithEntitlements{}, storeFailure("lookup user", err)
	}

	ents, err := s.Store.Grants().ListEntitlementsForUser(ctx, user.ID)
	if err != nil {
		return UserWithEntitlements{}, storeFailure("load grants", err)
	}
	return UserWithEntitlements{User: user, Entitlements: ents}, nil
}

// Create adds a user with a hashed password and no grants.
func (s *UsersService) Create(ctx context.Context, actor string, p CreateUserParams) (domain.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	if p.Username == "" {
		return domain.User{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if p.Password == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     p.Username,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateUsername
			}
			return storeFailure("create user", err)
		}
		return appendAudit(ctx, tx, actor,
			domain.AuditCreate, domain.AuditTargetUser, user.ID,
			fmt.Sprintf("created user %q", user.Username))
	})
	if err != nil {
		return domain.User{}, err
	}

	observeAudit(domain.AuditCreate, domain.AuditTargetUser)
	return user, nil
}

// Update applies a partial profile update. Username is immutable; the patch
// cannot touch it.
func (s *UsersService) Update(ctx context.Context, actor, username string, patch domain.UserPatch) (domain.User, error) {
	var updated domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return storeFailure("lookup user", err)
		}

		if patch.FirstName != nil {
			user.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			user.LastName = *patch.LastName
		}
		if patch.Email != nil {
			user.Email = *patch.Email
		}
		if patch.Active != nil {
			user.Active = *patch.Active
		}
		user.UpdatedAt = time.Now().UTC()

		if err := tx.Users().Update(ctx, user); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return storeFailure("update user", err)
		}

		updated = user
		return appendAudit(ctx, tx, actor,
			domain.AuditUpdate, domain.AuditTargetUser, user.ID,
			fmt.Sprintf("updated profile for user %q", user.Username))
	})
	if err != nil {
		return domain.User{}, err
	}

	observeAudit(domain.AuditUpdate, domain.AuditTargetUser)
	return updated, nil
}

// Delete removes a user. Their grants cascade away at the store.
func (s *UsersService) Delete(ctx context.Context, actor, username string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return storeFailure("lookup user", err)
		}

		if err := tx.Users().Delete(ctx, user.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return storeFailure("delete user", err)
		}

		return appendAudit(ctx, tx, actor,
			domain.AuditDelete, domain.AuditTargetUser, user.ID,
			fmt.Sprintf("deleted user %q", user.Username))
	})
	if err != nil {
		return err
	}

	observeAudit(domain.AuditDelete, domain.AuditTargetUser)
	return nil
}

// AssignEntitlement grants an entitlement to a user. Duplicate detection is
// the store's uniqueness constraint on the pair, not a pre-check, so
// concurrent identical requests yield exactly one grant.
func (s *UsersService) AssignEntitlement(ctx context.Context, actor, username, entitlementID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return storeFailure("lookup user", err)
		}

		ent, err := tx.Entitlements().GetByID(ctx, entitlementID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrEntitlementNotFound
			}
			return storeFailure("lookup entitlement", err)
		}

		grant := domain.Grant{
			ID:            idx.New().String(),
			UserID:        user.ID,
			EntitlementID: ent.ID,
			CreatedAt:     time.Now().UTC(),
		}
		if err := tx.Grants().Create(ctx, grant); err != nil {
			switch {
			case errors.Is(err, store.ErrAlreadyExists):
				return ErrDuplicateGrant
			case errors.Is(err, store.ErrNotFound):
				return ErrEntitlementNotFound
			default:
				return storeFailure("create grant", err)
			}
		}

		return appendAudit(ctx, tx, actor,
			domain.AuditUpdate, domain.AuditTargetUser, user.ID,
			fmt.Sprintf("assigned entitlement %q to user %q", ent.Name, user.Username))
	})
	if err != nil {
		return err
	}

	observeAudit(domain.AuditUpdate, domain.AuditTargetUser)
	return nil
}

// RevokeEntitlement removes a user's grant. A missing entitlement and a
// missing grant are the same outcome: there is nothing to revoke.
func (s *UsersService) RevokeEntitlement(ctx context.Context, actor, username, entitlementID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return storeFailure("lookup user", err)
		}

		ent, err := tx.Entitlements().GetByID(ctx, entitlementID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrGrantNotFound
			}
			return storeFailure("lookup entitlement", err)
		}

		if err := tx.Grants().Delete(ctx, user.ID, ent.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrGrantNotFound
			}
			return storeFailure("delete grant", err)
		}

		return appendAudit(ctx, tx, actor,
			domain.AuditUpdate, domain.AuditTargetUser, user.ID,
			fmt.Sprintf("revoked entitlement %q from user %q", ent.Name, user.Username))
	})
	if err != nil {
		return err
	}

	observeAudit(domain.AuditUpdate, domain.AuditTargetUser)
	return nil
}
