package service

import (
	"context"
	"time"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/store"
	"github.com/doorman-auth/doorman/pkg/cryptox"
	"github.com/doorman-auth/doorman/pkg/idx"
	"github.com/doorman-auth/doorman/pkg/slogx"
)

// BootstrapService seeds an empty store with the reserved entitlements and a
// first admin account so the service is usable out of the box.
type BootstrapService struct {
	Store store.Store
}

// EnsureSeed populates an empty store and is a no-op otherwise. Seeding
// writes no audit records: there is no acting user yet.
func (s *BootstrapService) EnsureSeed(ctx context.Context, adminPassword, userPassword string) error {
	log := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return storeFailure("check users", err)
	}
	if !empty {
		return nil
	}

	adminHash, err := cryptox.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	userHash, err := cryptox.HashPassword(userPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	seedEnts := []domain.Entitlement{
		{Name: domain.RoleAdmin, Description: "Administrator Role"},
		{Name: domain.RoleEndUser, Description: "Standard User Role"},
		{Name: "Lobby", Description: "Access to Lobby"},
		{Name: "Floor 1", Description: "Access to Floor 1"},
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		entIDs := make(map[string]string, len(seedEnts))
		for i := range seedEnts {
			e := seedEnts[i]
			e.ID = idx.New().String()
			e.CreatedAt = now
			e.UpdatedAt = now
			if err := tx.Entitlements().Create(ctx, e); err != nil {
				return err
			}
			entIDs[e.Name] = e.ID
		}

		admin := domain.User{
			ID:           idx.New().String(),
			Username:     "admin",
			PasswordHash: adminHash,
			FirstName:    "Admin",
			LastName:     "User",
			Email:        "admin@example.com",
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().Create(ctx, admin); err != nil {
			return err
		}

		user := domain.User{
			ID:           idx.New().String(),
			Username:     "user",
			PasswordHash: userHash,
			FirstName:    "Normal",
			LastName:     "User",
			Email:        "user@example.com",
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}

		// Admin holds everything; the standard user gets the basics.
		for _, name := range []string{domain.RoleAdmin, domain.RoleEndUser, "Lobby", "Floor 1"} {
			if err := grantSeed(ctx, tx, admin.ID, entIDs[name], now); err != nil {
				return err
			}
		}
		for _, name := range []string{domain.RoleEndUser, "Lobby"} {
			if err := grantSeed(ctx, tx, user.ID, entIDs[name], now); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return storeFailure("seed store", err)
	}

	log.Info("seeded empty store with default entitlements and accounts")
	return nil
}

func grantSeed(ctx context.Context, tx store.Tx, userID, entitlementID string, now time.Time) error {
	return tx.Grants().Create(ctx, domain.Grant{
		ID:            idx.New().String(),
		UserID:        userID,
		EntitlementID: entitlementID,
		CreatedAt:     now,
	})
}
