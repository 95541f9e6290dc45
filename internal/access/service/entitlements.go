package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/store"
	"github.com/doorman-auth/doorman/pkg/idx"
)

// EntitlementsService owns the entitlement lifecycle. Every mutation commits
// together with its audit record.
type EntitlementsService struct {
	Store store.Store
}

// List returns all entitlements. Readable by any authenticated caller.
func (s *EntitlementsService) List(ctx context.Context) ([]domain.Entitlement, error) {
	ents, err := s.Store.Entitlements().List(ctx)
	if err != nil {
		return nil, storeFailure("list entitlements", err)
	}
	return ents, nil
}

// Create adds a new named entitlement. The name must be unique; the store
// enforces that, so two concurrent creates of the same name yield exactly one
// row and one ErrDuplicateEntitlement.
func (s *EntitlementsService) Create(ctx context.Context, actor, name, description string) (domain.Entitlement, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Entitlement{}, fmt.Errorf("%w: entitlement name is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	ent := domain.Entitlement{
		ID:          idx.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Entitlements().Create(ctx, ent); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateEntitlement
			}
			return storeFailure("create entitlement", err)
		}
		return appendAudit(ctx, tx, actor,
			domain.AuditCreate, domain.AuditTargetEntitlement, ent.ID,
			fmt.Sprintf("created entitlement %q", ent.Name))
	})
	if err != nil {
		return domain.Entitlement{}, err
	}

	observeAudit(domain.AuditCreate, domain.AuditTargetEntitlement)
	return ent, nil
}

// Delete removes an entitlement that no grant references. The in-use check is
// the store's RESTRICT constraint evaluated inside the delete itself, so a
// grant assigned concurrently can never be left pointing at a deleted row.
func (s *EntitlementsService) Delete(ctx context.Context, actor, id string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ent, err := tx.Entitlements().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrEntitlementNotFound
			}
			return storeFailure("lookup entitlement", err)
		}

		if err := tx.Entitlements().Delete(ctx, id); err != nil {
			switch {
			case errors.Is(err, store.ErrReferenced):
				return ErrEntitlementInUse
			case errors.Is(err, store.ErrNotFound):
				return ErrEntitlementNotFound
			default:
				return storeFailure("delete entitlement", err)
			}
		}

		return appendAudit(ctx, tx, actor,
			domain.AuditDelete, domain.AuditTargetEntitlement, ent.ID,
			fmt.Sprintf("deleted entitlement %q", ent.Name))
	})
	if err != nil {
		return err
	}

	observeAudit(domain.AuditDelete, domain.AuditTargetEntitlement)
	return nil
}
