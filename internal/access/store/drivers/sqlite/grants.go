package sqlite

import (
	"context"
	"errors"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/store"
)

type grantsRepo struct {
	db dbtx
}

// Create relies on the UNIQUE(user_id, entitlement_id) constraint for
// duplicate detection instead of a separate existence check, so concurrent
// identical requests cannot both succeed. A foreign key failure means the
// referenced user or entitlement is gone and surfaces as ErrNotFound.
func (r *grantsRepo) Create(ctx context.Context, g domain.Grant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO grants (id, user_id, entitlement_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		g.ID, g.UserID, g.EntitlementID, g.CreatedAt,
	)
	if err = mapConstraint(err); errors.Is(err, store.ErrReferenced) {
		return store.ErrNotFound
	}
	return err
}

func (r *grantsRepo) Delete(ctx context.Context, userID, entitlementID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM grants WHERE user_id = ? AND entitlement_id = ?`,
		userID, entitlementID,
	)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *grantsRepo) ListEntitlementsForUser(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.name, e.description, e.created_at, e.updated_at
		 FROM entitlements e
		 JOIN grants g ON g.entitlement_id = e.id
		 WHERE g.user_id = ?
		 ORDER BY e.name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ents []domain.Entitlement
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, err
		}
		ents = append(ents, e)
	}
	return ents, rows.Err()
}
