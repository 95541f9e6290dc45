package sqlite

import (
	"context"

	"github.com/doorman-auth/doorman/internal/access/domain"
)

type entitlementsRepo struct {
	db dbtx
}

const entitlementColumns = `id, name, description, created_at, updated_at`

func scanEntitlement(row rowScanner) (domain.Entitlement, error) {
	var e domain.Entitlement
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *entitlementsRepo) GetByID(ctx context.Context, id string) (domain.Entitlement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entitlementColumns+` FROM entitlements WHERE id = ?`, id)

	e, err := scanEntitlement(row)
	if err != nil {
		return domain.Entitlement{}, mapNotFound(err)
	}
	return e, nil
}

func (r *entitlementsRepo) GetByName(ctx context.Context, name string) (domain.Entitlement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entitlementColumns+` FROM entitlements WHERE name = ?`, name)

	e, err := scanEntitlement(row)
	if err != nil {
		return domain.Entitlement{}, mapNotFound(err)
	}
	return e, nil
}

func (r *entitlementsRepo) List(ctx context.Context) ([]domain.Entitlement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entitlementColumns+` FROM entitlements ORDER BY name`)
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

func (r *entitlementsRepo) Create(ctx context.Context, e domain.Entitlement) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entitlements (id, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Description, e.CreatedAt, e.UpdatedAt,
	)
	return mapConstraint(err)
}

// Delete fails with ErrReferenced while any grant still points at the
// entitlement. The ON DELETE RESTRICT constraint makes the in-use check and
// the delete one atomic decision, so a grant created concurrently can never
// be left dangling.
func (r *entitlementsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entitlements WHERE id = ?`, id)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRowsAffected(res)
}
