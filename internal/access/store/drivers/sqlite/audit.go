package sqlite

import (
	"context"

	"github.com/doorman-auth/doorman/internal/access/domain"
)

type auditRepo struct {
	db dbtx
}

func (r *auditRepo) Insert(ctx context.Context, rec domain.AuditRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_records (id, actor, action, target_type, target_id, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Actor, string(rec.Action), string(rec.TargetType), rec.TargetID, rec.Details, rec.CreatedAt,
	)
	return mapConstraint(err)
}

// ListRecent orders by timestamp descending with the ULID id as tie-breaker,
// so records written within the same timestamp granularity still come back in
// insertion order.
func (r *auditRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor, action, target_type, target_id, details, created_at
		 FROM audit_records
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		var action, targetType string
		if err := rows.Scan(&rec.ID, &rec.Actor, &action, &targetType, &rec.TargetID, &rec.Details, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Action = domain.AuditAction(action)
		rec.TargetType = domain.AuditTarget(targetType)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
