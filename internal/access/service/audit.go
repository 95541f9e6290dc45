package service

import (
	"context"
	"time"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/store"
	"github.com/doorman-auth/doorman/internal/obs"
	"github.com/doorman-auth/doorman/pkg/idx"
)

// MaxRecentRecords bounds the audit read path so a growing trail never turns
// into an unbounded scan.
const MaxRecentRecords = 100

// AuditService reads the append-only trail. Writes happen inside each
// mutating transaction via appendAudit; there is no standalone write API
// because a record without its mutation (or vice versa) would be a
// consistency violation.
type AuditService struct {
	Store store.Store
}

// Recent returns the newest records first. The limit is clamped to
// 1..MaxRecentRecords; zero or negative means "the maximum".
func (s *AuditService) Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 || limit > MaxRecentRecords {
		limit = MaxRecentRecords
	}

	recs, err := s.Store.Audit().ListRecent(ctx, limit)
	if err != nil {
		return nil, storeFailure("list audit records", err)
	}
	return recs, nil
}

// appendAudit writes one audit record inside the caller's transaction. The
// caller's mutation and this insert commit or roll back together; a failed
// audit write therefore surfaces as a failed mutation, never as a silent gap
// in the trail.
func appendAudit(
	ctx context.Context,
	tx store.Tx,
	actor string,
	action domain.AuditAction,
	target domain.AuditTarget,
	targetID, details string,
) error {
	err := tx.Audit().Insert(ctx, domain.AuditRecord{
		ID:         idx.New().String(),
		Actor:      actor,
		Action:     action,
		TargetType: target,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return storeFailure("append audit record", err)
	}
	return nil
}

// observeAudit counts a committed audit record. Call only after the enclosing
// transaction has committed so rolled-back writes don't inflate the metric.
func observeAudit(action domain.AuditAction, target domain.AuditTarget) {
	obs.ObserveAuditRecord(string(action), string(target))
}
