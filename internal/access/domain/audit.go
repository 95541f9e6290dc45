package domain

import "time"

// AuditAction classifies what a state-changing administrative action did.
type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// AuditTarget classifies what kind of entity an action touched.
type AuditTarget string

const (
	AuditTargetUser        AuditTarget = "USER"
	AuditTargetEntitlement AuditTarget = "ENTITLEMENT"
)

// AuditRecord is an immutable log entry describing one state-changing
// administrative action. Records are append-only: never mutated, never
// deleted.
type AuditRecord struct {
	ID         string
	Actor      string // acting username
	Action     AuditAction
	TargetType AuditTarget
	TargetID   string
	Details    string // free-form summary
	CreatedAt  time.Time
}
