package service

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Handlers translate these to HTTP statuses; anything
// not listed here is treated as an opaque internal failure.
var (
	// ErrInvalidCredentials covers every login failure cause (unknown user,
	// wrong password, inactive account) so callers can't probe which part
	// failed.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrDuplicateUsername    = errors.New("duplicate_username")
	ErrDuplicateEntitlement = errors.New("duplicate_entitlement_name")
	ErrDuplicateGrant       = errors.New("duplicate_grant")

	ErrEntitlementInUse = errors.New("entitlement_in_use")

	ErrUserNotFound        = errors.New("user_not_found")
	ErrEntitlementNotFound = errors.New("entitlement_not_found")
	ErrGrantNotFound       = errors.New("grant_not_found")

	ErrInvalidInput = errors.New("invalid_input")

	// ErrUnavailable wraps raw store failures. It is deliberately distinct
	// from the not-found errors: a caller may retry it, and it must never be
	// mistaken for a missing row.
	ErrUnavailable = errors.New("store_unavailable")
)

// storeFailure wraps an unclassified store error into ErrUnavailable, keeping
// the cause in the message for the logs while the sentinel drives the
// caller-visible status.
func storeFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
