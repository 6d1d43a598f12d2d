package app

import (
	"errors"
	"fmt"
)

var (
	// ErrClaimConflict reports that a claim's precondition failed because
	// another notary already holds the job (or it no longer exists). This is
	// an expected outcome under contention, not an infrastructure failure.
	ErrClaimConflict = errors.New("job is no longer available")

	// ErrInvalidTransition reports an attempted job transition from the
	// wrong state; the caller's view is stale and should be refreshed.
	ErrInvalidTransition = errors.New("job is not in a claimable state for this action")

	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("not found")

	// ErrForbidden reports an actor acting outside their role or ownership.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials reports a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed required field by name.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func missing(field string) error {
	return &ValidationError{Field: field}
}
