// internal/canchaya/errors.go
package canchaya

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound means the backend has no data for the request. For
	// occupancy queries this is a legitimate empty state, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrConflict means another requester won the slot first. Terminal for
	// the attempt; callers must re-reconcile, never retry.
	ErrConflict = errors.New("slot already booked")
)

// ValidationError carries the detail list of a rejected request, either
// from local pre-validation or from the backend's 400 response.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "invalid request"
	}
	return strings.Join(e.Details, "; ")
}

func invalid(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}
