/*
errors.go - Centralized error taxonomy for the HR core

PURPOSE:

	All error types in one place for consistency and discoverability.
	Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
 1. NotFound    - A referenced entity id does not resolve
 2. Forbidden   - An authorization rule was violated
 3. Validation  - Field-level input errors (password mismatch, bad band, ...)
 4. Uniqueness  - Unique-key / effective-dating conflicts
 5. Constraint  - Deletion blocked by a referencing child

USAGE:

	Callers branch with errors.Is / errors.As:

	  if errors.Is(err, core.ErrNotFound) {
	      // 404
	  }
	  var verr *core.ValidationError
	  if errors.As(err, &verr) {
	      // 400 with verr.Field
	  }

SEE ALSO:
  - api/handlers.go: Maps this taxonomy to HTTP status codes
  - store/sqlite/sqlite.go: Maps SQLite constraint failures into it
*/
package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced entity id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when an authorization rule is violated.
	// The message shown to clients is fixed and non-leaking.
	ErrForbidden = errors.New("you do not have permission to perform this action")

	// ErrValidation is returned for field-level input errors.
	ErrValidation = errors.New("validation failed")

	// ErrUniqueness is returned on unique-key or effective-dating conflicts.
	ErrUniqueness = errors.New("uniqueness violation")

	// ErrConstraint is returned when a delete is blocked by a referencing child.
	ErrConstraint = errors.New("operation blocked by referencing records")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for a field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UniquenessError reports which key is already taken.
type UniquenessError struct {
	Entity string // e.g. "employee_email"
	Key    string // human-readable description of the conflicting key
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.Key)
}

func (e *UniquenessError) Unwrap() error { return ErrUniqueness }

// ConstraintError reports which relationship blocked the operation.
type ConstraintError struct {
	Entity string // the entity being deleted
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("cannot delete %s: %s", e.Entity, e.Reason)
}

func (e *ConstraintError) Unwrap() error { return ErrConstraint }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError returns true if the error is due to invalid client input
// rather than a server-side failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUniqueness) ||
		errors.Is(err, ErrConstraint)
}
