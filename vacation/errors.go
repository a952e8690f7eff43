/*
errors.go - Centralized error types for the vacation domain

PURPOSE:
  All domain errors in one place for consistency and discoverability.
  Transport layers map these to HTTP statuses; they must never invent
  their own sentinel values.

ERROR CATEGORIES:
  1. Validation errors - rejected before any mutation touches storage
  2. NotFound - missing record, or a record outside the caller's
     department scope (deliberately indistinguishable, so a manager
     cannot probe for records in other departments)
  3. Unauthorized/Forbidden - missing token vs. insufficient role

USAGE:
  if errors.Is(err, vacation.ErrNotFound) { ... }

SEE ALSO:
  - store.go: returns ErrNotFound / validation errors
  - auth package: returns ErrUnauthorized / ErrForbidden
*/
package vacation

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a record does not exist, or exists but
	// is outside the caller's authorized department scope.
	ErrNotFound = errors.New("vacation record not found")

	// ErrUnauthorized is returned for a missing or unrecognized manager token.
	ErrUnauthorized = errors.New("unauthorized manager access")

	// ErrForbidden is returned when a recognized manager lacks the role
	// required for the specific field being changed.
	ErrForbidden = errors.New("forbidden for this manager role")

	// ErrInvalidDateRange is returned when a resulting start date would be
	// later than the resulting end date.
	ErrInvalidDateRange = errors.New("start date is after end date")

	// ErrInvalidDate is returned for a date that is not a valid YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date format")

	// ErrEmptyName is returned when the sanitized employee name is empty.
	ErrEmptyName = errors.New("employee name is empty")

	// ErrInvalidDepartment is returned for a value outside the closed
	// department set.
	ErrInvalidDepartment = errors.New("invalid department")

	// ErrInvalidStatus is returned for a value outside the closed status set.
	ErrInvalidStatus = errors.New("invalid status")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrInvalidDepartment) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsNotFound returns true if the error indicates a missing (or out-of-scope)
// record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
