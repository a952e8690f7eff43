/*
Package vacation contains the domain model of the vacation planner.

PURPOSE:
  Defines the vacation request entity, its closed department and status
  enumerations, the derived display-status engine, and the lane layout
  algorithm behind the Gantt view. Everything here is transport- and
  storage-agnostic; persistence lives behind the Store interface.

KEY CONCEPTS IN THIS FILE (types.go):
  - Department: closed two-value set (production, administration).
    Wire values are the Lithuanian names used by the live deployment.
  - Status: pending/approved/rejected lifecycle. Rejected records are
    never deleted, only hidden from default listings.
  - VacationRequest: the central entity. Dates are timezone-less
    calendar dates stored as YYYY-MM-DD strings.
  - Update: optional-field struct for partial mutations.

INVARIANTS:
  - StartDate <= EndDate on every create/update touching either field
  - Status is always pending at creation
  - Flipping SignedRequestReceived stamps/clears SignedRequestReceivedAt
  - Records are never destroyed

SEE ALSO:
  - status.go: derived display status (blocked/missing-request/on-leave)
  - schedule.go: lane assignment and overlap counting
  - store.go: persistence interface and errors.go: error taxonomy
*/
package vacation

import (
	"strings"
	"time"
)

// =============================================================================
// DEPARTMENTS - closed enumeration
// =============================================================================

// Department partitions visibility and management authority.
type Department string

const (
	DepartmentProduction     Department = "gamyba"
	DepartmentAdministration Department = "administracija"
)

// AllDepartments lists every valid department, in display order.
var AllDepartments = []Department{DepartmentProduction, DepartmentAdministration}

// ParseDepartment normalizes a raw value and reports whether it names a
// known department.
func ParseDepartment(raw string) (Department, bool) {
	d := Department(strings.ToLower(strings.TrimSpace(raw)))
	switch d {
	case DepartmentProduction, DepartmentAdministration:
		return d, true
	}
	return "", false
}

// DepartmentOrDefault returns the parsed department, falling back to
// production for unknown or empty input.
func DepartmentOrDefault(raw string) Department {
	if d, ok := ParseDepartment(raw); ok {
		return d
	}
	return DepartmentProduction
}

// =============================================================================
// STATUS - stored lifecycle state
// =============================================================================

// Status is the stored lifecycle state of a request. Display states such
// as "on-leave" are derived, never stored (see status.go).
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus reports whether raw names a known stored status.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.TrimSpace(raw))
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return s, true
	}
	return "", false
}

// =============================================================================
// VACATION REQUEST - the central entity
// =============================================================================

// VacationRequest is one employee's requested leave interval.
type VacationRequest struct {
	ID           string
	EmployeeName string
	Department   Department

	// Inclusive calendar date range, ISO YYYY-MM-DD. StartDate <= EndDate.
	StartDate string
	EndDate   string

	Status Status

	// Signed paper request compliance. ReceivedAt is set exactly when the
	// flag is flipped to true and cleared when flipped back to false.
	SignedRequestReceived   bool
	SignedRequestReceivedAt *time.Time

	// ReminderSentAt marks that the automated reminder already fired for
	// this record. At most one reminder per record, ever.
	ReminderSentAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SpansDay reports whether the request covers the given ISO day inclusively.
// ISO dates compare correctly as strings.
func (v VacationRequest) SpansDay(isoDay string) bool {
	return v.StartDate <= isoDay && v.EndDate >= isoDay
}

// SanitizeName trims the name and collapses internal whitespace runs to
// single spaces.
func SanitizeName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// =============================================================================
// PARTIAL UPDATE
// =============================================================================

// Update carries the subset of fields a mutation wants to change.
// Nil means "leave unchanged".
type Update struct {
	EmployeeName          *string
	Department            *Department
	StartDate             *string
	EndDate               *string
	Status                *Status
	SignedRequestReceived *bool
	ReminderSentAt        *time.Time
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.EmployeeName == nil &&
		u.Department == nil &&
		u.StartDate == nil &&
		u.EndDate == nil &&
		u.Status == nil &&
		u.SignedRequestReceived == nil &&
		u.ReminderSentAt == nil
}
