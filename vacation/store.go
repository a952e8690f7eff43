/*
store.go - Persistence interface for vacation records

PURPOSE:
  Defines what the domain needs from storage: insert, point lookup,
  filtered/sorted listing, partial update, plus a small key-value
  settings table used for generated manager tokens.

IMPLEMENTATIONS:
  store/sqlite:       production store (SQLite, WAL mode)
  vacation/store:     in-memory store for tests

VALIDATION SPLIT:
  The transport layer validates raw input (date format, department
  membership) before calling the store, but the store still re-checks
  the invariants it owns: resulting StartDate <= EndDate on updates
  (a caller may change only one of the two fields), non-empty name,
  department defaulting on create.

SEE ALSO:
  - types.go: entity and Update types
  - errors.go: ErrNotFound and validation sentinels
*/
package vacation

import (
	"context"
	"sort"
	"strings"
)

// CreateInput holds the fields of an employee-facing submission. Status
// and the signed-request flag are not inputs: every record starts
// pending and unsigned.
type CreateInput struct {
	EmployeeName string
	Department   Department
	StartDate    string
	EndDate      string
}

// ListFilter narrows a listing. A nil Department means all departments.
// Rejected records are excluded unless IncludeRejected is set.
type ListFilter struct {
	Department      *Department
	IncludeRejected bool
}

// Store is the persistence boundary for vacation records and settings.
type Store interface {
	// CreateVacation inserts a new pending, unsigned record and returns it.
	CreateVacation(ctx context.Context, in CreateInput) (*VacationRequest, error)

	// ListVacations returns records matching the filter, ordered by
	// StartDate ascending, ties broken by case-insensitive employee name.
	ListVacations(ctx context.Context, filter ListFilter) ([]VacationRequest, error)

	// GetVacationByID returns the record or ErrNotFound.
	GetVacationByID(ctx context.Context, id string) (*VacationRequest, error)

	// UpdateVacation applies the provided fields only. Returns ErrNotFound
	// for an unknown id and ErrInvalidDateRange when the resulting dates
	// would be out of order. Every successful update refreshes UpdatedAt.
	UpdateVacation(ctx context.Context, id string, u Update) (*VacationRequest, error)

	// GetSetting returns the value for a settings key, or "" when absent.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting inserts or replaces a settings value.
	SetSetting(ctx context.Context, key, value string) error
}

// =============================================================================
// SHARED VALIDATION - used by every Store implementation
// =============================================================================

// ValidateCreate normalizes and checks a create input in place.
func ValidateCreate(in *CreateInput) error {
	in.EmployeeName = SanitizeName(in.EmployeeName)
	if in.EmployeeName == "" {
		return ErrEmptyName
	}
	in.Department = DepartmentOrDefault(string(in.Department))
	return ValidateDateOrder(in.StartDate, in.EndDate)
}

// ValidateDateOrder enforces the core interval invariant. ISO dates
// compare correctly as strings.
func ValidateDateOrder(startDate, endDate string) error {
	if startDate > endDate {
		return ErrInvalidDateRange
	}
	return nil
}

// SortVacations orders records per the listing contract: StartDate
// ascending, ties broken by case-insensitive employee name.
func SortVacations(records []VacationRequest) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].StartDate != records[j].StartDate {
			return records[i].StartDate < records[j].StartDate
		}
		return strings.ToLower(records[i].EmployeeName) < strings.ToLower(records[j].EmployeeName)
	})
}
