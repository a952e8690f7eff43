package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigida/vacations/store/sqlite"
	"github.com/eigida/vacations/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func create(t *testing.T, store *sqlite.Store, name string, dept vacation.Department, start, end string) *vacation.VacationRequest {
	t.Helper()
	v, err := store.CreateVacation(context.Background(), vacation.CreateInput{
		EmployeeName: name,
		Department:   dept,
		StartDate:    start,
		EndDate:      end,
	})
	require.NoError(t, err)
	return v
}

func strPtr(s string) *string                          { return &s }
func statusPtr(s vacation.Status) *vacation.Status     { return &s }
func deptPtr(d vacation.Department) *vacation.Department { return &d }
func boolPtr(b bool) *bool                             { return &b }

// =============================================================================
// CREATE
// =============================================================================

func TestCreateVacation_Defaults(t *testing.T) {
	// GIVEN: a valid submission
	// THEN: the record starts pending, unsigned, with both timestamps set
	store := newTestStore(t)

	v := create(t, store, "  Jonė   Jonaitė ", vacation.DepartmentProduction, "2025-06-01", "2025-06-05")

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "Jonė Jonaitė", v.EmployeeName, "name is sanitized")
	assert.Equal(t, vacation.StatusPending, v.Status)
	assert.False(t, v.SignedRequestReceived)
	assert.Nil(t, v.SignedRequestReceivedAt)
	assert.Nil(t, v.ReminderSentAt)
	assert.False(t, v.CreatedAt.IsZero())
	assert.Equal(t, v.CreatedAt, v.UpdatedAt)
}

func TestCreateVacation_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateVacation(ctx, vacation.CreateInput{
		EmployeeName: "   ",
		Department:   vacation.DepartmentProduction,
		StartDate:    "2025-06-01",
		EndDate:      "2025-06-05",
	})
	assert.ErrorIs(t, err, vacation.ErrEmptyName)

	_, err = store.CreateVacation(ctx, vacation.CreateInput{
		EmployeeName: "Jonas",
		Department:   vacation.DepartmentProduction,
		StartDate:    "2025-06-10",
		EndDate:      "2025-06-05",
	})
	assert.ErrorIs(t, err, vacation.ErrInvalidDateRange)
}

func TestCreateVacation_UnknownDepartmentDefaultsToProduction(t *testing.T) {
	store := newTestStore(t)

	v := create(t, store, "Jonas", vacation.Department("warehouse"), "2025-06-01", "2025-06-05")
	assert.Equal(t, vacation.DepartmentProduction, v.Department)
}

// =============================================================================
// LISTING
// =============================================================================

func TestListVacations_OrderingAndFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	create(t, store, "zigmas", vacation.DepartmentProduction, "2025-06-01", "2025-06-02")
	create(t, store, "Ana", vacation.DepartmentProduction, "2025-06-01", "2025-06-03")
	create(t, store, "Petras", vacation.DepartmentProduction, "2025-05-20", "2025-05-25")
	admin := create(t, store, "Rasa", vacation.DepartmentAdministration, "2025-06-01", "2025-06-02")
	rejected := create(t, store, "Tomas", vacation.DepartmentProduction, "2025-06-10", "2025-06-12")
	_, err := store.UpdateVacation(ctx, rejected.ID, vacation.Update{Status: statusPtr(vacation.StatusRejected)})
	require.NoError(t, err)

	// Department scoping + default rejected exclusion.
	prod := vacation.DepartmentProduction
	records, err := store.ListVacations(ctx, vacation.ListFilter{Department: &prod})
	require.NoError(t, err)
	require.Len(t, records, 3)

	// StartDate ascending, ties broken case-insensitively by name.
	assert.Equal(t, "Petras", records[0].EmployeeName)
	assert.Equal(t, "Ana", records[1].EmployeeName)
	assert.Equal(t, "zigmas", records[2].EmployeeName)

	// includeRejected brings the rejected record back.
	records, err = store.ListVacations(ctx, vacation.ListFilter{Department: &prod, IncludeRejected: true})
	require.NoError(t, err)
	assert.Len(t, records, 4)

	// No department filter: everything active.
	records, err = store.ListVacations(ctx, vacation.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 4)

	// The administration record is invisible in production listings.
	for _, r := range records {
		if r.ID == admin.ID {
			assert.Equal(t, vacation.DepartmentAdministration, r.Department)
		}
	}
}

// =============================================================================
// POINT LOOKUP
// =============================================================================

func TestGetVacationByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetVacationByID(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, vacation.ErrNotFound)
}

// =============================================================================
// PARTIAL UPDATE
// =============================================================================

func TestUpdateVacation_PartialFieldsOnly(t *testing.T) {
	// GIVEN: an existing record
	// WHEN: only the employee name is updated
	// THEN: dates and status are untouched (update idempotence for
	//       unchanged fields)
	store := newTestStore(t)
	ctx := context.Background()

	v := create(t, store, "Jonas", vacation.DepartmentProduction, "2025-06-01", "2025-06-05")

	updated, err := store.UpdateVacation(ctx, v.ID, vacation.Update{EmployeeName: strPtr("Jonas")})
	require.NoError(t, err)

	assert.Equal(t, v.StartDate, updated.StartDate)
	assert.Equal(t, v.EndDate, updated.EndDate)
	assert.Equal(t, v.Status, updated.Status)
	assert.Equal(t, v.SignedRequestReceived, updated.SignedRequestReceived)
}

func TestUpdateVacation_ResultingDateOrderValidated(t *testing.T) {
	// The store must validate the combined resulting state: moving only
	// the start date past the stored end date is rejected.
	store := newTestStore(t)
	ctx := context.Background()

	v := create(t, store, "Jonas", vacation.DepartmentProduction, "2025-06-01", "2025-06-05")

	_, err := store.UpdateVacation(ctx, v.ID, vacation.Update{StartDate: strPtr("2025-06-10")})
	assert.ErrorIs(t, err, vacation.ErrInvalidDateRange)

	// No partial state change happened.
	got, err := store.GetVacationByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got.StartDate)

	// Moving only the end date before the stored start is also rejected.
	_, err = store.UpdateVacation(ctx, v.ID, vacation.Update{EndDate: strPtr("2025-05-20")})
	assert.ErrorIs(t, err, vacation.ErrInvalidDateRange)

	// Moving both together is fine.
	updated, err := store.UpdateVacation(ctx, v.ID, vacation.Update{
		StartDate: strPtr("2025-07-01"),
		EndDate:   strPtr("2025-07-03"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", updated.StartDate)
	assert.Equal(t, "2025-07-03", updated.EndDate)
}

func TestUpdateVacation_SignedFlagStampsAndClearsTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fixed := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return fixed })

	v := create(t, store, "Jonas", vacation.DepartmentProduction, "2025-06-10", "2025-06-15")

	// Flip to true: timestamp stamped.
	updated, err := store.UpdateVacation(ctx, v.ID, vacation.Update{SignedRequestReceived: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.SignedRequestReceived)
	require.NotNil(t, updated.SignedRequestReceivedAt)
	assert.Equal(t, fixed, updated.SignedRequestReceivedAt.UTC())

	// Flip back to false: timestamp cleared.
	updated, err = store.UpdateVacation(ctx, v.ID, vacation.Update{SignedRequestReceived: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.SignedRequestReceived)
	assert.Nil(t, updated.SignedRequestReceivedAt)
}

func TestUpdateVacation_ReminderTimestampPersists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v := create(t, store, "Jonas", vacation.DepartmentProduction, "2025-06-10", "2025-06-15")

	sentAt := time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)
	updated, err := store.UpdateVacation(ctx, v.ID, vacation.Update{ReminderSentAt: &sentAt})
	require.NoError(t, err)
	require.NotNil(t, updated.ReminderSentAt)
	assert.Equal(t, sentAt, updated.ReminderSentAt.UTC())
}

func TestUpdateVacation_UnknownID(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateVacation(context.Background(), "missing", vacation.Update{EmployeeName: strPtr("X")})
	assert.ErrorIs(t, err, vacation.ErrNotFound)
}

func TestUpdateVacation_DepartmentChange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v := create(t, store, "Jonas", vacation.DepartmentProduction, "2025-06-01", "2025-06-05")

	updated, err := store.UpdateVacation(ctx, v.ID, vacation.Update{Department: deptPtr(vacation.DepartmentAdministration)})
	require.NoError(t, err)
	assert.Equal(t, vacation.DepartmentAdministration, updated.Department)
	assert.True(t, updated.UpdatedAt.After(v.UpdatedAt) || updated.UpdatedAt.Equal(v.UpdatedAt))
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings_UpsertAndMissingKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Missing keys read as empty, not as an error.
	value, err := store.GetSetting(ctx, "manager_token_gamyba")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, store.SetSetting(ctx, "manager_token_gamyba", "secret-1"))
	value, err = store.GetSetting(ctx, "manager_token_gamyba")
	require.NoError(t, err)
	assert.Equal(t, "secret-1", value)

	// Upsert replaces.
	require.NoError(t, store.SetSetting(ctx, "manager_token_gamyba", "secret-2"))
	value, err = store.GetSetting(ctx, "manager_token_gamyba")
	require.NoError(t, err)
	assert.Equal(t, "secret-2", value)
}
