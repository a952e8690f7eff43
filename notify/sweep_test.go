package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eigida/vacations/notify"
	"github.com/eigida/vacations/vacation"
	"github.com/eigida/vacations/vacation/store"
)

// fakeMailer records every send attempt and can be told to fail.
type fakeMailer struct {
	mu       sync.Mutex
	disabled bool
	fail     bool
	subjects []string
}

func (f *fakeMailer) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.disabled
}

func (f *fakeMailer) Send(ctx context.Context, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	if f.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (f *fakeMailer) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subjects)
}

func (f *fakeMailer) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

// today is the pinned clock for every sweep test.
var today = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, mailer notify.Mailer) (*notify.ReminderScheduler, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	mem.Now = func() time.Time { return today }

	rs := notify.NewReminderScheduler(mem, mailer, zap.NewNop())
	rs.Now = func() time.Time { return today }
	return rs, mem
}

func createApproved(t *testing.T, mem *store.Memory, name, start, end string) *vacation.VacationRequest {
	t.Helper()
	ctx := context.Background()

	v, err := mem.CreateVacation(ctx, vacation.CreateInput{
		EmployeeName: name,
		Department:   vacation.DepartmentProduction,
		StartDate:    start,
		EndDate:      end,
	})
	require.NoError(t, err)

	approved := vacation.StatusApproved
	v, err = mem.UpdateVacation(ctx, v.ID, vacation.Update{Status: &approved})
	require.NoError(t, err)
	return v
}

// =============================================================================
// CANDIDATE SELECTION
// =============================================================================

func TestSweep_SelectsOnlyUnsignedApprovedWithinWindow(t *testing.T) {
	mailer := &fakeMailer{}
	rs, mem := newTestScheduler(t, mailer)
	ctx := context.Background()

	// Inside the 14-day window, unsigned: the one candidate.
	inWindow := createApproved(t, mem, "Jonas", "2025-06-10", "2025-06-14")

	// Too far out.
	createApproved(t, mem, "Petras", "2025-07-20", "2025-07-25")

	// Inside the window but already signed.
	signedRec := createApproved(t, mem, "Ona", "2025-06-05", "2025-06-06")
	signedFlag := true
	_, err := mem.UpdateVacation(ctx, signedRec.ID, vacation.Update{SignedRequestReceived: &signedFlag})
	require.NoError(t, err)

	// Not approved yet.
	pending, err := mem.CreateVacation(ctx, vacation.CreateInput{
		EmployeeName: "Rasa",
		StartDate:    "2025-06-03",
		EndDate:      "2025-06-04",
	})
	require.NoError(t, err)

	sent := rs.Sweep(ctx)
	assert.Equal(t, 1, sent)
	require.Equal(t, 1, mailer.attempts())
	assert.Contains(t, mailer.subjects[0], "Jonas")

	got, err := mem.GetVacationByID(ctx, inWindow.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReminderSentAt, "reminder timestamp stamped after a successful send")
	assert.Equal(t, today, got.ReminderSentAt.UTC())

	// Untouched records carry no reminder timestamp.
	got, err = mem.GetVacationByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ReminderSentAt)
}

func TestSweep_AlreadyStartedLeaveGoesFirst(t *testing.T) {
	mailer := &fakeMailer{}
	rs, mem := newTestScheduler(t, mailer)

	// 9 days out vs. already running: the running one is more urgent.
	createApproved(t, mem, "Jonas", "2025-06-10", "2025-06-14")
	createApproved(t, mem, "Vilija", "2025-05-28", "2025-06-03")

	sent := rs.Sweep(context.Background())
	assert.Equal(t, 2, sent)
	require.Len(t, mailer.subjects, 2)
	assert.Contains(t, mailer.subjects[0], "Vilija")
	assert.Contains(t, mailer.subjects[1], "Jonas")
}

// =============================================================================
// IDEMPOTENCE AND FAILURE HANDLING
// =============================================================================

func TestSweep_SendsAtMostOncePerRecord(t *testing.T) {
	mailer := &fakeMailer{}
	rs, mem := newTestScheduler(t, mailer)
	ctx := context.Background()

	createApproved(t, mem, "Jonas", "2025-06-10", "2025-06-14")

	assert.Equal(t, 1, rs.Sweep(ctx))
	assert.Equal(t, 0, rs.Sweep(ctx), "second sweep finds nothing to send")
	assert.Equal(t, 1, mailer.attempts())
}

func TestSweep_FailedSendStaysEligible(t *testing.T) {
	mailer := &fakeMailer{fail: true}
	rs, mem := newTestScheduler(t, mailer)
	ctx := context.Background()

	rec := createApproved(t, mem, "Jonas", "2025-06-10", "2025-06-14")

	assert.Equal(t, 0, rs.Sweep(ctx))
	got, err := mem.GetVacationByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ReminderSentAt, "failed send must not consume eligibility")

	// SMTP recovers; the next sweep delivers.
	mailer.setFail(false)
	assert.Equal(t, 1, rs.Sweep(ctx))
	got, err = mem.GetVacationByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ReminderSentAt)
}

func TestSweep_DisabledMailerSendsNothing(t *testing.T) {
	mailer := &fakeMailer{disabled: true}
	rs, mem := newTestScheduler(t, mailer)
	ctx := context.Background()

	rec := createApproved(t, mem, "Jonas", "2025-06-10", "2025-06-14")

	assert.Equal(t, 0, rs.Sweep(ctx))
	assert.Equal(t, 0, mailer.attempts())

	// Eligibility is preserved for when the mailer comes back configured.
	got, err := mem.GetVacationByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ReminderSentAt)
}

// =============================================================================
// SCHEDULING
// =============================================================================

func TestScheduleSoon_CollapsesIntoOneRun(t *testing.T) {
	// A failing mailer keeps the candidate eligible, so every sweep
	// produces exactly one send attempt and attempts count sweeps.
	mailer := &fakeMailer{fail: true}
	rs, mem := newTestScheduler(t, mailer)
	rs.Debounce = 20 * time.Millisecond

	createApproved(t, mem, "Jonas", "2025-06-10", "2025-06-14")

	rs.ScheduleSoon()
	rs.ScheduleSoon()
	rs.ScheduleSoon()

	assert.Eventually(t, func() bool { return mailer.attempts() == 1 },
		time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, mailer.attempts(), "repeated triggers collapse into one sweep")
}

func TestStop_CancelsPendingDebounce(t *testing.T) {
	// A failing mailer keeps the candidate eligible, so attempts count
	// sweeps.
	mailer := &fakeMailer{fail: true}
	rs, mem := newTestScheduler(t, mailer)
	rs.Debounce = 30 * time.Millisecond

	createApproved(t, mem, "Jonas", "2025-06-10", "2025-06-14")

	rs.Start()
	assert.Eventually(t, func() bool { return mailer.attempts() == 1 },
		time.Second, 5*time.Millisecond, "startup sweep")

	rs.ScheduleSoon()
	rs.Stop()

	// Nothing runs against the store once Stop has returned.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, mailer.attempts(), "pending debounce must not sweep after Stop")
}

func TestStartStop_Lifecycle(t *testing.T) {
	mailer := &fakeMailer{}
	rs, mem := newTestScheduler(t, mailer)

	createApproved(t, mem, "Jonas", "2025-06-10", "2025-06-14")

	rs.Start()
	assert.Eventually(t, func() bool { return mailer.attempts() == 1 },
		time.Second, 10*time.Millisecond, "startup sweep runs immediately")

	rs.Stop()
	rs.Stop() // second stop is a no-op
}
