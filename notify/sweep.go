/*
sweep.go - Signed-request reminder sweep and scheduling

PURPOSE:
  Periodically scans for approved vacations whose signed paper request
  has not arrived and whose leave starts within the 14-day compliance
  window, and emails the manager about each one - once per record, ever.

SCHEDULING:
  - A recurring ticker (default 1 hour) drives routine sweeps.
  - ScheduleSoon() arms a short debounce timer after manager mutations,
    so a freshly approved record is evaluated promptly. Repeated calls
    within the delay window collapse into a single pending run.
  - An atomic in-progress guard keeps at most one sweep running;
    overlapping triggers are dropped, not queued - the next scheduled
    run picks up whatever remains.

DELIVERY POLICY:
  Send first, mark after. The reminder-sent timestamp is stamped only
  when the send succeeded, so a transient SMTP failure leaves the
  record eligible for the next sweep (at-least-once delivery). One
  record's failure never aborts the sweep.

SEE ALSO:
  - vacation.SignedRequestAlert: the candidate predicate
  - mailer.go: the transport
*/
package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/eigida/vacations/vacation"
)

const (
	// DefaultInterval is the routine sweep cadence.
	DefaultInterval = 1 * time.Hour

	// DefaultDebounce is the delay of the "run soon" trigger.
	DefaultDebounce = 10 * time.Second
)

// ReminderScheduler runs the reminder sweep on a timer and on demand.
type ReminderScheduler struct {
	Store  vacation.Store
	Mailer Mailer
	Log    *zap.Logger

	Interval time.Duration
	Debounce time.Duration

	// Now is injectable so tests can pin "today". Defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	debounce *time.Timer
	ticker   *time.Ticker
	stop     chan struct{}
	wg       sync.WaitGroup

	inProgress atomic.Bool
}

// NewReminderScheduler creates a scheduler with default timings.
func NewReminderScheduler(store vacation.Store, mailer Mailer, log *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		Store:    store,
		Mailer:   mailer,
		Log:      log,
		Interval: DefaultInterval,
		Debounce: DefaultDebounce,
		Now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Start begins the recurring sweep. The first sweep runs immediately.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.Interval)
	rs.wg.Add(1)
	go rs.run(rs.ticker)

	rs.Log.Info("reminder scheduler started", zap.Duration("interval", rs.Interval))
}

// Stop halts the ticker and any pending debounce, then waits for every
// in-flight sweep to finish, the debounce-fired kind included, so the
// store outlives the last sweep.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	if rs.ticker == nil {
		rs.mu.Unlock()
		return
	}
	rs.ticker.Stop()
	rs.ticker = nil
	if rs.debounce != nil {
		// A timer that already fired is past cancelling; its callback
		// holds a WaitGroup slot and Wait below covers it.
		if rs.debounce.Stop() {
			rs.wg.Done()
		}
		rs.debounce = nil
	}
	close(rs.stop)
	rs.mu.Unlock()

	rs.wg.Wait()
	rs.Log.Info("reminder scheduler stopped")
}

func (rs *ReminderScheduler) run(ticker *time.Ticker) {
	defer rs.wg.Done()

	rs.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			rs.Sweep(context.Background())
		case <-rs.stop:
			return
		}
	}
}

// ScheduleSoon arms a debounced sweep. Calls within the delay window
// collapse into the single already-pending run.
func (rs *ReminderScheduler) ScheduleSoon() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.debounce != nil {
		return
	}

	rs.wg.Add(1)
	rs.debounce = time.AfterFunc(rs.Debounce, func() {
		defer rs.wg.Done()

		rs.mu.Lock()
		rs.debounce = nil
		rs.mu.Unlock()

		select {
		case <-rs.stop:
			return
		default:
		}

		rs.Sweep(context.Background())
	})
}

// Sweep runs one reminder pass. Reentrant-safe: when a sweep is already
// in flight the call is dropped. Returns the number of reminders sent.
func (rs *ReminderScheduler) Sweep(ctx context.Context) int {
	if !rs.inProgress.CompareAndSwap(false, true) {
		rs.Log.Debug("sweep already running, trigger dropped")
		return 0
	}
	defer rs.inProgress.Store(false)

	today := rs.Now()

	records, err := rs.Store.ListVacations(ctx, vacation.ListFilter{})
	if err != nil {
		rs.Log.Error("sweep failed to list vacations", zap.Error(err))
		return 0
	}

	type candidate struct {
		record vacation.VacationRequest
		alert  *vacation.Alert
	}

	var candidates []candidate
	for _, v := range records {
		// Idempotence guard: one reminder per record, ever.
		if v.ReminderSentAt != nil {
			continue
		}
		alert := vacation.SignedRequestAlert(v, today)
		if alert == nil {
			continue
		}
		candidates = append(candidates, candidate{record: v, alert: alert})
	}

	if len(candidates) == 0 {
		return 0
	}

	// Most urgent first: already-started leaves carry negative day counts.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].alert.DaysUntilStart < candidates[j].alert.DaysUntilStart
	})

	if !rs.Mailer.Enabled() {
		rs.Log.Info("reminder candidates found but mailer is disabled",
			zap.Int("candidates", len(candidates)))
		return 0
	}

	sent := 0
	for _, c := range candidates {
		if err := rs.sendReminder(ctx, c.record, c.alert); err != nil {
			// The record stays eligible; the next sweep retries.
			rs.Log.Warn("reminder send failed",
				zap.String("vacation_id", c.record.ID),
				zap.Error(err))
			continue
		}

		sentAt := rs.Now()
		if _, err := rs.Store.UpdateVacation(ctx, c.record.ID, vacation.Update{ReminderSentAt: &sentAt}); err != nil {
			rs.Log.Error("failed to mark reminder as sent",
				zap.String("vacation_id", c.record.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	rs.Log.Info("reminder sweep completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("sent", sent))
	return sent
}

func (rs *ReminderScheduler) sendReminder(ctx context.Context, v vacation.VacationRequest, alert *vacation.Alert) error {
	subject := fmt.Sprintf("Trūksta pasirašyto atostogų prašymo: %s", v.EmployeeName)
	body := fmt.Sprintf(
		"Darbuotojas: %s\nPadalinys: %s\nAtostogos: %s – %s\n\n%s\n",
		v.EmployeeName, v.Department, v.StartDate, v.EndDate, alert.Label,
	)
	return rs.Mailer.Send(ctx, subject, body)
}
