/*
status.go - Derived display status for vacation records

PURPOSE:
  A record's stored status (pending/approved/rejected) is not the whole
  story: an approved leave without the signed paper request is blocked,
  and one starting within 14 days needs chasing. Those states are
  derived here, as pure functions of (record, today) - they are never
  persisted, so they can never go stale.

DECISION ORDER (first match wins):
  1. approved + unsigned + started        -> blocked-no-request
  2. approved + unsigned + starts in <=14 -> missing-request
  3. approved + signed + today in range   -> on-leave
  4. otherwise                            -> the stored status

The 14-day window counts calendar days, not business days. Weekend and
holiday classification affects only the Gantt shading, never this math.

SEE ALSO:
  - notify package: uses SignedRequestAlert to pick reminder candidates
*/
package vacation

import (
	"fmt"
	"time"

	"github.com/eigida/vacations/calendar"
)

// SignedRequestDeadlineDays is the compliance window: a signed paper
// request is chased once the leave starts within this many calendar days.
const SignedRequestDeadlineDays = 14

// Display status keys. The first three are derived; stored statuses are
// used as keys directly otherwise.
const (
	StatusKeyBlockedNoRequest = "blocked-no-request"
	StatusKeyMissingRequest   = "missing-request"
	StatusKeyOnLeave          = "on-leave"
)

var defaultStatusLabels = map[Status]string{
	StatusPending:  "Laukia patvirtinimo",
	StatusApproved: "Patvirtinta",
	StatusRejected: "Atmesta",
}

// StatusView is a presentational status: a stable key for styling and a
// human-readable label.
type StatusView struct {
	Key   string
	Label string
}

// Alert is a manager-facing reminder entry. DaysUntilStart is negative
// once the leave has already started.
type Alert struct {
	Key            string
	Label          string
	DaysUntilStart int
}

func needsSignedRequest(v VacationRequest) bool {
	return v.Status == StatusApproved && !v.SignedRequestReceived
}

// daysUntilStart counts calendar days from today to the leave start.
// An unparseable start date is treated as far in the future so it never
// produces a false alert; validation upstream makes this unreachable.
func daysUntilStart(v VacationRequest, today time.Time) int {
	start, err := calendar.ParseDate(v.StartDate)
	if err != nil {
		return SignedRequestDeadlineDays + 1
	}
	return calendar.DaysBetween(today, start)
}

// Classify derives the display status of a record as of the given day.
func Classify(v VacationRequest, today time.Time) StatusView {
	todayISO := calendar.FormatDate(today)

	if needsSignedRequest(v) {
		if v.StartDate <= todayISO {
			return StatusView{
				Key:   StatusKeyBlockedNoRequest,
				Label: "Negali atostogauti (negautas pasirašytas prašymas)",
			}
		}
		if daysUntilStart(v, today) <= SignedRequestDeadlineDays {
			return StatusView{
				Key:   StatusKeyMissingRequest,
				Label: "Trūksta pasirašyto prašymo (iki atostogų ≤ 14 d.)",
			}
		}
	}

	if v.Status == StatusApproved && v.SignedRequestReceived && v.SpansDay(todayISO) {
		return StatusView{Key: StatusKeyOnLeave, Label: "Atostogauja"}
	}

	label, ok := defaultStatusLabels[v.Status]
	if !ok {
		label = string(v.Status)
	}
	return StatusView{Key: string(v.Status), Label: label}
}

// SignedRequestAlert returns a reminder entry when an approved record is
// missing its signed request and the leave starts within the compliance
// window (or already started). Returns nil otherwise.
//
// The numeric day count is exposed so reminder lists can sort ascending
// by urgency.
func SignedRequestAlert(v VacationRequest, today time.Time) *Alert {
	if !needsSignedRequest(v) {
		return nil
	}

	days := daysUntilStart(v, today)
	if days > SignedRequestDeadlineDays {
		return nil
	}

	if days <= 0 {
		return &Alert{
			Key:            StatusKeyBlockedNoRequest,
			Label:          "Atostogos prasidėjusios arba prasideda šiandien, bet pasirašytas prašymas negautas.",
			DaysUntilStart: days,
		}
	}

	return &Alert{
		Key:            StatusKeyMissingRequest,
		Label:          fmt.Sprintf("Iki atostogų liko %d d., bet pasirašytas prašymas negautas.", days),
		DaysUntilStart: days,
	}
}
