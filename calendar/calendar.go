/*
Package calendar provides date arithmetic for the vacation planner.

PURPOSE:
  All scheduling logic in this system works on timezone-less calendar
  dates. This package pins every date to midnight UTC so that day
  arithmetic never drifts across daylight-saving transitions, and
  provides the visible-range computation the Gantt view is built on.

KEY CONCEPTS IN THIS FILE (calendar.go):
  - ISO dates: the wire and storage format is always YYYY-MM-DD
  - ViewMode: the Gantt view shows either one month or one year
  - Clamping: a vacation interval is intersected with the visible
    window before any cell positions are derived

DESIGN PRINCIPLES:
  1. Purity: every function is a deterministic function of its inputs
  2. UTC only: a "date" is time.Time at 00:00:00 UTC, nothing else
  3. Inclusive ranges: [start, end] always includes both endpoints

SEE ALSO:
  - holidays.go: weekend/holiday classification for day shading
  - vacation/schedule.go: lane layout built on these primitives
*/
package calendar

import "time"

// ISODate is the layout used for all dates in storage and on the wire.
const ISODate = "2006-01-02"

// ViewMode selects the size of the visible Gantt range.
type ViewMode string

const (
	ViewModeMonth ViewMode = "month"
	ViewModeYear  ViewMode = "year"
)

// ParseViewMode returns the mode for a raw query value, defaulting to month.
func ParseViewMode(raw string) ViewMode {
	if ViewMode(raw) == ViewModeYear {
		return ViewModeYear
	}
	return ViewModeMonth
}

// =============================================================================
// ISO PARSING / FORMATTING
// =============================================================================

// ParseDate parses a YYYY-MM-DD string into a midnight-UTC date.
// Round-trip guarantee: FormatDate(ParseDate(s)) == s for every valid s.
func ParseDate(iso string) (time.Time, error) {
	return time.ParseInLocation(ISODate, iso, time.UTC)
}

// MustParseDate is ParseDate for known-good literals (tests, fixtures).
func MustParseDate(iso string) time.Time {
	t, err := ParseDate(iso)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(ISODate)
}

// IsValidDate reports whether iso is a real calendar date in YYYY-MM-DD form.
// Rejects both malformed strings and impossible dates like 2025-02-30.
func IsValidDate(iso string) bool {
	if len(iso) != len(ISODate) {
		return false
	}
	_, err := ParseDate(iso)
	return err == nil
}

// =============================================================================
// DAY ARITHMETIC
// =============================================================================

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from from to to.
// Negative when to is earlier than from.
func DaysBetween(from, to time.Time) int {
	return int(truncate(to).Sub(truncate(from)).Hours() / 24)
}

func truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// VISIBLE RANGE
// =============================================================================

// VisibleRange returns the inclusive [start, end] window for an anchor date.
// Month mode covers the anchor's calendar month, year mode the whole year.
func VisibleRange(anchor time.Time, mode ViewMode) (time.Time, time.Time) {
	a := truncate(anchor)
	if mode == ViewModeYear {
		start := time.Date(a.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(a.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		return start, end
	}

	start := time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// EnumerateDays returns every date in [start, end] inclusive, in order.
// Returns nil when end is before start.
func EnumerateDays(start, end time.Time) []time.Time {
	s, e := truncate(start), truncate(end)
	if e.Before(s) {
		return nil
	}

	days := make([]time.Time, 0, DaysBetween(s, e)+1)
	for cursor := s; !cursor.After(e); cursor = AddDays(cursor, 1) {
		days = append(days, cursor)
	}
	return days
}

// ClampInterval intersects an item interval with a visible range.
// ok is false when the two do not intersect at all.
func ClampInterval(itemStart, itemEnd, rangeStart, rangeEnd time.Time) (start, end time.Time, ok bool) {
	if itemEnd.Before(rangeStart) || itemStart.After(rangeEnd) {
		return time.Time{}, time.Time{}, false
	}

	start = itemStart
	if start.Before(rangeStart) {
		start = rangeStart
	}
	end = itemEnd
	if end.After(rangeEnd) {
		end = rangeEnd
	}
	return start, end, true
}
