/*
schedule.go - Lane assignment and overlap counting for the Gantt view

PURPOSE:
  Lays out one employee's (possibly overlapping) vacation intervals into
  non-overlapping visual lanes, and counts how many people are away on
  each visible day across the whole department.

LANE ASSIGNMENT:
  Classic greedy interval scheduling: process intervals sorted by
  (start, end); each one takes the lowest-indexed lane whose current end
  date is strictly before its start date, or opens a new lane. For
  intervals sorted by start this yields the minimum possible number of
  lanes (interval graph coloring), so the row height for an employee is
  exactly the maximum number of their simultaneously overlapping
  requests.

OVERLAP COUNTING:
  Per visible day, a linear count of non-rejected records spanning it.
  O(days x records) - fine at this scale (tens of employees, months of
  range). A sweep over sorted start/end boundaries is the natural
  upgrade if ranges ever get long.

LANE INDEXES CARRY NO BUSINESS MEANING. They exist purely for vertical
stacking in the rendered grid.

SEE ALSO:
  - calendar.ClampInterval: window intersection used for visible bars
*/
package vacation

import (
	"sort"
	"strings"
	"time"

	"github.com/eigida/vacations/calendar"
)

// =============================================================================
// LANE ASSIGNMENT
// =============================================================================

// LaneItem is a vacation record with its assigned display lane.
type LaneItem struct {
	Vacation VacationRequest
	Lane     int
}

// AssignLanes assigns each of one employee's records to the lowest
// available non-conflicting lane. Input order does not matter; the
// result is sorted by (StartDate, EndDate).
func AssignLanes(items []VacationRequest) []LaneItem {
	sorted := make([]VacationRequest, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartDate != sorted[j].StartDate {
			return sorted[i].StartDate < sorted[j].StartDate
		}
		return sorted[i].EndDate < sorted[j].EndDate
	})

	// laneEnds[i] holds the end date of the last interval placed in lane i.
	var laneEnds []string
	result := make([]LaneItem, 0, len(sorted))

	for _, v := range sorted {
		lane := -1
		for i, end := range laneEnds {
			if end < v.StartDate {
				lane = i
				break
			}
		}
		if lane == -1 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, v.EndDate)
		} else {
			laneEnds[lane] = v.EndDate
		}
		result = append(result, LaneItem{Vacation: v, Lane: lane})
	}

	return result
}

// =============================================================================
// EMPLOYEE ROWS - clamped bars for a visible window
// =============================================================================

// Bar is one visible segment of a vacation within the window. Offset is
// the zero-based day index of its first visible day; Length is its
// visible day count (always >= 1).
type Bar struct {
	Vacation VacationRequest
	Lane     int
	Offset   int
	Length   int
}

// EmployeeRow is one employee's lane-stacked bars for the visible range.
type EmployeeRow struct {
	EmployeeName string
	Bars         []Bar
	LaneCount    int
}

// BuildRows groups records by employee, assigns lanes, and clamps each
// record to the visible [rangeStart, rangeEnd] window. Records entirely
// outside the window are dropped, and employees with nothing visible are
// omitted. Rows come back sorted by employee name (case-insensitive).
func BuildRows(vacations []VacationRequest, rangeStart, rangeEnd time.Time) []EmployeeRow {
	byEmployee := make(map[string][]VacationRequest)
	for _, v := range vacations {
		key := strings.TrimSpace(v.EmployeeName)
		byEmployee[key] = append(byEmployee[key], v)
	}

	names := make([]string, 0, len(byEmployee))
	for name := range byEmployee {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	rows := make([]EmployeeRow, 0, len(names))
	for _, name := range names {
		withLanes := AssignLanes(byEmployee[name])

		laneCount := 1
		bars := make([]Bar, 0, len(withLanes))
		for _, item := range withLanes {
			if item.Lane+1 > laneCount {
				laneCount = item.Lane + 1
			}

			start, err := calendar.ParseDate(item.Vacation.StartDate)
			if err != nil {
				continue
			}
			end, err := calendar.ParseDate(item.Vacation.EndDate)
			if err != nil {
				continue
			}

			clampedStart, clampedEnd, ok := calendar.ClampInterval(start, end, rangeStart, rangeEnd)
			if !ok {
				continue
			}

			bars = append(bars, Bar{
				Vacation: item.Vacation,
				Lane:     item.Lane,
				Offset:   calendar.DaysBetween(rangeStart, clampedStart),
				Length:   calendar.DaysBetween(clampedStart, clampedEnd) + 1,
			})
		}

		if len(bars) == 0 {
			continue
		}
		rows = append(rows, EmployeeRow{EmployeeName: name, Bars: bars, LaneCount: laneCount})
	}

	return rows
}

// =============================================================================
// OVERLAP COUNTING
// =============================================================================

// OverlapCounts returns, for each day in the visible range, how many
// active (non-rejected) records span that day inclusively. The slice is
// index-aligned with calendar.EnumerateDays(rangeStart, rangeEnd).
func OverlapCounts(vacations []VacationRequest, rangeStart, rangeEnd time.Time) []int {
	var active []VacationRequest
	for _, v := range vacations {
		if v.Status != StatusRejected {
			active = append(active, v)
		}
	}

	days := calendar.EnumerateDays(rangeStart, rangeEnd)
	counts := make([]int, len(days))
	for i, day := range days {
		iso := calendar.FormatDate(day)
		for _, v := range active {
			if v.SpansDay(iso) {
				counts[i]++
			}
		}
	}
	return counts
}
