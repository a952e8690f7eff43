/*
holidays.go - Lithuanian public holiday calendar

PURPOSE:
  Classifies calendar days for Gantt shading: weekends and Lithuanian
  public holidays. Holidays are the fixed national set plus the movable
  Easter feast (Sunday and the following Monday).

EASTER:
  Easter Sunday is computed with the Meeus/Jones/Butcher algorithm for
  the Gregorian calendar. This is an exact anniversary computation, not
  an approximation; the intermediate variable names follow the published
  algorithm.

CACHING:
  The holiday set for a year is a deterministic function of the year,
  so it is computed once and reused. Staleness is impossible.

SEE ALSO:
  - calendar.go: date primitives
*/
package calendar

import (
	"sync"
	"time"
)

// fixedHolidays lists the MM-DD national holidays that fall on the same
// calendar day every year.
var fixedHolidays = []string{
	"01-01", // Naujieji metai
	"02-16", // Valstybės atkūrimo diena
	"03-11", // Nepriklausomybės atkūrimo diena
	"05-01", // Darbo diena
	"06-24", // Joninės
	"07-06", // Valstybės diena
	"08-15", // Žolinė
	"11-01", // Visų šventųjų diena
	"11-02", // Vėlinės
	"12-24", // Kūčios
	"12-25", // Kalėdos
	"12-26", // Kalėdos (antroji diena)
}

var (
	holidaysMu     sync.Mutex
	holidaysByYear = make(map[int]map[string]bool)
)

// EasterSunday returns the date of Easter Sunday for a year
// (Meeus/Jones/Butcher, Gregorian calendar).
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func holidaySetForYear(year int) map[string]bool {
	holidaysMu.Lock()
	defer holidaysMu.Unlock()

	if set, ok := holidaysByYear[year]; ok {
		return set
	}

	set := make(map[string]bool, len(fixedHolidays)+2)
	prefix := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Format("2006")
	for _, monthDay := range fixedHolidays {
		set[prefix+"-"+monthDay] = true
	}

	easter := EasterSunday(year)
	set[FormatDate(easter)] = true
	set[FormatDate(AddDays(easter, 1))] = true

	holidaysByYear[year] = set
	return set
}

// IsWeekend reports whether the date falls on Saturday or Sunday (UTC).
func IsWeekend(t time.Time) bool {
	wd := t.UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether the date is a Lithuanian public holiday.
func IsHoliday(t time.Time) bool {
	return holidaySetForYear(t.UTC().Year())[FormatDate(t)]
}
