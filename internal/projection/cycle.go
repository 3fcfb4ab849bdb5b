package projection

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for every date field.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date, or an RFC 3339 timestamp whose calendar
// date is taken as written. The result is midnight UTC so that day
// arithmetic never crosses a DST boundary.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Civil(t), true
	}
	return time.Time{}, false
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Civil drops the clock and zone of t, keeping the calendar date it shows.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b, negative when
// b is earlier. Dates any distance apart are counted exactly.
func DaysBetween(a, b time.Time) int {
	return int((Civil(b).Unix() - Civil(a).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// DaysUntilNextCycle returns how many days after date the next boundary of
// a cycle counted from anchor falls, in [0, cycle). A date that is itself a
// boundary yields 0. Dates before the anchor are handled by the same
// modular arithmetic.
func DaysUntilNextCycle(anchor, date time.Time, cycle int) int {
	if cycle <= 0 {
		return 0
	}
	diff := DaysBetween(anchor, date)
	return ((cycle-diff%cycle)%cycle + cycle) % cycle
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
