package projection

import (
	"fmt"
	"time"
)

type payrollSource struct {
	profile PayrollProfile
	anchor  time.Time
}

// resolveAnchor returns the profile's anchor date. An empty anchor falls back
// to today; an unparseable one is reported as unresolvable.
func resolveAnchor(p PayrollProfile, today time.Time) (time.Time, bool) {
	if p.PayDayAnchor == "" {
		return Civil(today), true
	}
	return ParseDate(p.PayDayAnchor)
}

func compileProfiles(profiles []PayrollProfile, today time.Time) []payrollSource {
	out := make([]payrollSource, 0, len(profiles))
	for _, p := range profiles {
		if p.Employment != FullTime {
			continue
		}
		anchor, ok := resolveAnchor(p, today)
		if !ok {
			continue
		}
		out = append(out, payrollSource{profile: p, anchor: anchor})
	}
	return out
}

// payout reports whether the profile pays on date and how much. Nothing is
// paid before the anchor.
func (s payrollSource) payout(date time.Time) (float64, bool) {
	diff := DaysBetween(s.anchor, date)
	if diff < 0 {
		return 0, false
	}
	weekly := s.profile.HourlyRate * s.profile.WeeklyHours()
	switch s.profile.Frequency {
	case Weekly:
		return weekly, diff%7 == 0
	case Biweekly:
		return weekly * 2, diff%14 == 0
	case Monthly:
		return weekly * 4, date.Day() == s.anchor.Day()
	case Once, Immediate, FrequencyUnknown:
		return 0, false
	}
	return 0, false
}

func payrollEntries(sources []payrollSource, date time.Time, excluded IDSet) []Entry {
	var out []Entry
	for _, s := range sources {
		if excluded.Has(s.profile.ID) {
			continue
		}
		amount, ok := s.payout(date)
		if !ok {
			continue
		}
		out = append(out, Entry{
			Kind:     KindPayroll,
			SourceID: s.profile.ID,
			Label:    s.profile.Name,
			Amount:   amount,
		})
	}
	return out
}

// PayrollEvents returns the salary payouts of full-time profiles on date.
// Part-time profiles never appear: their income arrives through shifts.
func PayrollEvents(date time.Time, profiles []PayrollProfile, excluded IDSet, today time.Time) []Entry {
	return payrollEntries(compileProfiles(profiles, today), Civil(date), excluded)
}

// CalculatePayDate returns the first payday on or after workDate for the
// profile. The work date is returned unchanged for immediate pay, for
// frequencies without a cycle, or when either date cannot be parsed.
func CalculatePayDate(workDate string, p PayrollProfile, today time.Time) string {
	work, ok := ParseDate(workDate)
	if !ok {
		return workDate
	}
	cycle := p.Frequency.CycleDays()
	if p.Frequency == Immediate || cycle == 0 {
		return workDate
	}
	anchor, ok := resolveAnchor(p, today)
	if !ok {
		return workDate
	}
	return FormatDate(work.AddDate(0, 0, DaysUntilNextCycle(anchor, work, cycle)))
}

type shiftSource struct {
	shift     WorkShift
	profileID string
	label     string
	payDate   time.Time
}

func compileShifts(shifts []WorkShift, profiles []PayrollProfile, today time.Time) []shiftSource {
	byID := make(map[string]PayrollProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	out := make([]shiftSource, 0, len(shifts))
	for _, sh := range shifts {
		if sh.Status != ShiftPending {
			continue
		}
		profile, known := byID[sh.ProfileID]
		payDate, ok := shiftPayDate(sh, profile, known, today)
		if !ok {
			continue
		}
		name := profile.Name
		if name == "" {
			name = "Shift"
		}
		out = append(out, shiftSource{
			shift:     sh,
			profileID: sh.ProfileID,
			label:     fmt.Sprintf("%s (shift %s)", name, sh.Date),
			payDate:   payDate,
		})
	}
	return out
}

// OverdueShifts returns the pending shifts whose payment date is before
// today. The ledger starts today, so their pay appears on no day until the
// shift is settled into an account.
func OverdueShifts(snap Snapshot, today time.Time) []WorkShift {
	start := Civil(today)
	byID := make(map[string]PayrollProfile, len(snap.Profiles))
	for _, p := range snap.Profiles {
		byID[p.ID] = p
	}

	var out []WorkShift
	for _, sh := range snap.Shifts {
		if sh.Status != ShiftPending {
			continue
		}
		profile, known := byID[sh.ProfileID]
		payDate, ok := shiftPayDate(sh, profile, known, start)
		if ok && payDate.Before(start) {
			out = append(out, sh)
		}
	}
	return out
}

func shiftPayDate(sh WorkShift, profile PayrollProfile, known bool, today time.Time) (time.Time, bool) {
	if sh.PaymentDate != "" {
		return ParseDate(sh.PaymentDate)
	}
	if !known {
		return ParseDate(sh.Date)
	}
	return ParseDate(CalculatePayDate(sh.Date, profile, today))
}

func shiftEntries(sources []shiftSource, date time.Time, excluded IDSet) []Entry {
	var out []Entry
	for _, s := range sources {
		if excluded.Has(s.shift.ID) || excluded.Has(s.profileID) {
			continue
		}
		if !sameDay(s.payDate, date) {
			continue
		}
		out = append(out, Entry{
			Kind:     KindShift,
			SourceID: s.shift.ID,
			Label:    s.label,
			Amount:   s.shift.TotalPay,
		})
	}
	return out
}

// ShiftPayouts returns the pending shift payments due on date. Excluding a
// profile id also excludes its shifts.
func ShiftPayouts(date time.Time, shifts []WorkShift, profiles []PayrollProfile, excluded IDSet, today time.Time) []Entry {
	return shiftEntries(compileShifts(shifts, profiles, today), Civil(date), excluded)
}
