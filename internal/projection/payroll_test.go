package projection

import "testing"

func fullTime(id string, freq Frequency, anchor string) PayrollProfile {
	return PayrollProfile{
		ID:           id,
		Name:         "Acme " + id,
		HourlyRate:   10,
		Employment:   FullTime,
		Frequency:    freq,
		PayDayAnchor: anchor,
		WorkDays:     5,
	}
}

// ============================================================
// Pay dates
// ============================================================

func TestCalculatePayDate(t *testing.T) {
	today := mustDate(t, "2025-01-01")
	tests := []struct {
		name   string
		work   string
		freq   Frequency
		anchor string
		want   string
	}{
		{"biweekly next boundary", "2025-03-10", Biweekly, "2025-03-03", "2025-03-17"},
		{"on boundary", "2025-03-17", Biweekly, "2025-03-03", "2025-03-17"},
		{"before anchor", "2025-03-10", Biweekly, "2025-03-17", "2025-03-17"},
		{"weekly", "2025-03-04", Weekly, "2025-03-03", "2025-03-10"},
		{"monthly uses thirty days", "2025-03-02", Monthly, "2025-03-01", "2025-03-31"},
		{"immediate", "2025-03-10", Immediate, "2025-03-03", "2025-03-10"},
		{"once has no cycle", "2025-03-10", Once, "2025-03-03", "2025-03-10"},
		{"empty anchor is today", "2025-01-05", Weekly, "", "2025-01-08"},
		{"bad anchor", "2025-03-10", Weekly, "soon", "2025-03-10"},
		{"bad work date", "garbage", Weekly, "2025-03-03", "garbage"},
		{"anchor centuries back", "2025-03-10", Biweekly, "1700-01-01", "2025-03-14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PayrollProfile{ID: "p", Employment: PartTime, Frequency: tt.freq, PayDayAnchor: tt.anchor}
			if got := CalculatePayDate(tt.work, p, today); got != tt.want {
				t.Fatalf("CalculatePayDate(%s) = %s, want %s", tt.work, got, tt.want)
			}
		})
	}
}

// ============================================================
// Salary payouts
// ============================================================

func TestPayrollBiweeklyFiresOnlyOnBoundaries(t *testing.T) {
	anchor := mustDate(t, "2025-01-06")
	today := mustDate(t, "2025-01-01")
	profiles := []PayrollProfile{fullTime("p1", Biweekly, "2025-01-06")}

	for i := 0; i < 120; i++ {
		date := today.AddDate(0, 0, i)
		diff := DaysBetween(anchor, date)
		entries := PayrollEvents(date, profiles, nil, today)

		shouldFire := diff >= 0 && diff%14 == 0
		if shouldFire != (len(entries) == 1) {
			t.Fatalf("%s: fired=%v, want %v", FormatDate(date), len(entries) == 1, shouldFire)
		}
		if shouldFire && entries[0].Amount != 800 {
			t.Fatalf("%s: expected 800, got %v", FormatDate(date), entries[0].Amount)
		}
	}
}

func TestPayrollWeeklyAmount(t *testing.T) {
	p := fullTime("p1", Weekly, "2025-01-06")
	p.WorkDays = 0
	entries := PayrollEvents(mustDate(t, "2025-01-13"), []PayrollProfile{p}, nil, mustDate(t, "2025-01-01"))
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Amount != 400 || entries[0].Kind != KindPayroll || entries[0].SourceID != "p1" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestPayrollMonthlySkipsShortMonths(t *testing.T) {
	today := mustDate(t, "2025-01-01")
	profiles := []PayrollProfile{fullTime("p1", Monthly, "2025-01-31")}

	fired := []string{}
	for i := 0; i < 100; i++ {
		date := today.AddDate(0, 0, i)
		if len(PayrollEvents(date, profiles, nil, today)) > 0 {
			fired = append(fired, FormatDate(date))
		}
	}
	want := []string{"2025-01-31", "2025-03-31"}
	if len(fired) != len(want) {
		t.Fatalf("expected %v, got %v", want, fired)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, fired)
		}
	}
}

func TestPayrollSkips(t *testing.T) {
	today := mustDate(t, "2025-01-06")
	partTime := fullTime("pt", Weekly, "2025-01-06")
	partTime.Employment = PartTime
	badAnchor := fullTime("bad", Weekly, "next monday")
	excluded := fullTime("ex", Weekly, "2025-01-06")
	immediate := fullTime("im", Immediate, "2025-01-06")

	entries := PayrollEvents(today, []PayrollProfile{partTime, badAnchor, excluded, immediate}, NewIDSet("ex"), today)
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %+v", entries)
	}
}

func TestPayrollEmptyAnchorIsToday(t *testing.T) {
	today := mustDate(t, "2025-01-08")
	profiles := []PayrollProfile{fullTime("p1", Weekly, "")}

	if got := PayrollEvents(today, profiles, nil, today); len(got) != 1 {
		t.Fatalf("expected payout today, got %d entries", len(got))
	}
	if got := PayrollEvents(today.AddDate(0, 0, 3), profiles, nil, today); len(got) != 0 {
		t.Fatalf("expected no payout mid-week, got %d entries", len(got))
	}
}

// ============================================================
// Shift payouts
// ============================================================

func TestShiftPayouts(t *testing.T) {
	today := mustDate(t, "2025-03-01")
	profile := PayrollProfile{ID: "cafe", Name: "Cafe", HourlyRate: 15, Employment: PartTime, Frequency: Biweekly, PayDayAnchor: "2025-03-03"}
	shifts := []WorkShift{
		{ID: "s1", ProfileID: "cafe", Date: "2025-03-10", Hours: 8, TotalPay: 120, Status: ShiftPending},
		{ID: "s2", ProfileID: "cafe", Date: "2025-03-11", Hours: 4, TotalPay: 60, Status: ShiftPaid},
		{ID: "s3", ProfileID: "cafe", Date: "2025-03-12", Hours: 4, TotalPay: 60, PaymentDate: "2025-03-20", Status: ShiftPending},
		{ID: "s4", ProfileID: "gone", Date: "2025-03-12", Hours: 2, TotalPay: 30, Status: ShiftPending},
		{ID: "s5", ProfileID: "cafe", Date: "sometime", TotalPay: 99, Status: ShiftPending},
	}
	profiles := []PayrollProfile{profile}

	got := ShiftPayouts(mustDate(t, "2025-03-17"), shifts, profiles, nil, today)
	if len(got) != 1 || got[0].SourceID != "s1" || got[0].Amount != 120 {
		t.Fatalf("expected s1 payout on 2025-03-17, got %+v", got)
	}
	if got[0].Kind != KindShift {
		t.Fatalf("expected shift kind, got %s", got[0].Kind)
	}

	got = ShiftPayouts(mustDate(t, "2025-03-20"), shifts, profiles, nil, today)
	if len(got) != 1 || got[0].SourceID != "s3" {
		t.Fatalf("expected explicit payment date to win, got %+v", got)
	}

	got = ShiftPayouts(mustDate(t, "2025-03-12"), shifts, profiles, nil, today)
	if len(got) != 1 || got[0].SourceID != "s4" {
		t.Fatalf("expected orphan shift to pay on its work date, got %+v", got)
	}
}

func TestOverdueShifts(t *testing.T) {
	today := mustDate(t, "2025-03-01")
	snap := Snapshot{
		Profiles: []PayrollProfile{
			{ID: "cafe", Employment: PartTime, Frequency: Immediate},
			{ID: "shop", Employment: PartTime, Frequency: Weekly, PayDayAnchor: "2025-02-24"},
		},
		Shifts: []WorkShift{
			{ID: "past", ProfileID: "cafe", Date: "2025-02-20", TotalPay: 30, Status: ShiftPending},
			{ID: "today", ProfileID: "cafe", Date: "2025-03-01", TotalPay: 40, Status: ShiftPending},
			{ID: "paid", ProfileID: "cafe", Date: "2025-02-20", TotalPay: 50, Status: ShiftPaid},
			{ID: "cycle", ProfileID: "shop", Date: "2025-02-26", TotalPay: 60, Status: ShiftPending},
			{ID: "explicit", ProfileID: "shop", Date: "2025-02-10", PaymentDate: "2025-03-05", TotalPay: 70, Status: ShiftPending},
		},
	}

	got := OverdueShifts(snap, today)
	if len(got) != 1 || got[0].ID != "past" {
		t.Fatalf("expected only the past shift, got %+v", got)
	}
}

func TestShiftPayoutsExcludedByProfile(t *testing.T) {
	today := mustDate(t, "2025-03-01")
	profiles := []PayrollProfile{{ID: "cafe", Employment: PartTime, Frequency: Immediate}}
	shifts := []WorkShift{
		{ID: "s1", ProfileID: "cafe", Date: "2025-03-10", TotalPay: 120, Status: ShiftPending},
		{ID: "s2", ProfileID: "cafe", Date: "2025-03-10", TotalPay: 80, Status: ShiftPending},
	}
	date := mustDate(t, "2025-03-10")

	if got := ShiftPayouts(date, shifts, profiles, NewIDSet("cafe"), today); len(got) != 0 {
		t.Fatalf("expected profile exclusion to drop shifts, got %+v", got)
	}
	got := ShiftPayouts(date, shifts, profiles, NewIDSet("s1"), today)
	if len(got) != 1 || got[0].SourceID != "s2" {
		t.Fatalf("expected only s2, got %+v", got)
	}
}
