package projection

import (
	"math"
	"time"
)

// Plan is a snapshot compiled for one projection run: dates are parsed once
// and entities with unusable dates are dropped. The exclusion set is read on
// every Step, so toggling it between steps takes effect immediately.
type Plan struct {
	start    time.Time
	days     int
	extra    float64
	excluded IDSet
	burn     []Budget
	payroll  []payrollSource
	shifts   []shiftSource
	subs     []Subscription
	events   []eventSource
	goals    []goalSource
	initial  map[string]float64
	opening  float64
}

// NewPlan compiles snap for the horizon described by req. A negative horizon
// yields a plan with no days; one beyond MaxMonths is cut to MaxMonths.
func NewPlan(snap Snapshot, req Request) *Plan {
	start := Civil(req.Today)
	days := 0
	if req.Months >= 0 {
		days = DaysBetween(start, start.AddDate(0, min(req.Months, MaxMonths), 0)) + 1
	}

	initial := make(map[string]float64, len(snap.Goals))
	for _, g := range snap.Goals {
		initial[g.ID] = g.Saved
	}

	return &Plan{
		start:    start,
		days:     days,
		extra:    req.ExtraWeeklyIncome,
		excluded: req.Excluded,
		burn:     snap.Budgets,
		payroll:  compileProfiles(snap.Profiles, start),
		shifts:   compileShifts(snap.Shifts, snap.Profiles, start),
		subs:     snap.Subscriptions,
		events:   compileEvents(snap.Events),
		goals:    compileGoals(snap.Goals),
		initial:  initial,
		opening:  snap.StartingBalance(),
	}
}

// Len returns the number of ledger days in the plan.
func (p *Plan) Len() int { return p.days }

// Date returns the calendar date of the day at offset.
func (p *Plan) Date(offset int) time.Time {
	return p.start.AddDate(0, 0, offset)
}

// Accumulator carries the running state between days. It is a value: Step
// returns a new one and never modifies the one passed in.
type Accumulator struct {
	Balance float64
	saved   map[string]float64
}

// NewAccumulator returns the state before the first day of the plan.
func (p *Plan) NewAccumulator() Accumulator {
	return Accumulator{Balance: p.opening, saved: p.initial}
}

// Saved returns the simulated saved amount of a goal.
func (a Accumulator) Saved(goalID string) float64 {
	return a.saved[goalID]
}

// Step applies the day at offset to acc and returns the new state together
// with the recorded ledger day.
func (p *Plan) Step(acc Accumulator, offset int) (Accumulator, Day) {
	date := p.Date(offset)
	log := make([]Entry, 0, 4)

	if burn := DailyBurn(p.burn, p.excluded); burn > 0 {
		log = append(log, Entry{Kind: KindBudget, Label: "Daily budgets", Amount: -burn})
	}
	if p.extra > 0 && !math.IsInf(p.extra, 1) && !p.excluded.Has(ExtraIncomeID) && offset%7 == 0 {
		log = append(log, Entry{
			Kind:     KindExtraIncome,
			SourceID: ExtraIncomeID,
			Label:    "Extra income",
			Amount:   p.extra,
		})
	}
	log = append(log, payrollEntries(p.payroll, date, p.excluded)...)
	log = append(log, shiftEntries(p.shifts, date, p.excluded)...)
	log = append(log, SubscriptionCharges(date, p.subs, p.excluded)...)
	log = append(log, eventEntries(p.events, date, p.excluded)...)

	installments := goalEntries(p.goals, date, acc.saved, p.excluded)
	saved := acc.saved
	if len(installments) > 0 {
		saved = make(map[string]float64, len(acc.saved))
		for id, v := range acc.saved {
			saved[id] = v
		}
		for _, e := range installments {
			saved[e.SourceID] -= e.Amount
		}
		log = append(log, installments...)
	}

	balance := acc.Balance
	for _, e := range log {
		balance += e.Amount
	}

	next := Accumulator{Balance: balance, saved: saved}
	return next, Day{
		Date:    FormatDate(date),
		Balance: math.Round(balance),
		Log:     log,
	}
}

// Calculate projects the balance for every day from req.Today through
// req.Today plus req.Months months, inclusive.
func Calculate(snap Snapshot, req Request) []Day {
	plan := NewPlan(snap, req)
	out := make([]Day, 0, plan.Len())
	acc := plan.NewAccumulator()
	for i := 0; i < plan.Len(); i++ {
		var day Day
		acc, day = plan.Step(acc, i)
		out = append(out, day)
	}
	return out
}
