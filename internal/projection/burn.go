package projection

import "time"

const daysPerBudgetMonth = 30

// DailyBurn spreads the monthly limits of active budgets evenly over 30 days.
func DailyBurn(budgets []Budget, excluded IDSet) float64 {
	var total float64
	for _, b := range budgets {
		if b.Paused || excluded.Has(b.ID) {
			continue
		}
		total += b.Limit
	}
	return total / daysPerBudgetMonth
}

// SubscriptionCharges returns the subscriptions billed on date. A billing day
// past the end of the month skips that month; it is not moved to the last
// day.
func SubscriptionCharges(date time.Time, subs []Subscription, excluded IDSet) []Entry {
	var out []Entry
	day := date.Day()
	for _, s := range subs {
		if s.Paused || excluded.Has(s.ID) {
			continue
		}
		if s.BillingDay < 1 || s.BillingDay > 31 || s.BillingDay != day {
			continue
		}
		out = append(out, Entry{
			Kind:     KindSubscription,
			SourceID: s.ID,
			Label:    s.Name,
			Amount:   -s.Price,
		})
	}
	return out
}

type eventSource struct {
	event Event
	date  time.Time
	cost  float64
}

func compileEvents(events []Event) []eventSource {
	out := make([]eventSource, 0, len(events))
	for _, e := range events {
		date, ok := ParseDate(e.Date)
		if !ok {
			continue
		}
		out = append(out, eventSource{event: e, date: date, cost: UnsettledCost(e)})
	}
	return out
}

// UnsettledCost sums the cost of the event's unchecked items.
func UnsettledCost(e Event) float64 {
	var total float64
	for _, it := range e.Items {
		if !it.Checked {
			total += it.Cost
		}
	}
	return total
}

func eventEntries(sources []eventSource, date time.Time, excluded IDSet) []Entry {
	var out []Entry
	for _, s := range sources {
		if s.cost == 0 || excluded.Has(s.event.ID) || !sameDay(s.date, date) {
			continue
		}
		out = append(out, Entry{
			Kind:     KindEvent,
			SourceID: s.event.ID,
			Label:    s.event.Name,
			Amount:   -s.cost,
		})
	}
	return out
}

// EventCosts returns one negative entry per event dated on date.
func EventCosts(date time.Time, events []Event, excluded IDSet) []Entry {
	return eventEntries(compileEvents(events), Civil(date), excluded)
}

type goalSource struct {
	goal  Goal
	start time.Time
	due   time.Time
}

func compileGoals(goals []Goal) []goalSource {
	out := make([]goalSource, 0, len(goals))
	for _, g := range goals {
		if src, ok := compileGoal(g); ok {
			out = append(out, src)
		}
	}
	return out
}

func compileGoal(g Goal) (goalSource, bool) {
	if g.Installment <= 0 {
		return goalSource{}, false
	}
	src := goalSource{goal: g}
	switch g.Frequency {
	case Once:
		due, ok := ParseDate(g.Deadline)
		if !ok {
			return goalSource{}, false
		}
		src.due = due
	case Weekly, Biweekly, Monthly:
		start, ok := ParseDate(g.StartDate)
		if !ok {
			return goalSource{}, false
		}
		src.start = start
	case Immediate, FrequencyUnknown:
		return goalSource{}, false
	}
	return src, true
}

// fires reports whether the installment schedule lands on date. The saved
// amount is checked separately.
func (s goalSource) fires(date time.Time) bool {
	switch s.goal.Frequency {
	case Once:
		return sameDay(s.due, date)
	case Monthly:
		return date.Day() == s.start.Day()
	case Weekly:
		return date.Weekday() == s.start.Weekday()
	case Biweekly:
		diff := DaysBetween(s.start, date)
		return diff >= 0 && diff%14 == 0
	case Immediate, FrequencyUnknown:
		return false
	}
	return false
}

func goalEntries(sources []goalSource, date time.Time, saved map[string]float64, excluded IDSet) []Entry {
	var out []Entry
	for _, s := range sources {
		if excluded.Has(s.goal.ID) {
			continue
		}
		if saved[s.goal.ID] >= s.goal.Target || !s.fires(date) {
			continue
		}
		out = append(out, Entry{
			Kind:     KindGoal,
			SourceID: s.goal.ID,
			Label:    s.goal.Name,
			Amount:   -s.goal.Installment,
		})
	}
	return out
}

// GoalInstallments returns the installments due on date given the running
// saved amount of each goal. saved is only read. The last installment may
// overshoot the target; the next one is stopped by the saved check.
func GoalInstallments(date time.Time, goals []Goal, saved map[string]float64, excluded IDSet) []Entry {
	return goalEntries(compileGoals(goals), Civil(date), saved, excluded)
}
