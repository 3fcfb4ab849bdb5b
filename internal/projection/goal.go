package projection

import (
	"math"
	"time"
)

type GoalStatus string

const (
	GoalCompleted GoalStatus = "completed"
	GoalNoPlan    GoalStatus = "no_plan"
	GoalActive    GoalStatus = "active"
)

// GoalProgress summarises a goal independently of any ledger run.
// EstimatedCompletion and InstallmentsLeft are only set for active goals.
type GoalProgress struct {
	Status              GoalStatus `json:"status"`
	Percent             float64    `json:"percent"`
	EstimatedCompletion string     `json:"estimated_completion,omitempty"`
	InstallmentsLeft    int        `json:"installments_left,omitempty"`
}

// GoalDetails estimates when g completes by stepping whole cycles from today.
// The estimate ignores the ledger, so it may differ from the day a Calculate
// run first reaches the target.
func GoalDetails(g Goal, today time.Time) GoalProgress {
	gp := GoalProgress{Percent: goalPercent(g)}

	switch {
	case g.Saved >= g.Target:
		gp.Status = GoalCompleted
		return gp
	case g.Installment <= 0:
		gp.Status = GoalNoPlan
		return gp
	}

	gp.Status = GoalActive
	remaining := g.Target - g.Saved
	gp.InstallmentsLeft = int(math.Ceil(remaining/g.Installment - 1e-9))

	if g.Frequency == Once {
		if due, ok := ParseDate(g.Deadline); ok {
			gp.EstimatedCompletion = FormatDate(due)
		}
		return gp
	}
	if cycle := g.Frequency.CycleDays(); cycle > 0 {
		gp.EstimatedCompletion = FormatDate(Civil(today).AddDate(0, 0, gp.InstallmentsLeft*cycle))
	}
	return gp
}

func goalPercent(g Goal) float64 {
	if g.Target <= 0 {
		return 100
	}
	pct := g.Saved / g.Target * 100
	return math.Max(0, math.Min(100, pct))
}
