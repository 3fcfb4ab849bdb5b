package store

import (
	"time"

	"github.com/sadopc/fundr/internal/projection"
)

// Profile is a payroll profile row.
type Profile struct {
	projection.PayrollProfile
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shift is a work shift row. ClockIn is set for shifts recorded with the
// shift clock; ClockOut stays nil while the clock is running.
type Shift struct {
	projection.WorkShift
	ClockIn  *time.Time
	ClockOut *time.Time
}

// Running reports whether the shift clock is still open.
func (s Shift) Running() bool {
	return s.ClockIn != nil && s.ClockOut == nil
}

type Transaction struct {
	ID        string
	AccountID string
	Amount    float64
	Note      string
	CreatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// ShiftFilter is used to filter work shifts in queries.
type ShiftFilter struct {
	ProfileID   string
	PendingOnly bool
	From        string
	To          string
	Limit       int
}
