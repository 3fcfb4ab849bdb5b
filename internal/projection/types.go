// Package projection simulates day-by-day cash balance from a snapshot of
// accounts, income schedules, recurring obligations and planned events.
//
// Everything here is a pure function of its inputs: nothing is read from disk,
// nothing is logged and no input is mutated. Hosts gather a Snapshot, call
// Calculate and apply any side effects themselves.
package projection

import (
	"sort"
	"time"
)

// ExtraIncomeID is the exclusion id that switches off manual extra income.
const ExtraIncomeID = "extra_income"

type AccountKind string

const (
	AccountCash   AccountKind = "cash"
	AccountDebit  AccountKind = "debit"
	AccountCredit AccountKind = "credit"
)

type EmploymentKind string

const (
	PartTime EmploymentKind = "part_time"
	FullTime EmploymentKind = "full_time"
)

type ShiftStatus string

const (
	ShiftPending ShiftStatus = "pending"
	ShiftPaid    ShiftStatus = "paid"
)

// Account is a wallet. Only the balance matters to the engine.
type Account struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Kind        AccountKind `json:"kind"`
	Balance     float64     `json:"balance"`
	CreditLimit float64     `json:"credit_limit,omitempty"`
}

// PayrollProfile describes an employer. PayDayAnchor is a YYYY-MM-DD date
// from which pay cycles are counted; empty means today. WorkDays is the
// number of eight-hour days per week, 0 meaning 5.
type PayrollProfile struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	HourlyRate   float64        `json:"hourly_rate"`
	Employment   EmploymentKind `json:"employment"`
	Frequency    Frequency      `json:"frequency"`
	PayDayAnchor string         `json:"pay_day_anchor,omitempty"`
	WorkDays     int            `json:"work_days,omitempty"`
}

// WeeklyHours returns the contracted hours per week.
func (p PayrollProfile) WeeklyHours() float64 {
	days := p.WorkDays
	if days <= 0 {
		days = 5
	}
	return float64(days * 8)
}

// WorkShift is a single worked day. PaymentDate may be empty, in which case
// it is derived from the owning profile's pay cycle.
type WorkShift struct {
	ID          string      `json:"id"`
	ProfileID   string      `json:"profile_id"`
	Date        string      `json:"date"`
	Hours       float64     `json:"hours"`
	TotalPay    float64     `json:"total_pay"`
	PaymentDate string      `json:"payment_date,omitempty"`
	Status      ShiftStatus `json:"status"`
}

type Budget struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Paused   bool    `json:"paused,omitempty"`
}

type Subscription struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	BillingDay int     `json:"billing_day"`
	Paused     bool    `json:"paused,omitempty"`
}

// Goal is a savings target paid off in installments. Deadline is only used
// by the Once frequency.
type Goal struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Target      float64   `json:"target"`
	Saved       float64   `json:"saved"`
	Installment float64   `json:"installment"`
	Frequency   Frequency `json:"frequency"`
	StartDate   string    `json:"start_date,omitempty"`
	Deadline    string    `json:"deadline,omitempty"`
}

type EventItem struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	Checked bool    `json:"checked"`
}

// Event is a planned one-off expense group. Only unchecked items are spent.
type Event struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Date  string      `json:"date"`
	Items []EventItem `json:"items"`
}

// Snapshot is the read-only input of a projection run.
type Snapshot struct {
	Accounts      []Account        `json:"accounts"`
	Profiles      []PayrollProfile `json:"profiles"`
	Shifts        []WorkShift      `json:"shifts"`
	Budgets       []Budget         `json:"budgets"`
	Subscriptions []Subscription   `json:"subscriptions"`
	Goals         []Goal           `json:"goals"`
	Events        []Event          `json:"events"`
}

// StartingBalance is the sum of all account balances.
func (s Snapshot) StartingBalance() float64 {
	var total float64
	for _, a := range s.Accounts {
		total += a.Balance
	}
	return total
}

// Kind classifies a ledger entry.
type Kind string

const (
	KindBudget       Kind = "budget"
	KindExtraIncome  Kind = "extra_income"
	KindPayroll      Kind = "payroll"
	KindShift        Kind = "shift"
	KindSubscription Kind = "subscription"
	KindEvent        Kind = "event"
	KindGoal         Kind = "goal"
)

// Entry is one balance change on a ledger day. Amount is signed.
type Entry struct {
	Kind     Kind    `json:"kind"`
	SourceID string  `json:"source_id,omitempty"`
	Label    string  `json:"label"`
	Amount   float64 `json:"amount"`
}

// Day is one ledger day. Balance is rounded to whole currency units.
type Day struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
	Log     []Entry `json:"log"`
}

// Net returns the sum of the day's entry amounts.
func (d Day) Net() float64 {
	var net float64
	for _, e := range d.Log {
		net += e.Amount
	}
	return net
}

// IDSet is a set of entity ids excluded from a run. A nil IDSet is empty.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Toggle adds id when absent and removes it when present.
func (s IDSet) Toggle(id string) {
	if s.Has(id) {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

// Slice returns the ids in sorted order.
func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MaxMonths is the longest horizon Calculate projects. Longer requests are
// cut to it.
const MaxMonths = 120

// Request holds the per-call parameters of Calculate. ExtraWeeklyIncome is
// ignored unless it is positive and finite.
type Request struct {
	Today             time.Time
	Months            int
	ExtraWeeklyIncome float64
	Excluded          IDSet
}
