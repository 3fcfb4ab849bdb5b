// Package planner runs projections against stored data and applies the side
// effects a projection implies, such as settling shifts that have been paid.
package planner

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sadopc/fundr/internal/projection"
	"github.com/sadopc/fundr/internal/store"
)

// Store is the persistence the planner needs. *store.Store satisfies it.
type Store interface {
	Snapshot() (projection.Snapshot, error)
	GetProfile(id string) (*store.Profile, error)
	GetGoal(id string) (*projection.Goal, error)
	GetSetting(key string) (string, error)
	PendingDue(today string) ([]store.Shift, error)
	SettleShift(id, accountID string) error
}

type Service struct {
	store Store
	log   *logrus.Logger
	now   func() time.Time
}

func NewService(s Store, log *logrus.Logger) *Service {
	return &Service{store: s, log: log, now: time.Now}
}

// SetClock replaces the time source. Tests use it to pin "today".
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Today returns the current civil date.
func (s *Service) Today() time.Time {
	return projection.Civil(s.now())
}

// Options are the per-run inputs of a forecast.
type Options struct {
	Months            int
	ExtraWeeklyIncome float64
	Excluded          projection.IDSet
}

// ValidMonths reports whether n is a usable forecast horizon.
func ValidMonths(n int) bool {
	return n >= 0 && n <= projection.MaxMonths
}

// ValidExtra reports whether v is usable as weekly extra income: finite and
// not negative.
func ValidExtra(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// Defaults returns the forecast options persisted in settings. Values that
// are missing or malformed come from fb.
func (s *Service) Defaults(fb Options) Options {
	opts := fb
	if v, err := s.store.GetSetting(store.SettingHorizonMonths); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && ValidMonths(n) {
			opts.Months = n
		}
	}
	if v, err := s.store.GetSetting(store.SettingExtraWeeklyIncome); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && ValidExtra(f) {
			opts.ExtraWeeklyIncome = f
		}
	}
	if v, err := s.store.GetSetting(store.SettingExcludedIDs); err == nil {
		opts.Excluded = projection.NewIDSet(strings.Split(v, ",")...)
	}
	return opts
}

// Forecast is a projection run with its summary figures. Overdue counts
// pending shifts paid before today; their OverduePay is in neither Start nor
// any day until they are settled.
type Forecast struct {
	Days       []projection.Day `json:"days"`
	Start      float64          `json:"start"`
	Low        projection.Day   `json:"low"`
	Final      float64          `json:"final"`
	Skipped    int              `json:"skipped"`
	Overdue    int              `json:"overdue"`
	OverduePay float64          `json:"overdue_pay"`
}

// Forecast loads a snapshot and projects it over opts.Months months.
func (s *Service) Forecast(opts Options) (*Forecast, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return s.forecast(snap, opts), nil
}

func (s *Service) forecast(snap projection.Snapshot, opts Options) *Forecast {
	issues := projection.Validate(snap)
	for _, is := range issues {
		s.log.WithFields(logrus.Fields{
			"entity": is.Entity,
			"id":     is.ID,
			"name":   is.Name,
			"reason": is.Reason,
		}).Warn("entity skipped by forecast")
	}

	started := time.Now()
	days := projection.Calculate(snap, projection.Request{
		Today:             s.Today(),
		Months:            opts.Months,
		ExtraWeeklyIncome: opts.ExtraWeeklyIncome,
		Excluded:          opts.Excluded,
	})

	f := &Forecast{Days: days, Start: snap.StartingBalance(), Final: snap.StartingBalance(), Skipped: len(issues)}
	for _, sh := range projection.OverdueShifts(snap, s.Today()) {
		f.Overdue++
		f.OverduePay += sh.TotalPay
	}
	if f.Overdue > 0 {
		s.log.WithFields(logrus.Fields{
			"shifts": f.Overdue,
			"pay":    f.OverduePay,
		}).Warn("overdue shifts not settled")
	}
	if len(days) > 0 {
		f.Low = days[0]
		for _, d := range days[1:] {
			if d.Balance < f.Low.Balance {
				f.Low = d
			}
		}
		f.Final = days[len(days)-1].Balance
	}

	s.log.WithFields(logrus.Fields{
		"months":   opts.Months,
		"days":     len(days),
		"excluded": len(opts.Excluded),
		"final":    f.Final,
		"elapsed":  time.Since(started).String(),
	}).Debug("forecast computed")
	return f
}

// LowBalance returns the first day within the horizon whose balance falls
// below threshold, or nil.
func (s *Service) LowBalance(threshold float64, opts Options) (*projection.Day, error) {
	f, err := s.Forecast(opts)
	if err != nil {
		return nil, err
	}
	for i := range f.Days {
		if f.Days[i].Balance < threshold {
			return &f.Days[i], nil
		}
	}
	return nil, nil
}

// PayDate returns the payment date of work done on workDate for a profile.
func (s *Service) PayDate(profileID, workDate string) (string, error) {
	if _, ok := projection.ParseDate(workDate); !ok {
		return "", fmt.Errorf("invalid work date %q, want YYYY-MM-DD", workDate)
	}
	p, err := s.store.GetProfile(profileID)
	if err != nil {
		return "", err
	}
	return projection.CalculatePayDate(workDate, p.PayrollProfile, s.now()), nil
}

// GoalReport pairs the cycle-based estimate of a goal with the day the
// projection actually reaches its target. The two can differ.
type GoalReport struct {
	Goal          projection.Goal         `json:"goal"`
	Progress      projection.GoalProgress `json:"progress"`
	SimulatedDate string                  `json:"simulated_date,omitempty"`
}

// Goals reports every goal, simulating installments over opts.
func (s *Service) Goals(opts Options) ([]GoalReport, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return s.goalReports(snap, snap.Goals, opts), nil
}

// Goal reports a single goal.
func (s *Service) Goal(id string, opts Options) (*GoalReport, error) {
	if _, err := s.store.GetGoal(id); err != nil {
		return nil, err
	}
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	for _, g := range snap.Goals {
		if g.ID == id {
			return &s.goalReports(snap, []projection.Goal{g}, opts)[0], nil
		}
	}
	return nil, fmt.Errorf("goal %s: %w", id, store.ErrNotFound)
}

func (s *Service) goalReports(snap projection.Snapshot, goals []projection.Goal, opts Options) []GoalReport {
	today := s.Today()
	plan := projection.NewPlan(snap, projection.Request{
		Today:             today,
		Months:            opts.Months,
		ExtraWeeklyIncome: opts.ExtraWeeklyIncome,
		Excluded:          opts.Excluded,
	})

	active := 0
	for _, g := range goals {
		if g.Saved < g.Target {
			active++
		}
	}

	reached := make(map[string]string, active)
	acc := plan.NewAccumulator()
	walked := 0
	for i := 0; i < plan.Len() && len(reached) < active; i++ {
		acc, _ = plan.Step(acc, i)
		walked++
		for _, g := range goals {
			if _, done := reached[g.ID]; done || g.Saved >= g.Target {
				continue
			}
			if acc.Saved(g.ID) >= g.Target {
				reached[g.ID] = projection.FormatDate(plan.Date(i))
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"goals":   len(goals),
		"reached": len(reached),
		"days":    walked,
	}).Debug("goals simulated")

	reports := make([]GoalReport, 0, len(goals))
	for _, g := range goals {
		reports = append(reports, GoalReport{
			Goal:          g,
			Progress:      projection.GoalDetails(g, today),
			SimulatedDate: reached[g.ID],
		})
	}
	return reports
}

// SettleResult summarises a settle run.
type SettleResult struct {
	Settled  int     `json:"settled"`
	Credited float64 `json:"credited"`
	Account  string  `json:"account,omitempty"`
}

// Settle marks every pending shift whose payment date has arrived as paid.
// When the payout_account setting names an account the pay is credited to
// it.
func (s *Service) Settle() (*SettleResult, error) {
	today := projection.FormatDate(s.Today())
	due, err := s.store.PendingDue(today)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetSetting(store.SettingPayoutAccount)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	res := &SettleResult{Account: account}
	for _, sh := range due {
		if err := s.store.SettleShift(sh.ID, account); err != nil {
			return res, fmt.Errorf("settle shift %s: %w", sh.ID, err)
		}
		res.Settled++
		if account != "" {
			res.Credited += sh.TotalPay
		}
		s.log.WithFields(logrus.Fields{
			"shift":   sh.ID,
			"profile": sh.ProfileID,
			"pay":     sh.TotalPay,
			"paid_on": sh.PaymentDate,
		}).Info("shift settled")
	}
	return res, nil
}
