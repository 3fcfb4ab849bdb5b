package store

import (
	"fmt"

	"github.com/sadopc/fundr/internal/projection"
)

// Snapshot gathers everything a projection run reads. Archived profiles,
// paid shifts and the running shift are left out.
func (s *Store) Snapshot() (projection.Snapshot, error) {
	var snap projection.Snapshot
	var err error

	if snap.Accounts, err = s.ListAccounts(); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}

	profiles, err := s.ListProfiles(false)
	if err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	for _, p := range profiles {
		snap.Profiles = append(snap.Profiles, p.PayrollProfile)
	}

	shifts, err := s.ListShifts(ShiftFilter{PendingOnly: true})
	if err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	for _, sh := range shifts {
		snap.Shifts = append(snap.Shifts, sh.WorkShift)
	}

	if snap.Budgets, err = s.ListBudgets(); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	if snap.Subscriptions, err = s.ListSubscriptions(); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	if snap.Goals, err = s.ListGoals(); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	if snap.Events, err = s.ListEvents(); err != nil {
		return snap, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}
