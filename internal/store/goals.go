package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sadopc/fundr/internal/projection"
)

const goalColumns = `id, name, target, saved, installment, frequency, start_date, deadline`

func scanGoal(row rowScanner) (projection.Goal, error) {
	var g projection.Goal
	var frequency string
	err := row.Scan(&g.ID, &g.Name, &g.Target, &g.Saved, &g.Installment, &frequency, &g.StartDate, &g.Deadline)
	if err != nil {
		return g, err
	}
	g.Frequency, _ = projection.ParseFrequency(frequency)
	return g, nil
}

func (s *Store) CreateGoal(g projection.Goal) (*projection.Goal, error) {
	id := newID()
	now := s.timestamp()
	_, err := s.db.Exec(
		`INSERT INTO goals (id, name, target, saved, installment, frequency, start_date, deadline, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, g.Name, g.Target, g.Saved, g.Installment, g.Frequency.String(), g.StartDate, g.Deadline, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	return s.GetGoal(id)
}

func (s *Store) GetGoal(id string) (*projection.Goal, error) {
	g, err := scanGoal(s.db.QueryRow(`SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get goal %s: %w", id, err)
	}
	return &g, nil
}

func (s *Store) ListGoals() ([]projection.Goal, error) {
	rows, err := s.db.Query(`SELECT ` + goalColumns + ` FROM goals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []projection.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Store) UpdateGoal(g projection.Goal) error {
	res, err := s.db.Exec(
		`UPDATE goals SET name = ?, target = ?, installment = ?, frequency = ?, start_date = ?, deadline = ?, updated_at = ?
		 WHERE id = ?`,
		g.Name, g.Target, g.Installment, g.Frequency.String(), g.StartDate, g.Deadline, s.timestamp(), g.ID,
	)
	if err != nil {
		return fmt.Errorf("update goal %s: %w", g.ID, err)
	}
	return affected(res, "update goal", g.ID)
}

// Contribute adds amount to a goal's real saved total. A negative amount
// withdraws. The projected installments never touch this value.
func (s *Store) Contribute(id string, amount float64) (*projection.Goal, error) {
	g, err := s.GetGoal(id)
	if err != nil {
		return nil, err
	}
	saved := decimal.NewFromFloat(g.Saved).Add(decimal.NewFromFloat(amount)).Round(2)
	if saved.IsNegative() {
		saved = decimal.Zero
	}
	if _, err := s.db.Exec(
		`UPDATE goals SET saved = ?, updated_at = ? WHERE id = ?`, saved.InexactFloat64(), s.timestamp(), id,
	); err != nil {
		return nil, fmt.Errorf("contribute to goal %s: %w", id, err)
	}
	return s.GetGoal(id)
}

func (s *Store) DeleteGoal(id string) error {
	res, err := s.db.Exec(`DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	return affected(res, "delete goal", id)
}
