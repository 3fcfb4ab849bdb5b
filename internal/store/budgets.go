package store

import (
	"fmt"

	"github.com/sadopc/fundr/internal/projection"
)

func (s *Store) CreateBudget(category string, limit float64) (*projection.Budget, error) {
	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO budgets (id, category, monthly_limit, created_at) VALUES (?, ?, ?, ?)`,
		id, category, limit, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	return s.GetBudget(id)
}

func (s *Store) GetBudget(id string) (*projection.Budget, error) {
	b := &projection.Budget{}
	var paused int
	err := s.db.QueryRow(
		`SELECT id, category, monthly_limit, paused FROM budgets WHERE id = ?`, id,
	).Scan(&b.ID, &b.Category, &b.Limit, &paused)
	if err != nil {
		return nil, fmt.Errorf("get budget %s: %w", id, err)
	}
	b.Paused = paused == 1
	return b, nil
}

func (s *Store) ListBudgets() ([]projection.Budget, error) {
	rows, err := s.db.Query(`SELECT id, category, monthly_limit, paused FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []projection.Budget
	for rows.Next() {
		var b projection.Budget
		var paused int
		if err := rows.Scan(&b.ID, &b.Category, &b.Limit, &paused); err != nil {
			return nil, err
		}
		b.Paused = paused == 1
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *Store) UpdateBudget(id, category string, limit float64) error {
	res, err := s.db.Exec(`UPDATE budgets SET category = ?, monthly_limit = ? WHERE id = ?`, category, limit, id)
	if err != nil {
		return fmt.Errorf("update budget %s: %w", id, err)
	}
	return affected(res, "update budget", id)
}

// SetBudgetActive pauses or resumes a budget's daily burn.
func (s *Store) SetBudgetActive(id string, active bool) error {
	res, err := s.db.Exec(`UPDATE budgets SET paused = ? WHERE id = ?`, boolInt(!active), id)
	if err != nil {
		return fmt.Errorf("set budget %s active: %w", id, err)
	}
	return affected(res, "set budget active", id)
}

func (s *Store) DeleteBudget(id string) error {
	res, err := s.db.Exec(`DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	return affected(res, "delete budget", id)
}
