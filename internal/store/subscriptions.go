package store

import (
	"fmt"

	"github.com/sadopc/fundr/internal/projection"
)

func (s *Store) CreateSubscription(name string, price float64, billingDay int) (*projection.Subscription, error) {
	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO subscriptions (id, name, price, billing_day, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, price, billingDay, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	return s.GetSubscription(id)
}

func (s *Store) GetSubscription(id string) (*projection.Subscription, error) {
	sub := &projection.Subscription{}
	var paused int
	err := s.db.QueryRow(
		`SELECT id, name, price, billing_day, paused FROM subscriptions WHERE id = ?`, id,
	).Scan(&sub.ID, &sub.Name, &sub.Price, &sub.BillingDay, &paused)
	if err != nil {
		return nil, fmt.Errorf("get subscription %s: %w", id, err)
	}
	sub.Paused = paused == 1
	return sub, nil
}

func (s *Store) ListSubscriptions() ([]projection.Subscription, error) {
	rows, err := s.db.Query(`SELECT id, name, price, billing_day, paused FROM subscriptions ORDER BY billing_day, name`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []projection.Subscription
	for rows.Next() {
		var sub projection.Subscription
		var paused int
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Price, &sub.BillingDay, &paused); err != nil {
			return nil, err
		}
		sub.Paused = paused == 1
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *Store) UpdateSubscription(id, name string, price float64, billingDay int) error {
	res, err := s.db.Exec(
		`UPDATE subscriptions SET name = ?, price = ?, billing_day = ? WHERE id = ?`,
		name, price, billingDay, id,
	)
	if err != nil {
		return fmt.Errorf("update subscription %s: %w", id, err)
	}
	return affected(res, "update subscription", id)
}

func (s *Store) SetSubscriptionActive(id string, active bool) error {
	res, err := s.db.Exec(`UPDATE subscriptions SET paused = ? WHERE id = ?`, boolInt(!active), id)
	if err != nil {
		return fmt.Errorf("set subscription %s active: %w", id, err)
	}
	return affected(res, "set subscription active", id)
}

func (s *Store) DeleteSubscription(id string) error {
	res, err := s.db.Exec(`DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription %s: %w", id, err)
	}
	return affected(res, "delete subscription", id)
}
