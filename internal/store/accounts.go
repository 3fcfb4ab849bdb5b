package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/fundr/internal/projection"
)

func (s *Store) CreateAccount(name string, kind projection.AccountKind, balance, creditLimit float64) (*projection.Account, error) {
	id := newID()
	now := s.timestamp()
	_, err := s.db.Exec(
		`INSERT INTO accounts (id, name, kind, balance, credit_limit, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, string(kind), balance, creditLimit, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return s.GetAccount(id)
}

func (s *Store) GetAccount(id string) (*projection.Account, error) {
	a := &projection.Account{}
	var kind string
	err := s.db.QueryRow(
		`SELECT id, name, kind, balance, credit_limit FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &kind, &a.Balance, &a.CreditLimit)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", id, err)
	}
	a.Kind = projection.AccountKind(kind)
	return a, nil
}

func (s *Store) ListAccounts() ([]projection.Account, error) {
	rows, err := s.db.Query(`SELECT id, name, kind, balance, credit_limit FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []projection.Account
	for rows.Next() {
		var a projection.Account
		var kind string
		if err := rows.Scan(&a.ID, &a.Name, &kind, &a.Balance, &a.CreditLimit); err != nil {
			return nil, err
		}
		a.Kind = projection.AccountKind(kind)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount renames an account or changes its kind. Balances only move
// through ApplyTransaction.
func (s *Store) UpdateAccount(id, name string, kind projection.AccountKind, creditLimit float64) error {
	res, err := s.db.Exec(
		`UPDATE accounts SET name = ?, kind = ?, credit_limit = ?, updated_at = ? WHERE id = ?`,
		name, string(kind), creditLimit, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("update account %s: %w", id, err)
	}
	return affected(res, "update account", id)
}

func (s *Store) DeleteAccount(id string) error {
	res, err := s.db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	return affected(res, "delete account", id)
}

// ApplyTransaction moves an account balance by amount and records the
// movement. Amounts are rounded to cents.
func (s *Store) ApplyTransaction(accountID string, amount float64, note string) (*Transaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := s.applyTx(tx, accountID, amount, note)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return t, nil
}

func (s *Store) applyTx(tx *sql.Tx, accountID string, amount float64, note string) (*Transaction, error) {
	var balance float64
	err := tx.QueryRow(`SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&balance)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", accountID, err)
	}

	delta := decimal.NewFromFloat(amount).Round(2)
	next := decimal.NewFromFloat(balance).Add(delta)
	now := s.timestamp()

	if _, err := tx.Exec(
		`UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`,
		next.InexactFloat64(), now, accountID,
	); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	t := &Transaction{ID: newID(), AccountID: accountID, Amount: delta.InexactFloat64(), Note: note}
	if _, err := tx.Exec(
		`INSERT INTO transactions (id, account_id, amount, note, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Amount, t.Note, now,
	); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, now)
	return t, nil
}

// ListTransactions returns the newest transactions of an account first.
func (s *Store) ListTransactions(accountID string, limit int) ([]Transaction, error) {
	query := `SELECT id, account_id, amount, note, created_at FROM transactions WHERE account_id = ? ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var t Transaction
		var createdAt string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Note, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *Store) TotalBalance() (float64, error) {
	var total sql.NullFloat64
	if err := s.db.QueryRow(`SELECT SUM(balance) FROM accounts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("total balance: %w", err)
	}
	return total.Float64, nil
}

// IsNotFound reports whether err means a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
