package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned (wrapped) when a row does not exist.
var ErrNotFound = sql.ErrNoRows

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock replaces the time source used for timestamps and the shift clock.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func newID() string {
	return uuid.NewString()
}

// affected turns an update that touched no rows into ErrNotFound.
func affected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS accounts (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL UNIQUE,
		kind         TEXT NOT NULL DEFAULT 'debit',
		balance      REAL NOT NULL DEFAULT 0,
		credit_limit REAL NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id          TEXT PRIMARY KEY,
		account_id  TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		amount      REAL NOT NULL,
		note        TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);

	CREATE TABLE IF NOT EXISTS payroll_profiles (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL UNIQUE,
		hourly_rate    REAL NOT NULL DEFAULT 0,
		employment     TEXT NOT NULL DEFAULT 'part_time',
		frequency      TEXT NOT NULL DEFAULT 'biweekly',
		pay_day_anchor TEXT NOT NULL DEFAULT '',
		work_days      INTEGER NOT NULL DEFAULT 5,
		archived       INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS work_shifts (
		id           TEXT PRIMARY KEY,
		profile_id   TEXT NOT NULL REFERENCES payroll_profiles(id),
		date         TEXT NOT NULL,
		hours        REAL NOT NULL DEFAULT 0,
		total_pay    REAL NOT NULL DEFAULT 0,
		payment_date TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'pending',
		clock_in     TEXT,
		clock_out    TEXT,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_profile ON work_shifts(profile_id);
	CREATE INDEX IF NOT EXISTS idx_shifts_payment ON work_shifts(payment_date);

	CREATE TABLE IF NOT EXISTS budgets (
		id            TEXT PRIMARY KEY,
		category      TEXT NOT NULL UNIQUE,
		monthly_limit REAL NOT NULL DEFAULT 0,
		paused        INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS subscriptions (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		price       REAL NOT NULL DEFAULT 0,
		billing_day INTEGER NOT NULL DEFAULT 1,
		paused      INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS goals (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		target      REAL NOT NULL DEFAULT 0,
		saved       REAL NOT NULL DEFAULT 0,
		installment REAL NOT NULL DEFAULT 0,
		frequency   TEXT NOT NULL DEFAULT 'monthly',
		start_date  TEXT NOT NULL DEFAULT '',
		deadline    TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		date        TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS event_items (
		id        TEXT PRIMARY KEY,
		event_id  TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		name      TEXT NOT NULL,
		cost      REAL NOT NULL DEFAULT 0,
		checked   INTEGER NOT NULL DEFAULT 0,
		position  INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_items_event ON event_items(event_id);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('horizon_months',      '3'),
		('extra_weekly_income', '0'),
		('excluded_ids',        ''),
		('payout_account',      '');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.local/share/fundr/fundr.db, or the platform
// equivalent under the user config directory.
func DefaultDBPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "fundr", "fundr.db"), nil
	}
	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".local", "share", "fundr", "fundr.db"), nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "fundr", "fundr.db"), nil
}
