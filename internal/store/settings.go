package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/fundr/internal/projection"
)

const (
	SettingHorizonMonths     = "horizon_months"
	SettingExtraWeeklyIncome = "extra_weekly_income"
	SettingExcludedIDs       = "excluded_ids"
	SettingPayoutAccount     = "payout_account"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// IntSetting reads a numeric setting, falling back to def when it is unset
// or malformed.
func (s *Store) IntSetting(key string, def int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func (s *Store) FloatSetting(key string, def float64) float64 {
	v, err := s.GetSetting(key)
	if err != nil {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// ExcludedIDs returns the persisted what-if exclusions.
func (s *Store) ExcludedIDs() (projection.IDSet, error) {
	v, err := s.GetSetting(SettingExcludedIDs)
	if err != nil {
		if IsNotFound(err) {
			return projection.NewIDSet(), nil
		}
		return nil, err
	}
	return projection.NewIDSet(strings.Split(v, ",")...), nil
}

func (s *Store) SetExcludedIDs(ids projection.IDSet) error {
	return s.SetSetting(SettingExcludedIDs, strings.Join(ids.Slice(), ","))
}
