package store

import (
	"fmt"
	"time"

	"github.com/sadopc/fundr/internal/projection"
)

const profileColumns = `id, name, hourly_rate, employment, frequency, pay_day_anchor, work_days, archived, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	var employment, frequency, createdAt, updatedAt string
	var archived int
	err := row.Scan(&p.ID, &p.Name, &p.HourlyRate, &employment, &frequency, &p.PayDayAnchor, &p.WorkDays, &archived, &createdAt, &updatedAt)
	if err != nil {
		return p, err
	}
	p.Employment = projection.EmploymentKind(employment)
	p.Frequency, _ = projection.ParseFrequency(frequency)
	p.Archived = archived == 1
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func (s *Store) CreateProfile(p projection.PayrollProfile) (*Profile, error) {
	if p.WorkDays <= 0 {
		p.WorkDays = 5
	}
	id := newID()
	now := s.timestamp()
	_, err := s.db.Exec(
		`INSERT INTO payroll_profiles (id, name, hourly_rate, employment, frequency, pay_day_anchor, work_days, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Name, p.HourlyRate, string(p.Employment), p.Frequency.String(), p.PayDayAnchor, p.WorkDays, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return s.GetProfile(id)
}

func (s *Store) GetProfile(id string) (*Profile, error) {
	p, err := scanProfile(s.db.QueryRow(`SELECT `+profileColumns+` FROM payroll_profiles WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return &p, nil
}

func (s *Store) ListProfiles(includeArchived bool) ([]Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM payroll_profiles`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) UpdateProfile(p projection.PayrollProfile) error {
	if p.WorkDays <= 0 {
		p.WorkDays = 5
	}
	res, err := s.db.Exec(
		`UPDATE payroll_profiles SET name = ?, hourly_rate = ?, employment = ?, frequency = ?, pay_day_anchor = ?, work_days = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.HourlyRate, string(p.Employment), p.Frequency.String(), p.PayDayAnchor, p.WorkDays, s.timestamp(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", p.ID, err)
	}
	return affected(res, "update profile", p.ID)
}

// ArchiveProfile hides a profile from the forecast. Its recorded shifts are
// kept.
func (s *Store) ArchiveProfile(id string) error {
	res, err := s.db.Exec(
		`UPDATE payroll_profiles SET archived = 1, updated_at = ? WHERE id = ?`, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("archive profile %s: %w", id, err)
	}
	return affected(res, "archive profile", id)
}
