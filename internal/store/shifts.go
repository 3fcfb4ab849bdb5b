package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadopc/fundr/internal/projection"
)

const shiftColumns = `id, profile_id, date, hours, total_pay, payment_date, status, clock_in, clock_out`

func scanShift(row rowScanner) (Shift, error) {
	var sh Shift
	var status string
	var clockIn, clockOut sql.NullString
	err := row.Scan(&sh.ID, &sh.ProfileID, &sh.Date, &sh.Hours, &sh.TotalPay, &sh.PaymentDate, &status, &clockIn, &clockOut)
	if err != nil {
		return sh, err
	}
	sh.Status = projection.ShiftStatus(status)
	if clockIn.Valid {
		t, _ := time.Parse(time.RFC3339, clockIn.String)
		sh.ClockIn = &t
	}
	if clockOut.Valid {
		t, _ := time.Parse(time.RFC3339, clockOut.String)
		sh.ClockOut = &t
	}
	return sh, nil
}

// shiftPay returns hours × rate rounded to cents.
func shiftPay(hours, rate float64) float64 {
	return decimal.NewFromFloat(hours).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64()
}

// StartShift opens the shift clock for a profile. Only one shift may run at
// a time.
func (s *Store) StartShift(profileID string) (*Shift, error) {
	running, err := s.GetRunningShift()
	if err != nil {
		return nil, err
	}
	if running != nil {
		return nil, fmt.Errorf("start shift: shift %s is already running", running.ID)
	}
	if _, err := s.GetProfile(profileID); err != nil {
		return nil, fmt.Errorf("start shift: %w", err)
	}

	now := s.now()
	stamp := now.UTC().Format(time.RFC3339)
	id := newID()
	_, err = s.db.Exec(
		`INSERT INTO work_shifts (id, profile_id, date, status, clock_in, created_at) VALUES (?, ?, ?, 'pending', ?, ?)`,
		id, profileID, projection.FormatDate(now), stamp, stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("start shift: %w", err)
	}
	return s.GetShift(id)
}

// StopShift closes the shift clock, computing hours, pay and the payment
// date from the profile's pay cycle.
func (s *Store) StopShift(id string) (*Shift, error) {
	sh, err := s.GetShift(id)
	if err != nil {
		return nil, err
	}
	if !sh.Running() {
		return nil, fmt.Errorf("stop shift %s: not running", id)
	}
	profile, err := s.GetProfile(sh.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("stop shift %s: %w", id, err)
	}

	now := s.now().UTC()
	hours := decimal.NewFromFloat(now.Sub(*sh.ClockIn).Hours()).Round(2).InexactFloat64()
	pay := shiftPay(hours, profile.HourlyRate)
	payDate := projection.CalculatePayDate(sh.Date, profile.PayrollProfile, now)

	_, err = s.db.Exec(
		`UPDATE work_shifts SET clock_out = ?, hours = ?, total_pay = ?, payment_date = ? WHERE id = ?`,
		now.Format(time.RFC3339), hours, pay, payDate, id,
	)
	if err != nil {
		return nil, fmt.Errorf("stop shift: %w", err)
	}
	return s.GetShift(id)
}

// AddShift records a shift after the fact. An empty paymentDate is derived
// from the profile.
func (s *Store) AddShift(profileID, date string, hours float64, paymentDate string) (*Shift, error) {
	profile, err := s.GetProfile(profileID)
	if err != nil {
		return nil, fmt.Errorf("add shift: %w", err)
	}
	if paymentDate == "" {
		paymentDate = projection.CalculatePayDate(date, profile.PayrollProfile, s.now())
	}

	id := newID()
	_, err = s.db.Exec(
		`INSERT INTO work_shifts (id, profile_id, date, hours, total_pay, payment_date, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`,
		id, profileID, date, hours, shiftPay(hours, profile.HourlyRate), paymentDate, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert shift: %w", err)
	}
	return s.GetShift(id)
}

func (s *Store) GetShift(id string) (*Shift, error) {
	sh, err := scanShift(s.db.QueryRow(`SELECT `+shiftColumns+` FROM work_shifts WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get shift %s: %w", id, err)
	}
	return &sh, nil
}

// GetRunningShift returns the open shift, or nil when the clock is stopped.
func (s *Store) GetRunningShift() (*Shift, error) {
	sh, err := scanShift(s.db.QueryRow(
		`SELECT ` + shiftColumns + ` FROM work_shifts
		 WHERE clock_in IS NOT NULL AND clock_out IS NULL ORDER BY clock_in DESC LIMIT 1`,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get running shift: %w", err)
	}
	return &sh, nil
}

func (s *Store) ListShifts(f ShiftFilter) ([]Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM work_shifts WHERE 1=1`
	var args []any

	if f.ProfileID != "" {
		query += ` AND profile_id = ?`
		args = append(args, f.ProfileID)
	}
	if f.PendingOnly {
		query += ` AND status = 'pending' AND NOT (clock_in IS NOT NULL AND clock_out IS NULL)`
	}
	if f.From != "" {
		query += ` AND date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND date < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY date DESC, created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

// PendingDue returns finished, unpaid shifts whose payment date is on or
// before today.
func (s *Store) PendingDue(today string) ([]Shift, error) {
	rows, err := s.db.Query(
		`SELECT `+shiftColumns+` FROM work_shifts
		 WHERE status = 'pending' AND payment_date != '' AND payment_date <= ?
		   AND NOT (clock_in IS NOT NULL AND clock_out IS NULL)
		 ORDER BY payment_date, date`, today,
	)
	if err != nil {
		return nil, fmt.Errorf("pending shifts: %w", err)
	}
	defer rows.Close()

	var shifts []Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func (s *Store) MarkShiftPaid(id string) error {
	res, err := s.db.Exec(`UPDATE work_shifts SET status = 'paid' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark shift %s paid: %w", id, err)
	}
	return affected(res, "mark shift paid", id)
}

// SettleShift marks a pending shift paid and, when accountID is not empty,
// credits its pay to that account in the same transaction.
func (s *Store) SettleShift(id, accountID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var pay float64
	var date, status string
	err = tx.QueryRow(`SELECT total_pay, date, status FROM work_shifts WHERE id = ?`, id).Scan(&pay, &date, &status)
	if err != nil {
		return fmt.Errorf("get shift %s: %w", id, err)
	}
	if status != string(projection.ShiftPending) {
		return fmt.Errorf("settle shift %s: already %s", id, status)
	}

	if _, err := tx.Exec(`UPDATE work_shifts SET status = 'paid' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark shift %s paid: %w", id, err)
	}
	if accountID != "" && pay != 0 {
		if _, err := s.applyTx(tx, accountID, pay, "shift "+date); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteShift(id string) error {
	res, err := s.db.Exec(`DELETE FROM work_shifts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shift %s: %w", id, err)
	}
	return affected(res, "delete shift", id)
}
