/*
contracts.go - Collective agreements, contracts, and weekly schedules

The schedule lookup here backs the hours calculator: one row per
(contract, weekday), three optional time bands stored as HH:MM text.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/workforce/core"
	"github.com/warp/workforce/hr"
)

// Compile-time check that the store can feed the hours calculator.
var _ hr.ScheduleLookup = (*Store)(nil)

// =============================================================================
// COLLECTIVE AGREEMENTS
// =============================================================================

// SaveAgreement inserts or replaces a collective agreement.
func (s *Store) SaveAgreement(ctx context.Context, a *hr.CollectiveAgreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collective_agreements (id, name, annual_payments)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, annual_payments = excluded.annual_payments
	`, a.ID, a.Name, a.AnnualPayments)
	return mapWriteError(err, "collective_agreement", a.Name)
}

// FindAgreement returns one agreement by id.
func (s *Store) FindAgreement(ctx context.Context, id string) (*hr.CollectiveAgreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a hr.CollectiveAgreement
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, annual_payments FROM collective_agreements WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.AnnualPayments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAgreements returns all agreements by name.
func (s *Store) ListAgreements(ctx context.Context) ([]hr.CollectiveAgreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, annual_payments FROM collective_agreements ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query agreements: %w", err)
	}
	defer rows.Close()

	var out []hr.CollectiveAgreement
	for rows.Next() {
		var a hr.CollectiveAgreement
		if err := rows.Scan(&a.ID, &a.Name, &a.AnnualPayments); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAgreement removes an agreement. Contracts that referenced it
// keep running with a null agreement (SET NULL).
func (s *Store) DeleteAgreement(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "collective_agreements", "collective_agreement", id)
}

// =============================================================================
// CONTRACTS
// =============================================================================

// SaveContract inserts or replaces a contract.
func (s *Store) SaveContract(ctx context.Context, c *hr.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts
			(id, employee_id, kind, weekly_hours, start_date, end_date, notes, agreement_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id, kind = excluded.kind,
			weekly_hours = excluded.weekly_hours, start_date = excluded.start_date,
			end_date = excluded.end_date, notes = excluded.notes,
			agreement_id = excluded.agreement_id
	`,
		c.ID, c.EmployeeID, string(c.Kind), nullInt(c.WeeklyHours),
		formatDate(c.Start), nullDate(c.End), c.Notes, nullString(c.AgreementID),
	)
	return mapWriteError(err, "contract", "employee "+c.EmployeeID)
}

// FindContract returns one contract by id.
func (s *Store) FindContract(ctx context.Context, id string) (*hr.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, kind, weekly_hours, start_date, end_date, notes, agreement_id
		FROM contracts WHERE id = ?`, id)

	c, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return c, err
}

// ListContracts returns an employee's contracts, most recent start first.
func (s *Store) ListContracts(ctx context.Context, employeeID string) ([]hr.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, kind, weekly_hours, start_date, end_date, notes, agreement_id
		FROM contracts WHERE employee_id = ? ORDER BY start_date DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var out []hr.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// DeleteContract removes a contract. Schedules, absences, overtime and
// payslips under it go with it (CASCADE).
func (s *Store) DeleteContract(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "contracts", "contract", id)
}

func scanContract(r rowScanner) (*hr.Contract, error) {
	var c hr.Contract
	var kind, start string
	var hours sql.NullInt64
	var end, agreementID sql.NullString
	if err := r.Scan(&c.ID, &c.EmployeeID, &kind, &hours,
		&start, &end, &c.Notes, &agreementID); err != nil {
		return nil, err
	}
	c.Kind = hr.ContractKind(kind)
	c.WeeklyHours = scanNullInt(hours)
	startDate, err := parseDate(start)
	if err != nil {
		return nil, err
	}
	c.Start = startDate
	if c.End, err = scanNullDate(end); err != nil {
		return nil, err
	}
	c.AgreementID = scanNullString(agreementID)
	return &c, nil
}

// =============================================================================
// WEEKLY SCHEDULES
// =============================================================================

const scheduleColumns = `id, contract_id, weekday,
	band1_start, band1_end, band2_start, band2_end, band3_start, band3_end`

// SaveScheduleEntry inserts or replaces one weekday's schedule. The
// (contract, weekday) pair is unique, so a second entry for the same
// day is rejected rather than silently stacked.
func (s *Store) SaveScheduleEntry(ctx context.Context, e *hr.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedule_entries (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			contract_id = excluded.contract_id, weekday = excluded.weekday,
			band1_start = excluded.band1_start, band1_end = excluded.band1_end,
			band2_start = excluded.band2_start, band2_end = excluded.band2_end,
			band3_start = excluded.band3_start, band3_end = excluded.band3_end
	`,
		e.ID, e.ContractID, e.Weekday,
		nullTimeOfDay(e.Bands[0].Start), nullTimeOfDay(e.Bands[0].End),
		nullTimeOfDay(e.Bands[1].Start), nullTimeOfDay(e.Bands[1].End),
		nullTimeOfDay(e.Bands[2].Start), nullTimeOfDay(e.Bands[2].End),
	)
	return mapWriteError(err, "schedule_entry", fmt.Sprintf("contract %s weekday %d", e.ContractID, e.Weekday))
}

// ScheduleEntry returns the schedule for one contract weekday, or
// core.ErrNotFound when no schedule covers that day.
func (s *Store) ScheduleEntry(ctx context.Context, contractID string, weekday int) (*hr.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM schedule_entries WHERE contract_id = ? AND weekday = ?`, contractID, weekday)

	e, err := scanScheduleEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return e, err
}

// ListScheduleEntries returns a contract's full week, Monday first.
func (s *Store) ListScheduleEntries(ctx context.Context, contractID string) ([]hr.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+scheduleColumns+`
		FROM schedule_entries WHERE contract_id = ? ORDER BY weekday ASC`, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var out []hr.ScheduleEntry
	for rows.Next() {
		e, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// DeleteScheduleEntry removes one weekday's schedule.
func (s *Store) DeleteScheduleEntry(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "schedule_entries", "schedule_entry", id)
}

func scanScheduleEntry(r rowScanner) (*hr.ScheduleEntry, error) {
	var e hr.ScheduleEntry
	var cells [2 * hr.BandsPerDay]sql.NullString
	if err := r.Scan(&e.ID, &e.ContractID, &e.Weekday,
		&cells[0], &cells[1], &cells[2], &cells[3], &cells[4], &cells[5]); err != nil {
		return nil, err
	}
	for i := 0; i < hr.BandsPerDay; i++ {
		start, err := scanTimeOfDay(cells[2*i])
		if err != nil {
			return nil, err
		}
		end, err := scanTimeOfDay(cells[2*i+1])
		if err != nil {
			return nil, err
		}
		e.Bands[i] = hr.Band{Start: start, End: end}
	}
	return &e, nil
}

// nullTimeOfDay converts an optional band endpoint to its HH:MM column
// value.
func nullTimeOfDay(t *core.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func scanTimeOfDay(ns sql.NullString) (*core.TimeOfDay, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := core.ParseTimeOfDay(ns.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt time band %q: %w", ns.String, err)
	}
	return t.Ptr(), nil
}
