/*
records.go - Absence catalog, absences, overtime, and payslips

Absence types are protected: a type still referenced by absences cannot
be deleted (RESTRICT), which surfaces here as a ConstraintError.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/warp/workforce/core"
	"github.com/warp/workforce/hr"
)

// =============================================================================
// ABSENCE TYPES
// =============================================================================

// SaveAbsenceType inserts or replaces an absence type.
func (s *Store) SaveAbsenceType(ctx context.Context, t *hr.AbsenceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO absence_types (id, name, requires_approval, requires_national_code, code)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, requires_approval = excluded.requires_approval,
			requires_national_code = excluded.requires_national_code, code = excluded.code
	`, t.ID, t.Name, t.RequiresApproval, t.RequiresNationalCode, t.Code)
	return mapWriteError(err, "absence_type", t.Name)
}

// FindAbsenceType returns one absence type by id.
func (s *Store) FindAbsenceType(ctx context.Context, id string) (*hr.AbsenceType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t hr.AbsenceType
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, requires_approval, requires_national_code, code
		FROM absence_types WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.RequiresApproval, &t.RequiresNationalCode, &t.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListAbsenceTypes returns the full catalog by name.
func (s *Store) ListAbsenceTypes(ctx context.Context) ([]hr.AbsenceType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, requires_approval, requires_national_code, code
		FROM absence_types ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query absence types: %w", err)
	}
	defer rows.Close()

	var out []hr.AbsenceType
	for rows.Next() {
		var t hr.AbsenceType
		if err := rows.Scan(&t.ID, &t.Name, &t.RequiresApproval, &t.RequiresNationalCode, &t.Code); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteAbsenceType removes a type, unless absences still reference it.
func (s *Store) DeleteAbsenceType(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "absence_types", "absence_type", id)
}

// =============================================================================
// ABSENCES
// =============================================================================

const absenceColumns = `id, contract_id, type_id, date, full_day,
	start_at, end_at, national_code, submitted_by, approved, approved_by`

// SaveAbsence inserts or replaces an absence.
func (s *Store) SaveAbsence(ctx context.Context, a *hr.Absence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO absences (`+absenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			contract_id = excluded.contract_id, type_id = excluded.type_id,
			date = excluded.date, full_day = excluded.full_day,
			start_at = excluded.start_at, end_at = excluded.end_at,
			national_code = excluded.national_code, submitted_by = excluded.submitted_by,
			approved = excluded.approved, approved_by = excluded.approved_by
	`,
		a.ID, a.ContractID, a.TypeID, formatDate(a.Date), a.FullDay,
		nullTimestamp(a.Start), nullTimestamp(a.End),
		a.NationalCode, a.SubmittedBy, a.Approved, a.ApprovedBy,
	)
	return mapWriteError(err, "absence", fmt.Sprintf("contract %s on %s", a.ContractID, formatDate(a.Date)))
}

// FindAbsence returns one absence by id.
func (s *Store) FindAbsence(ctx context.Context, id string) (*hr.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+absenceColumns+` FROM absences WHERE id = ?`, id)

	a, err := scanAbsence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return a, err
}

// ListAbsences returns a contract's absences inside [from, to], both
// bounds inclusive, newest first. Zero bounds mean unbounded.
func (s *Store) ListAbsences(ctx context.Context, contractID string, from, to time.Time) ([]hr.Absence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + absenceColumns + ` FROM absences WHERE contract_id = ?`
	args := []any{contractID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, formatDate(from))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, formatDate(to))
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var out []hr.Absence
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// DeleteAbsence removes one absence.
func (s *Store) DeleteAbsence(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "absences", "absence", id)
}

func scanAbsence(r rowScanner) (*hr.Absence, error) {
	var a hr.Absence
	var date string
	var start, end sql.NullString
	if err := r.Scan(&a.ID, &a.ContractID, &a.TypeID, &date, &a.FullDay,
		&start, &end, &a.NationalCode, &a.SubmittedBy, &a.Approved, &a.ApprovedBy); err != nil {
		return nil, err
	}
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	a.Date = day
	a.Start = scanNullTimestamp(start)
	a.End = scanNullTimestamp(end)
	return &a, nil
}

// =============================================================================
// OVERTIME
// =============================================================================

// SaveOvertime inserts or replaces an overtime record.
func (s *Store) SaveOvertime(ctx context.Context, o *hr.Overtime) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overtime_records (id, contract_id, start_at, end_at, requested_by)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			contract_id = excluded.contract_id, start_at = excluded.start_at,
			end_at = excluded.end_at, requested_by = excluded.requested_by
	`,
		o.ID, o.ContractID,
		o.Start.UTC().Format(time.RFC3339), o.End.UTC().Format(time.RFC3339),
		o.RequestedBy,
	)
	return mapWriteError(err, "overtime", "contract "+o.ContractID)
}

// FindOvertime returns one overtime record by id.
func (s *Store) FindOvertime(ctx context.Context, id string) (*hr.Overtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract_id, start_at, end_at, requested_by
		FROM overtime_records WHERE id = ?`, id)

	o, err := scanOvertime(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return o, err
}

// ListOvertime returns a contract's overtime records, newest first.
func (s *Store) ListOvertime(ctx context.Context, contractID string) ([]hr.Overtime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, start_at, end_at, requested_by
		FROM overtime_records WHERE contract_id = ? ORDER BY start_at DESC`, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime: %w", err)
	}
	defer rows.Close()

	var out []hr.Overtime
	for rows.Next() {
		o, err := scanOvertime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// DeleteOvertime removes one overtime record.
func (s *Store) DeleteOvertime(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "overtime_records", "overtime", id)
}

func scanOvertime(r rowScanner) (*hr.Overtime, error) {
	var o hr.Overtime
	var start, end string
	if err := r.Scan(&o.ID, &o.ContractID, &start, &end, &o.RequestedBy); err != nil {
		return nil, err
	}
	var err error
	if o.Start, err = time.Parse(time.RFC3339, start); err != nil {
		return nil, fmt.Errorf("corrupt overtime start %q: %w", start, err)
	}
	if o.End, err = time.Parse(time.RFC3339, end); err != nil {
		return nil, fmt.Errorf("corrupt overtime end %q: %w", end, err)
	}
	return &o, nil
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// SavePayslip inserts or replaces a payslip registry entry. A second
// document for the same (contract, year, month, kind) is rejected.
func (s *Store) SavePayslip(ctx context.Context, p *hr.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payslips (id, contract_id, year, month, name, kind, file_path, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			year = excluded.year, month = excluded.month, name = excluded.name,
			kind = excluded.kind, file_path = excluded.file_path
	`,
		p.ID, p.ContractID, p.Year, p.Month, p.Name, string(p.Kind),
		p.FilePath, p.UploadedAt.UTC().Format(time.RFC3339),
	)
	return mapWriteError(err, "payslip", fmt.Sprintf("%s %d-%02d %s", p.ContractID, p.Year, p.Month, p.Kind))
}

// FindPayslip returns one payslip by id.
func (s *Store) FindPayslip(ctx context.Context, id string) (*hr.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, contract_id, year, month, name, kind, file_path, uploaded_at
		FROM payslips WHERE id = ?`, id)

	p, err := scanPayslip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return p, err
}

// ListPayslips returns a contract's payslips, newest period first.
func (s *Store) ListPayslips(ctx context.Context, contractID string) ([]hr.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, year, month, name, kind, file_path, uploaded_at
		FROM payslips WHERE contract_id = ? ORDER BY year DESC, month DESC`, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payslips: %w", err)
	}
	defer rows.Close()

	var out []hr.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// DeletePayslip removes one payslip entry. The stored file is the
// caller's business.
func (s *Store) DeletePayslip(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "payslips", "payslip", id)
}

func scanPayslip(r rowScanner) (*hr.Payslip, error) {
	var p hr.Payslip
	var kind, uploaded string
	if err := r.Scan(&p.ID, &p.ContractID, &p.Year, &p.Month, &p.Name,
		&kind, &p.FilePath, &uploaded); err != nil {
		return nil, err
	}
	p.Kind = hr.PayslipKind(kind)
	var err error
	if p.UploadedAt, err = time.Parse(time.RFC3339, uploaded); err != nil {
		return nil, fmt.Errorf("corrupt payslip timestamp %q: %w", uploaded, err)
	}
	return &p, nil
}
