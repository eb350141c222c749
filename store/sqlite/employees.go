/*
employees.go - Employee master data and effective-dated sub-records

The four sub-record kinds (address, IBAN, email, phone) all persist a
core.Dated wrapper. Emails and phones additionally run the principal
uniqueness pre-check; the conditional unique index remains the
authoritative guard.
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

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or replaces an employee record.
func (s *Store) SaveEmployee(ctx context.Context, e *hr.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees
			(id, first_name, last_name, fiscal_code, birth_date, birth_place, notes, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			fiscal_code = excluded.fiscal_code,
			birth_date = excluded.birth_date,
			birth_place = excluded.birth_place,
			notes = excluded.notes,
			account_id = excluded.account_id
	`,
		e.ID, e.FirstName, e.LastName, e.FiscalCode,
		formatDate(e.BirthDate), e.BirthPlace, e.Notes, nullString(e.AccountID),
	)
	return mapWriteError(err, "employee", "fiscal code "+e.FiscalCode)
}

// FindEmployee returns one employee by id.
func (s *Store) FindEmployee(ctx context.Context, id string) (*hr.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, fiscal_code, birth_date, birth_place, notes, account_id
		FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return e, err
}

// ListEmployees returns all employees ordered surname first.
func (s *Store) ListEmployees(ctx context.Context) ([]hr.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, fiscal_code, birth_date, birth_place, notes, account_id
		FROM employees ORDER BY last_name ASC, first_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []hr.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// DeleteEmployee removes an employee; contracts and all effective-dated
// sub-records go with it (CASCADE).
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "employees", "employee", id)
}

func scanEmployee(r rowScanner) (*hr.Employee, error) {
	var e hr.Employee
	var birth string
	var accountID sql.NullString
	if err := r.Scan(&e.ID, &e.FirstName, &e.LastName, &e.FiscalCode,
		&birth, &e.BirthPlace, &e.Notes, &accountID); err != nil {
		return nil, err
	}
	birthDate, err := parseDate(birth)
	if err != nil {
		return nil, err
	}
	e.BirthDate = birthDate
	e.AccountID = scanNullString(accountID)
	return &e, nil
}

// deleteByID is the shared single-row delete with not-found and
// constraint mapping.
func (s *Store) deleteByID(ctx context.Context, table, entity, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyError(err) {
			return &core.ConstraintError{Entity: entity, Reason: "still referenced by other records"}
		}
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// =============================================================================
// ADDRESSES
// =============================================================================

// SaveAddress inserts or replaces an effective-dated address.
func (s *Store) SaveAddress(ctx context.Context, rec *hr.EmployeeAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := rec.Payload
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employee_addresses
			(id, employee_id, kind, country, region, province, city, postal_code,
			 street, number, valid_from, valid_to, principal, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind, country = excluded.country, region = excluded.region,
			province = excluded.province, city = excluded.city,
			postal_code = excluded.postal_code, street = excluded.street,
			number = excluded.number, valid_from = excluded.valid_from,
			valid_to = excluded.valid_to, principal = excluded.principal,
			active = excluded.active
	`,
		rec.ID, rec.OwnerID, string(a.Kind), a.Country, a.Region, a.Province,
		a.City, a.PostalCode, a.Street, a.Number,
		formatDate(rec.ValidFrom), nullDate(rec.ValidTo), rec.Principal, rec.Active,
	)
	return mapWriteError(err, "employee_address", fmt.Sprintf("%s %s from %s", rec.OwnerID, a.Kind, formatDate(rec.ValidFrom)))
}

// ListAddresses returns an employee's addresses, newest window first.
func (s *Store) ListAddresses(ctx context.Context, employeeID string) ([]hr.EmployeeAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, kind, country, region, province, city, postal_code,
		       street, number, valid_from, valid_to, principal, active
		FROM employee_addresses WHERE employee_id = ? ORDER BY valid_from DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var out []hr.EmployeeAddress
	for rows.Next() {
		var rec hr.EmployeeAddress
		var kind, from string
		var to sql.NullString
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &kind,
			&rec.Payload.Country, &rec.Payload.Region, &rec.Payload.Province,
			&rec.Payload.City, &rec.Payload.PostalCode, &rec.Payload.Street,
			&rec.Payload.Number, &from, &to, &rec.Principal, &rec.Active); err != nil {
			return nil, err
		}
		rec.Payload.Kind = hr.AddressKind(kind)
		if rec.ValidFrom, err = parseDate(from); err != nil {
			return nil, err
		}
		if rec.ValidTo, err = scanNullDate(to); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteAddress removes one address record.
func (s *Store) DeleteAddress(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "employee_addresses", "employee_address", id)
}

// =============================================================================
// IBANS
// =============================================================================

// SaveIBAN inserts or replaces an effective-dated IBAN.
func (s *Store) SaveIBAN(ctx context.Context, rec *hr.EmployeeIBAN) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employee_ibans
			(id, employee_id, iban, valid_from, valid_to, principal, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			iban = excluded.iban, valid_from = excluded.valid_from,
			valid_to = excluded.valid_to, principal = excluded.principal,
			active = excluded.active
	`,
		rec.ID, rec.OwnerID, rec.Payload.IBAN,
		formatDate(rec.ValidFrom), nullDate(rec.ValidTo), rec.Principal, rec.Active,
	)
	return mapWriteError(err, "employee_iban", rec.Payload.IBAN+" from "+formatDate(rec.ValidFrom))
}

// ListIBANs returns an employee's IBAN records, newest window first.
func (s *Store) ListIBANs(ctx context.Context, employeeID string) ([]hr.EmployeeIBAN, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, iban, valid_from, valid_to, principal, active
		FROM employee_ibans WHERE employee_id = ? ORDER BY valid_from DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ibans: %w", err)
	}
	defer rows.Close()

	var out []hr.EmployeeIBAN
	for rows.Next() {
		var rec hr.EmployeeIBAN
		var from string
		var to sql.NullString
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Payload.IBAN,
			&from, &to, &rec.Principal, &rec.Active); err != nil {
			return nil, err
		}
		if rec.ValidFrom, err = parseDate(from); err != nil {
			return nil, err
		}
		if rec.ValidTo, err = scanNullDate(to); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteIBAN removes one IBAN record.
func (s *Store) DeleteIBAN(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "employee_ibans", "employee_iban", id)
}

// =============================================================================
// EMAILS - Carry the principal+active uniqueness rule
// =============================================================================

// SaveEmail inserts or replaces an email record. A second principal
// active email for the same employee is rejected, not auto-demoted.
func (s *Store) SaveEmail(ctx context.Context, rec *hr.EmployeeEmail) error {
	existing, err := s.ListEmails(ctx, rec.OwnerID)
	if err != nil {
		return err
	}
	if err := core.CheckPrincipal("employee_email", existing, *rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employee_emails
			(id, employee_id, email, valid_from, valid_to, principal, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email, valid_from = excluded.valid_from,
			valid_to = excluded.valid_to, principal = excluded.principal,
			active = excluded.active
	`,
		rec.ID, rec.OwnerID, rec.Payload.Email,
		formatDate(rec.ValidFrom), nullDate(rec.ValidTo), rec.Principal, rec.Active,
	)
	return mapWriteError(err, "employee_email", rec.Payload.Email)
}

// ListEmails returns an employee's email records.
func (s *Store) ListEmails(ctx context.Context, employeeID string) ([]hr.EmployeeEmail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, email, valid_from, valid_to, principal, active
		FROM employee_emails WHERE employee_id = ? ORDER BY valid_from DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails: %w", err)
	}
	defer rows.Close()

	var out []hr.EmployeeEmail
	for rows.Next() {
		var rec hr.EmployeeEmail
		var from string
		var to sql.NullString
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Payload.Email,
			&from, &to, &rec.Principal, &rec.Active); err != nil {
			return nil, err
		}
		if rec.ValidFrom, err = parseDate(from); err != nil {
			return nil, err
		}
		if rec.ValidTo, err = scanNullDate(to); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteEmail removes one email record.
func (s *Store) DeleteEmail(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "employee_emails", "employee_email", id)
}

// =============================================================================
// PHONES - Carry the principal+active uniqueness rule
// =============================================================================

// SavePhone inserts or replaces a phone record, with the same principal
// rule as emails.
func (s *Store) SavePhone(ctx context.Context, rec *hr.EmployeePhone) error {
	existing, err := s.ListPhones(ctx, rec.OwnerID)
	if err != nil {
		return err
	}
	if err := core.CheckPrincipal("employee_phone", existing, *rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employee_phones
			(id, employee_id, number, valid_from, valid_to, principal, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number, valid_from = excluded.valid_from,
			valid_to = excluded.valid_to, principal = excluded.principal,
			active = excluded.active
	`,
		rec.ID, rec.OwnerID, rec.Payload.Number,
		formatDate(rec.ValidFrom), nullDate(rec.ValidTo), rec.Principal, rec.Active,
	)
	return mapWriteError(err, "employee_phone", rec.Payload.Number)
}

// ListPhones returns an employee's phone records.
func (s *Store) ListPhones(ctx context.Context, employeeID string) ([]hr.EmployeePhone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, number, valid_from, valid_to, principal, active
		FROM employee_phones WHERE employee_id = ? ORDER BY valid_from DESC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phones: %w", err)
	}
	defer rows.Close()

	var out []hr.EmployeePhone
	for rows.Next() {
		var rec hr.EmployeePhone
		var from string
		var to sql.NullString
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Payload.Number,
			&from, &to, &rec.Principal, &rec.Active); err != nil {
			return nil, err
		}
		if rec.ValidFrom, err = parseDate(from); err != nil {
			return nil, err
		}
		if rec.ValidTo, err = scanNullDate(to); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeletePhone removes one phone record.
func (s *Store) DeletePhone(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "employee_phones", "employee_phone", id)
}
