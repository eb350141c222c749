/*
Package sqlite provides the SQLite-backed record store for all HR entities.

PURPOSE:

	Durable storage for employees, contracts, schedules, absences, overtime,
	payslips and accounts. In production the same patterns apply to
	PostgreSQL - only minor SQL dialect differences.

DELETION POLICY (encoded per relationship):

	employee  -> contracts, addresses, ibans, emails, phones   CASCADE
	contract  -> schedule, absences, overtime, payslips        CASCADE
	absence_type -> absences                                   RESTRICT
	agreement -> contracts                                     SET NULL
	account   -> employees.account_id                          SET NULL

UNIQUENESS:

	Conditional unique indexes enforce "one principal active email/phone
	per employee" at the storage layer. The application-level check in
	core.CheckPrincipal is advisory; these indexes are the authoritative
	guard against racing principal-flag writes.

ERROR MAPPING:

	Constraint failures come back as the core taxonomy:
	- UNIQUE failures      -> core.UniquenessError
	- FOREIGN KEY failures -> core.ConstraintError
	- sql.ErrNoRows        -> core.ErrNotFound

WAL MODE:

	Opened with WAL and foreign keys on. Multiple readers don't block;
	a single writer at a time.

MIGRATION:

	Schema is auto-migrated on New(). For production, use a proper
	migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - employees.go, contracts.go, records.go, accounts.go: Entity access
  - hr/: The domain types persisted here
*/
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/workforce/core"
)

// Store implements the record store over SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database exists per connection; pin the pool to one
	// so every query sees the same schema.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Login accounts
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		staff BOOLEAN NOT NULL DEFAULT FALSE,
		superuser BOOLEAN NOT NULL DEFAULT FALSE,
		date_joined TEXT NOT NULL,
		last_login TEXT
	);

	-- Employee master data
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		fiscal_code TEXT NOT NULL UNIQUE,
		birth_date TEXT NOT NULL,
		birth_place TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		account_id TEXT REFERENCES accounts(id) ON DELETE SET NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_name
		ON employees(last_name, first_name);

	-- Effective-dated employee sub-records
	CREATE TABLE IF NOT EXISTS employee_addresses (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		country TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		province TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL,
		postal_code TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL,
		number TEXT NOT NULL DEFAULT '',
		valid_from TEXT NOT NULL,
		valid_to TEXT,
		principal BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		UNIQUE(employee_id, kind, valid_from)
	);

	CREATE TABLE IF NOT EXISTS employee_ibans (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		iban TEXT NOT NULL,
		valid_from TEXT NOT NULL,
		valid_to TEXT,
		principal BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		UNIQUE(employee_id, iban, valid_from)
	);

	CREATE TABLE IF NOT EXISTS employee_emails (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		email TEXT NOT NULL UNIQUE,
		valid_from TEXT NOT NULL,
		valid_to TEXT,
		principal BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- AUTHORITATIVE: one principal active email per employee
	CREATE UNIQUE INDEX IF NOT EXISTS idx_emails_one_principal
		ON employee_emails(employee_id)
		WHERE principal AND active;

	CREATE TABLE IF NOT EXISTS employee_phones (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		number TEXT NOT NULL UNIQUE,
		valid_from TEXT NOT NULL,
		valid_to TEXT,
		principal BOOLEAN NOT NULL DEFAULT FALSE,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- AUTHORITATIVE: one principal active phone per employee
	CREATE UNIQUE INDEX IF NOT EXISTS idx_phones_one_principal
		ON employee_phones(employee_id)
		WHERE principal AND active;

	-- Collective agreements
	CREATE TABLE IF NOT EXISTS collective_agreements (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		annual_payments INTEGER NOT NULL DEFAULT 13
	);

	-- Contracts
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		weekly_hours INTEGER,
		start_date TEXT NOT NULL,
		end_date TEXT,
		notes TEXT NOT NULL DEFAULT '',
		agreement_id TEXT REFERENCES collective_agreements(id) ON DELETE SET NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_employee
		ON contracts(employee_id, start_date DESC);

	-- Weekly schedule entries: one per (contract, weekday)
	CREATE TABLE IF NOT EXISTS schedule_entries (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 1 AND 7),
		band1_start TEXT, band1_end TEXT,
		band2_start TEXT, band2_end TEXT,
		band3_start TEXT, band3_end TEXT,
		UNIQUE(contract_id, weekday)
	);

	-- Absence catalog: RESTRICT keeps types referenced by absences alive
	CREATE TABLE IF NOT EXISTS absence_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		requires_approval BOOLEAN NOT NULL DEFAULT TRUE,
		requires_national_code BOOLEAN NOT NULL DEFAULT FALSE,
		code TEXT NOT NULL DEFAULT 'A'
	);

	CREATE TABLE IF NOT EXISTS absences (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		type_id TEXT NOT NULL REFERENCES absence_types(id) ON DELETE RESTRICT,
		date TEXT NOT NULL,
		full_day BOOLEAN NOT NULL DEFAULT TRUE,
		start_at TEXT,
		end_at TEXT,
		national_code TEXT NOT NULL DEFAULT '',
		submitted_by TEXT NOT NULL DEFAULT '',
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		approved_by TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_absences_contract_date
		ON absences(contract_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_absences_type
		ON absences(type_id);

	CREATE TABLE IF NOT EXISTS overtime_records (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		requested_by TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_overtime_contract
		ON overtime_records(contract_id, start_at DESC);

	-- Payslip registry: one document per (contract, year, month, kind)
	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		file_path TEXT NOT NULL DEFAULT '',
		uploaded_at TEXT NOT NULL,
		UNIQUE(contract_id, year, month, kind)
	);

	CREATE INDEX IF NOT EXISTS idx_payslips_contract
		ON payslips(contract_id, year DESC, month DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HELPERS - Encoding and error mapping
// =============================================================================

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string { return t.Format(dateLayout) }

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt stored date %q: %w", s, err)
	}
	return t, nil
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*t), Valid: true}
}

func scanNullDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTimestamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func scanNullTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func scanNullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// mapWriteError converts SQLite constraint failures into the core taxonomy.
func mapWriteError(err error, entity, key string) error {
	if err == nil {
		return nil
	}
	if isUniqueConstraintError(err) {
		return &core.UniquenessError{Entity: entity, Key: key}
	}
	if isForeignKeyError(err) {
		return &core.ConstraintError{Entity: entity, Reason: "referenced record does not exist"}
	}
	return fmt.Errorf("failed to save %s: %w", entity, err)
}
