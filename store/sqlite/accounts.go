/*
accounts.go - Account persistence (implements accounts.Store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/warp/workforce/accounts"
	"github.com/warp/workforce/core"
)

const accountColumns = `id, username, email, first_name, last_name, password_hash,
	active, staff, superuser, date_joined, last_login`

// FindAccount returns one account by id.
func (s *Store) FindAccount(ctx context.Context, id string) (*accounts.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// FindAccountByUsername returns one account by its unique username.
func (s *Store) FindAccountByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

// SaveAccount inserts or replaces an account record.
func (s *Store) SaveAccount(ctx context.Context, a *accounts.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.DateJoined.IsZero() {
		a.DateJoined = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts
			(`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			password_hash = excluded.password_hash,
			active = excluded.active,
			staff = excluded.staff,
			superuser = excluded.superuser,
			last_login = excluded.last_login
	`,
		a.ID, a.Username, a.Email, a.FirstName, a.LastName, a.PasswordHash,
		a.Active, a.Staff, a.Superuser,
		a.DateJoined.UTC().Format(time.RFC3339), nullTimestamp(a.LastLogin),
	)
	return mapWriteError(err, "account", "username "+a.Username)
}

// DeleteAccount removes an account. The superuser guard lives in the
// admin service, not here.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err, "account", id)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListAccounts returns all accounts ordered by username.
func (s *Store) ListAccounts(ctx context.Context) ([]accounts.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var out []accounts.Account
	for rows.Next() {
		a, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row *sql.Row) (*accounts.Account, error) {
	a, err := scanAccountRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return a, err
}

func scanAccountRow(r rowScanner) (*accounts.Account, error) {
	var a accounts.Account
	var joined string
	var lastLogin sql.NullString
	if err := r.Scan(
		&a.ID, &a.Username, &a.Email, &a.FirstName, &a.LastName, &a.PasswordHash,
		&a.Active, &a.Staff, &a.Superuser, &joined, &lastLogin,
	); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, joined); err == nil {
		a.DateJoined = t
	}
	a.LastLogin = scanNullTimestamp(lastLogin)
	return &a, nil
}

// Compile-time check that the store satisfies the accounts boundary.
var _ accounts.Store = (*Store)(nil)
