/*
Package accounts implements login-account administration.

PURPOSE:

	Accounts are the identity records behind the HR API: credentials plus
	role flags (active, staff, superuser). This package owns the
	authorization and state-transition rules for activating/deactivating
	accounts, changing passwords, public registration and self-profile
	management. Token issuance is an external concern; requests arrive with
	an already-authenticated Principal.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: the stored identity record (hash never leaves the package
    boundary in API responses)
  - Principal: the authenticated caller, or Anonymous
  - Store: persistence boundary for accounts

SEE ALSO:
  - service.go: The admin state machine and its authorization rules
  - hasher.go: Password hashing boundary (bcrypt)
*/
package accounts

import (
	"context"
	"time"
)

// =============================================================================
// ACCOUNT - Stored identity record
// =============================================================================

// Account is a login account with credentials and role flags.
type Account struct {
	ID           string
	Username     string // unique
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Active       bool
	Staff        bool // may administer records
	Superuser    bool // may administer accounts
	DateJoined   time.Time
	LastLogin    *time.Time
}

// =============================================================================
// PRINCIPAL - The authenticated caller
// =============================================================================

// Principal is the per-request authenticated identity supplied by the
// identity provider. The zero value is anonymous.
type Principal struct {
	ID        string
	Superuser bool
	Staff     bool
	Active    bool
}

// Anonymous is the principal of an unauthenticated request.
var Anonymous = Principal{}

// IsAnonymous reports whether no identity was established.
func (p Principal) IsAnonymous() bool { return p.ID == "" }

// PrincipalFor derives a Principal from a stored account.
func PrincipalFor(a *Account) Principal {
	return Principal{ID: a.ID, Superuser: a.Superuser, Staff: a.Staff, Active: a.Active}
}

// =============================================================================
// STORE - Persistence boundary
// =============================================================================

// Store persists accounts. Implementations map storage-level uniqueness
// failures (duplicate username) to core.UniquenessError and missing ids
// to core.ErrNotFound.
type Store interface {
	FindAccount(ctx context.Context, id string) (*Account, error)
	FindAccountByUsername(ctx context.Context, username string) (*Account, error)
	SaveAccount(ctx context.Context, a *Account) error
	DeleteAccount(ctx context.Context, id string) error
	ListAccounts(ctx context.Context) ([]Account, error)
}
