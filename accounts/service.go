/*
service.go - Account administration state machine

PURPOSE:

	Authorization + state-transition logic over Account.active and the
	credential state.

AUTHORIZATION RULES:

	activate/deactivate: superuser AND not acting on self
	set-password:        superuser OR self
	register:            public
	self-profile:        any authenticated principal, own record only
	list/get/update:     staff
	delete:              staff, and NEVER a superuser target (hard guard,
	                     independent of every other permission check)

ERROR CONTRACT:

	Every violation is a typed core error; nothing here panics or leaks
	storage errors untyped. Authorization failures carry the fixed
	non-leaking ErrForbidden message.

SEE ALSO:
  - core/errors.go: The error taxonomy
  - api/handlers.go: HTTP mapping of these results
*/
package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warp/workforce/core"
)

// AdminService applies the account-administration rules on top of a Store.
type AdminService struct {
	store  Store
	hasher Hasher
	log    zerolog.Logger
}

// NewAdminService wires the service. The logger may be zerolog.Nop().
func NewAdminService(store Store, hasher Hasher, log zerolog.Logger) *AdminService {
	return &AdminService{store: store, hasher: hasher, log: log}
}

// =============================================================================
// ACTIVATE / DEACTIVATE
// =============================================================================

// Activate sets the target account's active flag.
// Only a superuser may do this, and never on their own account.
func (s *AdminService) Activate(ctx context.Context, actor Principal, targetID string) error {
	return s.setActive(ctx, actor, targetID, true)
}

// Deactivate clears the target account's active flag. The account record
// itself is never deleted by this path. Authorization mirrors Activate.
func (s *AdminService) Deactivate(ctx context.Context, actor Principal, targetID string) error {
	return s.setActive(ctx, actor, targetID, false)
}

func (s *AdminService) setActive(ctx context.Context, actor Principal, targetID string, active bool) error {
	if !actor.Superuser || actor.ID == targetID {
		return core.ErrForbidden
	}
	target, err := s.store.FindAccount(ctx, targetID)
	if err != nil {
		return err
	}
	target.Active = active
	if err := s.store.SaveAccount(ctx, target); err != nil {
		return err
	}
	s.log.Info().
		Str("actor", actor.ID).
		Str("target", targetID).
		Bool("active", active).
		Msg("account active flag changed")
	return nil
}

// =============================================================================
// PASSWORD
// =============================================================================

// SetPassword replaces the target's credential.
// A superuser may change anyone's password; everyone else only their own.
// The plaintext is validated, hashed and discarded - never logged.
func (s *AdminService) SetPassword(ctx context.Context, actor Principal, targetID, password, confirm string) error {
	if !actor.Superuser && actor.ID != targetID {
		return core.ErrForbidden
	}
	if password != confirm {
		return core.Invalid("password", "password fields must match")
	}
	if password == "" {
		return core.Invalid("password", "required")
	}
	target, err := s.store.FindAccount(ctx, targetID)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	target.PasswordHash = hash
	if err := s.store.SaveAccount(ctx, target); err != nil {
		return err
	}
	s.log.Info().Str("actor", actor.ID).Str("target", targetID).Msg("password changed")
	return nil
}

// =============================================================================
// REGISTRATION
// =============================================================================

// RegisterInput is the public registration payload.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Confirm   string
	FirstName string
	LastName  string
}

// Register creates a new ordinary account. Public, unauthenticated.
// The created account carries no staff or superuser rights.
func (s *AdminService) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, core.Invalid("username", "required")
	}
	if in.Password != in.Confirm {
		return nil, core.Invalid("password", "password fields must match")
	}
	if in.Password == "" {
		return nil, core.Invalid("password", "required")
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	account := &Account{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Active:       true,
		DateJoined:   time.Now().UTC(),
	}
	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	s.log.Info().Str("account", account.ID).Str("username", account.Username).Msg("account registered")
	return account, nil
}

// =============================================================================
// SELF PROFILE
// =============================================================================

// ProfilePatch is a partial profile update. Nil fields are left untouched.
// Password and role flags are never reachable through a patch.
type ProfilePatch struct {
	Email     *string
	FirstName *string
	LastName  *string
}

func (p ProfilePatch) apply(a *Account) {
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
}

// Self returns the actor's own account.
func (s *AdminService) Self(ctx context.Context, actor Principal) (*Account, error) {
	if actor.IsAnonymous() {
		return nil, core.ErrForbidden
	}
	return s.store.FindAccount(ctx, actor.ID)
}

// UpdateSelf patches the actor's own profile fields.
func (s *AdminService) UpdateSelf(ctx context.Context, actor Principal, patch ProfilePatch) (*Account, error) {
	if actor.IsAnonymous() {
		return nil, core.ErrForbidden
	}
	account, err := s.store.FindAccount(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	patch.apply(account)
	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// =============================================================================
// ADMIN CRUD
// =============================================================================

// Get returns any account. Staff only.
func (s *AdminService) Get(ctx context.Context, actor Principal, id string) (*Account, error) {
	if !actor.Staff {
		return nil, core.ErrForbidden
	}
	return s.store.FindAccount(ctx, id)
}

// List returns all accounts. Staff only.
func (s *AdminService) List(ctx context.Context, actor Principal) ([]Account, error) {
	if !actor.Staff {
		return nil, core.ErrForbidden
	}
	return s.store.ListAccounts(ctx)
}

// Update patches any account's profile fields. Staff only.
func (s *AdminService) Update(ctx context.Context, actor Principal, id string, patch ProfilePatch) (*Account, error) {
	if !actor.Staff {
		return nil, core.ErrForbidden
	}
	account, err := s.store.FindAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.apply(account)
	if err := s.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes an account. Staff only, with one hard guard on top of
// the role check: a superuser account can never be deleted through the
// API, regardless of who asks.
func (s *AdminService) Delete(ctx context.Context, actor Principal, id string) error {
	if !actor.Staff {
		return core.ErrForbidden
	}
	target, err := s.store.FindAccount(ctx, id)
	if err != nil {
		return err
	}
	if target.Superuser {
		return core.ErrForbidden
	}
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("actor", actor.ID).Str("target", id).Msg("account deleted")
	return nil
}
