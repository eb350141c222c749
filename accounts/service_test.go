package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce/accounts"
	"github.com/warp/workforce/core"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// plainHasher avoids bcrypt cost in tests; the service treats the hash
// as opaque either way.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Compare(h, p string) bool      { return h == "hashed:"+p }

func newTestService(t *testing.T) (*accounts.AdminService, *accounts.MemoryStore) {
	t.Helper()
	store := accounts.NewMemoryStore()
	svc := accounts.NewAdminService(store, plainHasher{}, zerolog.Nop())
	return svc, store
}

func seed(t *testing.T, store *accounts.MemoryStore, a accounts.Account) accounts.Account {
	t.Helper()
	if a.DateJoined.IsZero() {
		a.DateJoined = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, store.SaveAccount(context.Background(), &a))
	return a
}

var (
	root  = accounts.Account{ID: "root", Username: "root", Active: true, Staff: true, Superuser: true}
	alice = accounts.Account{ID: "alice", Username: "alice", Active: true}
	bob   = accounts.Account{ID: "bob", Username: "bob", Active: false}
)

// =============================================================================
// ACTIVATE / DEACTIVATE
// =============================================================================

func TestActivate_NonSuperuser_Forbidden(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, alice)
	seed(t, store, bob)

	err := svc.Activate(context.Background(), accounts.PrincipalFor(&alice), "bob")

	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestActivate_SuperuserOnSelf_Forbidden(t *testing.T) {
	// A superuser may not flip their own active flag through this path.
	svc, store := newTestService(t)
	seed(t, store, root)

	err := svc.Activate(context.Background(), accounts.PrincipalFor(&root), "root")

	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestActivate_UnknownTarget_NotFound(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, root)

	err := svc.Activate(context.Background(), accounts.PrincipalFor(&root), "ghost")

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestActivate_Superuser_SetsFlag(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, root)
	seed(t, store, bob) // inactive

	err := svc.Activate(context.Background(), accounts.PrincipalFor(&root), "bob")
	require.NoError(t, err)

	got, err := store.FindAccount(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestDeactivate_Superuser_ClearsFlag_KeepsRecord(t *testing.T) {
	// GIVEN: An active ordinary account
	// WHEN: A superuser deactivates it
	// THEN: active becomes false; the record itself survives

	svc, store := newTestService(t)
	seed(t, store, root)
	seed(t, store, alice)

	err := svc.Deactivate(context.Background(), accounts.PrincipalFor(&root), "alice")
	require.NoError(t, err)

	got, err := store.FindAccount(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, got.Active)
}

// =============================================================================
// SET PASSWORD
// =============================================================================

func TestSetPassword_Mismatch_ValidationError_NoStateChange(t *testing.T) {
	svc, store := newTestService(t)
	a := seed(t, store, accounts.Account{ID: "u42", Username: "u42", Active: true, PasswordHash: "hashed:old"})

	err := svc.SetPassword(context.Background(), accounts.PrincipalFor(&a), "u42", "a", "b")

	require.ErrorIs(t, err, core.ErrValidation)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)

	got, _ := store.FindAccount(context.Background(), "u42")
	assert.Equal(t, "hashed:old", got.PasswordHash, "credential must be untouched")
}

func TestSetPassword_NonAdminOnOther_Forbidden(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, alice)
	seed(t, store, bob)

	err := svc.SetPassword(context.Background(), accounts.PrincipalFor(&alice), "bob", "p", "p")

	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestSetPassword_SelfService_Allowed(t *testing.T) {
	svc, store := newTestService(t)
	a := seed(t, store, alice)

	err := svc.SetPassword(context.Background(), accounts.PrincipalFor(&a), "alice", "newpass", "newpass")
	require.NoError(t, err)

	got, _ := store.FindAccount(context.Background(), "alice")
	assert.Equal(t, "hashed:newpass", got.PasswordHash)
}

func TestSetPassword_AdminOnOther_Allowed(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, root)
	seed(t, store, alice)

	err := svc.SetPassword(context.Background(), accounts.PrincipalFor(&root), "alice", "reset1", "reset1")
	require.NoError(t, err)

	got, _ := store.FindAccount(context.Background(), "alice")
	assert.Equal(t, "hashed:reset1", got.PasswordHash)
}

// =============================================================================
// REGISTER
// =============================================================================

func TestRegister_PasswordMismatch_NoAccountCreated(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Register(context.Background(), accounts.RegisterInput{
		Username: "x", Password: "p1", Confirm: "p2",
	})

	require.ErrorIs(t, err, core.ErrValidation)
	all, _ := store.ListAccounts(context.Background())
	assert.Empty(t, all)
}

func TestRegister_CreatesOrdinaryActiveAccount(t *testing.T) {
	svc, store := newTestService(t)

	got, err := svc.Register(context.Background(), accounts.RegisterInput{
		Username: "maria", Email: "maria@example.com",
		Password: "secret", Confirm: "secret",
		FirstName: "Maria", LastName: "Rossi",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.True(t, got.Active)
	assert.False(t, got.Staff)
	assert.False(t, got.Superuser)
	assert.Equal(t, "hashed:secret", got.PasswordHash)
	assert.False(t, got.DateJoined.IsZero())

	stored, err := store.FindAccountByUsername(context.Background(), "maria")
	require.NoError(t, err)
	assert.Equal(t, got.ID, stored.ID)
}

func TestRegister_DuplicateUsername_Uniqueness(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, alice)

	_, err := svc.Register(context.Background(), accounts.RegisterInput{
		Username: "alice", Password: "p", Confirm: "p",
	})

	assert.ErrorIs(t, err, core.ErrUniqueness)
}

// =============================================================================
// SELF PROFILE
// =============================================================================

func TestSelf_Anonymous_Forbidden(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Self(context.Background(), accounts.Anonymous)

	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestUpdateSelf_PatchesOnlyProfileFields(t *testing.T) {
	svc, store := newTestService(t)
	a := seed(t, store, accounts.Account{ID: "alice", Username: "alice", Active: true, PasswordHash: "hashed:p"})

	email := "new@example.com"
	got, err := svc.UpdateSelf(context.Background(), accounts.PrincipalFor(&a), accounts.ProfilePatch{Email: &email})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "hashed:p", got.PasswordHash)
	assert.False(t, got.Staff)
}

// =============================================================================
// ADMIN CRUD + SUPERUSER DELETE GUARD
// =============================================================================

func TestDelete_SuperuserTarget_AlwaysForbidden(t *testing.T) {
	// The guard is object-level: even another superuser cannot delete one.
	svc, store := newTestService(t)
	seed(t, store, root)
	other := seed(t, store, accounts.Account{ID: "root2", Username: "root2", Active: true, Staff: true, Superuser: true})

	err := svc.Delete(context.Background(), accounts.PrincipalFor(&other), "root")
	assert.ErrorIs(t, err, core.ErrForbidden)

	got, ferr := store.FindAccount(context.Background(), "root")
	require.NoError(t, ferr)
	assert.True(t, got.Superuser)
}

func TestDelete_OrdinaryTarget_ByStaff(t *testing.T) {
	svc, store := newTestService(t)
	staff := seed(t, store, accounts.Account{ID: "staff", Username: "staff", Active: true, Staff: true})
	seed(t, store, alice)

	err := svc.Delete(context.Background(), accounts.PrincipalFor(&staff), "alice")
	require.NoError(t, err)

	_, err = store.FindAccount(context.Background(), "alice")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAdminCRUD_NonStaff_Forbidden(t *testing.T) {
	svc, store := newTestService(t)
	a := seed(t, store, alice)
	seed(t, store, bob)
	actor := accounts.PrincipalFor(&a)
	ctx := context.Background()

	_, err := svc.List(ctx, actor)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Get(ctx, actor, "bob")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Update(ctx, actor, "bob", accounts.ProfilePatch{})
	assert.ErrorIs(t, err, core.ErrForbidden)

	err = svc.Delete(ctx, actor, "bob")
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestList_Staff_SortedByUsername(t *testing.T) {
	svc, store := newTestService(t)
	staff := seed(t, store, accounts.Account{ID: "staff", Username: "staff", Active: true, Staff: true})
	seed(t, store, bob)
	seed(t, store, alice)

	all, err := svc.List(context.Background(), accounts.PrincipalFor(&staff))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].Username)
	assert.Equal(t, "bob", all[1].Username)
	assert.Equal(t, "staff", all[2].Username)
}
