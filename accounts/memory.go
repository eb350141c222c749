/*
memory.go - In-memory account store (for testing/dev)

Implements Store with a mutex-guarded map. Mirrors the behavior the
SQLite store enforces at the schema level: unique usernames and
not-found on missing ids.
*/
package accounts

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/workforce/core"
)

// MemoryStore is a thread-safe in-memory Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]Account)}
}

func (m *MemoryStore) FindAccount(_ context.Context, id string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) FindAccountByUsername(_ context.Context, username string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.Username == username {
			out := a
			return &out, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *MemoryStore) SaveAccount(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.accounts {
		if id != a.ID && existing.Username == a.Username {
			return &core.UniquenessError{Entity: "account", Key: "username " + a.Username}
		}
	}
	m.accounts[a.ID] = *a
	return nil
}

func (m *MemoryStore) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *MemoryStore) ListAccounts(_ context.Context) ([]Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
