// README: In-memory user repository for local runs and tests.
package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"waslhaa/internal/types"
)

type MemoryStore struct {
	mu    sync.RWMutex
	users map[types.ID]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[types.ID]User)}
}

func (m *MemoryStore) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return ErrAlreadyExists
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id types.ID, status Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = at
	m.users[id] = u
	return nil
}

func (m *MemoryStore) List(_ context.Context, f Filter) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0)
	for _, u := range m.users {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	sortUsers(out)
	return out, nil
}

// sortUsers orders newest first.
func sortUsers(users []User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
}
