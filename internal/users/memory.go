package users

import (
	"context"
	"sync"

	"github.com/odyssey-erp/usersync/internal/platform/httpx"
)

// MemoryRepository keeps users in process memory, ordered by id.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  []User
}

// NewMemoryRepository returns an empty store whose first id is 1.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

// ListUsers returns a copy of all users.
func (m *MemoryRepository) ListUsers(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, len(m.users))
	copy(out, m.users)
	return out, nil
}

// GetUser returns the user with the given id.
func (m *MemoryRepository) GetUser(ctx context.Context, id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexOf(id); i >= 0 {
		return m.users[i], nil
	}
	return User{}, httpx.ErrNotFound
}

// CreateUser appends a user with the next id.
func (m *MemoryRepository) CreateUser(ctx context.Context, in CreateInput) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(in.Email, 0) {
		return User{}, httpx.ErrDuplicate
	}
	user := User{ID: m.nextID, Name: in.Name, Email: in.Email}
	m.nextID++
	m.users = append(m.users, user)
	return user, nil
}

// UpdateUser applies the non-empty fields of in to the stored user.
func (m *MemoryRepository) UpdateUser(ctx context.Context, id int64, in UpdateInput) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return User{}, httpx.ErrNotFound
	}
	updated := in.Apply(m.users[i])
	if m.emailTaken(updated.Email, id) {
		return User{}, httpx.ErrDuplicate
	}
	m.users[i] = updated
	return updated, nil
}

// DeleteUser removes the user with the given id.
func (m *MemoryRepository) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return httpx.ErrNotFound
	}
	m.users = append(m.users[:i], m.users[i+1:]...)
	return nil
}

func (m *MemoryRepository) indexOf(id int64) int {
	for i, u := range m.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryRepository) emailTaken(email string, except int64) bool {
	for _, u := range m.users {
		if u.Email == email && u.ID != except {
			return true
		}
	}
	return false
}
