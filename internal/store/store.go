// Package store provides the volatile in-process storage owned by the service
// instance. All stores are safe for concurrent use.
package store

import (
	"sync"
	"time"

	"order-api/internal/apperrors"
	"order-api/internal/models"
)

// UserStore holds registered accounts keyed by username.
type UserStore interface {
	Create(username, passwordHash string) (*models.User, error)
	Get(username string) (*models.User, error)
	Count() int
}

// OrderStore holds orders keyed by order id.
type OrderStore interface {
	Create(order *models.Order) (*models.Order, error)
	Get(orderID string) (*models.Order, error)
	List() []*models.Order
	UpdateStatus(orderID, status string) (*models.Order, error)
	Count() int
}

// MemoryUserStore is a mutex-guarded map of users.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]*models.User
	lastID int64
}

// NewMemoryUserStore creates an empty user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

// Create registers a new user. Usernames are unique and immutable.
func (s *MemoryUserStore) Create(username, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return nil, apperrors.New(apperrors.ErrAlreadyExists, "User already exists")
	}

	s.lastID++
	user := &models.User{
		ID:           s.lastID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[username] = user

	return copyUser(user), nil
}

// Get retrieves a user by username.
func (s *MemoryUserStore) Get(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	return copyUser(user), nil
}

// Count returns the number of registered users.
func (s *MemoryUserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func copyUser(u *models.User) *models.User {
	cp := *u
	return &cp
}
