package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	domain "github.com/example/taskboard/domain/user"
)

// ErrUserNotFound is returned when no user matches.
var ErrUserNotFound = errors.New("user not found")

// SeedUser is a demo account with a plaintext password, hashed on load.
type SeedUser struct {
	ID       int64
	Email    string
	Password string
	Name     string
}

// DefaultUsers are the accounts available out of the box.
var DefaultUsers = []SeedUser{
	{ID: 1, Email: "admin@example.com", Password: "admin123", Name: "Admin User"},
	{ID: 2, Email: "user@example.com", Password: "user123", Name: "Regular User"},
}

// UserRepository is an in-memory user directory keyed by email.
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.User
}

// NewUserRepository hashes the seed passwords and loads them.
func NewUserRepository(hasher *PasswordHasher, seed []SeedUser) (*UserRepository, error) {
	r := &UserRepository{byEmail: make(map[string]*domain.User, len(seed))}
	for _, s := range seed {
		hash, err := hasher.Hash(s.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", s.Email, err)
		}
		r.byEmail[normalizeEmail(s.Email)] = &domain.User{
			ID:           s.ID,
			Email:        s.Email,
			Name:         s.Name,
			PasswordHash: hash,
		}
	}
	return r, nil
}

// FindByEmail looks a user up case-insensitively.
func (r *UserRepository) FindByEmail(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// Count returns the number of users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
