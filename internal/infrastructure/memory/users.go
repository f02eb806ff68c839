// Package memory provides in-process store implementations guarded by
// reader/writer locks. They back the development configuration and the
// end-to-end tests; the durable equivalents live in the postgres, dynamo and
// redisstore packages.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-auth-service/internal/domain"
)

// UserStore keeps User records in a map keyed by normalized email.
type UserStore struct {
	mu     sync.RWMutex
	users  map[domain.Email]domain.User
	hasher domain.PasswordHasher
}

func NewUserStore(hasher domain.PasswordHasher) *UserStore {
	return &UserStore{
		users:  make(map[domain.Email]domain.User),
		hasher: hasher,
	}
}

func (s *UserStore) AddUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return domain.ErrUserAlreadyExists
	}
	s.users[user.Email] = user
	return nil
}

func (s *UserStore) GetUser(_ context.Context, email domain.Email) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) ValidateUser(ctx context.Context, email domain.Email, password domain.Password) error {
	user, err := s.GetUser(ctx, email)
	if err != nil {
		return err
	}
	// The lock is released before hashing; verification is CPU-bound and must
	// not serialize readers behind it.
	ok, err := s.hasher.Verify(ctx, user.PasswordHash, password.Expose())
	if err != nil {
		return fmt.Errorf("verify password: %w", domain.ErrUnexpected)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}
	return nil
}
