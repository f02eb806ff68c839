package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-auth-service/internal/domain"
)

// ChallengeTTL bounds the lifetime of a pending second-factor challenge.
const ChallengeTTL = 600 * time.Second

type challenge struct {
	id        domain.LoginAttemptID
	code      domain.TwoFACode
	expiresAt time.Time
}

// ChallengeStore keeps at most one pending challenge per email. Expired
// entries are treated as absent on read and reaped on the next write.
type ChallengeStore struct {
	mu      sync.RWMutex
	entries map[domain.Email]challenge
	ttl     time.Duration
	now     func() time.Time
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		entries: make(map[domain.Email]challenge),
		ttl:     ChallengeTTL,
		now:     time.Now,
	}
}

func (s *ChallengeStore) AddChallenge(_ context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked()
	s.entries[email] = challenge{id: id, code: code, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *ChallengeStore) GetChallenge(_ context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[email]
	if !ok || s.now().After(entry.expiresAt) {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, domain.ErrChallengeNotFound
	}
	return entry.id, entry.code, nil
}

// RemoveChallenge deletes and checks under the write lock, so of any number
// of concurrent removals exactly one observes a live entry.
func (s *ChallengeStore) RemoveChallenge(_ context.Context, email domain.Email) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[email]
	delete(s.entries, email)
	return ok && !s.now().After(entry.expiresAt), nil
}

// reapLocked drops expired entries across all emails. Caller holds the write
// lock.
func (s *ChallengeStore) reapLocked() {
	now := s.now()
	for email, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, email)
		}
	}
}
