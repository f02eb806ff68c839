package memory

import (
	"context"
	"sync"
	"time"
)

// BannedTokenStore tracks revoked tokens until their natural expiry. Entries
// whose deadline has passed read as not revoked, matching the TTL semantics
// of the Redis-backed store.
type BannedTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewBannedTokenStore() *BannedTokenStore {
	return &BannedTokenStore{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Revoke records the token for ttl. Re-revoking refreshes the deadline and
// succeeds; the policy is idempotent success across all backends.
func (s *BannedTokenStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for tok, deadline := range s.tokens {
		if now.After(deadline) {
			delete(s.tokens, tok)
		}
	}
	s.tokens[token] = now.Add(ttl)
	return nil
}

func (s *BannedTokenStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deadline, ok := s.tokens[token]
	return ok && s.now().Before(deadline), nil
}
