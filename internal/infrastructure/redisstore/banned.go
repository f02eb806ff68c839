package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/go-auth-service/internal/domain"
)

// banned_token:<token> -> "1", TTL = the token's remaining lifetime.
const bannedTokenPrefix = "banned_token:"

// BannedTokenStore records revoked tokens until they would have expired
// naturally, bounding store growth without ever under-retaining.
type BannedTokenStore struct {
	rdb redis.UniversalClient
}

func NewBannedTokenStore(rdb redis.UniversalClient) *BannedTokenStore {
	return &BannedTokenStore{rdb: rdb}
}

func bannedKey(token string) string {
	return bannedTokenPrefix + token
}

// Revoke marks the token for ttl. SET overwrites an existing marker, so
// re-revoking an already-revoked token is an idempotent success.
func (s *BannedTokenStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, bannedKey(token), true, ttl).Err(); err != nil {
		return fmt.Errorf("store revoked token: %v: %w", err, domain.ErrUnexpected)
	}
	return nil
}

func (s *BannedTokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, bannedKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %v: %w", err, domain.ErrUnexpected)
	}
	return n > 0, nil
}
