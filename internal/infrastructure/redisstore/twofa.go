package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/go-auth-service/internal/domain"
)

const (
	// two_fa_code:<email> -> JSON ["<loginAttemptId>", "<code>"], wire contract
	// shared with the other backends of this deployment.
	twoFACodePrefix = "two_fa_code:"
	challengeTTL    = 600 * time.Second
)

// ChallengeStore keeps pending second-factor challenges in Redis, one key per
// email. SET without a condition gives the overwrite-on-new-attempt behavior;
// the server-side TTL gives expiry.
type ChallengeStore struct {
	rdb redis.UniversalClient
}

func NewChallengeStore(rdb redis.UniversalClient) *ChallengeStore {
	return &ChallengeStore{rdb: rdb}
}

func challengeKey(email domain.Email) string {
	return twoFACodePrefix + email.Address()
}

func (s *ChallengeStore) AddChallenge(ctx context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	payload, err := json.Marshal([2]string{id.String(), code.Expose()})
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", domain.ErrUnexpected)
	}
	if err := s.rdb.Set(ctx, challengeKey(email), payload, challengeTTL).Err(); err != nil {
		return fmt.Errorf("store challenge: %v: %w", err, domain.ErrUnexpected)
	}
	return nil
}

func (s *ChallengeStore) GetChallenge(ctx context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error) {
	data, err := s.rdb.Get(ctx, challengeKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.LoginAttemptID{}, domain.TwoFACode{}, domain.ErrChallengeNotFound
		}
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("fetch challenge: %v: %w", err, domain.ErrUnexpected)
	}

	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("decode challenge: %w", domain.ErrUnexpected)
	}
	id, err := domain.ParseLoginAttemptID(pair[0])
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("decode challenge id: %w", domain.ErrUnexpected)
	}
	code, err := domain.ParseTwoFACode(pair[1])
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("decode challenge code: %w", domain.ErrUnexpected)
	}
	return id, code, nil
}

// RemoveChallenge reports whether this call deleted the key. DEL returns the
// number of keys removed, so of any number of concurrent removals exactly one
// observes 1.
func (s *ChallengeStore) RemoveChallenge(ctx context.Context, email domain.Email) (bool, error) {
	n, err := s.rdb.Del(ctx, challengeKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("remove challenge: %v: %w", err, domain.ErrUnexpected)
	}
	return n > 0, nil
}
