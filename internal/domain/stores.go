package domain

import (
	"context"
	"time"
)

// UserStore owns User records keyed by Email. Implementations are selected at
// process startup (in-memory map, Postgres or DynamoDB) and must be safe for
// concurrent use.
type UserStore interface {
	// AddUser inserts the user atomically. Returns ErrUserAlreadyExists when
	// the email is already taken.
	AddUser(ctx context.Context, user User) error

	// GetUser looks up the user by exact email match. Returns ErrUserNotFound
	// when no record exists.
	GetUser(ctx context.Context, email Email) (User, error)

	// ValidateUser looks up the user and compares the candidate password
	// against the stored hash via the credential hasher. Returns
	// ErrUserNotFound when the user does not exist and ErrInvalidCredentials
	// when it exists but the password does not match.
	ValidateUser(ctx context.Context, email Email, password Password) error
}

// ChallengeStore owns pending second-factor challenges, one live slot per
// Email. Entries expire automatically after a fixed TTL.
type ChallengeStore interface {
	// AddChallenge stores the (id, code) pair for the email, overwriting any
	// existing challenge.
	AddChallenge(ctx context.Context, email Email, id LoginAttemptID, code TwoFACode) error

	// GetChallenge returns the live challenge for the email, or
	// ErrChallengeNotFound when none exists or it has expired.
	GetChallenge(ctx context.Context, email Email) (LoginAttemptID, TwoFACode, error)

	// RemoveChallenge deletes the challenge and reports whether this call
	// deleted a live entry. Exactly one of any set of concurrent removals
	// observes true, which is what makes single-use consumption possible.
	// Removing a non-existent challenge is not an error; it reports false.
	RemoveChallenge(ctx context.Context, email Email) (bool, error)
}

// BannedTokenStore tracks revoked-but-not-yet-expired session tokens. Records
// carry a TTL bounded by the token's own remaining lifetime so the store
// never grows past the set of tokens that could still validate.
type BannedTokenStore interface {
	// Revoke marks the token as revoked for ttl. Revoking an already-revoked
	// token is an idempotent success.
	Revoke(ctx context.Context, token string, ttl time.Duration) error

	// IsRevoked reports whether the token is currently revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// PasswordHasher computes and checks one-way password hashes. Both operations
// are CPU-bound and run on a bounded worker pool, so they accept a context.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	// Verify reports whether candidate matches the encoded hash. The error is
	// reserved for malformed hashes and cancellation, not for mismatches.
	Verify(ctx context.Context, encodedHash, candidate string) (bool, error)
}

// EmailClient delivers a message to a recipient. Implementations: SMTP, and a
// log-only client for development and tests.
type EmailClient interface {
	Send(recipient Email, subject, body string) error
}
