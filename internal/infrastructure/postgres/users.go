package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-auth-service/internal/domain"
)

// UserStore persists users in the `users` table:
//
//	email         TEXT PRIMARY KEY
//	password_hash TEXT NOT NULL
//	requires_2fa  BOOLEAN NOT NULL DEFAULT FALSE
type UserStore struct {
	pool   *pgxpool.Pool
	hasher domain.PasswordHasher
}

func NewUserStore(pool *pgxpool.Pool, hasher domain.PasswordHasher) *UserStore {
	return &UserStore{pool: pool, hasher: hasher}
}

func (s *UserStore) AddUser(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, requires_2fa)
		 VALUES ($1, $2, $3)`,
		user.Email.Address(), user.PasswordHash, user.Requires2FA,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %v: %w", err, domain.ErrUnexpected)
	}
	return nil
}

func (s *UserStore) GetUser(ctx context.Context, email domain.Email) (domain.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT email, password_hash, requires_2fa
		 FROM users
		 WHERE email = $1`,
		email.Address(),
	)

	var (
		address      string
		passwordHash string
		requires2FA  bool
	)
	if err := row.Scan(&address, &passwordHash, &requires2FA); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %v: %w", err, domain.ErrUnexpected)
	}

	parsed, err := domain.ParseEmail(address)
	if err != nil {
		return domain.User{}, fmt.Errorf("stored email invalid: %w", domain.ErrUnexpected)
	}
	return domain.User{Email: parsed, PasswordHash: passwordHash, Requires2FA: requires2FA}, nil
}

func (s *UserStore) ValidateUser(ctx context.Context, email domain.Email, password domain.Password) error {
	user, err := s.GetUser(ctx, email)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Verify(ctx, user.PasswordHash, password.Expose())
	if err != nil {
		return fmt.Errorf("verify password: %v: %w", err, domain.ErrUnexpected)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// isUniqueViolation detects a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	type pgError interface{ SQLState() string }
	var pgErr pgError
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
