// Package auth composes the stores, the hasher, the token provider and the
// email collaborator into the login, 2FA, logout and token-verification flows.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-service/internal/domain"
	"github.com/go-auth-service/internal/pkg/validate"
)

type SignupRequest struct {
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	Requires2FA bool   `json:"requires2FA"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Verify2FARequest struct {
	Email          string `json:"email" validate:"required"`
	LoginAttemptID string `json:"loginAttemptId" validate:"required"`
	TwoFACode      string `json:"2FACode" validate:"required"`
}

// Session is an issued bearer token and its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// LoginResult is either an issued session or, for 2FA-enabled accounts, the
// attempt id the client must echo back on verify. The code itself is never
// returned to the caller; it travels out-of-band via the email collaborator.
type LoginResult struct {
	TwoFactor      bool
	LoginAttemptID string
	Session        *Session
}

// TokenProvider issues and checks signed session tokens.
type TokenProvider interface {
	Issue(email domain.Email) (token string, expiresAt time.Time, err error)
	Validate(token string) (subject domain.Email, expiresAt time.Time, err error)
	TTL() time.Duration
}

type Service interface {
	Signup(ctx context.Context, req SignupRequest) error
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Verify2FA(ctx context.Context, req Verify2FARequest) (*Session, error)
	Logout(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) error
}

// Deps are the collaborators the service composes. Each store is an
// independent unit of shared state; the service passes values between them by
// copy and never spans two of them with one lock.
type Deps struct {
	Users      domain.UserStore
	Challenges domain.ChallengeStore
	Banned     domain.BannedTokenStore
	Hasher     domain.PasswordHasher
	Tokens     TokenProvider
	Mailer     domain.EmailClient
}

type service struct {
	users      domain.UserStore
	challenges domain.ChallengeStore
	banned     domain.BannedTokenStore
	hasher     domain.PasswordHasher
	tokens     TokenProvider
	mailer     domain.EmailClient
}

func NewService(d Deps) Service {
	return &service{
		users:      d.Users,
		challenges: d.Challenges,
		banned:     d.Banned,
		hasher:     d.Hasher,
		tokens:     d.Tokens,
		mailer:     d.Mailer,
	}
}

func (s *service) Signup(ctx context.Context, req SignupRequest) error {
	if err := validate.Struct(&req); err != nil {
		return fmt.Errorf("invalid signup request: %w", domain.ErrInvalidInput)
	}
	email, err := domain.ParseEmail(req.Email)
	if err != nil {
		return err
	}
	password, err := domain.ParsePassword(req.Password)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, password.Expose())
	if err != nil {
		return fmt.Errorf("hash password: %v: %w", err, domain.ErrUnexpected)
	}

	err = s.users.AddUser(ctx, domain.User{
		Email:        email,
		PasswordHash: hash,
		Requires2FA:  req.Requires2FA,
	})
	if err != nil {
		return err
	}
	return nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, domain.ErrIncorrectCredentials
	}
	email, err := domain.ParseEmail(req.Email)
	if err != nil {
		return nil, domain.ErrIncorrectCredentials
	}
	password, err := domain.ParsePassword(req.Password)
	if err != nil {
		return nil, domain.ErrIncorrectCredentials
	}

	if err := s.users.ValidateUser(ctx, email, password); err != nil {
		return nil, domain.ErrIncorrectCredentials
	}
	user, err := s.users.GetUser(ctx, email)
	if err != nil {
		return nil, domain.ErrIncorrectCredentials
	}

	if !user.Requires2FA {
		session, err := s.issueSession(user.Email)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Session: session}, nil
	}
	return s.startChallenge(ctx, user.Email)
}

// startChallenge generates a fresh attempt id and code, stores the challenge
// and delivers the code. Returns only the attempt id to the caller.
func (s *service) startChallenge(ctx context.Context, email domain.Email) (*LoginResult, error) {
	id := domain.NewLoginAttemptID()
	code := domain.NewTwoFACode()

	if err := s.challenges.AddChallenge(ctx, email, id, code); err != nil {
		slog.Error("failed to store 2fa challenge", "err", err)
		return nil, fmt.Errorf("store challenge: %w", domain.ErrUnexpected)
	}

	body := fmt.Sprintf("Here is your 2FA code: %s, don't share it with anyone.", code.Expose())
	if err := s.mailer.Send(email, "2FA Code", body); err != nil {
		slog.Error("failed to deliver 2fa code", "err", err)
		return nil, fmt.Errorf("send 2fa code: %w", domain.ErrUnexpected)
	}

	return &LoginResult{TwoFactor: true, LoginAttemptID: id.String()}, nil
}

func (s *service) Verify2FA(ctx context.Context, req Verify2FARequest) (*Session, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid verify request: %w", domain.ErrInvalidInput)
	}
	email, err := domain.ParseEmail(req.Email)
	if err != nil {
		return nil, err
	}
	id, err := domain.ParseLoginAttemptID(req.LoginAttemptID)
	if err != nil {
		return nil, err
	}
	code, err := domain.ParseTwoFACode(req.TwoFACode)
	if err != nil {
		return nil, err
	}

	storedID, storedCode, err := s.challenges.GetChallenge(ctx, email)
	if err != nil {
		return nil, domain.ErrIncorrectCredentials
	}
	if storedID != id || storedCode != code {
		// The challenge stays live: wrong attempts are independently rejected
		// until a correct one consumes it or it expires.
		return nil, domain.ErrIncorrectCredentials
	}

	// Consume before issuing. If issuance fails afterwards the user restarts
	// login; the challenge is never replayable. The store reports whether
	// this call deleted the entry, so when concurrent verifies race past the
	// comparison above only the one that actually consumed it gets a session.
	removed, err := s.challenges.RemoveChallenge(ctx, email)
	if err != nil {
		slog.Error("failed to consume 2fa challenge", "err", err)
		return nil, fmt.Errorf("consume challenge: %w", domain.ErrUnexpected)
	}
	if !removed {
		return nil, domain.ErrIncorrectCredentials
	}

	return s.issueSession(email)
}

func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingToken
	}
	expiresAt, err := s.checkToken(ctx, token)
	if err != nil {
		return err
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Remaining lifetime unknown or already elapsed; retain for the full
		// configured token lifetime as the conservative bound.
		ttl = s.tokens.TTL()
	}
	if err := s.banned.Revoke(ctx, token, ttl); err != nil {
		slog.Error("failed to revoke token", "err", err)
		return fmt.Errorf("revoke token: %w", domain.ErrUnexpected)
	}
	return nil
}

func (s *service) VerifyToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingToken
	}
	_, err := s.checkToken(ctx, token)
	return err
}

func (s *service) issueSession(email domain.Email) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(email)
	if err != nil {
		slog.Error("failed to issue session token", "err", err)
		return nil, fmt.Errorf("issue token: %w", domain.ErrUnexpected)
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// checkToken validates structure, signature and expiry, then consults the
// revocation store. A revoked token is as invalid as a forged one.
func (s *service) checkToken(ctx context.Context, token string) (time.Time, error) {
	_, expiresAt, err := s.tokens.Validate(token)
	if err != nil {
		return time.Time{}, domain.ErrInvalidToken
	}
	revoked, err := s.banned.IsRevoked(ctx, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("check revocation: %w", domain.ErrUnexpected)
	}
	if revoked {
		return time.Time{}, domain.ErrInvalidToken
	}
	return expiresAt, nil
}
