// Package jwtinfra signs and verifies the bearer session tokens.
package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/go-auth-service/internal/domain"
)

const minSecretLen = 32

// Provider signs and verifies HS256 JWTs whose subject is the authenticated
// email. The secret is process-wide configuration.
type Provider struct {
	secret []byte
	ttl    time.Duration
}

func NewProvider(secret string, ttl time.Duration) (*Provider, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLen)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Provider{secret: []byte(secret), ttl: ttl}, nil
}

// Issue produces a signed token for the subject with expiry now + TTL.
func (p *Provider) Issue(email domain.Email) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   email.Address(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %v: %w", err, domain.ErrUnexpected)
	}
	return signed, expiresAt, nil
}

// Validate checks structure, signature and expiry and returns the subject
// email and expiry time. Any failure is reported as domain.ErrInvalidToken;
// revocation is a separate concern checked by the orchestrator.
func (p *Provider) Validate(tokenStr string) (domain.Email, time.Time, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return domain.Email{}, time.Time{}, fmt.Errorf("%v: %w", err, domain.ErrInvalidToken)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return domain.Email{}, time.Time{}, domain.ErrInvalidToken
	}
	email, err := domain.ParseEmail(claims.Subject)
	if err != nil {
		return domain.Email{}, time.Time{}, domain.ErrInvalidToken
	}
	return email, claims.ExpiresAt.Time, nil
}

// TTL is the configured token lifetime; the revocation store uses it as the
// conservative upper bound when a token's remaining lifetime is unknown.
func (p *Provider) TTL() time.Duration { return p.ttl }
