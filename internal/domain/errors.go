package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// ErrInvalidCredentials is the store-level "password does not match" failure.
	// ErrIncorrectCredentials is the boundary kind: a wrong password and a failed
	// 2FA match both collapse into it so the caller cannot tell which factor failed.
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrIncorrectCredentials = errors.New("incorrect credentials")

	ErrMissingToken      = errors.New("missing token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrChallengeNotFound = errors.New("2fa challenge not found")

	ErrUnexpected = errors.New("unexpected error")
)
