package domain

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// LoginAttemptID identifies one login attempt that is pending second-factor
// verification. It is always a canonical UUID-v4 string.
type LoginAttemptID struct {
	id string
}

// ParseLoginAttemptID validates raw as UUID text and canonicalizes it.
func ParseLoginAttemptID(raw string) (LoginAttemptID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return LoginAttemptID{}, fmt.Errorf("malformed login attempt id: %w", ErrInvalidInput)
	}
	return LoginAttemptID{id: id.String()}, nil
}

// NewLoginAttemptID generates a fresh random UUID-v4 attempt id.
func NewLoginAttemptID() LoginAttemptID {
	return LoginAttemptID{id: uuid.NewString()}
}

func (l LoginAttemptID) String() string { return l.id }

// TwoFACode is a 6-digit second-factor code. It is delivered to the user
// out-of-band and must never appear in logs or API responses, so String and
// MarshalJSON redact it.
type TwoFACode struct {
	code string
}

// ParseTwoFACode accepts exactly 6 ASCII digits.
func ParseTwoFACode(raw string) (TwoFACode, error) {
	if len(raw) != 6 {
		return TwoFACode{}, fmt.Errorf("malformed 2fa code: %w", ErrInvalidInput)
	}
	for _, c := range []byte(raw) {
		if c < '0' || c > '9' {
			return TwoFACode{}, fmt.Errorf("malformed 2fa code: %w", ErrInvalidInput)
		}
	}
	return TwoFACode{code: raw}, nil
}

// NewTwoFACode draws 6 independent uniform digits. The generator is not
// cryptographically hardened; see the project design notes.
func NewTwoFACode() TwoFACode {
	var b [6]byte
	for i := range b {
		b[i] = byte('0' + rand.Intn(10))
	}
	return TwoFACode{code: string(b[:])}
}

// Expose returns the digits for storage, comparison and delivery.
func (c TwoFACode) Expose() string { return c.code }

func (c TwoFACode) String() string { return "[redacted]" }

func (c TwoFACode) MarshalJSON() ([]byte, error) { return []byte(`"[redacted]"`), nil }
