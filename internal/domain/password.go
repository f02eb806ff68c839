package domain

import (
	"fmt"

	"github.com/go-auth-service/internal/pkg/validate"
)

// Password is a plaintext password candidate that lives in process memory
// only. It is never persisted; the stores keep an opaque hash instead.
// String and MarshalJSON redact the value so it cannot end up in logs or
// serialized payloads by accident; call Expose at the point of use.
type Password struct {
	plaintext string
}

// ParsePassword accepts any password of at least 8 characters. There is no
// upper bound and no complexity rule.
func ParsePassword(raw string) (Password, error) {
	if err := validate.Var(raw, "min=8"); err != nil {
		return Password{}, fmt.Errorf("password must be at least 8 characters: %w", ErrInvalidInput)
	}
	return Password{plaintext: raw}, nil
}

// Expose returns the plaintext for hashing or verification.
func (p Password) Expose() string { return p.plaintext }

func (p Password) String() string { return "[redacted]" }

func (p Password) MarshalJSON() ([]byte, error) { return []byte(`"[redacted]"`), nil }
