package domain

import (
	"fmt"
	"strings"

	"github.com/go-auth-service/internal/pkg/validate"
)

// Email is a syntactically valid, normalized email address. The zero value is
// not valid; construct via ParseEmail. Equality on Email values compares the
// normalized address, so it is safe to use as a map key.
type Email struct {
	address string
}

// ParseEmail validates raw as an email address and returns its normalized
// (trimmed, lowercased) form. Empty strings, addresses without an @ and
// addresses without a local part are rejected.
func ParseEmail(raw string) (Email, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if err := validate.Var(addr, "required,email"); err != nil {
		return Email{}, fmt.Errorf("malformed email address: %w", ErrInvalidInput)
	}
	return Email{address: addr}, nil
}

// Address returns the normalized address string.
func (e Email) Address() string { return e.address }

func (e Email) String() string { return e.address }
