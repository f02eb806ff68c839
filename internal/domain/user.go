package domain

// User is an account record. At most one User exists per Email; records are
// replaced on update, never mutated in place.
type User struct {
	Email        Email
	PasswordHash string
	Requires2FA  bool
}
