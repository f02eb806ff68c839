package http

import (
	"github.com/go-auth-service/internal/application/auth"
	"github.com/go-auth-service/internal/domain"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Users      domain.UserStore
	Challenges domain.ChallengeStore
	Banned     domain.BannedTokenStore
	Hasher     domain.PasswordHasher
	Tokens     auth.TokenProvider
	Mailer     domain.EmailClient
}
