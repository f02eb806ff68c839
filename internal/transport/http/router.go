package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/go-auth-service/internal/application/auth"
	"github.com/go-auth-service/internal/config"
	"github.com/go-auth-service/internal/transport/http/handler"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.Deps{
		Users:      deps.Users,
		Challenges: deps.Challenges,
		Banned:     deps.Banned,
		Hasher:     deps.Hasher,
		Tokens:     deps.Tokens,
		Mailer:     deps.Mailer,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)

	r.Get("/health-check", healthH.Ping)
	r.Post("/signup", authH.Signup)
	r.Post("/login", authH.Login)
	r.Post("/verify-2fa", authH.Verify2FA)
	r.Post("/logout", authH.Logout)
	r.Post("/verify-token", authH.VerifyToken)

	return r
}
