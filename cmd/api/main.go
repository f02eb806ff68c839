package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/go-auth-service/internal/config"
	"github.com/go-auth-service/internal/domain"
	"github.com/go-auth-service/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-auth-service/internal/infrastructure/jwt"
	"github.com/go-auth-service/internal/infrastructure/memory"
	"github.com/go-auth-service/internal/infrastructure/postgres"
	"github.com/go-auth-service/internal/infrastructure/redisstore"
	"github.com/go-auth-service/internal/infrastructure/smtp"
	"github.com/go-auth-service/internal/pkg/hasher"
	transporthttp "github.com/go-auth-service/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	argon := hasher.NewArgon2(hasher.DefaultParams())

	tokens, err := jwtinfra.NewProvider(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("token provider: %v", err)
	}

	users, err := buildUserStore(ctx, cfg, argon)
	if err != nil {
		log.Fatalf("user store: %v", err)
	}

	challenges, banned := buildTokenStores(cfg)

	deps := &transporthttp.Deps{
		Users:      users,
		Challenges: challenges,
		Banned:     banned,
		Hasher:     argon,
		Tokens:     tokens,
		Mailer:     buildMailer(cfg),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func buildUserStore(ctx context.Context, cfg *config.Config, argon *hasher.Argon2) (domain.UserStore, error) {
	switch cfg.UserStore {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return nil, err
		}
		return postgres.NewUserStore(pool, argon), nil
	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, dynamo.ClientConfig{
			Region:      cfg.AWSRegion,
			EndpointURL: cfg.AWSEndpointURL,
			AccessKeyID: cfg.AWSAccessKeyID,
			SecretKey:   cfg.AWSSecretKey,
		})
		if err != nil {
			return nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoUsersTable)
		return dynamo.NewUserStore(client, cfg.DynamoUsersTable, argon), nil
	default:
		return memory.NewUserStore(argon), nil
	}
}

func buildTokenStores(cfg *config.Config) (domain.ChallengeStore, domain.BannedTokenStore) {
	if cfg.TokenStore == config.BackendRedis {
		rdb := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return redisstore.NewChallengeStore(rdb), redisstore.NewBannedTokenStore(rdb)
	}
	return memory.NewChallengeStore(), memory.NewBannedTokenStore()
}

func buildMailer(cfg *config.Config) domain.EmailClient {
	if cfg.SMTPHost == "" {
		return smtp.NewLogMailer(nil)
	}
	return smtp.NewMailer(smtp.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
}
