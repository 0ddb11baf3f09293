// Package config builds runtime configuration from the environment so main stays lean.
package config

import (
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Server captures the full application configuration.
type Server struct {
	Addr string

	// Credential store
	DatabaseURL string

	// Session store and transport
	RedisURL          string
	SessionCookieName string
	SessionTTL        time.Duration
	SecureCookies     bool

	// Local accounts
	BcryptCost int

	// Upstream market data API
	QuoteBaseURL string
	QuoteAPIKey  string
	QuoteTimeout time.Duration

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Signs the short-lived OAuth state token.
	StateSigningKey string
}

// FromEnv builds a Server config from environment variables.
// Unset values fall back to development defaults.
func FromEnv() Server {
	cfg := Server{
		Addr:               envOr("TICKERDESK_ADDR", ":3000"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		SessionCookieName:  envOr("SESSION_COOKIE_NAME", "td_session"),
		SessionTTL:         envDuration("SESSION_TTL", 24*time.Hour),
		SecureCookies:      os.Getenv("SECURE_COOKIES") == "true",
		BcryptCost:         envInt("BCRYPT_COST", bcrypt.DefaultCost),
		QuoteBaseURL:       envOr("QUOTE_BASE_URL", "https://www.alphavantage.co"),
		QuoteAPIKey:        os.Getenv("QUOTE_API_KEY"),
		QuoteTimeout:       envDuration("QUOTE_TIMEOUT", 10*time.Second),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  envOr("GOOGLE_REDIRECT_URL", "http://localhost:3000/auth/google/callback"),
		StateSigningKey:    envOr("STATE_SIGNING_KEY", "dev-secret-key-change-in-production"),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
