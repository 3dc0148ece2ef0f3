package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server binary needs from its environment.
type Config struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// Empty DATABASE_URL selects the in-memory stores; empty REDIS_URL selects
// the in-memory deactivation list.
func FromEnv() Config {
	addr := os.Getenv("PANCHAYAT_ADDR")
	if addr == "" {
		addr = ":8000"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 7 * 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			tokenTTL = time.Duration(hours) * time.Hour
		}
	}

	return Config{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     "panchayat",
		JWTAudience:   "panchayat-portal",
		TokenTTL:      tokenTTL,
	}
}
