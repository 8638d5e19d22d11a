package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env          string
	HTTPPort     string
	DatabaseURL  string // empty selects the in-memory store
	JWTAccessSec string
	JWTRefresh   string
	JWTIssuer    string
	// AdminEmail grants the admin role to the customer registering with
	// it; empty disables the bootstrap.
	AdminEmail   string
	RateRPS      int
	Workers      int
	GuardTimeout time.Duration
	// SameOwnerTransfers requires both sides of an internal transfer to
	// share an owner.
	SameOwnerTransfers bool
}

func Load() Config {
	return Config{
		Env:                get("APP_ENV", "dev"),
		HTTPPort:           get("HTTP_PORT", "8080"),
		DatabaseURL:        get("DATABASE_URL", ""),
		JWTAccessSec:       get("JWT_ACCESS_SECRET", "changeme-access"),
		JWTRefresh:         get("JWT_REFRESH_SECRET", "changeme-refresh"),
		JWTIssuer:          get("JWT_ISSUER", "banking-backend"),
		AdminEmail:         get("ADMIN_EMAIL", ""),
		RateRPS:            getInt("RATE_RPS", 100),
		Workers:            getInt("WORKERS", 4),
		GuardTimeout:       time.Duration(getInt("GUARD_TIMEOUT_MS", 5000)) * time.Millisecond,
		SameOwnerTransfers: getBool("TRANSFER_SAME_OWNER", true),
	}
}

func get(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
