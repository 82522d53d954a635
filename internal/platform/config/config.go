package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage backend selectors.
const (
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Server captures service level configuration shared by the issuer and
// verifier processes.
type Server struct {
	Addr         string
	PortAttempts int
	Worker       string

	StoreBackend string
	BoltPath     string
	DatabaseURL  string

	RedisAddr       string
	RateLimit       int
	RateLimitWindow time.Duration

	AdminToken     string
	AllowedOrigin  string
	RequestTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean. role names the service ("issuer" or "verifier") and seeds defaults.
func FromEnv(role string) Server {
	addr := os.Getenv("VOUCH_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	worker := os.Getenv("WORKER_NAME")
	if worker == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "unknown"
		}
		worker = fmt.Sprintf("%s-%s", role, host)
	}

	backend := os.Getenv("VOUCH_STORE")
	if backend == "" {
		backend = StoreBolt
	}

	boltPath := os.Getenv("VOUCH_BOLT_PATH")
	if boltPath == "" {
		boltPath = "data/" + role + ".db"
	}

	return Server{
		Addr:            addr,
		PortAttempts:    envInt("VOUCH_PORT_ATTEMPTS", 10),
		Worker:          worker,
		StoreBackend:    backend,
		BoltPath:        boltPath,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RateLimit:       envInt("VOUCH_RATE_LIMIT", 100),
		RateLimitWindow: envDuration("VOUCH_RATE_WINDOW", time.Minute),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		AllowedOrigin:   os.Getenv("VOUCH_ALLOWED_ORIGIN"),
		RequestTimeout:  envDuration("VOUCH_REQUEST_TIMEOUT", 30*time.Second),
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return value
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if value, err := time.ParseDuration(raw); err == nil {
			return value
		}
	}
	return fallback
}
