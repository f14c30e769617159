// Package config holds the forum service settings layered on top of the
// shared platform config.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	platformconfig "github.com/example/forum-platform/internal/platform/config"
)

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendMongo    Backend = "mongo"
	BackendPostgres Backend = "postgres"
)

type ForumConfig struct {
	platformconfig.AppConfig

	Backend       Backend
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string // empty accepts any issuer
	NATSURL       string // empty disables event publishing
	GRPCAddr      string // empty disables the gRPC listener
	HealthEvery   time.Duration
}

// LoadForum reads the forum settings. STORE_BACKEND picks the store; when it
// is unset the backend follows whichever of MONGODB_URI or DATABASE_URL is
// present, else memory. Production refuses the memory backend and an empty
// JWT_SECRET.
func LoadForum() (ForumConfig, error) {
	app, err := platformconfig.Load()
	if err != nil {
		return ForumConfig{}, err
	}

	cfg := ForumConfig{
		AppConfig:     app,
		Backend:       Backend(strings.ToLower(env("STORE_BACKEND"))),
		MongoURI:      env("MONGODB_URI"),
		MongoDatabase: env("MONGODB_DATABASE"),
		DatabaseURL:   env("DATABASE_URL"),
		JWTSecret:     env("JWT_SECRET"),
		JWTIssuer:     env("JWT_ISSUER"),
		NATSURL:       env("NATS_URL"),
		GRPCAddr:      env("GRPC_ADDR"),
		HealthEvery:   10 * time.Second,
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = "forum"
	}
	if v := env("HEALTH_CHECK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return ForumConfig{}, fmt.Errorf("HEALTH_CHECK_INTERVAL: invalid duration %q", v)
		}
		cfg.HealthEvery = d
	}

	if cfg.Backend == "" {
		switch {
		case cfg.MongoURI != "":
			cfg.Backend = BackendMongo
		case cfg.DatabaseURL != "":
			cfg.Backend = BackendPostgres
		default:
			cfg.Backend = BackendMemory
		}
	}

	switch cfg.Backend {
	case BackendMemory:
		if cfg.IsProduction() {
			return ForumConfig{}, errors.New("in-memory store is not allowed in production")
		}
	case BackendMongo:
		if cfg.MongoURI == "" {
			return ForumConfig{}, errors.New("MONGODB_URI is required for the mongo backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return ForumConfig{}, errors.New("DATABASE_URL is required for the postgres backend")
		}
	default:
		return ForumConfig{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
	}

	if cfg.JWTSecret == "" && cfg.IsProduction() {
		return ForumConfig{}, errors.New("JWT_SECRET is required in production")
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
