package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/cadastro/internal/dependencies/clock"
	"github.com/mcoot/cadastro/internal/dependencies/random"
	"github.com/mcoot/cadastro/internal/identity"
	"github.com/mcoot/cadastro/internal/identity/local"
	"github.com/mcoot/cadastro/internal/identity/toolkit"
	"github.com/mcoot/cadastro/internal/services/auth"
	"github.com/mcoot/cadastro/internal/services/registration"
	"github.com/mcoot/cadastro/internal/storage"
	"github.com/mcoot/cadastro/internal/storage/memory"
	"github.com/mcoot/cadastro/internal/storage/postgres"
	redisstorage "github.com/mcoot/cadastro/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// Identity provider constants
const (
	IdentityProviderLocal   = "local"
	IdentityProviderToolkit = "toolkit"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	Random   random.Random
	Identity identity.Provider

	// Services
	RegistrationService *registration.Service
	AuthService         *auth.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config
	// IdentityProvider selects the identity backend ("local" or "toolkit")
	// If empty, defaults to "local"
	IdentityProvider string
	// LocalIdentityConfig configures the local identity backend
	LocalIdentityConfig local.Config
	// ToolkitConfig holds the identity service settings (required if IdentityProvider is "toolkit")
	ToolkitConfig *toolkit.Config
	// RegistrationConfig holds configuration for the registration service (optional)
	// If nil, defaults to registration.DefaultConfig()
	RegistrationConfig *registration.Config
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	var provider identity.Provider
	switch cfg.IdentityProvider {
	case "", IdentityProviderLocal:
		provider = local.New(store, clk, rnd, cfg.LocalIdentityConfig, logger)
	case IdentityProviderToolkit:
		if cfg.ToolkitConfig == nil {
			closeStorage(store)
			return nil, errors.New("ToolkitConfig required when IdentityProvider is toolkit")
		}
		provider = toolkit.New(*cfg.ToolkitConfig, clk, logger)
	default:
		closeStorage(store)
		return nil, errors.New("invalid IdentityProvider: must be 'local' or 'toolkit'")
	}

	// Use default service configs if not provided
	regCfg := registration.DefaultConfig()
	if cfg.RegistrationConfig != nil {
		regCfg = *cfg.RegistrationConfig
	}
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	return newWithDependencies(store, provider, clk, rnd, regCfg, authCfg, logger), nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := postgres.New(context.Background(), *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		return pgStore, nil
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, provider identity.Provider, clk clock.Clock, rnd random.Random, regCfg registration.Config, authCfg auth.Config, logger *slog.Logger) *App {
	// Create services
	registrationService := registration.New(provider, store, clk, regCfg, logger)
	authService := auth.New(provider, store, clk, authCfg, logger)

	return &App{
		Storage:             store,
		Clock:               clk,
		Random:              rnd,
		Identity:            provider,
		RegistrationService: registrationService,
		AuthService:         authService,
	}
}

// Close releases the storage backend's connections, if it holds any
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func closeStorage(store storage.Storage) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}
