package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/mcoot/cadastro/internal/api"
	"github.com/mcoot/cadastro/internal/factory"
	"github.com/mcoot/cadastro/internal/identity/toolkit"
	"github.com/mcoot/cadastro/internal/services/registration"
	"github.com/mcoot/cadastro/internal/storage/postgres"
	redisstorage "github.com/mcoot/cadastro/internal/storage/redis"
	"github.com/mcoot/cadastro/internal/web"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := configFromEnv(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	// Find static files directory
	staticDir := findStaticDir()

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:              logger,
		RegistrationService: app.RegistrationService,
		AuthService:         app.AuthService,
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:              logger,
		RegistrationService: app.RegistrationService,
		AuthService:         app.AuthService,
		StaticDir:           staticDir,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(mux, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Drop expired sessions periodically
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.AuthService.CleanExpiredSessions()
			}
		}
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// configFromEnv builds the factory config from environment variables
func configFromEnv(logger *slog.Logger) (factory.Config, error) {
	cfg := factory.Config{
		Logger:           logger,
		StorageType:      os.Getenv("STORAGE_TYPE"),
		IdentityProvider: os.Getenv("IDENTITY_PROVIDER"),
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, errMissingEnv("REDIS_URL", "STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			return cfg, errMissingEnv("DATABASE_URL", "STORAGE_TYPE=postgres")
		}
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = databaseURL
		cfg.PostgresConfig = &pgCfg
	}

	if cfg.IdentityProvider == factory.IdentityProviderToolkit {
		apiKey := os.Getenv("IDENTITY_TOOLKIT_API_KEY")
		if apiKey == "" {
			return cfg, errMissingEnv("IDENTITY_TOOLKIT_API_KEY", "IDENTITY_PROVIDER=toolkit")
		}
		toolkitCfg := toolkit.DefaultConfig()
		toolkitCfg.APIKey = apiKey
		if baseURL := os.Getenv("IDENTITY_TOOLKIT_URL"); baseURL != "" {
			toolkitCfg.BaseURL = baseURL
		}
		cfg.ToolkitConfig = &toolkitCfg
	}

	if v := os.Getenv("ROLLBACK_ON_PROFILE_FAILURE"); v != "" {
		rollback, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, err
		}
		regCfg := registration.DefaultConfig()
		regCfg.RollbackOnFailure = rollback
		cfg.RegistrationConfig = &regCfg
	}

	return cfg, nil
}

func errMissingEnv(name, when string) error {
	return fmt.Errorf("%s required when %s", name, when)
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	// Try common locations
	candidates := []string{
		"internal/web/static",
		"./internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	// Default to relative path
	return "internal/web/static"
}
