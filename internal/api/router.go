package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/cadastro/internal/api/apierr"
	"github.com/mcoot/cadastro/internal/api/handler"
	"github.com/mcoot/cadastro/internal/api/middleware"
	"github.com/mcoot/cadastro/internal/api/response"
	sharedmw "github.com/mcoot/cadastro/internal/middleware"
	"github.com/mcoot/cadastro/internal/services/auth"
	"github.com/mcoot/cadastro/internal/services/registration"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger              *slog.Logger
	RegistrationService *registration.Service
	AuthService         *auth.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	registrationHandler := handler.NewRegistrationHandler(cfg.RegistrationService)
	sessionHandler := handler.NewSessionHandler(cfg.AuthService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	recoveryMiddleware := sharedmw.Recovery(cfg.Logger, apierr.PanicHandler)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(sharedmw.RequestID())
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Registration and login (no auth required)
	api.HandleFunc("/registrations", registrationHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions", sessionHandler.Login).Methods(http.MethodPost)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/sessions", sessionHandler.Logout).Methods(http.MethodDelete)
	protected.HandleFunc("/users/me", sessionHandler.GetMe).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.OK(w, response.Health{Status: "ok"})
}
