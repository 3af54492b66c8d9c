package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordcraft/internal/api/handler"
	"github.com/mcoot/wordcraft/internal/api/middleware"
	"github.com/mcoot/wordcraft/internal/gateway"
	"github.com/mcoot/wordcraft/internal/services/auth"
	"github.com/mcoot/wordcraft/internal/services/players"
	"github.com/mcoot/wordcraft/internal/services/world"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	AuthService   *auth.Service
	PlayerService *players.Service
	WorldService  *world.Service
	Gateway       *gateway.Manager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.PlayerService)
	statusHandler := handler.NewStatusHandler(cfg.Gateway, cfg.PlayerService, cfg.WorldService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService, cfg.PlayerService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Game connections
	r.Handle("/ws", recoveryMiddleware(loggingMiddleware(http.HandlerFunc(cfg.Gateway.ServeWS)))).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", statusHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/status", statusHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/who", statusHandler.Who).Methods(http.MethodGet)

	api.HandleFunc("/tokens", playerHandler.CreateToken).Methods(http.MethodPost)

	// Registered before the username route so "me" is never a lookup
	api.Handle("/players/me", authMiddleware(http.HandlerFunc(playerHandler.GetMe))).Methods(http.MethodGet)
	api.HandleFunc("/players/{username}", playerHandler.Get).Methods(http.MethodGet)

	return r
}
