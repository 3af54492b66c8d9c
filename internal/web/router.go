package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordcraft/internal/services/players"
	"github.com/mcoot/wordcraft/internal/web/handler"
	"github.com/mcoot/wordcraft/internal/web/middleware"
)

// DefaultSocketPath is where the client connects unless configured otherwise
const DefaultSocketPath = "/ws"

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger        *slog.Logger
	PlayerService *players.Service
	SocketPath    string
	StaticDir     string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	if cfg.SocketPath == "" {
		cfg.SocketPath = DefaultSocketPath
	}

	// Apply global middleware to all routes
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	homeHandler := handler.NewHomeHandler(cfg.PlayerService, cfg.SocketPath, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	r.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)

	return r
}
