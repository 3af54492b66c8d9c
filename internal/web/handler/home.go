package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordcraft/internal/services/players"
	"github.com/mcoot/wordcraft/internal/web/templates/layout"
	"github.com/mcoot/wordcraft/internal/web/templates/pages"
)

// HomeHandler serves the browser game client
type HomeHandler struct {
	playerService *players.Service
	socketPath    string
	logger        *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(playerService *players.Service, socketPath string, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		playerService: playerService,
		socketPath:    socketPath,
		logger:        logger,
	}
}

// Home renders the game client page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pages.PlayData{
		PageData: layout.PageData{
			Title: "Play",
		},
		SocketPath:    h.socketPath,
		PlayersOnline: len(h.playerService.Online()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Play(data).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
