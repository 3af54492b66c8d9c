package handler

import (
	"net/http"

	"github.com/mcoot/wordcraft/internal/api/response"
	"github.com/mcoot/wordcraft/internal/services/players"
	"github.com/mcoot/wordcraft/internal/services/world"
)

// ConnectionCounter reports live connections
type ConnectionCounter interface {
	Count() int
}

// StatusHandler serves health and load endpoints
type StatusHandler struct {
	connections   ConnectionCounter
	playerService *players.Service
	worldService  *world.Service
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(connections ConnectionCounter, playerService *players.Service, worldService *world.Service) *StatusHandler {
	return &StatusHandler{
		connections:   connections,
		playerService: playerService,
		worldService:  worldService,
	}
}

// Health handles GET /api/v1/health
func (h *StatusHandler) Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status handles GET /api/v1/status
func (h *StatusHandler) Status(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Status{
		Connections:   h.connections.Count(),
		PlayersOnline: len(h.playerService.Online()),
		RoomsCached:   h.worldService.CachedRooms(),
	})
}

// Who handles GET /api/v1/who
func (h *StatusHandler) Who(w http.ResponseWriter, _ *http.Request) {
	online := h.playerService.Online()
	entries := make([]response.WhoEntry, 0, len(online))
	for _, p := range online {
		entries = append(entries, response.WhoEntry{
			DisplayName: p.DisplayName,
			Role:        p.Role,
			Location:    p.Location,
		})
	}
	response.JSON(w, http.StatusOK, response.WhoResponse{Count: len(entries), Players: entries})
}
