package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordcraft/internal/api/middleware"
	"github.com/mcoot/wordcraft/internal/api/request"
	"github.com/mcoot/wordcraft/internal/api/response"
	"github.com/mcoot/wordcraft/internal/services/auth"
	"github.com/mcoot/wordcraft/internal/services/players"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService   *auth.Service
	playerService *players.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, playerService *players.Service) *PlayerHandler {
	return &PlayerHandler{
		authService:   authService,
		playerService: playerService,
	}
}

// CreateToken handles POST /api/v1/tokens. The token is the one token_auth
// accepts on the websocket.
func (h *PlayerHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	player, err := h.authService.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	token, err := h.authService.IssueToken(player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.TokenResponse{
		Token:  token,
		Player: response.PlayerFromModel(player, h.playerService.IsOnline(player.ID)),
	})
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player, h.playerService.IsOnline(player.ID)))
}

// Get handles GET /api/v1/players/{username}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := auth.ValidateUsername(username); err != nil {
		WriteError(w, NewInvalidRequestError("invalid username"))
		return
	}

	player, err := h.playerService.GetByUsername(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player, h.playerService.IsOnline(player.ID)))
}
