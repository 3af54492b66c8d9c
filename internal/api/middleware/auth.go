package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/wordcraft/internal/api/apierr"
	"github.com/mcoot/wordcraft/internal/model"
	"github.com/mcoot/wordcraft/internal/services/auth"
	"github.com/mcoot/wordcraft/internal/services/players"
)

type contextKey string

const playerContextKey contextKey = "player"

// Auth creates authentication middleware. Requests carry the same signed
// token the game issues at login.
func Auth(authService *auth.Service, playerService *players.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			playerID, err := authService.ValidateToken(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			player, err := playerService.Get(r.Context(), playerID)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}
			if player.Banned {
				apierr.WriteError(w, model.ErrBanned)
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, player)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetPlayer returns the authenticated player from the request context
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// MustGetPlayer returns the authenticated player or panics
func MustGetPlayer(ctx context.Context) *model.Player {
	player := GetPlayer(ctx)
	if player == nil {
		panic("no player in context - auth middleware not applied?")
	}
	return player
}
