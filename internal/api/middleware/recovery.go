package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordcraft/internal/api/apierr"
	"github.com/mcoot/wordcraft/internal/middleware"
)

// Recovery creates panic recovery middleware for the API and the game
// socket. JSON routes get an INTERNAL_ERROR body; an upgraded socket is
// simply dropped.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
