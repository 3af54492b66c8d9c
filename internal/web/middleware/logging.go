package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/wordcraft/internal/middleware"
)

// Logging creates logging middleware for the browser client. Asset fetches
// are logged at debug.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, func(r *http.Request, status int) slog.Level {
		if strings.HasPrefix(r.URL.Path, "/static/") && status < http.StatusBadRequest {
			return slog.LevelDebug
		}
		return middleware.StatusLevel(r, status)
	})
}
