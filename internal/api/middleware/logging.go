package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordcraft/internal/middleware"
)

// Logging creates request logging middleware for the API. Health probes
// are logged at debug so they do not drown out game traffic.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, func(r *http.Request, status int) slog.Level {
		if r.URL.Path == "/api/v1/health" && status == http.StatusOK {
			return slog.LevelDebug
		}
		return middleware.StatusLevel(r, status)
	})
}
