package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordcraft/internal/middleware"
)

// Recovery creates panic recovery middleware for the browser client
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html lang="en">
<head><title>World of Wordcraft</title></head>
<body>
<main>
<h1>The world flickered</h1>
<p>The client page could not be built. Your character is safe; reload to reconnect.</p>
<p><a href="/">Reload</a></p>
</main>
</body>
</html>`))
}
