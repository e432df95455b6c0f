package service

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// AccessLog attaches l to every request, tags it with a request id and
// logs one line per completed request.
func AccessLog(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		access := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("url", r.URL.RequestURI()).
				Int("status", status).
				Int("size", size).
				Dur("duration", d).
				Msg("request")
		})

		return hlog.NewHandler(l)(
			hlog.RequestIDHandler("req_id", "X-Request-Id")(
				access(
					middleware.Recoverer(next),
				),
			),
		)
	}
}
