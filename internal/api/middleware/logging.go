package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"observability/internal/api"
)

// Logging writes one "request" line per request. Error envelopes add the
// error kind; 5xx responses log at warn. It must sit inside RequestID.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := api.NewResponseRecorder(w)

			next.ServeHTTP(rr, r)

			level := slog.LevelInfo
			if rr.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rr.Status()),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
				slog.String("request_id", api.RequestIDFromContext(r.Context())),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if kind := rr.ErrorKind(); kind != "" {
				attrs = append(attrs, slog.String("error_kind", kind))
			}
			logger.LogAttrs(r.Context(), level, "request", attrs...)
		})
	}
}
