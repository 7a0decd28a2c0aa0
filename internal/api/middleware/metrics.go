package middleware

import (
	"net/http"
	"strings"
	"time"

	"observability/internal/api"
	"observability/internal/platform/telemetry"
)

// Metrics returns middleware that records HTTP request metrics.
// Place as the outermost middleware to capture the full request lifecycle.
func Metrics(m *telemetry.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := api.NewResponseRecorder(w)

			next.ServeHTTP(rr, r)

			if m != nil {
				duration := time.Since(start).Seconds()
				m.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), rr.Status(), duration)
			}
		})
	}
}

// knownRoutes are recorded under their own path; everything else shares one
// label so arbitrary request paths cannot grow the series count.
var knownRoutes = map[string]bool{
	"/healthz":          true,
	"/readyz":           true,
	"/metrics":          true,
	"/api/auth/config":  true,
	"/api/auth/session": true,
}

// otherRoute is the label for paths no route serves.
const otherRoute = "other"

func routeLabel(path string) string {
	if strings.HasPrefix(path, "/api/auth/tokens/") {
		return "/api/auth/tokens/{code}"
	}
	if knownRoutes[path] {
		return path
	}
	return otherRoute
}
