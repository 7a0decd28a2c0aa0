package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"observability/internal/api"
	"observability/internal/apierror"
)

// Recovery catches panics from downstream handlers and writes an
// invocation_failure envelope. The panic value is never sent to the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("panic recovered",
				"panic", rec,
				"request_id", api.RequestIDFromContext(r.Context()),
				"stack", string(debug.Stack()),
			)
			apierror.WriteError(w, r, apierror.InvocationFailure("", fmt.Errorf("panic: %v", rec)))
		}()
		next.ServeHTTP(w, r)
	})
}
