package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"observability/internal/api"
)

// Recorder receives one observation per error response written.
type Recorder interface {
	RecordErrorResponse(ctx context.Context, kind string, status int)
}

var recorder atomic.Pointer[Recorder]

// SetMetrics installs the recorder used by WriteError. Pass nil to disable.
func SetMetrics(r Recorder) {
	if r == nil {
		recorder.Store(nil)
		return
	}
	recorder.Store(&r)
}

// WriteError maps err through DefaultMapper and writes the JSON envelope.
// The cause is logged locally and never written to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := DefaultMapper.MapToResponse(err)

	kind := KindInvocationFailure
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		if _, ok := DefaultMapper.Status(apiErr.kind); ok {
			kind = apiErr.kind
		}
	}

	ctx := r.Context()
	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "request failed",
		"kind", string(kind),
		"status", status,
		"error", err,
		"request_id", api.RequestIDFromContext(ctx),
		"path", r.URL.Path,
	)

	if rec := recorder.Load(); rec != nil {
		(*rec).RecordErrorResponse(ctx, string(kind), status)
	}

	api.MarkErrorKind(w, string(kind))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		slog.Error("encoding error response", "error", encErr)
	}
}

// HandlerFunc is a request handler that reports failure by returning an
// error. A non-nil error is written with WriteError.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := f(w, r); err != nil {
		WriteError(w, r, err)
	}
}
