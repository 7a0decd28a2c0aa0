package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"observability/internal/api/middleware"
	"observability/internal/apierror"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := middleware.Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	// Parse the log output
	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("parsing log output: %v\nraw: %s", err, buf.String())
	}

	if logEntry["method"] != "GET" {
		t.Errorf("expected method GET, got %v", logEntry["method"])
	}
	if logEntry["path"] != "/test" {
		t.Errorf("expected path /test, got %v", logEntry["path"])
	}
	// status should be logged as a number
	status, ok := logEntry["status"].(float64)
	if !ok || int(status) != 200 {
		t.Errorf("expected status 200, got %v", logEntry["status"])
	}
	// duration should be present
	if _, ok := logEntry["duration_ms"]; !ok {
		t.Error("expected duration_ms in log output")
	}
}

func TestLoggingIncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := middleware.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}),
		middleware.RequestID,
		middleware.Logging(logger),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/config", nil)
	req.Header.Set("X-Request-ID", "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("parsing log output: %v\nraw: %s", err, buf.String())
	}
	if logEntry["request_id"] != "req-42" {
		t.Errorf("expected request_id req-42, got %v", logEntry["request_id"])
	}
	if logEntry["level"] != "WARN" {
		t.Errorf("expected WARN for a 5xx response, got %v", logEntry["level"])
	}
}

func TestLoggingIncludesErrorKind(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := middleware.Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierror.WriteError(w, r, apierror.ConfigurationUnavailable("", nil))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("parsing log output: %v\nraw: %s", err, buf.String())
	}
	if logEntry["error_kind"] != string(apierror.KindConfigurationUnavailable) {
		t.Errorf("expected error_kind %q, got %v", apierror.KindConfigurationUnavailable, logEntry["error_kind"])
	}
	if status, _ := logEntry["status"].(float64); int(status) != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %v", logEntry["status"])
	}
}

func TestLoggingOmitsErrorKindOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := middleware.Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("parsing log output: %v", err)
	}
	if _, ok := logEntry["error_kind"]; ok {
		t.Errorf("unexpected error_kind on a 200: %v", logEntry["error_kind"])
	}
}
