// Package handlers serves the observability auth API: the public auth
// configuration, authorization code exchange, and the caller's session.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"observability/internal/api"
	"observability/internal/api/adapter/idp"
	"observability/internal/apierror"
	"observability/internal/authconfig"
	"observability/internal/domain"
	"observability/internal/platform/telemetry"
)

// ConfigProvider returns the loaded auth configuration.
type ConfigProvider interface {
	Get(ctx context.Context) (*authconfig.AuthConfig, error)
}

// TokenExchanger redeems authorization codes at the identity provider.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, creds idp.Credentials, code string) (domain.TokenPair, error)
}

// Router routes the auth API.
type Router struct {
	mux      *http.ServeMux
	cfg      ConfigProvider
	exchange TokenExchanger
	metrics  *telemetry.Metrics
}

// NewRouter creates the API router.
// The metrics parameter is optional; pass nil to skip metric recording.
func NewRouter(cfg ConfigProvider, exchange TokenExchanger, m *telemetry.Metrics) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		cfg:      cfg,
		exchange: exchange,
		metrics:  m,
	}

	r.mux.HandleFunc("GET /healthz", r.healthz)
	r.mux.Handle("GET /readyz", apierror.HandlerFunc(r.readyz))

	r.mux.Handle("GET /api/auth/config", apierror.HandlerFunc(r.authConfig))
	r.mux.Handle("POST /api/auth/tokens/{code}", apierror.HandlerFunc(r.exchangeToken))
	r.mux.Handle("GET /api/auth/session", apierror.HandlerFunc(r.session))
	r.mux.Handle("/api/", apierror.HandlerFunc(notFound))

	// Without these the mux answers misses itself in plain text.
	r.mux.Handle("/healthz", allowOnly(http.MethodGet, http.MethodHead))
	r.mux.Handle("/readyz", allowOnly(http.MethodGet, http.MethodHead))
	r.mux.Handle("/", apierror.HandlerFunc(notFound))

	return r
}

// Handle registers an extra route, such as /metrics.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz attempts the lazy load, so a cold instance becomes ready on its
// first probe once the configuration is available.
func (r *Router) readyz(w http.ResponseWriter, req *http.Request) error {
	if _, err := r.cfg.Get(req.Context()); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	return nil
}

func (r *Router) authConfig(w http.ResponseWriter, req *http.Request) error {
	cfg, err := r.cfg.Get(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, domain.PublicAuthConfig{
		IdpURL:      cfg.IdpURL(),
		CallbackURL: cfg.CallbackURL(),
	})
	return nil
}

func (r *Router) exchangeToken(w http.ResponseWriter, req *http.Request) error {
	code := req.PathValue("code")

	cfg, err := r.cfg.Get(req.Context())
	if err != nil {
		return err
	}

	pair, err := r.exchange.ExchangeCode(req.Context(), idp.Credentials{
		BaseURL:      cfg.IdpURL(),
		ClientID:     cfg.IdpUsername(),
		ClientSecret: cfg.IdpPassword(),
		RedirectURI:  cfg.CallbackURL(),
	}, code)
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		r.recordExchange(req.Context(), "rejected")
		return apierror.Unauthorized("invalid authorization code", err)
	case err != nil:
		r.recordExchange(req.Context(), "failure")
		return apierror.InvocationFailure("failed to exchange authorization code", err)
	}

	r.recordExchange(req.Context(), "success")
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, pair)
	return nil
}

func (r *Router) session(w http.ResponseWriter, req *http.Request) error {
	principal, ok := api.PrincipalFromContext(req.Context())
	if !ok {
		return apierror.Unauthorized("", domain.ErrUnauthorized)
	}
	writeJSON(w, http.StatusOK, principal.Session())
	return nil
}

func notFound(http.ResponseWriter, *http.Request) error {
	return apierror.NotFound("")
}

func allowOnly(methods ...string) http.Handler {
	allow := strings.Join(methods, ", ")
	return apierror.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
		w.Header().Set("Allow", allow)
		return apierror.MethodNotAllowed("")
	})
}

func (r *Router) recordExchange(ctx context.Context, result string) {
	if r.metrics != nil {
		r.metrics.RecordTokenExchange(ctx, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
