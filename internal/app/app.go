// Package app assembles the observability API from its parts. Both the
// observability binary and the integration tests build the server here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"observability/internal/api/adapter/jwks"
	"observability/internal/api/handlers"
	"observability/internal/api/middleware"
	"observability/internal/authconfig"
	"observability/internal/configsource"
	"observability/internal/platform/config"
	"observability/internal/platform/telemetry"
	"observability/internal/secret"
)

// JWKSPath is appended to the IdP URL to locate its signing keys.
const JWKSPath = "/oauth2/jwks"

// PublicPaths are served without a bearer token.
var PublicPaths = []string{"/healthz", "/readyz", "/metrics", "/api/auth/config", "/api/auth/tokens/"}

// Resolver builds the secret resolver with the env and file providers, plus
// AWS Secrets Manager when a region is configured.
// The metrics parameter is optional; pass nil to skip metric recording.
func Resolver(ctx context.Context, cfg config.SecretsConfig, m *telemetry.Metrics) (*secret.Resolver, error) {
	providers := []secret.Provider{
		secret.NewEnvProvider(),
		secret.NewFileProvider(cfg.Dir),
	}
	if cfg.AWSRegion != "" {
		sm, err := secret.NewAWSSecretsManager(ctx, secret.AWSSecretsManagerConfig{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.AWSEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("aws secrets manager: %w", err)
		}
		providers = append(providers, sm)
	}

	opts := []secret.ResolverOption{secret.WithStrict()}
	if m != nil {
		opts = append(opts, secret.WithRecorder(m))
	}
	return secret.NewResolver(providers, opts...), nil
}

// Source returns the auth configuration source: environment overrides first,
// then deployment.yaml, with secret references resolved.
func Source(cfg config.AuthSourceConfig, resolver configsource.ValueResolver) configsource.Source {
	return configsource.WithSecrets(
		configsource.Chain(
			configsource.Env{Prefix: cfg.EnvPrefix},
			configsource.YAMLFile{Path: cfg.File, Namespace: cfg.Namespace},
		),
		resolver,
	)
}

// Deps are the collaborators of the HTTP handler.
type Deps struct {
	Config  *authconfig.Holder
	IdP     handlers.TokenExchanger
	Logger  *slog.Logger
	Metrics *telemetry.Metrics // optional

	// JWKSMinRefresh bounds how often an unknown kid may trigger a refetch.
	JWKSMinRefresh time.Duration
}

// NewHandler wires routes and middleware. /metrics is served only when
// Metrics is set.
func NewHandler(d Deps) http.Handler {
	var jwksOpts []jwks.Option
	if d.Metrics != nil {
		jwksOpts = append(jwksOpts, jwks.WithMetrics(d.Metrics))
	}
	keys := jwks.NewClient(JWKSEndpoint(d.Config), d.JWKSMinRefresh, jwksOpts...)

	router := handlers.NewRouter(d.Config, d.IdP, d.Metrics)
	if d.Metrics != nil {
		router.Handle("GET /metrics", telemetry.MetricsHandler())
	}

	return middleware.Chain(
		router,
		middleware.Metrics(d.Metrics),
		middleware.RequestID,
		middleware.Logging(d.Logger),
		middleware.Recovery,
		middleware.Auth(d.Config, keys, PublicPaths, d.Metrics),
	)
}

// JWKSEndpoint resolves the key set URL from the auth configuration on each
// refresh.
func JWKSEndpoint(h *authconfig.Holder) jwks.EndpointFunc {
	return func(ctx context.Context) (string, error) {
		cfg, err := h.Get(ctx)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(cfg.IdpURL(), "/") + JWKSPath, nil
	}
}
