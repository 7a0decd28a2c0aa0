package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownFunc releases telemetry resources.
type ShutdownFunc func(ctx context.Context) error

// Setup initializes OpenTelemetry with a Prometheus exporter.
// Returns a shutdown function that must be called on exit.
func Setup(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Metrics holds all OTel instruments for the observability API.
type Metrics struct {
	httpRequestsTotal      otelmetric.Int64Counter
	httpRequestDuration    otelmetric.Float64Histogram
	errorResponsesTotal    otelmetric.Int64Counter
	authValidationsTotal   otelmetric.Int64Counter
	authConfigLoadsTotal   otelmetric.Int64Counter
	authConfigLoadDuration otelmetric.Float64Histogram
	secretResolutionsTotal otelmetric.Int64Counter
	jwksRefreshesTotal     otelmetric.Int64Counter
	tokenExchangesTotal    otelmetric.Int64Counter
}

// NewMetrics creates and registers all instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("observability")
	m := &Metrics{}
	var err error

	latencyBuckets := otelmetric.WithExplicitBucketBoundaries(
		0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
	)

	if m.httpRequestsTotal, err = meter.Int64Counter("observability_http_requests_total",
		otelmetric.WithDescription("Total HTTP requests")); err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("observability_http_request_duration_seconds",
		otelmetric.WithDescription("HTTP request duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}
	if m.errorResponsesTotal, err = meter.Int64Counter("observability_error_responses_total",
		otelmetric.WithDescription("Error envelopes written, by kind and status")); err != nil {
		return nil, fmt.Errorf("creating error_responses_total: %w", err)
	}
	if m.authValidationsTotal, err = meter.Int64Counter("observability_auth_validations_total",
		otelmetric.WithDescription("Total bearer token validations")); err != nil {
		return nil, fmt.Errorf("creating auth_validations_total: %w", err)
	}
	if m.authConfigLoadsTotal, err = meter.Int64Counter("observability_auth_config_loads_total",
		otelmetric.WithDescription("Auth configuration construction attempts")); err != nil {
		return nil, fmt.Errorf("creating auth_config_loads_total: %w", err)
	}
	if m.authConfigLoadDuration, err = meter.Float64Histogram("observability_auth_config_load_duration_seconds",
		otelmetric.WithDescription("Auth configuration construction duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating auth_config_load_duration: %w", err)
	}
	if m.secretResolutionsTotal, err = meter.Int64Counter("observability_secret_resolutions_total",
		otelmetric.WithDescription("Secret reference resolutions")); err != nil {
		return nil, fmt.Errorf("creating secret_resolutions_total: %w", err)
	}
	if m.jwksRefreshesTotal, err = meter.Int64Counter("observability_jwks_refreshes_total",
		otelmetric.WithDescription("Total JWKS refreshes")); err != nil {
		return nil, fmt.Errorf("creating jwks_refreshes_total: %w", err)
	}
	if m.tokenExchangesTotal, err = meter.Int64Counter("observability_token_exchanges_total",
		otelmetric.WithDescription("Authorization code exchanges with the identity provider")); err != nil {
		return nil, fmt.Errorf("creating token_exchanges_total: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, durationSec float64) {
	attrs := otelmetric.WithAttributes(
		methodKey.String(method),
		routeKey.String(route),
		statusAttr(status),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, durationSec, attrs)
}

// RecordErrorResponse records an error envelope written to a client.
func (m *Metrics) RecordErrorResponse(ctx context.Context, kind string, status int) {
	m.errorResponsesTotal.Add(ctx, 1, otelmetric.WithAttributes(kindKey.String(kind), statusAttr(status)))
}

// RecordAuthValidation records an auth validation result.
func (m *Metrics) RecordAuthValidation(ctx context.Context, result string) {
	m.authValidationsTotal.Add(ctx, 1, otelmetric.WithAttributes(resultKey.String(result)))
}

// RecordAuthConfigLoad records one attempt to construct the auth configuration.
func (m *Metrics) RecordAuthConfigLoad(ctx context.Context, result string, d time.Duration) {
	attrs := otelmetric.WithAttributes(resultKey.String(result))
	m.authConfigLoadsTotal.Add(ctx, 1, attrs)
	m.authConfigLoadDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordSecretResolution records a secret reference resolution.
func (m *Metrics) RecordSecretResolution(ctx context.Context, provider, result string) {
	m.secretResolutionsTotal.Add(ctx, 1, otelmetric.WithAttributes(providerKey.String(provider), resultKey.String(result)))
}

// RecordJWKSRefresh records a JWKS refresh attempt.
func (m *Metrics) RecordJWKSRefresh(ctx context.Context, result string) {
	m.jwksRefreshesTotal.Add(ctx, 1, otelmetric.WithAttributes(resultKey.String(result)))
}

// RecordTokenExchange records an authorization code exchange.
func (m *Metrics) RecordTokenExchange(ctx context.Context, result string) {
	m.tokenExchangesTotal.Add(ctx, 1, otelmetric.WithAttributes(resultKey.String(result)))
}
