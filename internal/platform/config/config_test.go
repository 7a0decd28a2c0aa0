package config_test

import (
	"log/slog"
	"testing"
	"time"

	"observability/internal/platform/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	if cfg.Addr != ":9123" {
		t.Errorf("expected default addr :9123, got %q", cfg.Addr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected shutdown timeout 10s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Auth.File != "conf/deployment.yaml" {
		t.Errorf("expected default auth config file, got %q", cfg.Auth.File)
	}
	if cfg.Auth.Namespace != "observability.auth" {
		t.Errorf("expected default namespace, got %q", cfg.Auth.Namespace)
	}
	if cfg.Auth.EnvPrefix != "OBSERVABILITY_AUTH_" {
		t.Errorf("expected default env prefix, got %q", cfg.Auth.EnvPrefix)
	}
	if cfg.Secrets.Dir != "/var/run/secrets/observability" {
		t.Errorf("expected default secrets dir, got %q", cfg.Secrets.Dir)
	}
	if cfg.Secrets.AWSRegion != "" {
		t.Errorf("expected aws-sm disabled by default, got region %q", cfg.Secrets.AWSRegion)
	}
	if cfg.JWKSMinRefresh != 5*time.Minute {
		t.Errorf("expected JWKS min refresh 5m, got %v", cfg.JWKSMinRefresh)
	}
	if cfg.IdPTimeout != 10*time.Second {
		t.Errorf("expected IdP timeout 10s, got %v", cfg.IdPTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OBSERVABILITY_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AUTH_CONFIG_FILE", "/etc/observability/deployment.yaml")
	t.Setenv("AUTH_CONFIG_NAMESPACE", "cellery.observability")
	t.Setenv("AWS_SECRETS_REGION", "eu-west-1")
	t.Setenv("AWS_SECRETS_ENDPOINT", "http://localstack:4566")
	t.Setenv("AWS_SECRETS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRETS_SECRET_ACCESS_KEY", "test-secret")
	t.Setenv("IDP_TIMEOUT", "3s")

	cfg := config.Load()

	if cfg.Addr != ":9090" {
		t.Errorf("expected :9090, got %q", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected 'debug', got %q", cfg.LogLevel)
	}
	if cfg.Auth.File != "/etc/observability/deployment.yaml" {
		t.Errorf("unexpected auth config file %q", cfg.Auth.File)
	}
	if cfg.Auth.Namespace != "cellery.observability" {
		t.Errorf("unexpected namespace %q", cfg.Auth.Namespace)
	}
	if cfg.Secrets.AWSRegion != "eu-west-1" || cfg.Secrets.AWSEndpoint != "http://localstack:4566" {
		t.Errorf("unexpected aws settings %+v", cfg.Secrets)
	}
	if cfg.Secrets.AWSAccessKeyID != "test" || cfg.Secrets.AWSSecretAccessKey != "test-secret" {
		t.Errorf("unexpected aws credentials %q / %q", cfg.Secrets.AWSAccessKeyID, cfg.Secrets.AWSSecretAccessKey)
	}
	if cfg.IdPTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.IdPTimeout)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("JWKS_MIN_REFRESH", "-1m")

	cfg := config.Load()

	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected fallback 10s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.JWKSMinRefresh != 5*time.Minute {
		t.Errorf("expected fallback 5m, got %v", cfg.JWKSMinRefresh)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := config.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
