package config

import (
	"log/slog"
	"os"
	"time"
)

// Config holds process configuration for the observability API.
// The identity provider settings are not here; they are read lazily through
// the auth configuration holder.
type Config struct {
	Addr            string
	LogLevel        string
	ShutdownTimeout time.Duration
	Auth            AuthSourceConfig
	Secrets         SecretsConfig
	JWKSMinRefresh  time.Duration
	IdPTimeout      time.Duration
}

// AuthSourceConfig locates the auth configuration values.
type AuthSourceConfig struct {
	File      string // deployment.yaml path
	Namespace string // dotted path to the auth mapping
	EnvPrefix string
}

// SecretsConfig configures the secret providers.
type SecretsConfig struct {
	Dir         string // base directory for the file provider
	AWSRegion   string // empty disables the aws-sm provider
	AWSEndpoint string

	// Static credentials for aws-sm, e.g. against LocalStack. When either is
	// empty the default AWS credential chain is used.
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() Config {
	return Config{
		Addr:            envOr("OBSERVABILITY_ADDR", ":9123"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Auth: AuthSourceConfig{
			File:      envOr("AUTH_CONFIG_FILE", "conf/deployment.yaml"),
			Namespace: envOr("AUTH_CONFIG_NAMESPACE", "observability.auth"),
			EnvPrefix: envOr("AUTH_ENV_PREFIX", "OBSERVABILITY_AUTH_"),
		},
		Secrets: SecretsConfig{
			Dir:         envOr("SECRETS_DIR", "/var/run/secrets/observability"),
			AWSRegion:   os.Getenv("AWS_SECRETS_REGION"),
			AWSEndpoint: os.Getenv("AWS_SECRETS_ENDPOINT"),

			AWSAccessKeyID:     os.Getenv("AWS_SECRETS_ACCESS_KEY_ID"),
			AWSSecretAccessKey: os.Getenv("AWS_SECRETS_SECRET_ACCESS_KEY"),
		},
		JWKSMinRefresh: envDuration("JWKS_MIN_REFRESH", 5*time.Minute),
		IdPTimeout:     envDuration("IDP_TIMEOUT", 10*time.Second),
	}
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return d
	}
	return fallback
}
