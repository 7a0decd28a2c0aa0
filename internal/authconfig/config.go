// Package authconfig holds the identity-provider settings the API needs to
// run the OAuth authorization code flow. The configuration is loaded lazily,
// once per process, from a Source.
package authconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"observability/internal/apierror"
)

// Configuration keys, read in this order.
const (
	KeyIdpURL      = "idpUrl"
	KeyCallbackURL = "callbackUrl"
	KeyIdpUsername = "idpUsername"
	KeyIdpPassword = "idpPassword"
)

var keys = [...]string{KeyIdpURL, KeyCallbackURL, KeyIdpUsername, KeyIdpPassword}

const unavailableMessage = "authentication configuration unavailable"

// ErrConfigurationUnavailable is matched by every construction failure.
var ErrConfigurationUnavailable = errors.New("auth configuration unavailable")

// Source supplies raw configuration values by key.
type Source interface {
	Value(ctx context.Context, key string) (string, error)
}

// AuthConfig is immutable once loaded.
type AuthConfig struct {
	idpURL      string
	callbackURL string
	idpUsername string
	idpPassword string
}

func (c *AuthConfig) IdpURL() string      { return c.idpURL }
func (c *AuthConfig) CallbackURL() string { return c.callbackURL }
func (c *AuthConfig) IdpUsername() string { return c.idpUsername }
func (c *AuthConfig) IdpPassword() string { return c.idpPassword }

// LogValue implements slog.LogValuer. The password is never included.
func (c *AuthConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String(KeyIdpURL, c.idpURL),
		slog.String(KeyCallbackURL, c.callbackURL),
		slog.String(KeyIdpUsername, c.idpUsername),
		slog.String(KeyIdpPassword, "[REDACTED]"),
	)
}

func (c *AuthConfig) String() string {
	return fmt.Sprintf("AuthConfig{idpUrl=%s callbackUrl=%s idpUsername=%s idpPassword=[REDACTED]}",
		c.idpURL, c.callbackURL, c.idpUsername)
}

// Load reads every key from src exactly once. A read error or an empty value
// fails the whole load.
func Load(ctx context.Context, src Source) (*AuthConfig, error) {
	if src == nil {
		return nil, unavailable(fmt.Errorf("%w: no configuration source", ErrConfigurationUnavailable))
	}

	var values [len(keys)]string
	for i, key := range keys {
		v, err := src.Value(ctx, key)
		if err != nil {
			return nil, unavailable(fmt.Errorf("%w: read %q: %w", ErrConfigurationUnavailable, key, err))
		}
		if v == "" {
			return nil, unavailable(fmt.Errorf("%w: %q is empty", ErrConfigurationUnavailable, key))
		}
		values[i] = v
	}

	return &AuthConfig{
		idpURL:      values[0],
		callbackURL: values[1],
		idpUsername: values[2],
		idpPassword: values[3],
	}, nil
}

func unavailable(cause error) error {
	return apierror.ConfigurationUnavailable(unavailableMessage, cause)
}
