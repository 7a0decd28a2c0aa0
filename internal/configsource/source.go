// Package configsource provides key/value configuration lookups backed by a
// deployment YAML file, the process environment, or a chain of both.
package configsource

import (
	"context"
	"errors"
)

var (
	ErrKeyNotFound       = errors.New("configsource: key not found")
	ErrSourceUnavailable = errors.New("configsource: source unavailable")
)

// Source looks up a single configuration value by key.
type Source interface {
	Value(ctx context.Context, key string) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, key string) (string, error)

func (f SourceFunc) Value(ctx context.Context, key string) (string, error) {
	return f(ctx, key)
}
