package configsource

import (
	"context"
	"fmt"
)

// ValueResolver turns a secret reference into plaintext.
type ValueResolver interface {
	ResolveValue(ctx context.Context, value string) (string, error)
}

type secretSource struct {
	src      Source
	resolver ValueResolver
}

// WithSecrets wraps src so that secretref: values are resolved before they
// are returned.
func WithSecrets(src Source, resolver ValueResolver) Source {
	return secretSource{src: src, resolver: resolver}
}

func (s secretSource) Value(ctx context.Context, key string) (string, error) {
	v, err := s.src.Value(ctx, key)
	if err != nil {
		return "", err
	}
	resolved, err := s.resolver.ResolveValue(ctx, v)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", key, err)
	}
	return resolved, nil
}
