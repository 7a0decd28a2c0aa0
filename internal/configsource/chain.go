package configsource

import (
	"context"
	"errors"
	"fmt"
)

type chain []Source

// Chain returns a Source that asks each source in order and returns the first
// value found. Missing keys and unavailable sources fall through.
func Chain(sources ...Source) Source {
	return chain(sources)
}

func (c chain) Value(ctx context.Context, key string) (string, error) {
	unavailable := false
	for _, src := range c {
		v, err := src.Value(ctx, key)
		switch {
		case err == nil:
			return v, nil
		case errors.Is(err, ErrKeyNotFound):
			continue
		case errors.Is(err, ErrSourceUnavailable):
			unavailable = true
			continue
		default:
			return "", err
		}
	}
	if unavailable {
		return "", fmt.Errorf("%w: no available source has %q", ErrSourceUnavailable, key)
	}
	return "", fmt.Errorf("%w: %q", ErrKeyNotFound, key)
}
