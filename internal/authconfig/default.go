package authconfig

import (
	"context"
	"fmt"
	"sync/atomic"
)

var defaultHolder atomic.Pointer[Holder]

// SetSource installs the process-wide configuration source. Any previously
// published instance is discarded.
func SetSource(src Source, opts ...Option) {
	defaultHolder.Store(NewHolder(src, opts...))
}

// Default returns the process-wide holder, or nil before SetSource.
func Default() *Holder {
	return defaultHolder.Load()
}

// GetInstance returns the process-wide configuration.
func GetInstance(ctx context.Context) (*AuthConfig, error) {
	h := defaultHolder.Load()
	if h == nil {
		return nil, unavailable(fmt.Errorf("%w: no configuration source installed", ErrConfigurationUnavailable))
	}
	return h.Get(ctx)
}

func resetForTesting() {
	if h := defaultHolder.Load(); h != nil {
		h.reset()
	}
}
