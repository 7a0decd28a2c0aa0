package authconfig

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Recorder receives one observation per construction attempt.
type Recorder interface {
	RecordAuthConfigLoad(ctx context.Context, result string, d time.Duration)
}

// Holder lazily constructs an AuthConfig and publishes it for the lifetime of
// the process. Failed constructions are not cached.
type Holder struct {
	mu  sync.Mutex // construction gate
	cur atomic.Pointer[AuthConfig]

	src     Source
	logger  *slog.Logger
	metrics Recorder
	now     func() time.Time
}

// Option configures a Holder.
type Option func(*Holder)

func WithLogger(l *slog.Logger) Option {
	return func(h *Holder) { h.logger = l }
}

func WithMetrics(r Recorder) Option {
	return func(h *Holder) { h.metrics = r }
}

// WithClock overrides the clock used to time loads.
func WithClock(now func() time.Time) Option {
	return func(h *Holder) { h.now = now }
}

func NewHolder(src Source, opts ...Option) *Holder {
	h := &Holder{
		src:    src,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Get returns the published configuration, constructing it on first use.
// Concurrent first callers wait for a single construction and all receive the
// same instance.
func (h *Holder) Get(ctx context.Context) (*AuthConfig, error) {
	if cfg := h.cur.Load(); cfg != nil {
		return cfg, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if cfg := h.cur.Load(); cfg != nil {
		return cfg, nil
	}

	start := h.now()
	cfg, err := Load(ctx, h.src)
	elapsed := h.now().Sub(start)
	if err != nil {
		h.logger.Error("auth configuration load failed", "error", err)
		h.record(ctx, "failure", elapsed)
		return nil, err
	}

	h.cur.Store(cfg)
	h.logger.Info("auth configuration loaded", "config", cfg, "duration", elapsed)
	h.record(ctx, "success", elapsed)
	return cfg, nil
}

// Loaded reports whether an instance has been published.
func (h *Holder) Loaded() bool {
	return h.cur.Load() != nil
}

// reset discards the published instance. Only tests call it.
func (h *Holder) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cur.Store(nil)
}

func (h *Holder) record(ctx context.Context, result string, d time.Duration) {
	if h.metrics != nil {
		h.metrics.RecordAuthConfigLoad(ctx, result, d)
	}
}
