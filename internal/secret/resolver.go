package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

const refPrefix = "secretref:"

// Recorder receives one observation per resolution attempt.
type Recorder interface {
	RecordSecretResolution(ctx context.Context, provider, result string)
}

// Resolver resolves secret references using registered providers.
type Resolver struct {
	mu        sync.RWMutex
	providers map[string]Provider
	strict    bool
	metrics   Recorder
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStrict makes an empty resolved value an error.
func WithStrict() ResolverOption {
	return func(r *Resolver) { r.strict = true }
}

// WithRecorder records each resolution by provider and result.
func WithRecorder(rec Recorder) ResolverOption {
	return func(r *Resolver) { r.metrics = rec }
}

// NewResolver creates a resolver with the given providers registered.
func NewResolver(providers []Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{providers: make(map[string]Provider)}
	for _, opt := range opts {
		opt(r)
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.Name()] = p
	}
	return r
}

// Register adds a provider. A provider with the same name is replaced.
func (r *Resolver) Register(p Provider) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// IsRef reports whether value is a secret reference.
func IsRef(value string) bool {
	return strings.HasPrefix(value, refPrefix)
}

// ParseSecretRef parses a full secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	if !IsRef(value) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(value, refPrefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ResolveValue returns value unchanged unless it is a secret reference, in
// which case the named provider resolves it.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	if !IsRef(value) {
		return value, nil
	}
	providerName, ref, ok := ParseSecretRef(value)
	if !ok {
		return "", fmt.Errorf("%w: malformed secret reference", ErrDecryptionFailure)
	}

	r.mu.RLock()
	p, ok := r.providers[providerName]
	r.mu.RUnlock()
	if !ok {
		r.record(ctx, providerName, "unregistered")
		return "", fmt.Errorf("%w: provider %q is not registered", ErrDecryptionFailure, providerName)
	}

	resolved, err := p.Resolve(ctx, ref)
	if err != nil {
		r.record(ctx, providerName, "failure")
		if errors.Is(err, ErrDecryptionFailure) {
			return "", fmt.Errorf("provider %q: %w", providerName, err)
		}
		return "", fmt.Errorf("%w: provider %q: %w", ErrDecryptionFailure, providerName, err)
	}
	if r.strict && resolved == "" {
		r.record(ctx, providerName, "empty")
		return "", fmt.Errorf("%w: provider %q returned empty value", ErrDecryptionFailure, providerName)
	}
	r.record(ctx, providerName, "success")
	return resolved, nil
}

func (r *Resolver) record(ctx context.Context, provider, result string) {
	if r.metrics != nil {
		r.metrics.RecordSecretResolution(ctx, provider, result)
	}
}
