package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrKeyNotFound is returned when the key set has no key for a kid.
var ErrKeyNotFound = errors.New("jwks: key not found")

// EndpointFunc resolves the JWKS URL at fetch time. The identity provider
// URL is only known once the auth configuration has loaded.
type EndpointFunc func(ctx context.Context) (string, error)

// StaticEndpoint returns an EndpointFunc for a fixed URL.
func StaticEndpoint(url string) EndpointFunc {
	return func(context.Context) (string, error) { return url, nil }
}

// Recorder receives one observation per refresh attempt.
type Recorder interface {
	RecordJWKSRefresh(ctx context.Context, result string)
}

// Client fetches and caches public keys from a JWKS endpoint.
type Client struct {
	endpoint   EndpointFunc
	minRefresh time.Duration
	httpClient *http.Client
	metrics    Recorder
	group      singleflight.Group

	mu           sync.RWMutex
	keys         map[string]*rsa.PublicKey
	lastFetch    time.Time
	lastEndpoint string
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMetrics(r Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// NewClient creates a JWKS client that caches keys and won't re-fetch
// more often than minRefresh.
func NewClient(endpoint EndpointFunc, minRefresh time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		minRefresh: minRefresh,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		keys:       make(map[string]*rsa.PublicKey),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetKey returns the public key for the given key ID.
// An unknown kid triggers a refresh unless one happened within minRefresh.
// Concurrent refreshes are collapsed into one request.
func (c *Client) GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	c.mu.RUnlock()
	if ok {
		return key, nil
	}

	// The refresh is shared by every waiter, so one caller going away must
	// not cancel it. httpClient.Timeout still bounds the fetch.
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, fmt.Errorf("fetching key %q: %w", kid, err)
	}

	c.mu.RLock()
	key, ok = c.keys[kid]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, kid)
	}
	return key, nil
}

func (c *Client) refresh(ctx context.Context) error {
	endpoint, err := c.endpoint(ctx)
	if err != nil {
		return fmt.Errorf("resolving JWKS endpoint: %w", err)
	}

	c.mu.RLock()
	fresh := endpoint == c.lastEndpoint && !c.lastFetch.IsZero() && time.Since(c.lastFetch) < c.minRefresh
	c.mu.RUnlock()
	if fresh {
		return nil
	}

	keys, err := c.fetch(ctx, endpoint)
	if err != nil {
		c.record(ctx, "failure")
		return err
	}

	c.mu.Lock()
	c.keys = keys
	c.lastFetch = time.Now()
	c.lastEndpoint = endpoint
	c.mu.Unlock()
	c.record(ctx, "success")
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating JWKS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned %d", resp.StatusCode)
	}

	var set keySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || (k.Alg != "" && k.Alg != "RS256") {
			slog.Debug("skipping non-RS256 JWKS key", "kid", k.Kid, "kty", k.Kty, "alg", k.Alg)
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			slog.Warn("failed to parse JWKS key", "kid", k.Kid, "error", err)
			continue
		}
		keys[k.Kid] = pub
	}
	return keys, nil
}

func (c *Client) record(ctx context.Context, result string) {
	if c.metrics != nil {
		c.metrics.RecordJWKSRefresh(ctx, result)
	}
}

type keySet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseRSAPublicKey(nStr, eStr string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nStr)
	if err != nil {
		return nil, fmt.Errorf("decoding n: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eStr)
	if err != nil {
		return nil, fmt.Errorf("decoding e: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
