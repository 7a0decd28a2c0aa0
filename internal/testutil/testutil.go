package testutil

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"observability/internal/configsource"
	"observability/internal/domain"
)

// GenerateTestKeyPair generates an RSA key pair for testing.
// Returns (keyID, privateKey, publicKey).
func GenerateTestKeyPair(t *testing.T) (string, *rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	kid := fmt.Sprintf("test-key-%d", time.Now().UnixNano())
	return kid, priv, &priv.PublicKey
}

// IssueTestToken creates a signed JWT for testing.
// A negative ttl produces an already-expired token.
func IssueTestToken(t *testing.T, kid string, priv *rsa.PrivateKey, issuer string, principal domain.Principal, ttl time.Duration) string {
	t.Helper()

	now := time.Now()

	claims := jwt.MapClaims{
		"sub":    principal.ID,
		"type":   principal.Type.String(),
		"scopes": principal.ScopeClaim(),
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
		"iss":    issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// MockJWKSHandler returns an http.Handler that serves a JWKS response
// containing the given public key.
func MockJWKSHandler(kid string, pub *rsa.PublicKey) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jwks := map[string]any{
			"keys": []map[string]any{
				{
					"kty": "RSA",
					"alg": "RS256",
					"use": "sig",
					"kid": kid,
					"n":   base64URLEncode(pub.N.Bytes()),
					"e":   base64URLEncode(big.NewInt(int64(pub.E)).Bytes()),
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(jwks)
	})
}

// AuthValues returns the four auth configuration values used across tests.
func AuthValues(idpURL string) map[string]string {
	return map[string]string{
		"idpUrl":      idpURL,
		"callbackUrl": "http://cellery-dashboard",
		"idpUsername": "testadmin",
		"idpPassword": "testpass",
	}
}

// CountingSource is an in-memory configuration source that counts reads.
type CountingSource struct {
	mu     sync.Mutex
	values map[string]string
	errs   map[string]error
	reads  map[string]int
	delay  time.Duration
}

func NewCountingSource(values map[string]string) *CountingSource {
	return &CountingSource{values: values, errs: make(map[string]error), reads: make(map[string]int)}
}

// WithDelay makes every read sleep for d, widening race windows.
func (s *CountingSource) WithDelay(d time.Duration) *CountingSource {
	s.delay = d
	return s
}

func (s *CountingSource) Value(_ context.Context, key string) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[key]++
	if err := s.errs[key]; err != nil {
		return "", err
	}
	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", configsource.ErrKeyNotFound, key)
	}
	return v, nil
}

// Set changes a value; Delete removes it.
func (s *CountingSource) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *CountingSource) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Fail makes reads of key return err. A nil err clears the failure.
func (s *CountingSource) Fail(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, key)
		return
	}
	s.errs[key] = err
}

// Reads returns how many times key was read.
func (s *CountingSource) Reads(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[key]
}

func base64URLEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
