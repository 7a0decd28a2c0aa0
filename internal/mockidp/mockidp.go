// Package mockidp is an in-process OAuth2 identity provider used by the
// mockidentity binary and by integration tests. It serves the JWKS and
// authorization code token endpoints the observability API talks to.
package mockidp

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"observability/internal/domain"
)

const (
	JWKSPath  = "/oauth2/jwks"
	TokenPath = "/oauth2/token"
)

// IdP issues RS256 tokens for registered authorization codes.
type IdP struct {
	Kid          string
	Key          *rsa.PrivateKey
	ClientID     string
	ClientSecret string
	TTL          time.Duration

	// Issuer overrides the iss claim. Empty means <request origin>/oauth2/token.
	Issuer string

	// RedirectURI, when set, must match the redirect_uri of every exchange.
	RedirectURI string

	// AcceptAnyCode treats unknown codes as a user whose ID is the code.
	AcceptAnyCode bool

	mu    sync.Mutex
	codes map[string]domain.Principal
}

// New creates an IdP with a fresh 2048-bit signing key.
func New(clientID, clientSecret string) (*IdP, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}
	return &IdP{
		Kid:          fmt.Sprintf("mock-key-%d", time.Now().UnixNano()),
		Key:          priv,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TTL:          15 * time.Minute,
		codes:        make(map[string]domain.Principal),
	}, nil
}

// AddCode registers a single-use authorization code for p.
func (m *IdP) AddCode(code string, p domain.Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code] = p
}

func (m *IdP) redeem(code string) (domain.Principal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.codes[code]
	if ok {
		delete(m.codes, code)
		return p, true
	}
	if m.AcceptAnyCode {
		return domain.Principal{
			ID:     code,
			Type:   domain.PrincipalUser,
			Scopes: []domain.Scope{"observability:read"},
		}, true
	}
	return domain.Principal{}, false
}

// Handler serves the JWKS, token, and health endpoints.
func (m *IdP) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+JWKSPath, m.serveJWKS)
	mux.HandleFunc("POST "+TokenPath, m.serveToken)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "mock-identity"})
	})
	return mux
}

// JWKS returns the key set document for the signing key.
func (m *IdP) JWKS() map[string]any {
	pub := &m.Key.PublicKey
	return map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"kid": m.Kid,
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}
}

func (m *IdP) serveJWKS(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.JWKS())
}

func (m *IdP) serveToken(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != m.ClientID || pass != m.ClientSecret {
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if r.PostForm.Get("grant_type") != "authorization_code" {
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}
	if m.RedirectURI != "" && r.PostForm.Get("redirect_uri") != m.RedirectURI {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
		return
	}
	code := r.PostForm.Get("code")
	if code == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	principal, ok := m.redeem(code)
	if !ok {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
		return
	}

	issuer := m.Issuer
	if issuer == "" {
		issuer = origin(r) + TokenPath
	}
	access, err := m.Sign(issuer, principal, m.TTL)
	if err != nil {
		slog.Error("signing access token", "error", err)
		writeOAuthError(w, http.StatusInternalServerError, "server_error")
		return
	}
	id, err := m.Sign(issuer, principal, m.TTL)
	if err != nil {
		slog.Error("signing id token", "error", err)
		writeOAuthError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, domain.TokenPair{
		AccessToken: access,
		IDToken:     id,
		ExpiresIn:   int(m.TTL.Seconds()),
		TokenType:   "Bearer",
	})
}

// Sign issues an RS256 token for p. A negative ttl yields an expired token.
func (m *IdP) Sign(issuer string, p domain.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":    p.ID,
		"type":   p.Type.String(),
		"scopes": p.ScopeClaim(),
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
		"iss":    issuer,
	})
	token.Header["kid"] = m.Kid
	return token.SignedString(m.Key)
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func writeOAuthError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
