package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"observability/internal/api"
	"observability/internal/apierror"
	"observability/internal/authconfig"
	"observability/internal/domain"
	"observability/internal/platform/telemetry"
)

const maxClockSkew = 30 * time.Second

// TokenEndpointPath is appended to the IdP URL to form the expected issuer.
const TokenEndpointPath = "/oauth2/token"

// ConfigProvider returns the loaded auth configuration.
type ConfigProvider interface {
	Get(ctx context.Context) (*authconfig.AuthConfig, error)
}

// Auth returns a middleware that validates JWT Bearer tokens issued by the
// configured identity provider. Keys are looked up by kid through jwks.
// Paths in publicPaths are exempt; an entry ending in "/" exempts the subtree.
// The metrics parameter is optional; pass nil to skip metric recording.
func Auth(cfg ConfigProvider, jwks api.JWKSProvider, publicPaths []string, m *telemetry.Metrics) Middleware {
	public := newPathSet(publicPaths)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public.contains(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			fail := func(msg string, cause error) {
				if m != nil {
					m.RecordAuthValidation(r.Context(), "failure")
				}
				apierror.WriteError(w, r, apierror.Unauthorized(msg, cause))
			}

			tokenStr, ok := extractBearerToken(r)
			if !ok {
				fail("missing or malformed authorization header", nil)
				return
			}

			conf, err := cfg.Get(r.Context())
			if err != nil {
				if m != nil {
					m.RecordAuthValidation(r.Context(), "unavailable")
				}
				apierror.WriteError(w, r, err)
				return
			}

			// Only RS256 is accepted, so an HMAC or none token cannot pass.
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				kid, ok := t.Header["kid"].(string)
				if !ok {
					return nil, domain.ErrInvalidToken
				}
				return jwks.GetKey(r.Context(), kid)
			},
				jwt.WithValidMethods([]string{"RS256"}),
				jwt.WithLeeway(maxClockSkew),
				jwt.WithIssuer(strings.TrimRight(conf.IdpURL(), "/")+TokenEndpointPath),
				jwt.WithExpirationRequired(),
			)
			if err != nil {
				slog.Debug("auth validation failed", "error", err)
				fail("invalid or expired token", err)
				return
			}
			if !token.Valid {
				fail("invalid token", domain.ErrInvalidToken)
				return
			}

			principal, err := extractPrincipal(token.Claims)
			if err != nil {
				fail("invalid token claims", err)
				return
			}

			if m != nil {
				m.RecordAuthValidation(r.Context(), "success")
			}
			ctx := api.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func extractPrincipal(claims jwt.Claims) (domain.Principal, error) {
	mc, ok := claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	if sub == "" {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	typ, _ := mc["type"].(string)
	scopes, _ := mc["scopes"].(string)
	return domain.Principal{
		ID:     sub,
		Type:   domain.ParsePrincipalType(typ),
		Scopes: domain.ParseScopes(scopes),
	}, nil
}
