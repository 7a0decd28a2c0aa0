package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"observability/internal/api"
	"observability/internal/domain"
)

// TokenPath is the identity provider's OAuth2 token endpoint, relative to its base URL.
const TokenPath = "/oauth2/token"

const maxErrorBody = 4 << 10

// ErrExchangeFailed wraps transport errors and unexpected IdP responses.
var ErrExchangeFailed = errors.New("idp: token exchange failed")

// Credentials identify the API to the identity provider.
type Credentials struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Client exchanges OAuth2 authorization codes for tokens.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// ExchangeCode redeems code at the token endpoint. A 400 or 401 from the IdP
// yields domain.ErrInvalidCode; anything else unexpected yields ErrExchangeFailed.
func (c *Client) ExchangeCode(ctx context.Context, creds Credentials, code string) (domain.TokenPair, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {creds.RedirectURI},
	}
	endpoint := strings.TrimRight(creds.BaseURL, "/") + TokenPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: creating request: %w", ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)
	if reqID := api.RequestIDFromContext(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return domain.TokenPair{}, fmt.Errorf("%w: idp returned %d: %s", domain.ErrInvalidCode, resp.StatusCode, oauthError(resp.Body))
	default:
		return domain.TokenPair{}, fmt.Errorf("%w: idp returned %d", ErrExchangeFailed, resp.StatusCode)
	}

	var pair domain.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: decoding token response: %w", ErrExchangeFailed, err)
	}
	if pair.AccessToken == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: token response has no access_token", ErrExchangeFailed)
	}
	return pair, nil
}

// oauthError extracts the RFC 6749 error code from a response body.
func oauthError(body io.Reader) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&e); err != nil || e.Error == "" {
		return "unknown_error"
	}
	return e.Error
}
