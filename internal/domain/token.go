package domain

// TokenPair is the token set returned to the dashboard after an
// authorization code has been exchanged at the identity provider.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token,omitempty"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// PublicAuthConfig is the part of the auth configuration the dashboard may see.
type PublicAuthConfig struct {
	IdpURL      string `json:"idpUrl"`
	CallbackURL string `json:"callbackUrl"`
}
