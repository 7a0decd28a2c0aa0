package domain

import (
	"slices"
	"strings"
)

// Scope is an OAuth2 scope granted by the identity provider, such as
// "openid" or "observability:read".
type Scope string

// ParseScopes splits a space-delimited scope claim.
func ParseScopes(claim string) []Scope {
	fields := strings.Fields(claim)
	if len(fields) == 0 {
		return nil
	}
	scopes := make([]Scope, len(fields))
	for i, f := range fields {
		scopes[i] = Scope(f)
	}
	return scopes
}

// PrincipalType distinguishes dashboard users from service accounts.
type PrincipalType int

const (
	PrincipalUnknown PrincipalType = iota
	PrincipalUser
	PrincipalService
)

func (pt PrincipalType) String() string {
	switch pt {
	case PrincipalUser:
		return "user"
	case PrincipalService:
		return "service"
	default:
		return "unknown"
	}
}

// ParsePrincipalType maps a token's type claim. Anything but "service" is a
// user, since the identity provider omits the claim for interactive logins.
func ParsePrincipalType(claim string) PrincipalType {
	if claim == "service" {
		return PrincipalService
	}
	return PrincipalUser
}

// Principal is the caller identified by a validated bearer token.
type Principal struct {
	ID     string
	Type   PrincipalType
	Scopes []Scope
}

func (p Principal) HasScope(s Scope) bool {
	return slices.Contains(p.Scopes, s)
}

// ScopeClaim joins the scopes into the space-delimited claim form.
func (p Principal) ScopeClaim() string {
	return strings.Join(p.scopeStrings(), " ")
}

// Session is the JSON view of a principal returned by the session endpoint.
type Session struct {
	ID     string   `json:"id"`
	Type   string   `json:"type"`
	Scopes []string `json:"scopes"`
}

func (p Principal) Session() Session {
	return Session{ID: p.ID, Type: p.Type.String(), Scopes: p.scopeStrings()}
}

func (p Principal) scopeStrings() []string {
	out := make([]string, len(p.Scopes))
	for i, s := range p.Scopes {
		out[i] = string(s)
	}
	return out
}
