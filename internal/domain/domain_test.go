package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"observability/internal/domain"
)

func TestPrincipalType(t *testing.T) {
	if domain.PrincipalUser.String() != "user" {
		t.Errorf("expected 'user', got %q", domain.PrincipalUser.String())
	}
	if domain.PrincipalService.String() != "service" {
		t.Errorf("expected 'service', got %q", domain.PrincipalService.String())
	}
	if domain.PrincipalUnknown.String() != "unknown" {
		t.Errorf("expected 'unknown', got %q", domain.PrincipalUnknown.String())
	}
}

func TestPrincipalHasScope(t *testing.T) {
	p := domain.Principal{
		ID:     "alice",
		Type:   domain.PrincipalUser,
		Scopes: []domain.Scope{"openid", "observability:read"},
	}

	if !p.HasScope("openid") {
		t.Error("expected principal to have scope openid")
	}
	if !p.HasScope("observability:read") {
		t.Error("expected principal to have scope observability:read")
	}
	if p.HasScope("observability:write") {
		t.Error("expected principal to NOT have scope observability:write")
	}
	if p.HasScope("") {
		t.Error("expected principal to NOT have empty scope")
	}
}

func TestErrorResponseWireShape(t *testing.T) {
	data, err := json.Marshal(domain.ErrorResponse{Status: 500, Message: "DB timeout"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(fields) != 2 {
		t.Errorf("expected exactly 2 fields, got %v", fields)
	}
	if fields["status"] != float64(500) {
		t.Errorf("unexpected status: %v", fields["status"])
	}
	if fields["message"] != "DB timeout" {
		t.Errorf("unexpected message: %v", fields["message"])
	}
}

func TestTokenPairOmitsEmptyIDToken(t *testing.T) {
	data, err := json.Marshal(domain.TokenPair{AccessToken: "access", ExpiresIn: 900, TokenType: "Bearer"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	json.Unmarshal(data, &fields)
	if _, ok := fields["id_token"]; ok {
		t.Errorf("expected id_token to be omitted, got %s", data)
	}
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrUnauthorized", domain.ErrUnauthorized, "unauthorized"},
		{"ErrForbidden", domain.ErrForbidden, "forbidden"},
		{"ErrNotFound", domain.ErrNotFound, "not found"},
		{"ErrInvalidToken", domain.ErrInvalidToken, "invalid token"},
		{"ErrInvalidCode", domain.ErrInvalidCode, "invalid authorization code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}

	if errors.Is(domain.ErrInvalidToken, domain.ErrUnauthorized) {
		t.Error("ErrInvalidToken should not be ErrUnauthorized (they are separate sentinels)")
	}
}

func TestParseScopes(t *testing.T) {
	got := domain.ParseScopes("  openid  observability:read ")
	if len(got) != 2 || got[0] != "openid" || got[1] != "observability:read" {
		t.Errorf("ParseScopes = %v", got)
	}
	if domain.ParseScopes("") != nil {
		t.Error("expected nil for an empty claim")
	}
}

func TestParsePrincipalType(t *testing.T) {
	if domain.ParsePrincipalType("service") != domain.PrincipalService {
		t.Error("service claim should parse as PrincipalService")
	}
	for _, claim := range []string{"", "user", "robot"} {
		if domain.ParsePrincipalType(claim) != domain.PrincipalUser {
			t.Errorf("claim %q should parse as PrincipalUser", claim)
		}
	}
}

func TestPrincipalSession(t *testing.T) {
	p := domain.Principal{ID: "alice", Type: domain.PrincipalUser, Scopes: []domain.Scope{"openid", "observability:read"}}
	if p.ScopeClaim() != "openid observability:read" {
		t.Errorf("ScopeClaim = %q", p.ScopeClaim())
	}

	data, err := json.Marshal(p.Session())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"alice","type":"user","scopes":["openid","observability:read"]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	data, _ = json.Marshal(domain.Principal{ID: "svc", Type: domain.PrincipalService}.Session())
	if string(data) != `{"id":"svc","type":"service","scopes":[]}` {
		t.Errorf("got %s", data)
	}
}
