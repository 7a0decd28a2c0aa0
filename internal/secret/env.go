package secret

import (
	"context"
	"fmt"
	"os"
)

// EnvProvider resolves a reference as the name of an environment variable.
type EnvProvider struct {
	lookup func(string) (string, bool)
}

// NewEnvProvider creates a provider backed by the process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := p.lookup(ref)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %q", ErrSecretNotFound, ref)
	}
	return v, nil
}
