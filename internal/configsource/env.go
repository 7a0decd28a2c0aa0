package configsource

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// DefaultEnvPrefix is prepended to every environment variable name.
const DefaultEnvPrefix = "OBSERVABILITY_AUTH_"

// Env reads values from environment variables. The key idpUrl with prefix
// OBSERVABILITY_AUTH_ maps to OBSERVABILITY_AUTH_IDP_URL.
type Env struct {
	Prefix string
}

func (e Env) Value(_ context.Context, key string) (string, error) {
	name := e.Prefix + EnvName(key)
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return v, nil
}

// EnvName converts a camelCase key to UPPER_SNAKE_CASE.
func EnvName(key string) string {
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		if r == '-' || r == '.' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
