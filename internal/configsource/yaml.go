package configsource

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultNamespace is the mapping in deployment.yaml that holds auth keys.
const DefaultNamespace = "observability.auth"

// YAMLFile reads values from a YAML document. The file is read on every
// lookup.
type YAMLFile struct {
	Path string

	// Namespace is a dotted path to the mapping holding the keys. Empty
	// means the document root.
	Namespace string
}

func (f YAMLFile) Value(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("%w: parsing %s: %w", ErrSourceUnavailable, f.Path, err)
	}

	node := doc
	if f.Namespace != "" {
		for _, part := range strings.Split(f.Namespace, ".") {
			next, ok := node[part].(map[string]any)
			if !ok {
				return "", fmt.Errorf("%w: %q (namespace %q missing)", ErrKeyNotFound, key, f.Namespace)
			}
			node = next
		}
	}

	v, ok := node[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("%w: %q is not a scalar", ErrKeyNotFound, key)
	}
}
