package secret

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider resolves a reference as a file name inside a base directory,
// the layout used by mounted Kubernetes secrets.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider reading secrets from dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	if !filepath.IsLocal(ref) {
		return "", fmt.Errorf("%w: reference escapes secrets directory", ErrDecryptionFailure)
	}
	data, err := os.ReadFile(filepath.Join(p.dir, ref))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: file %q", ErrSecretNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("%w: reading %q: %w", ErrDecryptionFailure, ref, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
