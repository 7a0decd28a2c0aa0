package secret

import (
	"context"
	"errors"
	"fmt"
)

// ErrDecryptionFailure is the root of every failure to turn a reference into
// plaintext.
var ErrDecryptionFailure = errors.New("secret: decryption failure")

// ErrSecretNotFound is returned when a provider has no value for a reference.
var ErrSecretNotFound = fmt.Errorf("%w: not found", ErrDecryptionFailure)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}
