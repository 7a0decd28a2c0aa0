package secret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// SecretsManagerAPI is the subset of the Secrets Manager client the provider uses.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManagerConfig configures the aws-sm provider.
type AWSSecretsManagerConfig struct {
	Region   string
	Endpoint string // optional, e.g. a LocalStack URL

	// Static credentials; when empty the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// AWSSecretsManager resolves references of the form name or name#field,
// where field selects a key of a JSON secret string.
type AWSSecretsManager struct {
	client SecretsManagerAPI
}

// NewAWSSecretsManager builds a provider with a real Secrets Manager client.
func NewAWSSecretsManager(ctx context.Context, cfg AWSSecretsManagerConfig) (*AWSSecretsManager, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var clientOpts []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	return NewAWSSecretsManagerWithClient(secretsmanager.NewFromConfig(awsCfg, clientOpts...)), nil
}

// NewAWSSecretsManagerWithClient builds a provider around an existing client.
func NewAWSSecretsManagerWithClient(client SecretsManagerAPI) *AWSSecretsManager {
	return &AWSSecretsManager{client: client}
}

func (p *AWSSecretsManager) Name() string { return "aws-sm" }

func (p *AWSSecretsManager) Resolve(ctx context.Context, ref string) (string, error) {
	name, field, _ := strings.Cut(ref, "#")
	if name == "" {
		return "", fmt.Errorf("%w: empty secret name", ErrDecryptionFailure)
	}

	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: secret %q", ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("%w: secret %q: %w", ErrDecryptionFailure, name, err)
	}

	var value string
	switch {
	case out.SecretString != nil:
		value = *out.SecretString
	case out.SecretBinary != nil:
		value = string(out.SecretBinary)
	default:
		return "", fmt.Errorf("%w: secret %q has no value", ErrDecryptionFailure, name)
	}

	if field == "" {
		return value, nil
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return "", fmt.Errorf("%w: secret %q is not a JSON object", ErrDecryptionFailure, name)
	}
	v, ok := fields[field]
	if !ok {
		return "", fmt.Errorf("%w: secret %q has no field %q", ErrSecretNotFound, name, field)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q of secret %q is not a string", ErrDecryptionFailure, field, name)
	}
	return s, nil
}
