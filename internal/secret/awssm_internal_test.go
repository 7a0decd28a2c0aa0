package secret

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateAWSConfig keeps the host's shared config and credentials out of
// LoadDefaultConfig.
func isolateAWSConfig(t *testing.T) {
	t.Helper()
	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	t.Setenv("AWS_CONFIG_FILE", empty)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", empty)
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("AWS_SESSION_TOKEN", "")
}

func TestNewAWSSecretsManager_StaticCredentials(t *testing.T) {
	isolateAWSConfig(t)

	p, err := NewAWSSecretsManager(context.Background(), AWSSecretsManagerConfig{
		Region:          "us-east-1",
		Endpoint:        "http://localstack:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "test-secret",
	})
	require.NoError(t, err)

	client, ok := p.client.(*secretsmanager.Client)
	require.True(t, ok, "expected a real Secrets Manager client, got %T", p.client)

	opts := client.Options()
	assert.Equal(t, "us-east-1", opts.Region)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localstack:4566", *opts.BaseEndpoint)

	require.NotNil(t, opts.Credentials)
	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
	assert.Equal(t, "test-secret", creds.SecretAccessKey)
	assert.Equal(t, credentials.StaticCredentialsName, creds.Source)
}

func TestNewAWSSecretsManager_PartialCredentialsUseDefaultChain(t *testing.T) {
	isolateAWSConfig(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "from-env")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "from-env-secret")

	p, err := NewAWSSecretsManager(context.Background(), AWSSecretsManagerConfig{
		Region:      "us-east-1",
		AccessKeyID: "ignored-without-secret",
	})
	require.NoError(t, err)

	client := p.client.(*secretsmanager.Client)
	assert.Nil(t, client.Options().BaseEndpoint)

	creds, err := client.Options().Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", creds.AccessKeyID)
}
