package connection

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwsConnection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		conn    AwsConnection
		wantErr string
	}{
		{name: "empty", conn: AwsConnection{}},
		{name: "static keys", conn: AwsConnection{AccessKey: aws.String("a"), SecretKey: aws.String("s")}},
		{name: "access key only", conn: AwsConnection{AccessKey: aws.String("a")}, wantErr: "access_key set without secret_key"},
		{name: "secret key only", conn: AwsConnection{SecretKey: aws.String("s")}, wantErr: "secret_key set without access_key"},
		{name: "zero retries", conn: AwsConnection{MaxErrorRetryAttempts: aws.Int(0)}, wantErr: "max_error_retry_attempts"},
		{name: "zero delay", conn: AwsConnection{MinErrorRetryDelay: aws.Int(0)}, wantErr: "min_error_retry_delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestAwsConnection_GetClientConfiguration(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_ENDPOINT_URL", "")

	conn := &AwsConnection{
		AccessKey:   aws.String("key"),
		SecretKey:   aws.String("secret"),
		EndpointUrl: aws.String("http://localhost:9000"),
	}
	cfg, err := conn.GetClientConfiguration(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", cfg.Region)
	assert.Equal(t, "http://localhost:9000", aws.ToString(cfg.BaseEndpoint))
	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key", creds.AccessKeyID)

	conn.Region = aws.String("eu-west-1")
	cfg, err = conn.GetClientConfiguration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
}

func TestExponentialJitterBackoff(t *testing.T) {
	b := NewExponentialJitterBackoff(100*time.Millisecond, 5)

	d, err := b.BackoffDelay(1, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 240*time.Millisecond)
	assert.Less(t, d, 360*time.Millisecond)

	d, err = b.BackoffDelay(20, nil)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)
}

func TestGcpConnection(t *testing.T) {
	credentials := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(credentials, []byte(`{"type":"service_account"}`), 0o600))

	contents, err := pathOrContents(credentials)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"service_account"}`, contents)

	contents, err = pathOrContents(`{"inline":true}`)
	require.NoError(t, err)
	assert.Equal(t, `{"inline":true}`, contents)

	_, err = pathOrContents("/does/not/exist.json")
	assert.Error(t, err)

	t.Setenv("CLOUDSDK_CORE_PROJECT", "from-env")
	assert.Equal(t, "from-env", (&GcpConnection{}).GetProject())
	project := "configured"
	assert.Equal(t, "configured", (&GcpConnection{Project: &project}).GetProject())

	bad := "not-an-account"
	assert.Error(t, (&GcpConnection{Impersonate: &bad}).Validate())
}

func TestGcpConnection_QuotaProjectFallback(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_QUOTA_PROJECT", "")
	t.Setenv("CLOUDSDK_CORE_PROJECT", "")
	ctx := context.Background()

	opts, err := (&GcpConnection{}).GetClientOptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, opts)

	project := "wirvsvirus"
	opts, err = (&GcpConnection{Project: &project}).GetClientOptions(ctx)
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	t.Setenv("CLOUDSDK_CORE_PROJECT", "from-env")
	opts, err = (&GcpConnection{}).GetClientOptions(ctx)
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}
