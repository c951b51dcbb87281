package connection

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/wirvsvirus/landingzone/constants"
	"github.com/wirvsvirus/landingzone/fetch"
)

// AwsConnection holds the credentials and client settings used for the S3
// landing zone and the Athena query layer
type AwsConnection struct {
	Region                *string `hcl:"region"`
	Profile               *string `hcl:"profile"`
	AccessKey             *string `hcl:"access_key"`
	SecretKey             *string `hcl:"secret_key"`
	SessionToken          *string `hcl:"session_token"`
	MaxErrorRetryAttempts *int    `hcl:"max_error_retry_attempts"`
	MinErrorRetryDelay    *int    `hcl:"min_error_retry_delay"`
	EndpointUrl           *string `hcl:"endpoint_url"`
	S3ForcePathStyle      *bool   `hcl:"s3_force_path_style"`
}

func (c *AwsConnection) Validate() error {
	if c.AccessKey != nil && c.SecretKey == nil {
		return fmt.Errorf("access_key set without secret_key")
	}
	if c.AccessKey == nil && c.SecretKey != nil {
		return fmt.Errorf("secret_key set without access_key")
	}
	if c.MinErrorRetryDelay != nil && *c.MinErrorRetryDelay < 1 {
		return fmt.Errorf("min_error_retry_delay must be greater than or equal to 1")
	}
	if c.MaxErrorRetryAttempts != nil && *c.MaxErrorRetryAttempts < 1 {
		return fmt.Errorf("max_error_retry_attempts must be greater than or equal to 1")
	}
	return nil
}

func (c *AwsConnection) Identifier() string {
	return "aws"
}

// GetClientConfiguration loads the default AWS config chain and applies the
// connection's credentials, region, retry policy and endpoint
func (c *AwsConnection) GetClientConfiguration(ctx context.Context) (*aws.Config, error) {
	var configOptions []func(*config.LoadOptions) error

	if c.Profile != nil {
		configOptions = append(configOptions, config.WithSharedConfigProfile(aws.ToString(c.Profile)))
	}
	if c.AccessKey != nil && c.SecretKey != nil {
		provider := credentials.NewStaticCredentialsProvider(aws.ToString(c.AccessKey), aws.ToString(c.SecretKey), aws.ToString(c.SessionToken))
		configOptions = append(configOptions, config.WithCredentialsProvider(provider))
	}
	if c.Region != nil {
		configOptions = append(configOptions, config.WithRegion(*c.Region))
	}
	configOptions = append(configOptions, config.WithHTTPClient(sharedHTTPClient))

	cfg, err := config.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = constants.DefaultAwsRegion
	}

	maxAttempts := getConfigOrEnvInt(c.MaxErrorRetryAttempts, constants.EnvAwsAttempts, 5)
	minRetryDelay := 25 * time.Millisecond
	if c.MinErrorRetryDelay != nil {
		minRetryDelay = time.Duration(*c.MinErrorRetryDelay) * time.Millisecond
	}
	retryer := retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = maxAttempts
		o.MaxBackoff = maxBackoff
		o.RateLimiter = NoOpRateLimit{}
		o.Backoff = NewExponentialJitterBackoff(minRetryDelay, maxAttempts)
	})
	cfg.Retryer = func() aws.Retryer {
		// UnknownError is what the sdk reports for a 408
		return retry.AddWithErrorCodes(retryer, "UnknownError")
	}

	if endpoint := c.endpoint(); endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}
	return &cfg, nil
}

// S3Client returns an S3 client for the landing zone bucket
func (c *AwsConnection) S3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := c.GetClientConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(*cfg, func(o *s3.Options) {
		// local S3 implementations usually do not support virtual hosted buckets
		if c.S3ForcePathStyle != nil {
			o.UsePathStyle = *c.S3ForcePathStyle
		} else if c.endpoint() != "" {
			o.UsePathStyle = true
		}
	}), nil
}

// AthenaClient returns a client for the query layer
func (c *AwsConnection) AthenaClient(ctx context.Context) (*athena.Client, error) {
	cfg, err := c.GetClientConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	return athena.NewFromConfig(*cfg), nil
}

func (c *AwsConnection) endpoint() string {
	return getConfigOrEnv(c.EndpointUrl, constants.EnvAwsEndpoint)
}

// sharedHTTPClient is used by every AWS client, it shares the DNS cache of the
// dataset fetcher
var sharedHTTPClient = initializeHTTPClient()

func initializeHTTPClient() aws.HTTPClient {
	client := awshttp.NewBuildableClient()

	// 0 keeps the sdk default of no limit
	if maxConns := readEnvVarToInt(constants.EnvHTTPMaxConnsPerHost, 64); maxConns > 0 {
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.MaxConnsPerHost = maxConns
		})
	}
	// -1 keeps the sdk dialer
	if readEnvVarToInt(constants.EnvDNSCacheRefreshIntervalSecs, 300) >= 0 {
		dial := fetch.NewDialContext(client.GetDialer())
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.DialContext = dial
		})
	}
	return client
}

func getConfigOrEnv(configValue *string, env string) string {
	if configValue != nil {
		return *configValue
	}
	return os.Getenv(env)
}

func getConfigOrEnvInt(configValue *int, env string, defaultValue int) int {
	if configValue != nil {
		return *configValue
	}
	return readEnvVarToInt(env, defaultValue)
}

func readEnvVarToInt(name string, defaultVal int) int {
	if envValue := os.Getenv(name); envValue != "" {
		if i, err := strconv.Atoi(envValue); err == nil {
			return i
		}
	}
	return defaultVal
}
