package connection

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/mitchellh/go-homedir"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GcpConnection holds the credentials used for a Cloud Storage landing zone
type GcpConnection struct {
	Project      *string `hcl:"project"`
	Credentials  *string `hcl:"credentials"`
	QuotaProject *string `hcl:"quota_project"`
	Impersonate  *string `hcl:"impersonate"`
}

func (c *GcpConnection) Validate() error {
	if c.Impersonate != nil && !strings.Contains(*c.Impersonate, "@") {
		return fmt.Errorf("impersonate must be a service account email, got %q", *c.Impersonate)
	}
	return nil
}

func (c *GcpConnection) Identifier() string {
	return "gcp"
}

// GetProject returns the configured project, falling back to the gcloud environment
func (c *GcpConnection) GetProject() string {
	if c.Project != nil {
		return *c.Project
	}
	for _, envVar := range []string{"CLOUDSDK_CORE_PROJECT", "GCP_PROJECT"} {
		if val, ok := os.LookupEnv(envVar); ok {
			return val
		}
	}
	return ""
}

func (c *GcpConnection) GetClientOptions(ctx context.Context) ([]option.ClientOption, error) {
	var opts []option.ClientOption

	if c.Credentials != nil {
		contents, err := pathOrContents(*c.Credentials)
		if err != nil {
			return nil, fmt.Errorf("error reading credentials file: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON([]byte(contents)))
	}

	// requests are billed to the quota project, the project when none is set
	qp := os.Getenv("GOOGLE_CLOUD_QUOTA_PROJECT")
	if c.QuotaProject != nil {
		qp = *c.QuotaProject
	}
	if qp == "" {
		qp = c.GetProject()
	}
	if qp != "" {
		opts = append(opts, option.WithQuotaProject(qp))
	}

	if c.Impersonate != nil {
		ts, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
			TargetPrincipal: *c.Impersonate,
			Scopes:          []string{cloudPlatformScope},
		})
		if err != nil {
			return nil, fmt.Errorf("impersonating %s: %w", *c.Impersonate, err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	return opts, nil
}

// StorageClient returns a Cloud Storage client for the landing zone bucket
func (c *GcpConnection) StorageClient(ctx context.Context) (*storage.Client, error) {
	opts, err := c.GetClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating storage client: %w", err)
	}
	return client, nil
}

// pathOrContents returns the contents of the file at in, or in itself when it
// is not a path
func pathOrContents(in string) (string, error) {
	if in == "" {
		return "", nil
	}
	path, err := homedir.Expand(in)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		contents, err := os.ReadFile(path)
		return string(contents), err
	}
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) {
		return "", fmt.Errorf("%s: no such file or dir", path)
	}
	return in, nil
}
