// Package config loads the HCL configuration of the landing zone pipeline.
//
//	bucket          = "wirvsvirus-data-lake-landing-zone"
//	key_scheme      = "kind"
//	concurrency     = 4
//	dataset_timeout = "2m"
//	date_format     = "%d.%m.%Y"
//	datasets        = ["hamburg_clinics", "rki_county_level"]
//	schedule        = "@every 6h"
//
//	store "aws_s3" {
//	  region = "eu-central-1"
//	}
//
//	fetch {
//	  timeout = "30s"
//	  retries = 3
//	  rate_limit {
//	    fill_rate   = 5
//	    bucket_size = 10
//	  }
//	}
//
//	serve {
//	  address         = ":8080"
//	  database        = "landing_zone"
//	  output_location = "s3://wirvsvirus-athena-results/"
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/wirvsvirus/landingzone/connection"
	"github.com/wirvsvirus/landingzone/constants"
	"github.com/wirvsvirus/landingzone/rate_limiter"
	"github.com/wirvsvirus/landingzone/registry"
	"github.com/wirvsvirus/landingzone/sink"
)

// store types
const (
	StoreAwsS3      = "aws_s3"
	StoreGcpStorage = "gcp_storage"
	StoreFileSystem = "file_system"
)

type Config struct {
	Bucket         *string  `hcl:"bucket"`
	KeyScheme      *string  `hcl:"key_scheme"`
	Concurrency    *int     `hcl:"concurrency"`
	DatasetTimeout *string  `hcl:"dataset_timeout"`
	DateFormat     *string  `hcl:"date_format"`
	Datasets       []string `hcl:"datasets,optional"`
	Schedule       *string  `hcl:"schedule"`

	Store *StoreBlock `hcl:"store,block"`
	Fetch *FetchBlock `hcl:"fetch,block"`
	Serve *ServeBlock `hcl:"serve,block"`

	// decoded from the store block body
	aws        *connection.AwsConnection
	gcp        *connection.GcpConnection
	fileSystem *FileSystemStoreConfig
}

// StoreBlock selects the object store, its body depends on the type
type StoreBlock struct {
	Type string   `hcl:"type,label"`
	Body hcl.Body `hcl:",remain"`
}

type FileSystemStoreConfig struct {
	Root *string `hcl:"root"`
}

type FetchBlock struct {
	Timeout   *string                  `hcl:"timeout"`
	Retries   *int                     `hcl:"retries"`
	UserAgent *string                  `hcl:"user_agent"`
	RateLimit *rate_limiter.Definition `hcl:"rate_limit,block"`
}

type ServeBlock struct {
	Address        *string `hcl:"address"`
	Database       *string `hcl:"database"`
	OutputLocation *string `hcl:"output_location"`
	Workgroup      *string `hcl:"workgroup"`
	PollInterval   *string `hcl:"poll_interval"`

	Aws *connection.AwsConnection `hcl:"aws,block"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	c := &Config{}
	c.resolve()
	return c
}

// BucketName returns the bucket, LANDINGZONE_BUCKET overrides the file
func (c *Config) BucketName() string {
	if b := os.Getenv(constants.EnvBucket); b != "" {
		return b
	}
	if c.Bucket != nil {
		return *c.Bucket
	}
	return constants.DefaultBucket
}

func (c *Config) Scheme() sink.KeyScheme {
	if c.KeyScheme != nil {
		return sink.KeyScheme(*c.KeyScheme)
	}
	return sink.KeySchemeKind
}

func (c *Config) ConcurrencyOrDefault() int {
	if c.Concurrency != nil {
		return *c.Concurrency
	}
	return constants.DefaultConcurrency
}

func (c *Config) DatasetTimeoutOrDefault() time.Duration {
	return durationOrDefault(c.DatasetTimeout, constants.DefaultDatasetTimeout)
}

func (c *Config) DateFormatOrDefault() string {
	if c.DateFormat != nil {
		return *c.DateFormat
	}
	return constants.DefaultDateFormat
}

func (c *Config) ScheduleSpec() string {
	if c.Schedule != nil {
		return *c.Schedule
	}
	return ""
}

// StoreType returns the configured store type, file_system if none is configured
func (c *Config) StoreType() string {
	if c.Store != nil {
		return c.Store.Type
	}
	return StoreFileSystem
}

func (c *Config) ServeAddress() string {
	if c.Serve != nil && c.Serve.Address != nil {
		return *c.Serve.Address
	}
	return constants.DefaultServeAddress
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BucketName()) == "" {
		errs = append(errs, errors.New("bucket must not be empty"))
	}
	if err := c.Scheme().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.ConcurrencyOrDefault() < 1 {
		errs = append(errs, errors.New("concurrency must be at least 1"))
	}
	if err := validateDuration("dataset_timeout", c.DatasetTimeout); err != nil {
		errs = append(errs, err)
	}
	for _, name := range c.Datasets {
		if _, ok := registry.Lookup(name); !ok {
			errs = append(errs, fmt.Errorf("unknown dataset %q", name))
		}
	}
	switch {
	case c.aws != nil:
		errs = append(errs, c.aws.Validate())
	case c.gcp != nil:
		errs = append(errs, c.gcp.Validate())
	}
	if c.Fetch != nil {
		if err := validateDuration("fetch.timeout", c.Fetch.Timeout); err != nil {
			errs = append(errs, err)
		}
		if c.Fetch.Retries != nil && *c.Fetch.Retries < 0 {
			errs = append(errs, errors.New("fetch.retries must not be negative"))
		}
		if c.Fetch.RateLimit != nil {
			for _, msg := range c.Fetch.RateLimit.Validate() {
				errs = append(errs, errors.New(msg))
			}
		}
	}
	if c.Serve != nil {
		if err := validateDuration("serve.poll_interval", c.Serve.PollInterval); err != nil {
			errs = append(errs, err)
		}
		if c.Serve.Aws != nil {
			errs = append(errs, c.Serve.Aws.Validate())
		}
	}
	return errors.Join(errs...)
}

// resolve fills defaults which depend on other attributes
func (c *Config) resolve() {
	if c.Store == nil {
		c.fileSystem = &FileSystemStoreConfig{}
	}
	if c.Fetch != nil && c.Fetch.RateLimit != nil && c.Fetch.RateLimit.Name == "" {
		c.Fetch.RateLimit.Name = "fetch"
	}
}

func durationOrDefault(value *string, def time.Duration) time.Duration {
	if value == nil {
		return def
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return def
	}
	return d
}

func validateDuration(name string, value *string) error {
	if value == nil {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	return nil
}
