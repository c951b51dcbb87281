package config

import (
	"context"
	"fmt"
	"time"

	"github.com/wirvsvirus/landingzone/connection"
	"github.com/wirvsvirus/landingzone/constants"
	"github.com/wirvsvirus/landingzone/fetch"
	"github.com/wirvsvirus/landingzone/filepaths"
	"github.com/wirvsvirus/landingzone/orchestrator"
	"github.com/wirvsvirus/landingzone/rate_limiter"
	"github.com/wirvsvirus/landingzone/sink"
)

// NewStore builds the configured object store
func (c *Config) NewStore(ctx context.Context) (sink.ObjectStore, error) {
	switch {
	case c.aws != nil:
		return sink.NewS3Store(ctx, c.aws)
	case c.gcp != nil:
		return sink.NewGCSStore(ctx, c.gcp)
	default:
		if c.fileSystem != nil && c.fileSystem.Root != nil {
			return sink.NewFileSystemStore(*c.fileSystem.Root)
		}
		root, err := filepaths.DataDir()
		if err != nil {
			return nil, err
		}
		return sink.NewFileSystemStore(root)
	}
}

func (c *Config) NewSink(ctx context.Context) (*sink.Sink, error) {
	store, err := c.NewStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating %s store: %w", c.StoreType(), err)
	}
	return sink.New(store, c.BucketName(), sink.WithKeyScheme(c.Scheme()))
}

// NewFetcher returns the HTTP client used to download datasets
func (c *Config) NewFetcher() *fetch.Client {
	var opts []fetch.Option
	if f := c.Fetch; f != nil {
		if f.Timeout != nil {
			opts = append(opts, fetch.WithTimeout(durationOrDefault(f.Timeout, constants.DefaultFetchTimeout)))
		}
		if f.Retries != nil {
			opts = append(opts, fetch.WithRetries(*f.Retries))
		}
		if f.UserAgent != nil {
			opts = append(opts, fetch.WithUserAgent(*f.UserAgent))
		}
		if f.RateLimit != nil && f.RateLimit.Enabled() {
			opts = append(opts, fetch.WithLimiter(rate_limiter.NewAPILimiter(f.RateLimit)))
		}
	}
	return fetch.NewClient(opts...)
}

// NewHandler wires fetcher, sink and batch settings into the invocation handler
func (c *Config) NewHandler(ctx context.Context) (*orchestrator.Handler, error) {
	s, err := c.NewSink(ctx)
	if err != nil {
		return nil, err
	}
	return &orchestrator.Handler{
		Fetcher:        c.NewFetcher(),
		Writer:         s,
		DateFormat:     c.DateFormatOrDefault(),
		Datasets:       c.Datasets,
		Concurrency:    c.ConcurrencyOrDefault(),
		DatasetTimeout: c.DatasetTimeoutOrDefault(),
	}, nil
}

// AthenaSettings are the query layer settings of the serve block
type AthenaSettings struct {
	Connection     *connection.AwsConnection
	Database       string
	OutputLocation string
	Workgroup      string
	PollInterval   time.Duration
}

// Athena returns the query settings. The serve block's aws connection wins
// over the one of an aws_s3 store.
func (c *Config) Athena() AthenaSettings {
	res := AthenaSettings{
		Connection:   &connection.AwsConnection{},
		PollInterval: 100 * time.Millisecond,
	}
	if c.aws != nil {
		res.Connection = c.aws
	}
	s := c.Serve
	if s == nil {
		return res
	}
	if s.Aws != nil {
		res.Connection = s.Aws
	}
	if s.Database != nil {
		res.Database = *s.Database
	}
	if s.OutputLocation != nil {
		res.OutputLocation = *s.OutputLocation
	}
	if s.Workgroup != nil {
		res.Workgroup = *s.Workgroup
	}
	res.PollInterval = durationOrDefault(s.PollInterval, res.PollInterval)
	return res
}
