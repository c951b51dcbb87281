// Package datasource implements the extraction pipeline of a dataset.
//
// Every dataset runs the same four stages in a fixed order:
//
//	fetch_raw -> flatten -> cleanse -> normalize_dates
//
// A concrete dataset only supplies the stages that differ, as a set of
// Capabilities. The JSON feature and delimited text sources provide
// fetch_raw and flatten; cleanse defaults to identity.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wirvsvirus/landingzone/fetch"
	"github.com/wirvsvirus/landingzone/frame"
)

type Stage string

const (
	StageFetchRaw       Stage = "fetch_raw"
	StageFlatten        Stage = "flatten"
	StageCleanse        Stage = "cleanse"
	StageNormalizeDates Stage = "normalize_dates"
)

// Fetcher retrieves the body of a url, failing for non-2xx responses
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// RawPayload is the unparsed result of fetch_raw, either a JSON document or delimited text
type RawPayload struct {
	JSON json.RawMessage
	Text string
}

func (p RawPayload) IsJSON() bool {
	return p.JSON != nil
}

type (
	FetchRawFunc func(ctx context.Context, f Fetcher, url string) (RawPayload, error)
	FlattenFunc  func(raw RawPayload, d Descriptor) (*frame.Frame, error)
	CleanseFunc  func(f *frame.Frame) (*frame.Frame, error)
)

// Capabilities are the overridable stages of a dataset
type Capabilities struct {
	FetchRaw FetchRawFunc
	Flatten  FlattenFunc
	// Cleanse is optional, nil means identity
	Cleanse CleanseFunc
}

type DataSource struct {
	descriptor Descriptor
	fetcher    Fetcher
	caps       Capabilities
}

type Option func(*DataSource)

// WithCleansing sets the cleanse stage to apply the given policy
func WithCleansing(c *Cleansing) Option {
	return func(s *DataSource) {
		s.caps.Cleanse = c.Apply
	}
}

// WithDateFormat overrides the default date format of the descriptor
func WithDateFormat(format string) Option {
	return func(s *DataSource) {
		if format != "" {
			s.descriptor.DateFormat = format
		}
	}
}

// New returns a DataSource running caps for the dataset described by d
func New(d Descriptor, fetcher Fetcher, caps Capabilities, opts ...Option) (*DataSource, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher must not be nil")
	}
	if caps.FetchRaw == nil || caps.Flatten == nil {
		return nil, fmt.Errorf("dataset %s: fetch_raw and flatten are required", d.Name)
	}
	s := &DataSource{
		descriptor: d.withDefaults(),
		fetcher:    fetcher,
		caps:       caps,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.caps.Cleanse == nil {
		s.caps.Cleanse = identity
	}
	if err := s.descriptor.Validate(); err != nil {
		return nil, err
	}
	// fail at construction rather than on the first run
	for _, c := range s.descriptor.DateColumns {
		if _, err := layoutFor(s.descriptor.FormatFor(c)); err != nil {
			return nil, fmt.Errorf("dataset %s: date column %s: %w", d.Name, c, err)
		}
	}
	return s, nil
}

func (s *DataSource) Name() string {
	return s.descriptor.Name
}

func (s *DataSource) Kind() Kind {
	return s.descriptor.Kind
}

// Descriptor returns a copy of the descriptor
func (s *DataSource) Descriptor() Descriptor {
	return s.descriptor.withDefaults()
}

// GetData runs all stages in order and returns the resulting frame
func (s *DataSource) GetData(ctx context.Context) (*frame.Frame, error) {
	d := s.descriptor
	logger := slog.With("dataset", d.Name)
	start := time.Now()

	raw, err := s.caps.FetchRaw(ctx, s.fetcher, d.URL())
	if err != nil {
		return nil, s.fetchError(err)
	}
	logger.Debug("fetched raw payload", "url", d.URL(), "json", raw.IsJSON())

	f, err := s.caps.Flatten(raw, d)
	if err != nil {
		return nil, s.schemaError(StageFlatten, err)
	}
	logger.Debug("flattened", "rows", f.Len(), "columns", len(f.Columns()))

	f, err = s.caps.Cleanse(f)
	if err != nil {
		return nil, s.schemaError(StageCleanse, err)
	}

	if err := normalizeDates(f, d); err != nil {
		var dateErr *DateFormatError
		if errors.As(err, &dateErr) {
			dateErr.Dataset = d.Name
			return nil, dateErr
		}
		return nil, s.schemaError(StageNormalizeDates, err)
	}

	logger.Info("dataset extracted", "rows", f.Len(), "columns", len(f.Columns()), "duration", time.Since(start))
	return f, nil
}

func (s *DataSource) fetchError(err error) error {
	// a payload that arrived but could not be decoded is a shape problem
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		schemaErr.Dataset = s.descriptor.Name
		return schemaErr
	}
	res := &FetchError{Dataset: s.descriptor.Name, URL: s.descriptor.URL(), Err: err}
	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		res.StatusCode = statusErr.StatusCode
	}
	return res
}

func (s *DataSource) schemaError(stage Stage, err error) error {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		schemaErr.Dataset = s.descriptor.Name
		if schemaErr.Stage == "" {
			schemaErr.Stage = stage
		}
		return schemaErr
	}
	return &SchemaError{Dataset: s.descriptor.Name, Stage: stage, Err: err}
}

func identity(f *frame.Frame) (*frame.Frame, error) {
	return f, nil
}
