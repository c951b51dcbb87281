// Package sink persists extracted frames as CSV objects in the landing zone bucket.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/wirvsvirus/landingzone/context_values"
	"github.com/wirvsvirus/landingzone/datasource"
	"github.com/wirvsvirus/landingzone/frame"
)

// ObjectStore creates or overwrites an object
type ObjectStore interface {
	Identifier() string
	Put(ctx context.Context, bucket, key string, body []byte) error
	// Location returns where an object can be found, e.g. s3://bucket/key
	Location(bucket, key string) string
}

// Receipt describes a stored object
type Receipt struct {
	Bucket   string
	Key      string
	Location string
	Rows     int
	Bytes    int
}

type Sink struct {
	store  ObjectStore
	bucket string
	scheme KeyScheme
	now    func() time.Time
}

type Option func(*Sink)

func WithKeyScheme(scheme KeyScheme) Option {
	return func(s *Sink) {
		s.scheme = scheme
	}
}

// WithClock sets the time source of timestamped keys
func WithClock(now func() time.Time) Option {
	return func(s *Sink) {
		s.now = now
	}
}

func New(store ObjectStore, bucket string, opts ...Option) (*Sink, error) {
	if store == nil {
		return nil, errors.New("object store must not be nil")
	}
	if bucket == "" {
		return nil, errors.New("bucket must not be empty")
	}
	s := &Sink{
		store:  store,
		bucket: bucket,
		scheme: KeySchemeKind,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.scheme.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) Bucket() string {
	return s.bucket
}

// Key returns the key a dataset is written to
func (s *Sink) Key(kind datasource.Kind, name string) string {
	return s.scheme.key(kind, name, s.now().UTC())
}

// Write freezes f, serialises it and stores it, replacing any previous object at the key
func (s *Sink) Write(ctx context.Context, f *frame.Frame, kind datasource.Kind, name string) (*Receipt, error) {
	key := s.Key(kind, name)
	f.Freeze()

	body, err := serializeBytes(f)
	if err != nil {
		return nil, &WriteError{Bucket: s.bucket, Key: key, Err: fmt.Errorf("serialize: %w", err)}
	}
	if err := s.store.Put(ctx, s.bucket, key, body); err != nil {
		return nil, &WriteError{Bucket: s.bucket, Key: key, Err: err}
	}

	receipt := &Receipt{
		Bucket:   s.bucket,
		Key:      key,
		Location: s.store.Location(s.bucket, key),
		Rows:     f.Len(),
		Bytes:    len(body),
	}
	logger := slog.Default()
	if runId, err := context_values.RunIdFromContext(ctx); err == nil {
		logger = logger.With("run_id", runId)
	}
	logger.Info("dataset written", "dataset", name, "store", s.store.Identifier(), "location", receipt.Location, "rows", receipt.Rows, "bytes", receipt.Bytes)
	return receipt, nil
}

// objectMetadata tags stored objects with the run which wrote them
func objectMetadata(ctx context.Context) map[string]string {
	runId, err := context_values.RunIdFromContext(ctx)
	if err != nil {
		return nil
	}
	return map[string]string{"run-id": runId}
}

// Close releases the client of the object store, if it holds one
func (s *Sink) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
