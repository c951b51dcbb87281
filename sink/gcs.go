package sink

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/wirvsvirus/landingzone/connection"
)

type GCSStore struct {
	client *storage.Client
}

func NewGCSStore(ctx context.Context, conn *connection.GcpConnection) (*GCSStore, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	client, err := conn.StorageClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSStore{client: client}, nil
}

func (s *GCSStore) Identifier() string {
	return "gcp_storage"
}

func (s *GCSStore) Put(ctx context.Context, bucket, key string, body []byte) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = csvContentType
	w.Metadata = objectMetadata(ctx)
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("error writing object: %w", err)
	}
	// the object only exists once Close succeeds
	if err := w.Close(); err != nil {
		return fmt.Errorf("error closing object writer: %w", err)
	}
	return nil
}

func (s *GCSStore) Location(bucket, key string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, key)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
