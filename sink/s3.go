package sink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/wirvsvirus/landingzone/connection"
)

const csvContentType = "text/csv; charset=utf-8"

// s3PutAPI is the part of the S3 client used by S3Store
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client s3PutAPI
}

func NewS3Store(ctx context.Context, conn *connection.AwsConnection) (*S3Store, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	client, err := conn.S3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating S3 client: %w", err)
	}
	return &S3Store{client: client}, nil
}

func (s *S3Store) Identifier() string {
	return "aws_s3"
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(csvContentType),
		Metadata:      objectMetadata(ctx),
	})
	return err
}

func (s *S3Store) Location(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}
