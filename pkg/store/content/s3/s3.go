// Package s3 implements content storage on Amazon S3 or S3-compatible
// object storage (MinIO, Localstack, ...).
//
// Object keys mirror the cleaned relative request paths, optionally under a
// configured prefix, so a bucket can be inspected with standard tooling and
// repopulated out of band. Every request goes to S3; there is no local cache.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/arianaariaei/PyThreadServe/pkg/store/content"
)

// S3Store implements content.Store on an S3 bucket.
//
// Thread safety:
// The underlying SDK client is safe for concurrent use. Concurrent writes to
// the same key are last-write-wins under S3's consistency model.
type S3Store struct {
	client    *awss3.Client
	bucket    string
	keyPrefix string
}

// Config configures the S3 content store. The client is built by the caller
// (see pkg/config) so endpoint, credentials and retries stay in one place.
type Config struct {
	Client    *awss3.Client
	Bucket    string
	KeyPrefix string
}

// New creates an S3 store and verifies the bucket is reachable. The bucket
// must already exist.
func New(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3 content store: client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 content store: bucket is required")
	}

	s := &S3Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}

	if _, err := s.client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	}); err != nil {
		return nil, fmt.Errorf("verify bucket %q: %w", s.bucket, err)
	}

	return s, nil
}

func (s *S3Store) objectKey(path string) string {
	return s.keyPrefix + path
}

// Read downloads the object stored under path.
func (s *S3Store) Read(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("content %q: %w", path, content.ErrNotFound)
		}
		return nil, fmt.Errorf("read %q from s3: %w", path, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %q body: %w", path, err)
	}
	return data, nil
}

// Write uploads data under path with a single PutObject.
func (s *S3Store) Write(ctx context.Context, path string, data []byte) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("write %q to s3: %w", path, err)
	}
	return nil
}

// Remove deletes the object stored under path. S3 deletes are idempotent, so
// the object is checked first to keep ErrNotFound semantics consistent with
// the other backends.
func (s *S3Store) Remove(ctx context.Context, path string) error {
	key := s.objectKey(path)

	if _, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("content %q: %w", path, content.ErrNotFound)
		}
		return fmt.Errorf("head %q on s3: %w", path, err)
	}

	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("remove %q from s3: %w", path, err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources needing release.
func (s *S3Store) Close() error {
	return nil
}
