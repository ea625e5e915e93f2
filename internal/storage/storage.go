// Package storage uploads original document bytes to S3-compatible object
// storage so every analysis keeps an auditable copy of its input.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/docuflow/document-analyzer/internal/common"
)

// ObjectStorage uploads file content and returns the object key.
type ObjectStorage interface {
	Upload(ctx context.Context, content []byte, filename, prefix string) (string, error)
}

var (
	sharedClient *minio.Client
	clientOnce   sync.Once
	clientErr    error
)

// sharedMinio builds the process-wide MinIO client exactly once; the client
// is safe for concurrent use and cheap to share across analyses.
func sharedMinio(cfg common.StorageConfig) (*minio.Client, error) {
	clientOnce.Do(func() {
		sharedClient, clientErr = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
	})
	return sharedClient, clientErr
}

// MinioStorage implements ObjectStorage on a MinIO/S3 bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

func NewMinioStorage(cfg common.StorageConfig, logger *slog.Logger) (*MinioStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := sharedMinio(cfg)
	if err != nil {
		return nil, common.WrapError(err, "create storage client")
	}
	return &MinioStorage{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// EnsureBucket creates the configured bucket when it does not exist yet.
func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return common.WrapError(err, "check bucket")
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return common.WrapError(err, "create bucket")
	}
	return nil
}

// Upload stores content under "<prefix>/<uuid>/<filename>" and returns the
// key. The random segment keeps repeated uploads of the same file distinct.
func (s *MinioStorage) Upload(ctx context.Context, content []byte, filename, prefix string) (string, error) {
	key := fmt.Sprintf("%s/%s/%s", prefix, uuid.New(), filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{})
	if err != nil {
		s.logger.Error("storage.upload.failed", "key", key, "error", err)
		return "", fmt.Errorf("%w: put object %q: %v", common.ErrStorage, key, err)
	}
	s.logger.Debug("storage.upload.ok", "key", key, "bytes", len(content))
	return key, nil
}
