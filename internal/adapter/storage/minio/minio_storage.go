package minio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/northtrade/marketplace/ingestion-service/internal/config"
	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
)

// ObjectStorage stores image bytes in a MinIO (S3-compatible) bucket.
type ObjectStorage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewObjectStorage builds the MinIO client and ensures the bucket exists.
func NewObjectStorage(cfg *config.MinIOConfig, log *logger.Logger) (*ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	err = client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), cfg.Bucket)
		if errBucketExists == nil && exists {
			log.Info("Bucket already exists", zap.String("bucket", cfg.Bucket))
		} else {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errBucketExists)
		}
	} else {
		log.Info("Bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &ObjectStorage{client: client, bucket: cfg.Bucket, logger: log}, nil
}

// Put uploads data under key with the given content type.
func (s *ObjectStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}

	s.logger.Debug("Object uploaded",
		zap.String("bucket", info.Bucket),
		zap.String("key", info.Key),
		zap.Int64("size", info.Size),
		zap.String("content_type", contentType),
	)
	return nil
}
