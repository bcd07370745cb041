// Package storage implements the photo blob store on top of a
// MinIO / S3-compatible backend.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"homestead/internal/config"
	"homestead/internal/middleware"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoStore stores listing photos under opaque keys.
type PhotoStore struct {
	client *minio.Client
	bucket string
}

// NewPhotoStore creates the MinIO client and ensures the bucket exists.
func NewPhotoStore(cfg *config.Config) (*PhotoStore, error) {
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.StorageEndpoint, err)
	}

	ctx := context.Background()
	if err := client.MakeBucket(ctx, cfg.StorageBucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(ctx, cfg.StorageBucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", cfg.StorageBucket, err)
		}
	}

	middleware.Logger.Info("Photo store ready",
		slog.String("endpoint", cfg.StorageEndpoint),
		slog.String("bucket", cfg.StorageBucket),
	)

	return &PhotoStore{client: client, bucket: cfg.StorageBucket}, nil
}

// Put stores the blob under key with the given content type.
func (s *PhotoStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

// Delete removes the blob stored under key. Deleting a missing key is
// not an error.
func (s *PhotoStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

// URL returns the public URL of the blob stored under key.
func (s *PhotoStore) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key)
}
