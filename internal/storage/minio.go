package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/config"
)

// PresignExpiry is how long generated download links stay valid. Long
// enough for the generator to fetch the document and produce a quiz.
const PresignExpiry = 1 * time.Hour

// ObjectStore wraps a MinIO/S3 bucket holding uploaded reading documents.
type ObjectStore struct {
	client *minio.Client
	bucket string
	log    zerolog.Logger
}

// NewObjectStore connects to the object storage endpoint and makes sure
// the configured bucket exists.
func NewObjectStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ObjectStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage connect: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("storage bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("storage bucket create: %w", err)
		}
	}

	return &ObjectStore{
		client: client,
		bucket: cfg.MinioBucket,
		log:    log.With().Str("component", "storage").Logger(),
	}, nil
}

// Upload stores a document and returns its object key.
func (s *ObjectStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage upload: %w", err)
	}
	s.log.Debug().Str("object", objectName).Int64("size", info.Size).Msg("document uploaded")
	return objectName, nil
}

// PresignedURL returns a time-limited download link for an object.
func (s *ObjectStore) PresignedURL(ctx context.Context, objectName string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, PresignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("storage presign: %w", err)
	}
	return u.String(), nil
}

// Remove deletes an object. Missing objects are not an error.
func (s *ObjectStore) Remove(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("storage remove: %w", err)
	}
	return nil
}
