package storage

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pptx-quiz-service/internal/config"
)

// ObjectStore is the object-storage surface the pipeline needs: fetch an
// uploaded presentation to a scratch file and delete it afterward.
type ObjectStore interface {
	DownloadToFile(ctx context.Context, objectPath, localPath string) error
	Remove(ctx context.Context, objectPath string) error
}

// MinioStore is the S3-compatible implementation.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStore{client: client, bucket: cfg.StorageBucket}, nil
}

func (s *MinioStore) DownloadToFile(ctx context.Context, objectPath, localPath string) error {
	return s.client.FGetObject(ctx, s.bucket, objectPath, localPath, minio.GetObjectOptions{})
}

func (s *MinioStore) Remove(ctx context.Context, objectPath string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectPath, minio.RemoveObjectOptions{})
}
