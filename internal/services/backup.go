package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"labstock/internal/models"
)

// BackupService mirrors snapshot artifacts to object storage for off-site
// retention. The local file store stays authoritative; uploads are best
// effort and never block a save.
type BackupService interface {
	UploadSnapshot(ctx context.Context, store string, ref models.SnapshotRef, body io.Reader, size int64) error
	EnsureBucketExists(ctx context.Context, bucketName string) error
}

type minioBackup struct {
	client *minio.Client
	bucket string
}

func NewMinioBackupService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (BackupService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioBackup{client: client, bucket: bucket}, nil
}

func (m *minioBackup) UploadSnapshot(ctx context.Context, store string, ref models.SnapshotRef, body io.Reader, size int64) error {
	object := path.Join(store, ref.Bucket, ref.Name+".json")
	_, err := m.client.PutObject(ctx, m.bucket, object, body, size, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload snapshot %s: %w", object, err)
	}
	return nil
}

func (m *minioBackup) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}
