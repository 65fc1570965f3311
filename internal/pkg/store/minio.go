package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds the S3-compatible endpoint settings.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// MinIOStore keeps objects in a single bucket, named by content digest.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates the client and makes sure the bucket exists.
func NewMinIOStore(ctx context.Context, cfg MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStore{client: client, bucket: cfg.BucketName}, nil
}

func (s *MinIOStore) Name() string {
	return "minio"
}

// Upload writes data under its SHA-256, falling back to the given name.
func (s *MinIOStore) Upload(ctx context.Context, data []byte, meta Meta) (string, error) {
	object := objectName(meta)
	if object == "" {
		return "", fmt.Errorf("minio: object needs a digest or a name")
	}

	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: meta.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio: put %s: %w", object, err)
	}
	return object, nil
}

func (s *MinIOStore) Download(ctx context.Context, cid string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, cid, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", cid, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("minio: read %s: %w", cid, err)
	}
	return data, nil
}

func objectName(meta Meta) string {
	if meta.SHA256 != "" {
		return "assets/" + meta.SHA256
	}
	return meta.Name
}
