package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"zippybox-server/config"
)

// MinIO stores blobs in an S3-compatible bucket.
type MinIO struct {
	client           *minio.Client
	bucket           string
	publicURL        string
	thumbnailBaseURL string
}

var _ Store = (*MinIO)(nil)

// NewMinIO creates the MinIO client and creates the bucket if it doesn't exist
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = client.EndpointURL().String() + "/" + cfg.BucketName
	}

	return &MinIO{
		client:           client,
		bucket:           cfg.BucketName,
		publicURL:        publicURL,
		thumbnailBaseURL: cfg.ThumbnailBaseURL,
	}, nil
}

// Put uploads obj.Body to <folder>/<name> in the bucket.
func (s *MinIO) Put(ctx context.Context, obj Object) (StoredObject, error) {
	key := objectKey(obj.Folder, obj.Name)
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("put object %s: %w", key, err)
	}

	stored := StoredObject{
		Path: "/" + key,
		URL:  joinURL(s.publicURL, key),
	}
	if s.thumbnailBaseURL != "" && strings.HasPrefix(contentType, "image/") {
		stored.ThumbnailURL = joinURL(s.thumbnailBaseURL, key)
	}
	return stored, nil
}
