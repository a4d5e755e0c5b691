package storage

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/storefront-account/pkg/helpers"
)

type GCSStorage struct {
	client *storage.Client
	bucket string
}

func NewGCSStorage(client *storage.Client, bucket string) *GCSStorage {
	return &GCSStorage{client: client, bucket: bucket}
}

func (s *GCSStorage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, key, contentType, r)
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	return helpers.DeleteObject(ctx, s.client, s.bucket, key)
}
