package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/oksasatya/storefront-account/config"
)

// S3Client is the part of *s3.Client used here.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Storage struct {
	client  S3Client
	bucket  string
	baseURL string
}

// NewS3Storage builds a client from cfg. Endpoint and ForcePathStyle cover S3-compatible services such as MinIO.
func NewS3Storage(ctx context.Context, cfg *config.Config) (*S3Storage, error) {
	if cfg.S3Bucket == "" || cfg.S3Region == "" {
		return nil, ErrNotConfigured
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3ForcePathStyle
	})
	return NewS3StorageWithClient(client, cfg.S3Bucket, s3BaseURL(cfg)), nil
}

func NewS3StorageWithClient(client S3Client, bucket, baseURL string) *S3Storage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &S3Storage{client: client, bucket: bucket, baseURL: baseURL}
}

func s3BaseURL(cfg *config.Config) string {
	switch {
	case cfg.S3BaseURL != "":
		return cfg.S3BaseURL
	case cfg.S3Endpoint != "":
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.S3Endpoint, "/"), cfg.S3Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
}

func (s *S3Storage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.baseURL + key, nil
}

// Delete removes key; a missing key is not an error.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return nil
	}
	return err
}
