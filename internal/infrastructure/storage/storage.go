// Package storage puts avatar images in object storage.
package storage

import (
	"context"
	"io"

	"github.com/oksasatya/storefront-account/pkg/apperror"
)

var ErrNotConfigured = apperror.New(apperror.KindInternal, "avatar storage is not configured")

// Unconfigured rejects every call. It stands in when no bucket is set.
type Unconfigured struct{}

func (Unconfigured) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) Delete(ctx context.Context, key string) error { return ErrNotConfigured }
