package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

// RequestMeta is the caller information recorded in audit entries and emails.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// CodeMessage is a one-time code on its way to the user's inbox.
type CodeMessage struct {
	To        string
	Name      string
	Code      string
	Purpose   entity.CodePurpose
	IssuedAt  time.Time
	ExpiresAt time.Time
	IP        string
	UserAgent string
}

type CodeMailer interface {
	SendCode(ctx context.Context, msg CodeMessage) error
}

type AvatarStorage interface {
	// Upload stores r under key and returns the public URL.
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// IdentityResolver turns a provider credential (ID token or authorization code) into an identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (entity.ExternalIdentity, error)
}

type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q string, size int) ([]*entity.User, error)
}
