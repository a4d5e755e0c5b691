package application

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
	"github.com/oksasatya/storefront-account/pkg/apperror"
	"github.com/oksasatya/storefront-account/pkg/helpers"
)

var avatarExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// UserService serves the signed-in user's account and the admin listings.
type UserService struct {
	Users          repository.UserRepository
	Storage        AvatarStorage
	Index          UserIndexer
	Audit          repository.AuditRepository
	Logger         *logrus.Logger
	AvatarMaxBytes int64
	Now            func() time.Time
}

// UpdateProfileInput carries the whitelisted profile fields; nil means unchanged.
type UpdateProfileInput struct {
	Name  *string
	Phone *string
}

type AvatarUpload struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.Users.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	out, err := s.Users.UpdateProfile(ctx, userID, trimmed(in.Name), trimmed(in.Phone))
	if err != nil {
		return nil, err
	}
	reindex(ctx, s.Index, s.Logger, out)
	return out, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string, meta RequestMeta) error {
	u, err := s.Users.GetByIDWithSecrets(ctx, userID)
	if err != nil {
		return err
	}
	if !u.Identity.IsLocal() {
		return ErrNotLocalAccount
	}
	if !helpers.CompareHashAndPassword(u.Identity.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.Users.SetPasswordHash(ctx, u.ID, hash); err != nil {
		return err
	}
	recordAudit(ctx, s.Audit, s.Logger, clock(s.Now), entity.AuditPasswordChange, u, "", meta, nil)
	return nil
}

// UploadAvatar stores a new avatar and drops the previous object once the user record points at the new one.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, up AvatarUpload) (*entity.User, error) {
	ext, ok := avatarExt[strings.ToLower(strings.TrimSpace(up.ContentType))]
	if !ok {
		return nil, ErrAvatarType
	}
	if s.AvatarMaxBytes > 0 && up.Size > s.AvatarMaxBytes {
		return nil, ErrAvatarTooLarge
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := path.Join("avatars", userID, uuid.NewString()+ext)
	url, err := s.Storage.Upload(ctx, key, up.ContentType, up.Body, up.Size)
	if err != nil {
		if _, isApp := apperror.As(err); isApp {
			return nil, err
		}
		return nil, apperror.Upstream("avatar upload failed", err)
	}
	previous := u.Avatar.ExternalID
	out, err := s.Users.SetAvatar(ctx, userID, entity.Avatar{URL: url, ExternalID: key})
	if err != nil {
		_ = s.Storage.Delete(ctx, key)
		return nil, err
	}
	if previous != "" && previous != key {
		if err := s.Storage.Delete(ctx, previous); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "key": previous}).Warn("delete old avatar failed")
		}
	}
	reindex(ctx, s.Index, s.Logger, out)
	return out, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.Users.List(ctx)
}

// SearchUsers returns an empty list when no index is configured.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]*entity.User, error) {
	if s.Index == nil {
		return []*entity.User{}, nil
	}
	users, err := s.Index.Search(ctx, strings.TrimSpace(q), size)
	if err != nil {
		return nil, apperror.Upstream("user search failed", err)
	}
	return users, nil
}
