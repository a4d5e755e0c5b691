package repository

import (
	"context"
	"time"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

// UserRepository is the credential store. Plain reads never return secrets;
// the *WithSecrets reads are for callers that are about to check a password or code.
type UserRepository interface {
	// Create fails with entity.ErrEmailTaken if the email is registered under any auth type.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByIDWithSecrets(ctx context.Context, id string) (*entity.User, error)
	GetByEmailWithSecrets(ctx context.Context, email string) (*entity.User, error)
	GetByProvider(ctx context.Context, provider entity.AuthType, externalID string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)

	// Save persists the whole document after re-validating it. u must have been loaded with secrets.
	Save(ctx context.Context, u *entity.User) error
	// The targeted setters below touch only their own fields, so concurrent address or
	// wishlist updates survive. Nil profile fields are left unchanged.
	UpdateProfile(ctx context.Context, userID string, name, phone *string) (*entity.User, error)
	// SetPasswordHash only matches local accounts.
	SetPasswordHash(ctx context.Context, userID, hash string) error
	SetAvatar(ctx context.Context, userID string, a entity.Avatar) (*entity.User, error)

	// SetCode stores a pending code for purpose, replacing any previous one.
	SetCode(ctx context.Context, userID string, purpose entity.CodePurpose, code entity.OneTimeCode) error
	ClearCode(ctx context.Context, userID string, purpose entity.CodePurpose) error
	// ConsumeVerificationCode marks the user verified and clears the code only if code is still
	// pending and unexpired at now. It reports whether this call consumed it.
	ConsumeVerificationCode(ctx context.Context, userID, code string, now time.Time) (bool, error)
	// CommitPasswordReset sets passwordHash and clears the reset code under the same condition.
	CommitPasswordReset(ctx context.Context, userID, code string, now time.Time, passwordHash string) (bool, error)

	// Address mutations return the resulting list. Setting IsDefault clears it on every sibling atomically.
	// AddAddress assigns the id when a.ID is empty.
	AddAddress(ctx context.Context, userID string, a entity.Address) ([]entity.Address, error)
	UpdateAddress(ctx context.Context, userID string, a entity.Address) ([]entity.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) ([]entity.Address, error)

	// AddToWishlist is a no-op when an entry for the same product exists.
	AddToWishlist(ctx context.Context, userID string, e entity.WishlistEntry) ([]entity.WishlistEntry, error)
	// RemoveFromWishlist matches productRef against the store id or the catalog id of each entry.
	RemoveFromWishlist(ctx context.Context, userID, productRef string) ([]entity.WishlistEntry, error)
}
