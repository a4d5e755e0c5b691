// Package memory holds mutex-guarded repositories for tests and single-process development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	Now   func() time.Time
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User), Now: time.Now}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Addresses = append([]entity.Address(nil), u.Addresses...)
	c.Wishlist = append([]entity.WishlistEntry(nil), u.Wishlist...)
	return &c
}

func (r *UserRepository) emailOwner(email string) *entity.User {
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.Email = entity.NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	if err := u.Validate(true); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailOwner(u.Email) != nil {
		return entity.ErrEmailTaken
	}
	now := r.Now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) get(id string, secrets bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	if secrets {
		return cloneUser(u), nil
	}
	return u.Sanitized(), nil
}

func (r *UserRepository) getByEmail(email string, secrets bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u := r.emailOwner(entity.NormalizeEmail(email))
	if u == nil {
		return nil, entity.ErrUserNotFound
	}
	if secrets {
		return cloneUser(u), nil
	}
	return u.Sanitized(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.get(id, false)
}

func (r *UserRepository) GetByIDWithSecrets(ctx context.Context, id string) (*entity.User, error) {
	return r.get(id, true)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getByEmail(email, false)
}

func (r *UserRepository) GetByEmailWithSecrets(ctx context.Context, email string) (*entity.User, error) {
	return r.getByEmail(email, true)
}

func (r *UserRepository) GetByProvider(ctx context.Context, provider entity.AuthType, externalID string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Identity.Type == provider && u.Identity.ExternalID == externalID && externalID != "" {
			return u.Sanitized(), nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Sanitized())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	u.Email = entity.NormalizeEmail(u.Email)
	if err := u.Validate(true); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return entity.ErrUserNotFound
	}
	if owner := r.emailOwner(u.Email); owner != nil && owner.ID != u.ID {
		return entity.ErrEmailTaken
	}
	u.UpdatedAt = r.Now()
	r.users[u.ID] = cloneUser(u)
	return nil
}

// mutate runs fn on the stored user under the write lock.
func (r *UserRepository) mutate(id string, fn func(u *entity.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return entity.ErrUserNotFound
	}
	next := cloneUser(u)
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = r.Now()
	r.users[id] = next
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, name, phone *string) (*entity.User, error) {
	err := r.mutate(userID, func(u *entity.User) error {
		if name != nil {
			u.Name = *name
		}
		if phone != nil {
			u.Phone = *phone
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.get(userID, false)
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, userID, hash string) error {
	return r.mutate(userID, func(u *entity.User) error {
		if !u.Identity.IsLocal() {
			return entity.ErrUserNotFound
		}
		u.Identity.PasswordHash = hash
		return nil
	})
}

func (r *UserRepository) SetAvatar(ctx context.Context, userID string, a entity.Avatar) (*entity.User, error) {
	err := r.mutate(userID, func(u *entity.User) error {
		u.Avatar = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.get(userID, false)
}

func (r *UserRepository) SetCode(ctx context.Context, userID string, purpose entity.CodePurpose, code entity.OneTimeCode) error {
	return r.mutate(userID, func(u *entity.User) error {
		u.SetCode(purpose, code)
		return nil
	})
}

func (r *UserRepository) ClearCode(ctx context.Context, userID string, purpose entity.CodePurpose) error {
	return r.SetCode(ctx, userID, purpose, entity.OneTimeCode{})
}

func (r *UserRepository) consume(userID string, purpose entity.CodePurpose, code string, now time.Time, apply func(u *entity.User)) (bool, error) {
	consumed := false
	err := r.mutate(userID, func(u *entity.User) error {
		if u.Code(purpose).Check(code, now) != nil {
			return nil
		}
		apply(u)
		u.SetCode(purpose, entity.OneTimeCode{})
		consumed = true
		return nil
	})
	return consumed, err
}

func (r *UserRepository) ConsumeVerificationCode(ctx context.Context, userID, code string, now time.Time) (bool, error) {
	return r.consume(userID, entity.PurposeEmailVerification, code, now, func(u *entity.User) {
		u.IsVerified = true
	})
}

func (r *UserRepository) CommitPasswordReset(ctx context.Context, userID, code string, now time.Time, passwordHash string) (bool, error) {
	return r.consume(userID, entity.PurposePasswordReset, code, now, func(u *entity.User) {
		u.Identity.PasswordHash = passwordHash
	})
}

func clearDefaults(list []entity.Address) {
	for i := range list {
		list[i].IsDefault = false
	}
}

func (r *UserRepository) AddAddress(ctx context.Context, userID string, a entity.Address) ([]entity.Address, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var out []entity.Address
	err := r.mutate(userID, func(u *entity.User) error {
		if a.IsDefault {
			clearDefaults(u.Addresses)
		}
		u.Addresses = append(u.Addresses, a)
		out = append([]entity.Address(nil), u.Addresses...)
		return nil
	})
	return out, err
}

func (r *UserRepository) UpdateAddress(ctx context.Context, userID string, a entity.Address) ([]entity.Address, error) {
	var out []entity.Address
	err := r.mutate(userID, func(u *entity.User) error {
		idx := -1
		for i := range u.Addresses {
			if u.Addresses[i].ID == a.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return entity.ErrAddressNotFound
		}
		if a.IsDefault {
			clearDefaults(u.Addresses)
		}
		u.Addresses[idx] = a
		out = append([]entity.Address(nil), u.Addresses...)
		return nil
	})
	return out, err
}

func (r *UserRepository) DeleteAddress(ctx context.Context, userID, addressID string) ([]entity.Address, error) {
	var out []entity.Address
	err := r.mutate(userID, func(u *entity.User) error {
		kept := u.Addresses[:0:0]
		for _, a := range u.Addresses {
			if a.ID != addressID {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(u.Addresses) {
			return entity.ErrAddressNotFound
		}
		u.Addresses = kept
		out = append([]entity.Address(nil), kept...)
		return nil
	})
	return out, err
}

func (r *UserRepository) AddToWishlist(ctx context.Context, userID string, e entity.WishlistEntry) ([]entity.WishlistEntry, error) {
	var out []entity.WishlistEntry
	err := r.mutate(userID, func(u *entity.User) error {
		if !u.HasWish(e.ProductID) {
			if e.AddedAt.IsZero() {
				e.AddedAt = r.Now()
			}
			u.Wishlist = append(u.Wishlist, e)
		}
		out = append([]entity.WishlistEntry(nil), u.Wishlist...)
		return nil
	})
	return out, err
}

func (r *UserRepository) RemoveFromWishlist(ctx context.Context, userID, productRef string) ([]entity.WishlistEntry, error) {
	var out []entity.WishlistEntry
	err := r.mutate(userID, func(u *entity.User) error {
		kept := u.Wishlist[:0:0]
		for _, w := range u.Wishlist {
			if !w.Refers(productRef) {
				kept = append(kept, w)
			}
		}
		if len(kept) == len(u.Wishlist) {
			return entity.ErrNotInWishlist
		}
		u.Wishlist = kept
		out = append([]entity.WishlistEntry(nil), kept...)
		return nil
	})
	return out, err
}
