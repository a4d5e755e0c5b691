package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

// ProfileService manages the address book and wishlist embedded in the user document.
type ProfileService struct {
	Users    repository.UserRepository
	Products repository.ProductRepository
	Now      func() time.Time
}

// AddressInput is a full address for create, or a partial one for update; nil means unchanged.
type AddressInput struct {
	Street    *string
	City      *string
	State     *string
	ZipCode   *string
	Country   *string
	IsDefault *bool
}

func (in AddressInput) apply(a *entity.Address) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&a.Street, in.Street)
	set(&a.City, in.City)
	set(&a.State, in.State)
	set(&a.ZipCode, in.ZipCode)
	set(&a.Country, in.Country)
	if in.IsDefault != nil {
		a.IsDefault = *in.IsDefault
	}
}

func (s *ProfileService) AddAddress(ctx context.Context, userID string, in AddressInput) ([]entity.Address, error) {
	var a entity.Address
	in.apply(&a)
	return s.Users.AddAddress(ctx, userID, a)
}

func (s *ProfileService) UpdateAddress(ctx context.Context, userID, addressID string, in AddressInput) ([]entity.Address, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range u.Addresses {
		if a.ID == addressID {
			in.apply(&a)
			return s.Users.UpdateAddress(ctx, userID, a)
		}
	}
	return nil, entity.ErrAddressNotFound
}

// DeleteAddress removes the address. Deleting the default leaves the user without one.
func (s *ProfileService) DeleteAddress(ctx context.Context, userID, addressID string) ([]entity.Address, error) {
	return s.Users.DeleteAddress(ctx, userID, addressID)
}

func (s *ProfileService) GetWishlist(ctx context.Context, userID string) ([]entity.WishlistEntry, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, u.Wishlist), nil
}

// AddToWishlist accepts a store or catalog product id and is a no-op for products already listed.
func (s *ProfileService) AddToWishlist(ctx context.Context, userID, productRef string) ([]entity.WishlistEntry, error) {
	p, err := s.Products.FindByRef(ctx, productRef)
	if err != nil {
		return nil, err
	}
	e := p.WishlistEntry()
	e.AddedAt = clock(s.Now).UTC()
	list, err := s.Users.AddToWishlist(ctx, userID, e)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, list), nil
}

// RemoveFromWishlist accepts a store or catalog product id, including for products no longer in the catalog.
func (s *ProfileService) RemoveFromWishlist(ctx context.Context, userID, productRef string) ([]entity.WishlistEntry, error) {
	ref := productRef
	if p, err := s.Products.FindByRef(ctx, productRef); err == nil {
		ref = p.ID
	} else if !errors.Is(err, entity.ErrProductNotFound) {
		return nil, err
	}
	list, err := s.Users.RemoveFromWishlist(ctx, userID, ref)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, list), nil
}

// hydrate refreshes display fields from the live catalog. Entries whose product is gone keep their snapshot.
func (s *ProfileService) hydrate(ctx context.Context, list []entity.WishlistEntry) []entity.WishlistEntry {
	out := make([]entity.WishlistEntry, len(list))
	copy(out, list)
	if len(out) == 0 {
		return out
	}
	refs := make([]string, 0, len(out))
	for _, e := range out {
		refs = append(refs, e.ProductID)
	}
	live, err := s.Products.FindByRefs(ctx, refs)
	if err != nil {
		return out
	}
	for i := range out {
		if p, ok := live[out[i].ProductID]; ok {
			out[i].Name = p.Title
			out[i].Price = p.Price
			out[i].Image = p.Image
		}
	}
	return out
}
