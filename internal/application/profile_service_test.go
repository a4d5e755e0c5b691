package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/infrastructure/memory"
)

func catalog() *memory.ProductRepository {
	return memory.NewProductRepository(
		&entity.Product{ID: "p-1", ExternalID: "1", Title: "Backpack", Price: 109.95, Image: "bag.jpg"},
		&entity.Product{ID: "p-2", ExternalID: "2", Title: "T-Shirt", Price: 22.3, Image: "tee.jpg"},
	)
}

func boolPtr(b bool) *bool { return &b }

func TestAddressDefaultStaysUnique(t *testing.T) {
	f := newFixture()
	svc := &ProfileService{Users: f.users, Products: catalog(), Now: f.clock.Now}
	ctx := context.Background()
	alice := f.register("alice@example.com", "secret1")

	home := AddressInput{Street: strPtr("1 Main St"), City: strPtr("Springfield"), Country: strPtr("US"), IsDefault: boolPtr(true)}
	list, err := svc.AddAddress(ctx, alice.ID, home)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)

	work := AddressInput{Street: strPtr("9 Office Rd"), City: strPtr("Shelbyville"), Country: strPtr("US"), IsDefault: boolPtr(true)}
	list, err = svc.AddAddress(ctx, alice.ID, work)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].IsDefault)
	assert.True(t, list[1].IsDefault)

	list, err = svc.UpdateAddress(ctx, alice.ID, list[0].ID, AddressInput{IsDefault: boolPtr(true), ZipCode: strPtr("12345")})
	require.NoError(t, err)
	assert.True(t, list[0].IsDefault)
	assert.Equal(t, "12345", list[0].ZipCode)
	assert.Equal(t, "1 Main St", list[0].Street)
	assert.False(t, list[1].IsDefault)

	list, err = svc.DeleteAddress(ctx, alice.ID, list[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsDefault)

	_, err = svc.UpdateAddress(ctx, alice.ID, "missing", AddressInput{})
	assert.ErrorIs(t, err, entity.ErrAddressNotFound)
	_, err = svc.DeleteAddress(ctx, alice.ID, "missing")
	assert.ErrorIs(t, err, entity.ErrAddressNotFound)
}

func TestWishlistIdempotentAndHydrated(t *testing.T) {
	f := newFixture()
	products := catalog()
	svc := &ProfileService{Users: f.users, Products: products, Now: f.clock.Now}
	ctx := context.Background()
	alice := f.register("alice@example.com", "secret1")

	list, err := svc.AddToWishlist(ctx, alice.ID, "1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p-1", list[0].ProductID)

	list, err = svc.AddToWishlist(ctx, alice.ID, "p-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.AddToWishlist(ctx, alice.ID, "999")
	assert.ErrorIs(t, err, entity.ErrProductNotFound)

	require.NoError(t, products.Upsert(ctx, &entity.Product{ExternalID: "1", Title: "Backpack v2", Price: 99.5, Image: "bag2.jpg"}))
	list, err = svc.GetWishlist(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backpack v2", list[0].Name)
	assert.Equal(t, 99.5, list[0].Price)

	list, err = svc.RemoveFromWishlist(ctx, alice.ID, "1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.RemoveFromWishlist(ctx, alice.ID, "1")
	assert.ErrorIs(t, err, entity.ErrNotInWishlist)
}

func TestRemoveWishlistEntryAfterProductLeftCatalog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register("alice@example.com", "secret1")

	svc := &ProfileService{Users: f.users, Products: catalog(), Now: f.clock.Now}
	_, err := svc.AddToWishlist(ctx, alice.ID, "p-1")
	require.NoError(t, err)
	list, err := svc.AddToWishlist(ctx, alice.ID, "2")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[1].CatalogID)

	gone := &ProfileService{Users: f.users, Products: memory.NewProductRepository(), Now: f.clock.Now}
	list, err = gone.RemoveFromWishlist(ctx, alice.ID, "2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p-1", list[0].ProductID)
	assert.Equal(t, "Backpack", list[0].Name)

	list, err = gone.RemoveFromWishlist(ctx, alice.ID, "p-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
