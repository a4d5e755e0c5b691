package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/oksasatya/storefront-account/config"
	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

// testDB connects to MONGODB_TEST_URL or skips.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	client, err := Connect(ctx, &config.Config{
		MongoURL:            url,
		MongoConnectTimeout: 5 * time.Second,
		MongoMaxPoolSize:    5,
		MongoRetryAttempts:  1,
	}, nil)
	require.NoError(t, err)
	db := client.Database("storefront_test_" + bson.NewObjectID().Hex())
	require.NoError(t, EnsureIndexes(ctx, db))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestUserRepositoryIntegration(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	u := &entity.User{Email: "Alice@Example.com", Name: "Alice", Identity: entity.LocalIdentity("hash")}
	require.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, &entity.User{Email: "alice@example.com", Identity: entity.LocalIdentity("x")}), entity.ErrEmailTaken)

	plain, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, plain.Identity.PasswordHash)

	now := time.Now().UTC()
	require.NoError(t, repo.SetCode(ctx, u.ID, entity.PurposeEmailVerification, entity.NewOneTimeCode("123456", now, 10*time.Minute)))
	ok, err := repo.ConsumeVerificationCode(ctx, u.ID, "123456", now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ConsumeVerificationCode(ctx, u.ID, "123456", now)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.AddAddress(ctx, u.ID, entity.Address{Street: "1 Main", IsDefault: true})
	require.NoError(t, err)
	list, err := repo.AddAddress(ctx, u.ID, entity.Address{Street: "2 Main", IsDefault: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].IsDefault)
	assert.True(t, list[1].IsDefault)

	list, err = repo.UpdateAddress(ctx, u.ID, entity.Address{ID: list[0].ID, Street: "1 Main St", IsDefault: true})
	require.NoError(t, err)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	e := entity.WishlistEntry{ProductID: "p1", Name: "Backpack", Price: 109.95}
	_, err = repo.AddToWishlist(ctx, u.ID, e)
	require.NoError(t, err)
	wl, err := repo.AddToWishlist(ctx, u.ID, e)
	require.NoError(t, err)
	assert.Len(t, wl, 1)
	_, err = repo.RemoveFromWishlist(ctx, u.ID, "p2")
	assert.ErrorIs(t, err, entity.ErrNotInWishlist)

	_, err = repo.AddToWishlist(ctx, u.ID, entity.WishlistEntry{ProductID: "p3", CatalogID: "3", Name: "Jacket"})
	require.NoError(t, err)
	wl, err = repo.RemoveFromWishlist(ctx, u.ID, "3")
	require.NoError(t, err)
	assert.Len(t, wl, 1)

	updated, err := repo.UpdateProfile(ctx, u.ID, nil, strPtr("+1 555 0100"))
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "+1 555 0100", updated.Phone)
	assert.Len(t, updated.Addresses, 2)
	assert.Len(t, updated.Wishlist, 1)
	assert.Empty(t, updated.Identity.PasswordHash)

	updated, err = repo.SetAvatar(ctx, u.ID, entity.Avatar{URL: "https://cdn.test/a.png", ExternalID: "avatars/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "avatars/a.png", updated.Avatar.ExternalID)
	assert.Len(t, updated.Addresses, 2)

	require.NoError(t, repo.SetPasswordHash(ctx, u.ID, "hash-2"))
	full, err := repo.GetByIDWithSecrets(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", full.Identity.PasswordHash)
	assert.Len(t, full.Wishlist, 1)

	g := &entity.User{Email: "gina@example.com", Identity: entity.GoogleIdentity("sub-1")}
	require.NoError(t, repo.Create(ctx, g))
	assert.ErrorIs(t, repo.SetPasswordHash(ctx, g.ID, "hash"), entity.ErrUserNotFound)
}

func strPtr(s string) *string { return &s }
