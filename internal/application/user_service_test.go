package application

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
	"github.com/oksasatya/storefront-account/pkg/apperror"
	"github.com/oksasatya/storefront-account/pkg/helpers"
)

func newUserService(f *fixture) (*UserService, *fakeStorage, *fakeIndexer) {
	st := newFakeStorage()
	idx := &fakeIndexer{}
	return &UserService{
		Users:          f.users,
		Storage:        st,
		Index:          idx,
		Audit:          f.audit,
		Logger:         helpers.NewNopLogger(),
		AvatarMaxBytes: 1 << 10,
		Now:            f.clock.Now,
	}, st, idx
}

func strPtr(s string) *string { return &s }

func TestUpdateProfileWhitelist(t *testing.T) {
	f := newFixture()
	svc, _, idx := newUserService(f)
	alice := f.register("alice@example.com", "secret1")

	u, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Phone: strPtr("+84 912 345 678")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "+84 912 345 678", u.Phone)
	assert.Empty(t, u.Identity.PasswordHash)
	assert.Equal(t, []string{alice.ID}, idx.indexed)

	_, err = f.auth.Login(context.Background(), "alice@example.com", "secret1", RequestMeta{})
	assert.NoError(t, err, "profile update must keep the password hash")
}

// interleavingUsers runs between after every user read, standing in for a request that lands
// while the service holds its copy.
type interleavingUsers struct {
	repository.UserRepository
	between func()
}

func (r interleavingUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := r.UserRepository.GetByID(ctx, id)
	r.between()
	return u, err
}

func (r interleavingUsers) GetByIDWithSecrets(ctx context.Context, id string) (*entity.User, error) {
	u, err := r.UserRepository.GetByIDWithSecrets(ctx, id)
	r.between()
	return u, err
}

func TestAccountUpdatesKeepConcurrentSubdocumentChanges(t *testing.T) {
	f := newFixture()
	svc, _, _ := newUserService(f)
	ctx := context.Background()
	alice := f.register("alice@example.com", "secret1")

	streets := 0
	svc.Users = interleavingUsers{UserRepository: f.users, between: func() {
		streets++
		_, err := f.users.AddAddress(ctx, alice.ID, entity.Address{Street: fmt.Sprintf("%d Main St", streets), City: "Springfield", Country: "US"})
		require.NoError(t, err)
	}}

	_, err := f.users.AddToWishlist(ctx, alice.ID, entity.WishlistEntry{ProductID: "p-1", Name: "Backpack"})
	require.NoError(t, err)
	require.NoError(t, svc.ChangePassword(ctx, alice.ID, "secret1", "secret2", RequestMeta{}))
	_, err = svc.UploadAvatar(ctx, alice.ID, AvatarUpload{Body: strings.NewReader("png"), Size: 3, ContentType: "image/png"})
	require.NoError(t, err)
	u, err := svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Name: strPtr("  Alice B  ")})
	require.NoError(t, err)

	assert.Equal(t, 2, streets)
	assert.Equal(t, "Alice B", u.Name)
	assert.NotEmpty(t, u.Avatar.URL)
	assert.Len(t, u.Addresses, 2, "addresses added while the service held a stale copy must survive")
	assert.Len(t, u.Wishlist, 1)

	_, err = f.auth.Login(ctx, "alice@example.com", "secret2", RequestMeta{})
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newFixture()
	svc, _, _ := newUserService(f)
	ctx := context.Background()
	alice := f.register("alice@example.com", "secret1")

	assert.ErrorIs(t, svc.ChangePassword(ctx, alice.ID, "nope", "secret2", RequestMeta{}), ErrWrongPassword)
	require.NoError(t, svc.ChangePassword(ctx, alice.ID, "secret1", "secret2", RequestMeta{}))

	_, err := f.auth.Login(ctx, "alice@example.com", "secret2", RequestMeta{})
	assert.NoError(t, err)
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture()
	svc, st, _ := newUserService(f)
	ctx := context.Background()
	alice := f.register("alice@example.com", "secret1")

	_, err := svc.UploadAvatar(ctx, alice.ID, AvatarUpload{Body: strings.NewReader("gif"), Size: 3, ContentType: "image/gif"})
	assert.ErrorIs(t, err, ErrAvatarType)

	_, err = svc.UploadAvatar(ctx, alice.ID, AvatarUpload{Body: strings.NewReader("x"), Size: 2048, ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrAvatarTooLarge)

	first, err := svc.UploadAvatar(ctx, alice.ID, AvatarUpload{Body: strings.NewReader("png-1"), Size: 5, ContentType: "image/png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Avatar.ExternalID, "avatars/"+alice.ID+"/"))
	assert.True(t, strings.HasSuffix(first.Avatar.ExternalID, ".png"))
	assert.Equal(t, "https://cdn.test/"+first.Avatar.ExternalID, first.Avatar.URL)

	second, err := svc.UploadAvatar(ctx, alice.ID, AvatarUpload{Body: strings.NewReader("jpg-2"), Size: 5, ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Avatar.ExternalID, second.Avatar.ExternalID)
	assert.Equal(t, []string{first.Avatar.ExternalID}, st.deleted)

	st.err = errBoom
	_, err = svc.UploadAvatar(ctx, alice.ID, AvatarUpload{Body: strings.NewReader("x"), Size: 1, ContentType: "image/png"})
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
}

func TestSearchUsers(t *testing.T) {
	f := newFixture()
	svc, _, idx := newUserService(f)
	idx.hits = []*entity.User{{ID: "u1", Email: "alice@example.com"}}

	got, err := svc.SearchUsers(context.Background(), " alice ", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	idx.err = errBoom
	_, err = svc.SearchUsers(context.Background(), "alice", 10)
	assert.Equal(t, 500, apperror.HTTPStatus(err))

	svc.Index = nil
	got, err = svc.SearchUsers(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
