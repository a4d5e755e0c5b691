package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/infrastructure/memory"
	"github.com/oksasatya/storefront-account/pkg/helpers"
)

type fakeRedis struct {
	data map[string]string
	down bool
	gets int
}

func newFakeRedis() *fakeRedis { return &fakeRedis{data: map[string]string{}} }

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.gets++
	if f.down {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.down {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestProductCacheReadThrough(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductRepository(&entity.Product{ExternalID: "1", Title: "Backpack", Price: 109.95})
	rdb := newFakeRedis()
	c := NewProductCache(store, rdb, time.Minute, helpers.NewNopLogger())

	p, err := c.FindByRef(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Backpack", p.Title)
	assert.Contains(t, rdb.data, keyProductRef+"1")

	require.NoError(t, store.Upsert(ctx, &entity.Product{ExternalID: "1", Title: "Changed underneath", Price: 1}))
	p, err = c.FindByRef(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Backpack", p.Title)
}

func TestProductCacheUpsertInvalidates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductRepository(&entity.Product{ExternalID: "1", Title: "Backpack"})
	rdb := newFakeRedis()
	c := NewProductCache(store, rdb, time.Minute, helpers.NewNopLogger())

	_, err := c.List(ctx)
	require.NoError(t, err)
	_, err = c.FindByRef(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, c.Upsert(ctx, &entity.Product{ExternalID: "1", Title: "Backpack v2"}))
	assert.NotContains(t, rdb.data, keyProductList)
	assert.NotContains(t, rdb.data, keyProductRef+"1")

	p, err := c.FindByRef(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Backpack v2", p.Title)
}

func TestProductCacheFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductRepository(&entity.Product{ExternalID: "1", Title: "Backpack"})
	rdb := newFakeRedis()
	rdb.down = true
	c := NewProductCache(store, rdb, time.Minute, helpers.NewNopLogger())

	p, err := c.FindByRef(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Backpack", p.Title)

	_, err = c.FindByRef(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrProductNotFound)

	got, err := c.FindByRefs(ctx, []string{"1", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
