// Package cache wraps repositories with a Redis read-through layer.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
	"github.com/oksasatya/storefront-account/pkg/helpers"
)

const (
	keyProductRef  = "product:ref:"
	keyProductList = "product:list"
)

// Store is the subset of *redis.Client used by the cache.
type Store interface {
	helpers.RedisGetter
	helpers.RedisSetter
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ProductCache caches product lookups. Redis errors are logged and the call falls through to the store.
type ProductCache struct {
	next repository.ProductRepository
	rdb  Store
	ttl  time.Duration
	log  *logrus.Logger
}

var _ repository.ProductRepository = (*ProductCache)(nil)

func NewProductCache(next repository.ProductRepository, rdb Store, ttl time.Duration, log *logrus.Logger) *ProductCache {
	return &ProductCache{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *ProductCache) warn(err error, key string) {
	if c.log != nil {
		c.log.WithError(err).WithField("key", key).Warn("product cache unavailable")
	}
}

func (c *ProductCache) FindByRef(ctx context.Context, ref string) (*entity.Product, error) {
	key := keyProductRef + ref
	var p entity.Product
	hit, err := helpers.RedisGetJSON(ctx, c.rdb, key, &p)
	if err != nil {
		c.warn(err, key)
	}
	if hit {
		return &p, nil
	}
	got, err := c.next.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := helpers.RedisSetJSON(ctx, c.rdb, key, got, c.ttl); err != nil {
		c.warn(err, key)
	}
	return got, nil
}

func (c *ProductCache) FindByRefs(ctx context.Context, refs []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(refs))
	var missing []string
	for _, ref := range refs {
		var p entity.Product
		hit, err := helpers.RedisGetJSON(ctx, c.rdb, keyProductRef+ref, &p)
		if err != nil {
			c.warn(err, keyProductRef+ref)
		}
		if hit {
			out[ref] = &p
			continue
		}
		missing = append(missing, ref)
	}
	if len(missing) == 0 {
		return out, nil
	}
	found, err := c.next.FindByRefs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for ref, p := range found {
		out[ref] = p
		if err := helpers.RedisSetJSON(ctx, c.rdb, keyProductRef+ref, p, c.ttl); err != nil {
			c.warn(err, keyProductRef+ref)
		}
	}
	return out, nil
}

func (c *ProductCache) List(ctx context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	hit, err := helpers.RedisGetJSON(ctx, c.rdb, keyProductList, &list)
	if err != nil {
		c.warn(err, keyProductList)
	}
	if hit {
		return list, nil
	}
	list, err = c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := helpers.RedisSetJSON(ctx, c.rdb, keyProductList, list, c.ttl); err != nil {
		c.warn(err, keyProductList)
	}
	return list, nil
}

// Upsert writes through and drops the list and both ref keys of the product.
func (c *ProductCache) Upsert(ctx context.Context, p *entity.Product) error {
	if err := c.next.Upsert(ctx, p); err != nil {
		return err
	}
	keys := []string{keyProductList, keyProductRef + p.ExternalID}
	if p.ID != "" {
		keys = append(keys, keyProductRef+p.ID)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.warn(err, keyProductList)
	}
	return nil
}
