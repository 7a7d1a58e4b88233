package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/abgdnv/gocatalog/internal/model"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "catalog:product:"

var errStaleRead = errors.New("product changed during read")

// CachedStore is a read-through Redis cache in front of another ProductStore.
// Only single-record lookups are cached; the entry is dropped after every Update.
// Every Update also bumps a per-product version, and a lookup fills the cache only
// if the version it saw before reading the wrapped store is still current.
// Redis failures are logged and the wrapped store answers instead.
type CachedStore struct {
	next   ProductStore
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps next with a cache kept in client for ttl.
func NewCachedStore(next ProductStore, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedStore) Insert(ctx context.Context, product model.Product) (*model.Product, error) {
	return c.next.Insert(ctx, product)
}

func (c *CachedStore) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	key := cacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached model.Product
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return &cached, nil
		}
		c.logger.WarnContext(ctx, "discarding malformed cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	version, verErr := c.version(ctx, id)

	product, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if verErr == nil {
		c.put(ctx, product, version)
	}
	return product, nil
}

func (c *CachedStore) FindAll(ctx context.Context) ([]model.Product, error) {
	return c.next.FindAll(ctx)
}

func (c *CachedStore) FindPage(ctx context.Context, filter model.Filter, page model.PageRequest) ([]model.Product, int64, error) {
	return c.next.FindPage(ctx, filter, page)
}

func (c *CachedStore) FindBy(ctx context.Context, filter model.Filter) ([]model.Product, error) {
	return c.next.FindBy(ctx, filter)
}

func (c *CachedStore) Update(ctx context.Context, id int64, modify func(product *model.Product) error) (*model.Product, error) {
	updated, err := c.next.Update(ctx, id, modify)
	c.evict(ctx, id)
	return updated, err
}

func (c *CachedStore) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

// version returns the current update counter of a product; a missing counter is zero.
func (c *CachedStore) version(ctx context.Context, id int64) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.logger.WarnContext(ctx, "cache version read failed", "id", id, "error", err)
	}
	return v, err
}

// put stores product unless an Update bumped its version after seen was read.
func (c *CachedStore) put(ctx context.Context, product *model.Product, seen int64) {
	data, err := json.Marshal(product)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode cache entry", "id", product.ID, "error", err)
		return
	}

	verKey := versionKey(product.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != seen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(product.ID), data, c.ttl)
			return nil
		})
		return err
	}, verKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		c.logger.DebugContext(ctx, "skipping cache fill for updated product", "id", product.ID)
	default:
		c.logger.WarnContext(ctx, "cache write failed", "id", product.ID, "error", err)
	}
}

// evict bumps the version before dropping the entry so in-flight lookups cannot refill it.
func (c *CachedStore) evict(ctx context.Context, id int64) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		pipe.Del(ctx, cacheKey(id))
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "cache eviction failed", "id", id, "error", err)
	}
}

// Keys of one product share a hash tag so they land in the same cluster slot.
func cacheKey(id int64) string {
	return cacheKeyPrefix + "{" + strconv.FormatInt(id, 10) + "}"
}

func versionKey(id int64) string {
	return cacheKey(id) + ":version"
}
