package posts

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const (
	cacheListKey   = "blogs:list"
	cachePostKeyNS = "blogs:post:"
)

// Cache is a byte-oriented key/value cache with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedRepository serves List and GetByID from a Cache, falling back to the
// wrapped Repository. Every successful write invalidates the list and the
// written post. Cache errors are logged and never surface to callers.
type CachedRepository struct {
	next   Repository
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

var _ Repository = (*CachedRepository)(nil)

func NewCachedRepository(next Repository, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachedRepository) List(ctx context.Context) ([]*Post, error) {
	var posts []*Post
	if r.lookup(ctx, cacheListKey, &posts) {
		return posts, nil
	}
	posts, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cacheListKey, posts)
	return posts, nil
}

func (r *CachedRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	if key, ok := r.postKey(id); ok {
		var post Post
		if r.lookup(ctx, key, &post) {
			return &post, nil
		}
	}
	p, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cachePostKeyNS+p.ID, p)
	return p, nil
}

func (r *CachedRepository) Create(ctx context.Context, f Fields, at time.Time) (*Post, error) {
	p, err := r.next.Create(ctx, f, at)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, cacheListKey)
	return p, nil
}

func (r *CachedRepository) Update(ctx context.Context, id string, f Fields, at time.Time) (*Post, error) {
	p, err := r.next.Update(ctx, id, f, at)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, cacheListKey, cachePostKeyNS+p.ID)
	return p, nil
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	keys := []string{cacheListKey}
	if key, ok := r.postKey(id); ok {
		keys = append(keys, key)
	}
	r.invalidate(ctx, keys...)
	return nil
}

// postKey is the cache key for id in the backend's canonical spelling.
// Ids the backend rejects are not cached.
func (r *CachedRepository) postKey(id string) (string, bool) {
	c, ok := r.next.(IDCanonicalizer)
	if !ok {
		return cachePostKeyNS + id, true
	}
	canonical, err := c.CanonicalID(id)
	if err != nil {
		return "", false
	}
	return cachePostKeyNS + canonical, true
}

func (r *CachedRepository) lookup(ctx context.Context, key string, dst any) bool {
	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache get failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (r *CachedRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (r *CachedRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("cache invalidate failed", "keys", keys, "error", err)
	}
}
