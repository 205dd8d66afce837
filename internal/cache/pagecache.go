package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"blogfeed/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// PageCache caches rendered pages of one listing under a generation counter.
// Invalidate bumps the generation so every cached page of the listing is dropped at once.
type PageCache[T any] struct {
	name string
	ttl  time.Duration
}

// NewPageCache returns a cache named name whose pages live for ttl.
func NewPageCache[T any](name string, ttl time.Duration) *PageCache[T] {
	return &PageCache[T]{name: name, ttl: ttl}
}

// TTL returns the page lifetime.
func (p *PageCache[T]) TTL() time.Duration {
	return p.ttl
}

func (p *PageCache[T]) generationKey() string {
	return p.name + ":gen"
}

func (p *PageCache[T]) generation(ctx context.Context) int64 {
	rdb := client
	if rdb == nil {
		return 0
	}
	raw, err := rdb.Get(ctx, p.generationKey()).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "page cache generation read failed", "cache", p.name, "error", err)
		}
		return 0
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return gen
}

// Key returns the current key for page number n.
func (p *PageCache[T]) Key(ctx context.Context, n int) string {
	return fmt.Sprintf("%s:v%d:page:%d", p.name, p.generation(ctx), n)
}

// Fetch returns page n from the cache or from fetch.
func (p *PageCache[T]) Fetch(ctx context.Context, n int, fetch func(context.Context) (T, error)) (T, Result, error) {
	if client == nil || p.ttl <= 0 {
		v, err := fetch(ctx)
		return v, Bypass, err
	}
	return Aside(ctx, p.Key(ctx, n), p.ttl, fetch)
}

// Invalidate drops every cached page of this listing.
func (p *PageCache[T]) Invalidate(ctx context.Context) {
	rdb := client
	if rdb == nil {
		return
	}
	if err := rdb.Incr(ctx, p.generationKey()).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "page cache invalidation failed", "cache", p.name, "error", err)
	}
}
