package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"blogfeed/internal/middleware"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Result describes how a cache-aside lookup was served.
type Result string

const (
	Hit    Result = "hit"
	Miss   Result = "miss"
	Bypass Result = "bypass"
	Failed Result = "error"
)

var flights singleflight.Group

// Aside returns the JSON value cached at key, or calls fetch and stores its result for ttl.
// Concurrent misses for the same key share one fetch. A nil client or a non-positive ttl
// calls fetch directly. Redis failures fall through to fetch.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, Result, error) {
	rdb := client
	if rdb == nil || ttl <= 0 {
		v, err := fetch(ctx)
		return v, Bypass, err
	}

	result := Miss
	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, Hit, nil
		}
		middleware.Logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		result = Failed
	}

	v, err, _ := flights.Do(key, func() (interface{}, error) {
		fresh, err := fetch(ctx)
		if err != nil {
			return fresh, err
		}
		if encoded, jsonErr := json.Marshal(fresh); jsonErr == nil {
			if setErr := rdb.Set(ctx, key, encoded, ttl).Err(); setErr != nil {
				middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", setErr)
			}
		}
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, result, err
	}
	return v.(T), result, nil
}
