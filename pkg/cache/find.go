package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

// HitRecorder is notified of every lookup outcome. Nil is allowed.
type HitRecorder interface {
	CacheHit()
	CacheMiss()
}

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
)

// maxRefreshDelay bounds the random pause before a background refresh so
// that replicas hitting the same entry do not fetch in lockstep.
var maxRefreshDelay = time.Second

// entry is what actually lands in the cache. RefreshAt marks the start of
// the refresh-ahead window; hits before it are served without a fetch.
type entry[T any] struct {
	Value     T         `json:"value"`
	RefreshAt time.Time `json:"refresh_at"`
}

func newEntry[T any](value T, ttl time.Duration) entry[T] {
	return entry[T]{Value: value, RefreshAt: time.Now().Add(ttl * 3 / 4)}
}

// addTTLJitter adds up to ±15s random jitter to TTL to avoid mass expiration.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 30*time.Second {
		return ttl
	}
	jitter := time.Duration(rand.Intn(30)-15) * time.Second
	return ttl + jitter
}

func refreshDelay() time.Duration {
	if maxRefreshDelay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(maxRefreshDelay)))
}

// storeIfCurrent writes value unless key was invalidated after gen was
// taken. A write that races an invalidation is removed again.
func storeIfCurrent[T any](
	c Cacher,
	fence *Fence,
	gen uint64,
	key string,
	value T,
	ttl time.Duration,
	logger *zap.Logger,
) error {
	if fence.Changed(key, gen) {
		logger.Debug("stale cache write discarded", zap.String("key", key))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	if err := c.Set(ctx, key, newEntry(value, ttl), addTTLJitter(ttl)); err != nil {
		return err
	}
	if fence.Changed(key, gen) {
		logger.Debug("stale cache write discarded", zap.String("key", key))
		return c.Delete(ctx, key)
	}
	return nil
}

func triggerBackgroundRefresh[T any](
	c Cacher,
	sf *singleflight.Group,
	fence *Fence,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) {
	delay := refreshDelay()
	go func() {
		time.Sleep(delay)

		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			gen := fence.Generation(key)

			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed",
					zap.String("key", key),
					zap.Error(err))
				return nil, err
			}

			if err := storeIfCurrent(c, fence, gen, key, value, ttl, logger); err != nil {
				logger.Warn("failed to update cache in background",
					zap.String("key", key),
					zap.Error(err))
			} else {
				logger.Debug("cache refreshed in background", zap.String("key", key))
			}

			return value, nil
		})
	}()
}

func fetchAndStore[T any](
	ctx context.Context,
	c Cacher,
	fence *Fence,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T

	gen := fence.Generation(key)
	value, err := fn(ctx)
	if err != nil {
		return zero, err
	}

	go func(v T) {
		if err := storeIfCurrent(c, fence, gen, key, v, ttl, logger); err != nil {
			logger.Warn("failed to set cache on miss", zap.String("key", key), zap.Error(err))
		} else {
			logger.Debug("cache populated on miss", zap.String("key", key))
		}
	}(value)

	return value, nil
}

// FindAndCache implements read-through caching with singleflight and
// refresh-ahead. Cache read failures are treated as misses; fetch errors are
// returned unchanged and never cached. A hit only schedules a refresh once
// the entry has entered the last quarter of its TTL. fence may be nil.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	fence *Fence,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	rec HitRecorder,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var cached entry[T]
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil && !cached.RefreshAt.IsZero():
		logger.Debug("cache hit", zap.String("key", key))
		if rec != nil {
			rec.CacheHit()
		}
		if time.Now().After(cached.RefreshAt) {
			triggerBackgroundRefresh(c, sf, fence, key, ttl, logger, fn)
		}
		return cached.Value, nil

	case err == nil:
		logger.Debug("cache entry without refresh marker (treating as miss)", zap.String("key", key))

	case errors.Is(err, redis.Nil):
		logger.Debug("cache miss", zap.String("key", key))

	default:
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}
	if rec != nil {
		rec.CacheMiss()
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		return fetchAndStore(ctx, c, fence, key, ttl, logger, fn)
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}

	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}

	return value, nil
}

// Invalidate removes keys so the next lookup reads through. In-flight
// fetches for those keys that started earlier will not write back.
func Invalidate(ctx context.Context, c Cacher, sf *singleflight.Group, fence *Fence, keys ...string) error {
	fence.Advance(keys...)
	if sf != nil {
		for _, key := range keys {
			sf.Forget(key)
			sf.Forget(key + ":refresh")
		}
	}
	return c.Delete(ctx, keys...)
}
