package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

// ErrRateLimited is returned when a lookup would exceed the upstream request rate.
// The caller falls back and the address is retried on a later request.
var ErrRateLimited = errors.New("geocode rate limit reached")

// Result is a cached lookup outcome. Misses are cached too.
type Result struct {
	Point domain.Coordinates `json:"point"`
	Found bool               `json:"found"`
}

// Cache stores lookup results by normalized address.
type Cache interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Set(ctx context.Context, key string, result Result) error
}

// CachedGeocoder answers repeated addresses from a cache and paces upstream lookups.
type CachedGeocoder struct {
	next    Geocoder
	cache   Cache
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewCachedGeocoder wraps next. A nil limiter disables pacing.
func NewCachedGeocoder(next Geocoder, cache Cache, limiter *rate.Limiter, logger *zap.Logger) *CachedGeocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{next: next, cache: cache, limiter: limiter, logger: logger}
}

// Geocode implements Geocoder. Upstream errors are not cached.
func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	key := cacheKey(address)
	if key == "" {
		return domain.Coordinates{}, false, nil
	}

	cached, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("geocode cache read failed", zap.Error(err))
	} else if ok {
		return cached.Point, cached.Found, nil
	}

	if g.limiter != nil && !g.limiter.Allow() {
		return domain.Coordinates{}, false, ErrRateLimited
	}

	point, found, err := g.next.Geocode(ctx, address)
	if err != nil {
		return domain.Coordinates{}, false, err
	}
	if err := g.cache.Set(ctx, key, Result{Point: point, Found: found}); err != nil {
		g.logger.Warn("geocode cache write failed", zap.Error(err))
	}
	return point, found, nil
}

// cacheKey lower-cases the address and collapses whitespace.
func cacheKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

const redisKeyPrefix = "geocode:"

type redisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache keeps results as JSON under geocode:<address>. A zero ttl keeps them forever.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string) (Result, bool, error) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Result{}, false, nil
		}
		return Result{}, false, err
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, false, err
	}
	return result, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, result Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+key, payload, c.ttl).Err()
}

type memoryEntry struct {
	result    Result
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache keeps results in process memory. A zero ttl keeps them forever.
func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{entries: map[string]memoryEntry{}, ttl: ttl, now: time.Now}
}

func (c *memoryCache) Get(_ context.Context, key string) (Result, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Result{}, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return Result{}, false, nil
	}
	return entry.result, true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, result Result) error {
	entry := memoryEntry{result: result}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}
