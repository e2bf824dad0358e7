package ops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/identity-console/internal/constants"
)

// ErrCacheTypeMismatch is returned when a cached value has an unexpected type.
var ErrCacheTypeMismatch = errors.New("cached value has unexpected type")

// CacheOptions tune the query cache policy.
type CacheOptions struct {
	// StaleTime is how long a fetched value is served without revalidation.
	StaleTime time.Duration

	// GCTime is how long an entry may sit unread before it is evicted.
	// Zero disables storage: every read fetches, concurrent reads still share.
	GCTime time.Duration

	// Retry is the number of retries after the first failed attempt.
	Retry int

	// RetryDelay is the first backoff interval; it doubles up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// DefaultCacheOptions returns the default cache policy.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		StaleTime:     constants.DefaultStaleTime,
		GCTime:        constants.DefaultGCTime,
		Retry:         constants.DefaultQueryRetry,
		RetryDelay:    constants.DefaultRetryDelay,
		MaxRetryDelay: constants.DefaultMaxRetryDelay,
	}
}

// CacheEvent identifies what happened on a cache operation.
type CacheEvent string

// Cache events.
const (
	CacheEventHit              CacheEvent = "hit"
	CacheEventStale            CacheEvent = "stale"
	CacheEventMiss             CacheEvent = "miss"
	CacheEventShared           CacheEvent = "shared"
	CacheEventRetry            CacheEvent = "retry"
	CacheEventEvict            CacheEvent = "evict"
	CacheEventRevalidateFailed CacheEvent = "revalidate_failed"
)

// CacheObserver is notified of cache events, e.g. to feed metrics.
type CacheObserver func(event CacheEvent, key string)

// FetchFunc loads the value for a cache key.
type FetchFunc func(ctx context.Context) (interface{}, error)

// inflightCall marks a running fetch. Invalidate flags it so its result is
// handed to waiters but not stored.
type inflightCall struct {
	invalidated bool
}

type cacheEntry struct {
	value      interface{}
	startedAt  time.Time
	updatedAt  time.Time
	lastAccess time.Time
}

// QueryCache is a process-wide cache of API reads keyed by endpoint and exact
// parameters. A fresh entry is served as is; a stale entry is served while a
// background revalidation runs; a missing entry blocks on a fetch. At most one
// fetch per key is in flight and its result is delivered to every waiter.
// Retryable failures are retried with exponential backoff before surfacing.
type QueryCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	inflight map[string]*inflightCall
	group    singleflight.Group
	options  CacheOptions
	logger   Logger
	observer CacheObserver
	now      func() time.Time
}

// NewQueryCache creates a query cache. A nil options value selects
// DefaultCacheOptions.
func NewQueryCache(options *CacheOptions, logger Logger) *QueryCache {
	if options == nil {
		options = DefaultCacheOptions()
	}

	return &QueryCache{
		entries:  make(map[string]*cacheEntry),
		inflight: make(map[string]*inflightCall),
		options:  *options,
		logger:   logger,
		now:      time.Now,
	}
}

// SetObserver registers a cache event observer.
func (c *QueryCache) SetObserver(observer CacheObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observer = observer
}

// SetClock replaces the time source.
func (c *QueryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

// Options returns the active policy.
func (c *QueryCache) Options() CacheOptions {
	return c.options
}

// Fetch returns the value for key, calling fetch only when needed.
func (c *QueryCache) Fetch(ctx context.Context, key string, fetch FetchFunc) (interface{}, error) {
	c.mu.Lock()
	now := c.now()

	entry, ok := c.entries[key]
	if ok {
		entry.lastAccess = now
		value := entry.value
		fresh := now.Sub(entry.updatedAt) < c.options.StaleTime
		c.mu.Unlock()

		if fresh {
			c.notify(CacheEventHit, key)

			return value, nil
		}

		c.notify(CacheEventStale, key)
		c.revalidate(ctx, key, fetch)

		return value, nil
	}
	c.mu.Unlock()

	c.notify(CacheEventMiss, key)

	return c.load(ctx, key, fetch)
}

// Get returns the cached value for key without fetching.
func (c *QueryCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	return entry.value, true
}

// Len returns the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Invalidate drops every entry whose key starts with prefix, so the next read
// fetches from the backend. In-flight fetches for those keys are detached and
// their results are not stored. It returns the number of entries dropped.
func (c *QueryCache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			count++
		}
	}

	for key, call := range c.inflight {
		if strings.HasPrefix(key, prefix) {
			c.detach(key, call)
		}
	}

	return count
}

// Clear drops every entry and detaches every in-flight fetch.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)

	for key, call := range c.inflight {
		c.detach(key, call)
	}
}

// detach stops new readers from joining call and keeps its result out of the
// cache. The caller holds c.mu.
func (c *QueryCache) detach(key string, call *inflightCall) {
	call.invalidated = true
	c.group.Forget(key)
	delete(c.inflight, key)
}

// Cleanup evicts entries that have not been read within GCTime.
func (c *QueryCache) Cleanup() int {
	c.mu.Lock()

	now := c.now()
	evicted := make([]string, 0)

	for key, entry := range c.entries {
		if now.Sub(entry.lastAccess) >= c.options.GCTime {
			delete(c.entries, key)
			evicted = append(evicted, key)
		}
	}
	c.mu.Unlock()

	for _, key := range evicted {
		c.notify(CacheEventEvict, key)
	}

	return len(evicted)
}

// Run evicts idle entries periodically until ctx is done.
func (c *QueryCache) Run(ctx context.Context) {
	interval := c.options.GCTime / 2
	if interval < constants.MinCacheJanitorInterval {
		interval = constants.MinCacheJanitorInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

func (c *QueryCache) load(ctx context.Context, key string, fetch FetchFunc) (interface{}, error) {
	detached := context.WithoutCancel(ctx)

	results := c.group.DoChan(key, func() (interface{}, error) {
		return c.fetchWithRetry(detached, key, fetch)
	})

	select {
	case res := <-results:
		if res.Shared {
			c.notify(CacheEventShared, key)
		}

		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", key, ctx.Err())
	}
}

func (c *QueryCache) revalidate(ctx context.Context, key string, fetch FetchFunc) {
	detached := context.WithoutCancel(ctx)

	go func() {
		_, err := c.load(detached, key, fetch)
		if err != nil {
			c.notify(CacheEventRevalidateFailed, key)

			if c.logger != nil {
				c.logger.Warn("Background revalidation failed", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
	}()
}

func (c *QueryCache) fetchWithRetry(ctx context.Context, key string, fetch FetchFunc) (interface{}, error) {
	c.mu.Lock()
	startedAt := c.now()
	call := &inflightCall{}
	c.inflight[key] = call
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.inflight[key] == call {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
	}()

	var value interface{}

	operation := func() error {
		result, err := fetch(ctx)
		if err != nil {
			if !IsRetryable(err) {
				return backoff.Permanent(err)
			}

			return err
		}

		value = result

		return nil
	}

	attempt := 0
	onRetry := func(err error, wait time.Duration) {
		attempt++
		c.notify(CacheEventRetry, key)

		if c.logger != nil {
			c.logger.Debug("Retrying query", map[string]interface{}{
				"key":     key,
				"attempt": attempt,
				"wait":    wait.String(),
				"error":   err.Error(),
			})
		}
	}

	err := backoff.RetryNotify(operation, c.newBackOff(ctx), onRetry)
	if err != nil {
		return nil, err
	}

	c.store(key, value, startedAt, call)

	return value, nil
}

func (c *QueryCache) newBackOff(ctx context.Context) backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = c.options.RetryDelay
	exponential.MaxInterval = c.options.MaxRetryDelay
	exponential.Multiplier = constants.ExponentialBackoffBase
	exponential.MaxElapsedTime = 0
	exponential.Reset()

	retries := max(c.options.Retry, 0)

	return backoff.WithContext(backoff.WithMaxRetries(exponential, uint64(retries)), ctx)
}

func (c *QueryCache) store(key string, value interface{}, startedAt time.Time, call *inflightCall) {
	if c.options.GCTime <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if call.invalidated {
		return
	}

	existing, ok := c.entries[key]
	if ok && existing.startedAt.After(startedAt) {
		return
	}

	now := c.now()
	c.entries[key] = &cacheEntry{
		value:      value,
		startedAt:  startedAt,
		updatedAt:  now,
		lastAccess: now,
	}
}

func (c *QueryCache) notify(event CacheEvent, key string) {
	c.mu.Lock()
	observer := c.observer
	c.mu.Unlock()

	if observer != nil {
		observer(event, key)
	}
}

// Query runs fetch through cache under key and returns the typed value. A nil
// cache calls fetch directly.
func Query[T any](ctx context.Context, cache *QueryCache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if cache == nil {
		return fetch(ctx)
	}

	value, err := cache.Fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrCacheTypeMismatch, key)
	}

	return typed, nil
}
