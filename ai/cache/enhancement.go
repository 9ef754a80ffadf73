package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Defaults for the enhancement cache.
const (
	DefaultCapacity = 100
	DefaultTTL      = time.Hour
)

// Config configures an EnhancementCache.
type Config struct {
	Capacity int           // maximum entries (default: 100)
	TTL      time.Duration // entry lifetime (default: 1h)
}

// ComputeFunc produces the value for a cache miss.
type ComputeFunc func(ctx context.Context) (string, error)

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Shared int64 `json:"shared"` // misses served by another caller's in-flight request
	Size   int   `json:"size"`
}

// EnhancementCache caches enhancement results by (normalized text, mode) and collapses
// concurrent misses for the same key into a single computation.
type EnhancementCache struct {
	store *Store[string, string]
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	shared atomic.Int64
}

// New creates an enhancement cache.
func New(cfg Config) *EnhancementCache {
	return &EnhancementCache{
		store: NewStore[string, string](cfg.Capacity, cfg.TTL),
	}
}

// Key derives the deterministic cache key for text and mode.
func Key(text, mode string) string {
	sum := sha256.Sum256([]byte(normalize(text) + "\x00" + mode))
	return hex.EncodeToString(sum[:])
}

// normalize makes keys insensitive to line-ending style and surrounding whitespace.
func normalize(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
}

// Get returns the cached result for text and mode, if any.
func (c *EnhancementCache) Get(text, mode string) (string, bool) {
	return c.store.Get(Key(text, mode))
}

// Set stores result for text and mode.
func (c *EnhancementCache) Set(text, mode, result string) {
	c.store.Set(Key(text, mode), result)
}

// GetOrCompute returns the cached value when present (hit == true) without calling fn.
// Otherwise it joins the in-flight computation for the same key, or starts fn.
// Successful results are stored; failures are not, and the in-flight entry is released
// either way so the next call retries.
//
// fn runs detached from ctx cancellation: a caller that gives up returns ctx.Err() while
// the shared computation still completes and fills the cache.
func (c *EnhancementCache) GetOrCompute(ctx context.Context, text, mode string, fn ComputeFunc) (string, bool, error) {
	key := Key(text, mode)
	if v, ok := c.store.Get(key); ok {
		c.hits.Add(1)
		return v, true, nil
	}
	c.misses.Add(1)

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A flight that settled between the lookup above and this call already stored it.
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}
		v, err := fn(flightCtx)
		if err != nil {
			return "", err
		}
		c.store.Set(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.shared.Add(1)
		}
		if res.Err != nil {
			return "", false, res.Err
		}
		v, ok := res.Val.(string)
		if !ok {
			return "", false, fmt.Errorf("cache: unexpected value type %T", res.Val)
		}
		return v, false, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// Stats returns a snapshot of cache counters.
func (c *EnhancementCache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Shared: c.shared.Load(),
		Size:   c.store.Len(),
	}
}

// Clear drops every cached result.
func (c *EnhancementCache) Clear() {
	c.store.Clear()
}
