// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package discovery

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vechain/moot/cache"
	"github.com/vechain/moot/co"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

const (
	// DefaultCacheTTL is how long a cached capability stays valid.
	DefaultCacheTTL = 24 * time.Hour
	// DefaultMaxEntries bounds the number of cached capabilities.
	DefaultMaxEntries = 1000
	// DefaultWarmupLimit bounds how many records are loaded at construction.
	DefaultWarmupLimit = 1000
	// DefaultRefreshInterval is the period of the background refresh sweep.
	DefaultRefreshInterval = time.Hour

	// refreshAgeFactor picks entries for refresh once their age passes this
	// fraction of the TTL.
	refreshAgeFactor = 0.8
	refreshFanout    = 8
)

// CacheOptions tunes the capability cache. Zero values select defaults.
type CacheOptions struct {
	TTL             time.Duration
	MaxEntries      int
	WarmupLimit     int
	RefreshInterval time.Duration
}

func (o CacheOptions) withDefaults() CacheOptions {
	if o.TTL <= 0 {
		o.TTL = DefaultCacheTTL
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.WarmupLimit <= 0 {
		o.WarmupLimit = DefaultWarmupLimit
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	return o
}

type cacheEntry struct {
	capability *Capability
	insertedAt time.Time
}

// CacheMetrics is a point-in-time snapshot of cache activity.
type CacheMetrics struct {
	Hits         int64
	Misses       int64
	RefreshCount int64
	Evictions    int64
	Size         int
}

// Cache keeps the freshest known capability per agent pubkey, bounded by LRU
// eviction and a TTL. A background task refreshes aging entries from the
// query service until Close is called.
type Cache struct {
	query *QueryService
	opts  CacheOptions
	lru   *cache.LRU

	stats     cache.Stats
	refreshes atomic.Int64
	evictions atomic.Int64

	group    singleflight.Group
	sweeping atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	goes   co.Goes
}

// NewCache builds the cache, warms it up from the record store and starts the
// background refresh task. A warm-up failure leaves the cache cold but usable.
func NewCache(query *QueryService, opts CacheOptions) (*Cache, error) {
	opts = opts.withDefaults()
	lru, err := cache.NewLRU(opts.MaxEntries)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		query:  query,
		opts:   opts,
		lru:    lru,
		ctx:    ctx,
		cancel: cancel,
	}
	c.warmup()
	c.goes.Go(c.housekeeping)
	return c, nil
}

// Close stops the background refresh task and waits for it to finish.
func (c *Cache) Close() {
	c.cancel()
	c.goes.Wait()
}

// Get returns the cached capability for the pubkey. Expired entries report a
// miss and stay untouched until the next sweep replaces or evicts them.
func (c *Cache) Get(pubkey moot.PubKey) (*Capability, bool) {
	v, ok := c.lru.Peek(pubkey)
	if !ok {
		c.miss()
		return nil, false
	}
	ent := v.(*cacheEntry)
	if time.Since(ent.insertedAt) >= c.opts.TTL {
		c.miss()
		return nil, false
	}
	c.lru.Get(pubkey) // bump recency
	c.stats.Hit()
	metricCacheCounter().AddWithLabel(1, map[string]string{"event": "hit"})
	return ent.capability, true
}

func (c *Cache) miss() {
	c.stats.Miss()
	metricCacheCounter().AddWithLabel(1, map[string]string{"event": "miss"})
}

// Set stores the capability under the pubkey, evicting the least recently
// used entry when full.
func (c *Cache) Set(pubkey moot.PubKey, capability *Capability) {
	if evicted := c.lru.Add(pubkey, &cacheEntry{capability: capability, insertedAt: time.Now()}); evicted {
		c.evictions.Add(1)
		metricCacheCounter().AddWithLabel(1, map[string]string{"event": "evict"})
	}
	metricCacheSizeGauge().Set(int64(c.lru.Len()))
}

// Refresh fetches the pubkey's current capability from the query service and
// caches it. Concurrent refreshes for the same pubkey are collapsed into one
// fetch whose result all callers share. Reports CapabilityMissingError when
// the store has no capability for the pubkey.
func (c *Cache) Refresh(ctx context.Context, pubkey moot.PubKey) (*Capability, error) {
	v, err, _ := c.group.Do(pubkey.String(), func() (interface{}, error) {
		caps, err := c.query.Find(ctx, &CapabilityQuery{
			Pubkeys: []moot.PubKey{pubkey},
			Limit:   1,
		})
		if err != nil {
			return nil, err
		}
		if len(caps) == 0 {
			return nil, CapabilityMissingError{Pubkey: pubkey}
		}
		c.Set(pubkey, caps[0])
		c.refreshes.Add(1)
		metricCacheCounter().AddWithLabel(1, map[string]string{"event": "refresh"})
		return caps[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Capability), nil
}

// Invalidate drops the entry for the pubkey, if any.
func (c *Cache) Invalidate(pubkey moot.PubKey) {
	c.lru.Remove(pubkey)
	metricCacheSizeGauge().Set(int64(c.lru.Len()))
}

// InvalidateAll clears the cache.
func (c *Cache) InvalidateAll() {
	c.lru.Purge()
	metricCacheSizeGauge().Set(0)
}

// Metrics snapshots the cache counters.
func (c *Cache) Metrics() CacheMetrics {
	_, hit, miss := c.stats.Stats()
	return CacheMetrics{
		Hits:         hit,
		Misses:       miss,
		RefreshCount: c.refreshes.Load(),
		Evictions:    c.evictions.Load(),
		Size:         c.lru.Len(),
	}
}

// warmup loads the newest capability per author from the record store.
func (c *Cache) warmup() {
	records, err := c.query.db.Query(c.ctx, &record.Filter{
		Kinds: []uint32{moot.KindCapability},
		Limit: uint64(c.opts.WarmupLimit),
	})
	if err != nil {
		logger.Warn("capability cache warm-up failed", "err", err)
		return
	}

	loaded := 0
	for _, r := range records {
		capability, err := ParseCapability(r)
		if err != nil {
			logger.Debug("skipping invalid capability record",
				"id", r.ID().AbbrevString(), "err", err)
			continue
		}
		// Records come newest first, so the first record per author wins.
		if c.lru.Contains(capability.Author) {
			continue
		}
		c.Set(capability.Author, capability)
		loaded++
	}
	if loaded > 0 {
		logger.Debug("capability cache warmed up", "entries", loaded)
	}
}

func (c *Cache) housekeeping() {
	ticker := time.NewTicker(c.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep refreshes entries whose age passed the refresh threshold, with
// bounded fan-out. A tick that fires while a sweep is still running is
// skipped. Individual refresh failures are logged and do not stop the sweep.
func (c *Cache) sweep() {
	if !c.sweeping.CompareAndSwap(false, true) {
		return
	}
	defer c.sweeping.Store(false)

	threshold := time.Duration(float64(c.opts.TTL) * refreshAgeFactor)
	var stale []moot.PubKey
	for _, key := range c.lru.Keys() {
		v, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		if time.Since(v.(*cacheEntry).insertedAt) >= threshold {
			stale = append(stale, key.(moot.PubKey))
		}
	}
	if len(stale) == 0 {
		return
	}

	co.ParallelN(refreshFanout, func(enqueue co.Enqueue) {
		for _, pubkey := range stale {
			enqueue(func() {
				if c.ctx.Err() != nil {
					return
				}
				if _, err := c.Refresh(c.ctx, pubkey); err != nil {
					if c.ctx.Err() != nil {
						return
					}
					logger.Warn("capability refresh failed",
						"pubkey", pubkey.AbbrevString(), "err", err)
				}
			})
		}
	})
}
