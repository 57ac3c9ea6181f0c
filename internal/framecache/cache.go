// Package framecache stores decoded frame images keyed by source URL. It
// de-duplicates concurrent loads for the same URL (exactly one underlying
// ImageSource load per distinct in-flight URL), tracks hit/miss counters,
// and batches preloads with priority ordering.
package framecache

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"specs-overlay-engine/internal/logx"
	"specs-overlay-engine/internal/source"
)

// Default tuning values, overridable via Options.
const (
	DefaultWarnThreshold = 20
	DefaultGroupSize     = 3
	DefaultGroupPause    = 100 * time.Millisecond
)

// Options configures a Cache. Zero values fall back to the defaults above.
type Options struct {
	Logger *slog.Logger

	// WarnThreshold is the entry count past which the cache logs a warning.
	// Entries are never evicted; the warning is purely diagnostic.
	WarnThreshold int

	// GroupSize and GroupPause throttle PreloadBatch: loads are issued in
	// fixed-size groups with a pause between groups to avoid saturating the
	// decode pipeline.
	GroupSize  int
	GroupPause time.Duration

	// Tiers maps a priority tier name to the set of frame identifiers that
	// move to the front of a batch submitted with that tier.
	Tiers map[string][]string
}

// Cache is a concurrency-safe decoded-frame cache. Entries live for the
// lifetime of the cache; there is no TTL or eviction.
type Cache struct {
	src  source.ImageSource
	log  *slog.Logger
	warn int
	gs   int
	gp   time.Duration

	tiers map[string]map[string]bool

	mu      sync.Mutex
	entries map[string]*image.NRGBA
	pending map[string]*pendingLoad

	hits   atomic.Uint64
	misses atomic.Uint64
}

// pendingLoad is the shared future for one in-flight URL. All callers for
// the same URL wait on done and then read img/err together.
type pendingLoad struct {
	done chan struct{}
	img  *image.NRGBA
	err  error
}

// New creates a cache backed by the given image source.
func New(src source.ImageSource, opts Options) *Cache {
	c := &Cache{
		src:     src,
		log:     logx.OrNop(opts.Logger),
		warn:    opts.WarnThreshold,
		gs:      opts.GroupSize,
		gp:      opts.GroupPause,
		tiers:   make(map[string]map[string]bool),
		entries: make(map[string]*image.NRGBA),
		pending: make(map[string]*pendingLoad),
	}
	if c.warn <= 0 {
		c.warn = DefaultWarnThreshold
	}
	if c.gs <= 0 {
		c.gs = DefaultGroupSize
	}
	if c.gp <= 0 {
		c.gp = DefaultGroupPause
	}
	for tier, ids := range opts.Tiers {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		c.tiers[tier] = set
	}
	return c
}

// Preload returns the decoded image for url, loading it at most once. A
// cached entry is returned immediately. If a load for url is already in
// flight the caller waits for that load's result instead of issuing a
// second fetch. On failure nothing is cached and every waiter receives the
// same error.
func (c *Cache) Preload(ctx context.Context, url string) (*image.NRGBA, error) {
	c.mu.Lock()
	if img, ok := c.entries[url]; ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return img, nil
	}
	if p, ok := c.pending[url]; ok {
		c.mu.Unlock()
		return c.await(ctx, url, p)
	}

	p := &pendingLoad{done: make(chan struct{})}
	c.pending[url] = p
	c.mu.Unlock()
	c.misses.Add(1)

	img, err := c.src.Load(ctx, url)

	c.mu.Lock()
	delete(c.pending, url)
	if err == nil {
		c.entries[url] = img
		if n := len(c.entries); n > c.warn {
			c.log.Warn("frame cache above size threshold",
				slog.Int("entries", n), slog.Int("threshold", c.warn))
		}
	}
	c.mu.Unlock()

	p.img = img
	p.err = err
	close(p.done)
	return img, err
}

// await blocks on another caller's in-flight load.
func (c *Cache) await(ctx context.Context, url string, p *pendingLoad) (*image.NRGBA, error) {
	select {
	case <-p.done:
		if p.err != nil {
			return nil, p.err
		}
		c.hits.Add(1)
		return p.img, nil
	case <-ctx.Done():
		return nil, &source.LoadError{URL: url, Err: ctx.Err()}
	}
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Size     int     `json:"size"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
	InFlight int     `json:"in_flight"`
}

// Stats returns current cache counters. The snapshot may be slightly stale
// under concurrent loads; that is acceptable for monitoring.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	size := len(c.entries)
	inFlight := len(c.pending)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	rate := 0.0
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}
	return Stats{Size: size, Hits: hits, Misses: misses, HitRate: rate, InFlight: inFlight}
}
