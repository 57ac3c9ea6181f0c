package framecache

import (
	"context"
	"image"
	"path"
	"strings"
	"sync"
	"time"
)

// BatchResult holds the outcome of preloading one URL. A failed load never
// aborts the rest of the batch.
type BatchResult struct {
	URL   string
	Image *image.NRGBA
	Err   error
}

// PreloadBatch loads all urls, reordering them so that URLs whose frame
// identifier belongs to the given priority tier come first (stable within
// each partition). Loads are issued in fixed-size groups with a pause
// between groups. Results are returned in submission order.
func (c *Cache) PreloadBatch(ctx context.Context, urls []string, tier string) []BatchResult {
	ordered := c.Prioritize(urls, tier)
	results := make([]BatchResult, len(ordered))

	for start := 0; start < len(ordered); start += c.gs {
		end := start + c.gs
		if end > len(ordered) {
			end = len(ordered)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				img, err := c.Preload(ctx, ordered[i])
				results[i] = BatchResult{URL: ordered[i], Image: img, Err: err}
			}(i)
		}
		wg.Wait()

		if end < len(ordered) {
			select {
			case <-time.After(c.gp):
			case <-ctx.Done():
				for i := end; i < len(ordered); i++ {
					results[i] = BatchResult{URL: ordered[i], Err: ctx.Err()}
				}
				return results
			}
		}
	}
	return results
}

// Prioritize returns urls reordered for the given tier: URLs whose
// identifier is in the tier's set first, everything else after, original
// order preserved within each partition. Unknown tiers leave the order
// unchanged.
func (c *Cache) Prioritize(urls []string, tier string) []string {
	set := c.tiers[tier]
	if len(set) == 0 {
		return append([]string(nil), urls...)
	}

	front := make([]string, 0, len(urls))
	rest := make([]string, 0, len(urls))
	for _, u := range urls {
		if set[FrameID(u)] {
			front = append(front, u)
		} else {
			rest = append(rest, u)
		}
	}
	return append(front, rest...)
}

// FrameID extracts the frame identifier from a URL: the basename without
// its extension ("/static/frames/aviator_classic.png" → "aviator_classic").
func FrameID(url string) string {
	base := path.Base(url)
	return strings.TrimSuffix(base, path.Ext(base))
}
