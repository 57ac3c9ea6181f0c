// Package batch prerenders catalog frames composited over a base photo
// using a worker pool, writing one WebP per frame plus a manifest.
package batch

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"specs-overlay-engine/internal/framecache"
	"specs-overlay-engine/internal/frames"
	"specs-overlay-engine/internal/logx"
	"specs-overlay-engine/internal/raster"
	"specs-overlay-engine/internal/source"
)

// Config holds all shared resources for a batch run.
type Config struct {
	BaseImageURL string
	OutputDir    string
	Source       source.ImageSource
	Cache        *framecache.Cache
	ThumbSize    int
	Workers      int
	Logger       *slog.Logger
}

// Result holds the outcome of processing one frame.
type Result struct {
	ID      string
	Name    string
	Success bool
	Error   string
}

// Run composites every catalog frame over the base image at its default
// geometry and writes the results as WebP thumbnails. One frame's failure
// never aborts the rest of the batch.
func Run(ctx context.Context, cfg Config, defs []frames.FrameDef) []Result {
	log := logx.OrNop(cfg.Logger)
	total := len(defs)
	results := make([]Result, total)
	var processed atomic.Int64

	base, err := cfg.Source.Load(ctx, cfg.BaseImageURL)
	if err != nil {
		for i, d := range defs {
			results[i] = Result{ID: d.ID, Name: d.Name, Error: err.Error()}
		}
		return results
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Info("prerender progress",
						slog.Int64("done", p), slog.Int("total", total),
						slog.Float64("per_sec", float64(p)/elapsed))
				}
			}
		}
	}()

	// Worker pool
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	frameChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range frameChan {
				results[idx] = processFrame(ctx, cfg, base, defs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range defs {
		frameChan <- i
	}
	close(frameChan)

	wg.Wait()
	close(done)

	return results
}

func processFrame(ctx context.Context, cfg Config, base *image.NRGBA, def frames.FrameDef) Result {
	var img *image.NRGBA
	var err error
	if cfg.Cache != nil {
		img, err = cfg.Cache.Preload(ctx, def.ImageURL)
	} else {
		img, err = cfg.Source.Load(ctx, def.ImageURL)
	}
	if err != nil {
		return Result{ID: def.ID, Name: def.Name, Error: err.Error()}
	}

	// Each worker composites onto its own surface; the shared base image
	// is read-only.
	b := base.Bounds()
	surface := raster.NewSurface(b.Dx(), b.Dy())
	surface.DrawBase(base)
	surface.DrawFrame(img, def.DefaultPosition(), 1.0, 1.0)

	out := surface.Image()
	if cfg.ThumbSize > 0 {
		out = raster.Downsample(out, cfg.ThumbSize, cfg.ThumbSize)
	}

	outPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s.webp", def.ID))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return Result{ID: def.ID, Name: def.Name, Error: err.Error()}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return Result{ID: def.ID, Name: def.Name, Error: err.Error()}
	}
	defer f.Close()

	if err := nativewebp.Encode(f, out, nil); err != nil {
		return Result{ID: def.ID, Name: def.Name, Error: fmt.Sprintf("WebP encode: %v", err)}
	}

	return Result{ID: def.ID, Name: def.Name, Success: true}
}
