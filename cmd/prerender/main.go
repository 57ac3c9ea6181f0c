package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"specs-overlay-engine/internal/batch"
	"specs-overlay-engine/internal/config"
	"specs-overlay-engine/internal/framecache"
	"specs-overlay-engine/internal/frames"
	"specs-overlay-engine/internal/source"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	basePath := flag.String("base", "", "Base photo to composite frames over (required)")
	assetDir := flag.String("assets", "", "Asset directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: static/renders)")
	category := flag.String("category", "", "Only prerender frames from this category")
	tier := flag.String("tier", "", "Preload priority tier to warm the cache with")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")

	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{AssetDir: *assetDir, OutputDir: *outputDir, Workers: *workers})

	if *basePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -base is required.")
		os.Exit(1)
	}

	catalog, err := frames.Load(cfg.FramesManifest)
	if err != nil {
		catalog = frames.DefaultCatalog()
	}
	catalog = frames.ByCategory(catalog, *category)
	if len(catalog) == 0 {
		fmt.Println("No frames to prerender.")
		os.Exit(0)
	}

	src := &source.FileSource{BaseDir: cfg.AssetDir}
	cache := framecache.New(src, framecache.Options{
		Logger:        log,
		WarnThreshold: cfg.CacheWarnThreshold,
		GroupSize:     cfg.PreloadGroupSize,
		GroupPause:    time.Duration(cfg.PreloadPauseMs) * time.Millisecond,
		Tiers:         frames.Tiers(catalog),
	})

	ctx := context.Background()

	// Warm the cache with priority ordering before the render pass.
	if *tier != "" {
		warmed := cache.PreloadBatch(ctx, frames.URLs(catalog), *tier)
		failed := 0
		for _, r := range warmed {
			if r.Err != nil {
				failed++
			}
		}
		fmt.Printf("Preloaded %d/%d frames (tier %q)\n", len(warmed)-failed, len(warmed), *tier)
	}

	fmt.Printf("Virtual Specs frame prerender\n")
	fmt.Printf("Frames: %d, Workers: %d\n", len(catalog), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(ctx, batch.Config{
		BaseImageURL: *basePath,
		OutputDir:    cfg.OutputDir,
		Source:       src,
		Cache:        cache,
		ThumbSize:    cfg.ThumbSize,
		Workers:      cfg.Workers,
		Logger:       log,
	}, catalog)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(catalog))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range errors {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	stats := cache.Stats()
	fmt.Printf("Cache: %d entries, hit rate %.0f%%\n", stats.Size, stats.HitRate*100)

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, catalog); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
