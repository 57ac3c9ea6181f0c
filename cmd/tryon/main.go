package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"specs-overlay-engine/internal/config"
	"specs-overlay-engine/internal/framecache"
	"specs-overlay-engine/internal/frames"
	"specs-overlay-engine/internal/overlay"
	"specs-overlay-engine/internal/source"
	"specs-overlay-engine/internal/transition"
)

// tickStep is the simulated display-refresh interval for transition capture.
const tickStep = 16 * time.Millisecond

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	basePath := flag.String("base", "", "Base photo to try frames on (required)")
	frameID := flag.String("frame", "", "Frame id or image path to overlay (required)")
	fromID := flag.String("from", "", "Frame to transition from (enables animated capture)")
	kindName := flag.String("transition", "fade", "Transition kind: fade, slide, zoom, flip")
	posX := flag.Float64("x", -1, "Frame center X (default: default catalog position)")
	posY := flag.Float64("y", -1, "Frame center Y")
	scale := flag.Float64("scale", 1.0, "Frame scale multiplier")
	outPath := flag.String("out", "tryon.webp", "Output WebP file")
	assetDir := flag.String("assets", "", "Asset directory (default: auto-detect)")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{AssetDir: *assetDir})

	if *basePath == "" || *frameID == "" {
		fmt.Fprintln(os.Stderr, "Error: -base and -frame are required.")
		flag.Usage()
		os.Exit(1)
	}

	catalog, err := frames.Load(cfg.FramesManifest)
	if err != nil {
		catalog = frames.DefaultCatalog()
	}

	src := &source.FileSource{BaseDir: cfg.AssetDir}
	cache := framecache.New(src, framecache.Options{
		Logger:        log,
		WarnThreshold: cfg.CacheWarnThreshold,
		GroupSize:     cfg.PreloadGroupSize,
		GroupPause:    time.Duration(cfg.PreloadPauseMs) * time.Millisecond,
		Tiers:         frames.Tiers(catalog),
	})

	kind, err := transition.ParseKind(*kindName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Manual scheduler and clock make transition capture deterministic;
	// without -from they simply never tick.
	sched := &transition.ManualScheduler{}
	clock := transition.NewManualClock(time.Now())

	eng := overlay.NewEngine(overlay.Options{
		Source:        src,
		Cache:         cache,
		Scheduler:     sched,
		Clock:         clock,
		LatencyTarget: time.Duration(cfg.LatencyTargetMs) * time.Millisecond,
		Logger:        log,
	})
	defer eng.Destroy()

	ctx := context.Background()

	size, err := eng.LoadBaseImage(ctx, *basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading base image: %v\n", err)
		os.Exit(1)
	}

	place := func(id string) {
		if def, ok := frames.Find(catalog, id); ok {
			p := def.DefaultPosition()
			eng.SetPosition(p.X, p.Y)
		}
	}

	if *fromID != "" {
		if err := eng.LoadFrame(ctx, frameURL(catalog, *fromID), transition.Fade); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading frame: %v\n", err)
			os.Exit(1)
		}
		place(*fromID)
	}

	if *posX >= 0 && *posY >= 0 {
		eng.SetPosition(*posX, *posY)
	} else if *fromID == "" {
		place(*frameID)
	}
	if *scale != 1.0 {
		eng.SetScale(*scale)
	}

	if err := eng.LoadFrame(ctx, frameURL(catalog, *frameID), kind); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading frame: %v\n", err)
		os.Exit(1)
	}

	if *fromID == "" {
		// Direct composite, no animation.
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := eng.Snapshot(f); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		f.Close()
		fmt.Printf("Wrote %s (%dx%d)\n", *outPath, size.Width, size.Height)
		return
	}

	// Drive the transition tick by tick, capturing each rendered step.
	var captured []image.Image
	for sched.Pending() > 0 {
		clock.Advance(tickStep)
		if !sched.Fire() {
			break
		}
		captured = append(captured, cloneImage(eng.Surface().Image()))
	}

	if err := writeAnimation(*outPath, captured); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing animation: %v\n", err)
		os.Exit(1)
	}

	stats := eng.CacheStats()
	fmt.Printf("Wrote %s: %d ticks of %s transition\n", *outPath, len(captured), kind)
	fmt.Printf("Cache: %d entries, %d hits, %d misses\n", stats.Size, stats.Hits, stats.Misses)
}

// frameURL maps a catalog id to its image URL; non-catalog values pass
// through as literal paths.
func frameURL(catalog []frames.FrameDef, id string) string {
	if def, ok := frames.Find(catalog, id); ok {
		return def.ImageURL
	}
	return id
}

func cloneImage(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// writeAnimation encodes the captured ticks as an animated WebP.
func writeAnimation(path string, imgs []image.Image) error {
	if len(imgs) == 0 {
		return fmt.Errorf("no frames captured")
	}

	durations := make([]uint, len(imgs))
	disposals := make([]uint, len(imgs))
	for i := range durations {
		durations[i] = uint(tickStep / time.Millisecond)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ani := nativewebp.Animation{
		Images:    imgs,
		Durations: durations,
		Disposals: disposals,
		LoopCount: 0,
	}
	return nativewebp.EncodeAll(f, &ani, nil)
}
