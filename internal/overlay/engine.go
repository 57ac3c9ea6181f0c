// Package overlay holds the compositing engine that renders a base photo
// plus a movable, scalable eyewear frame on top of it. The engine owns all
// overlay state; rendering is delegated to raster.Surface, animated frame
// switches to transition.Controller, and frame acquisition to
// framecache.Cache.
package overlay

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"specs-overlay-engine/internal/framecache"
	"specs-overlay-engine/internal/geom"
	"specs-overlay-engine/internal/input"
	"specs-overlay-engine/internal/logx"
	"specs-overlay-engine/internal/perf"
	"specs-overlay-engine/internal/raster"
	"specs-overlay-engine/internal/source"
	"specs-overlay-engine/internal/transition"
)

// ErrDestroyed is returned by operations invoked after Destroy.
var ErrDestroyed = errors.New("overlay: engine destroyed")

// ErrNoBaseImage is returned by ResetPosition when no base image is loaded
// and no explicit position is given.
var ErrNoBaseImage = errors.New("overlay: no base image loaded")

// Options configures an Engine.
type Options struct {
	// Source loads and decodes images. Required.
	Source source.ImageSource

	// Cache resolves frame images when set; nil bypasses caching and loads
	// frames directly from Source.
	Cache *framecache.Cache

	// Scheduler and Clock drive transition ticks. Defaults: display-refresh
	// scheduler and the system clock.
	Scheduler transition.Scheduler
	Clock     transition.Clock

	// LatencyTarget is the render budget the performance monitor warns
	// against. Zero disables the warning.
	LatencyTarget time.Duration
	OnPerfWarn    func(perf.Sample)

	Logger *slog.Logger
}

// Engine orchestrates one try-on session over a single drawing surface.
// Methods are safe for concurrent use; transition ticks arrive on timer
// goroutines.
type Engine struct {
	id      string
	src     source.ImageSource
	cache   *framecache.Cache
	surface *raster.Surface
	ctrl    *transition.Controller
	mon     *perf.Monitor
	inp     *input.Controller
	log     *slog.Logger

	mu            sync.Mutex
	base          *image.NRGBA
	frame         *image.NRGBA
	pos           geom.Vec2
	scale         float64
	transitioning bool
	destroyed     bool
}

// State is the serializable part of the overlay: position and scale only.
// Base image and frame are reloaded by the caller.
type State struct {
	Position geom.Vec2 `json:"position"`
	Scale    float64   `json:"scale"`
}

// NewEngine creates an engine with an empty surface. A base image must be
// loaded before anything is visible.
func NewEngine(opts Options) *Engine {
	sched := opts.Scheduler
	if sched == nil {
		sched = &transition.DisplayScheduler{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = transition.SystemClock()
	}

	id := uuid.NewString()
	log := logx.OrNop(opts.Logger).With(slog.String("session", id))

	e := &Engine{
		id:      id,
		src:     opts.Source,
		cache:   opts.Cache,
		surface: raster.NewSurface(0, 0),
		ctrl:    transition.NewController(sched, clock, log),
		mon:     perf.NewMonitor(opts.LatencyTarget, log, opts.OnPerfWarn),
		log:     log,
		scale:   1.0,
	}
	e.inp = input.NewController(e)
	return e
}

// ID returns the session identifier.
func (e *Engine) ID() string { return e.id }

// Input returns the pointer/touch controller bound to this engine.
func (e *Engine) Input() *input.Controller { return e.inp }

// Surface returns the drawing surface. The engine's render path is its
// only writer.
func (e *Engine) Surface() *raster.Surface { return e.surface }

// Perf returns the current performance counters.
func (e *Engine) Perf() perf.Sample { return e.mon.Snapshot() }

// LoadBaseImage decodes the image at src, resizes the surface to its pixel
// dimensions and recenters the overlay position. A previously selected
// frame stays active across the new base image; only position resets.
func (e *Engine) LoadBaseImage(ctx context.Context, src string) (geom.Size, error) {
	img, err := e.src.Load(ctx, src)
	if err != nil {
		return geom.Size{}, err
	}

	b := img.Bounds()
	size := geom.Size{Width: b.Dx(), Height: b.Dy()}

	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return geom.Size{}, ErrDestroyed
	}
	e.base = img
	e.surface.Resize(size.Width, size.Height)
	e.pos = size.Center()
	e.renderLocked()
	e.mu.Unlock()

	e.log.Info("base image loaded", slog.String("src", src),
		slog.Int("width", size.Width), slog.Int("height", size.Height))
	return size, nil
}

// LoadFrame resolves the frame image at src (through the cache when one is
// configured) and makes it the active frame. With no previous frame, or
// when the resolved image is the one already active, the switch renders
// immediately. Otherwise the previous frame animates into the new one; the
// active frame is swapped at once so position and scale updates apply to
// the new frame even mid-transition.
func (e *Engine) LoadFrame(ctx context.Context, src string, kind transition.Kind) error {
	var img *image.NRGBA
	var err error
	if e.cache != nil {
		img, err = e.cache.Preload(ctx, src)
	} else {
		img, err = e.src.Load(ctx, src)
	}
	if err != nil {
		return err
	}

	// Cancel before the swap: a pending tick of a superseded transition
	// must never render its blend once the new frame is in place. Cancel
	// waits out any tick already executing, so after it returns no stale
	// callback can fire.
	e.ctrl.Cancel()

	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return ErrDestroyed
	}
	prev := e.frame
	e.frame = img
	immediate := prev == nil || prev == img
	e.transitioning = !immediate
	e.mu.Unlock()

	if immediate {
		e.mu.Lock()
		e.renderLocked()
		e.mu.Unlock()
		return nil
	}

	e.log.Debug("frame transition", slog.String("src", src),
		slog.String("kind", kind.String()))
	e.ctrl.Start(kind, prev, img, e.step)
	return nil
}

// step renders one transition tick. Position and scale are read live from
// engine state, never snapshotted at transition start.
func (e *Engine) step(kind transition.Kind, out, in *image.NRGBA, eased float64, final bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}

	start := time.Now()
	e.surface.Clear()
	e.surface.DrawBase(e.base)
	if final {
		e.transitioning = false
		e.surface.DrawFrame(in, e.pos, e.scale, 1.0)
	} else {
		v := transition.View{Position: e.pos, Scale: e.scale}
		transition.Blend(e.surface, kind, out, in, v, eased)
	}
	e.mon.Record(time.Since(start))
}

// SetPosition moves the frame center. No clamping: any position is
// accepted. Outside a transition the surface re-renders synchronously;
// during one, the next tick picks up the new position.
func (e *Engine) SetPosition(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}
	e.pos = geom.Vec2{X: x, Y: y}
	if !e.transitioning {
		e.renderLocked()
	}
}

// SetScale sets the frame scale multiplier. No range validation; degenerate
// values produce degenerate rendering. Same re-render contract as
// SetPosition.
func (e *Engine) SetScale(s float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}
	e.scale = s
	if !e.transitioning {
		e.renderLocked()
	}
}

// ResetPosition restores the default layout: position moves to defaultPos
// when given, otherwise to the base image's center; scale resets to 1.0.
func (e *Engine) ResetPosition(defaultPos *geom.Vec2) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return ErrDestroyed
	}
	switch {
	case defaultPos != nil:
		e.pos = *defaultPos
	case e.base != nil:
		e.pos = e.surface.Size().Center()
	default:
		return ErrNoBaseImage
	}
	e.scale = 1.0
	if !e.transitioning {
		e.renderLocked()
	}
	return nil
}

// GetState returns the serializable overlay state.
func (e *Engine) GetState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{Position: e.pos, Scale: e.scale}
}

// SetState restores position and scale and re-renders.
func (e *Engine) SetState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}
	e.pos = s.Position
	e.scale = s.Scale
	if !e.transitioning {
		e.renderLocked()
	}
}

// Render composites base plus active frame synchronously.
func (e *Engine) Render() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}
	e.renderLocked()
}

// renderLocked draws base plus active frame and reports the duration.
// Callers hold e.mu.
func (e *Engine) renderLocked() {
	start := time.Now()
	e.surface.Clear()
	e.surface.DrawBase(e.base)
	if e.frame != nil {
		e.surface.DrawFrame(e.frame, e.pos, e.scale, 1.0)
	}
	e.mon.Record(time.Since(start))
}

// Destroy cancels any pending animation tick, releases image references
// and detaches the input controller. Idempotent: calling it twice is safe.
// No scheduled callback renders after Destroy returns.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.base = nil
	e.frame = nil
	e.transitioning = false
	e.mu.Unlock()

	e.ctrl.Cancel()
	e.inp.Detach()
	e.log.Info("engine destroyed")
}

// FrameBounds implements input.Target: the active frame's bounding box at
// the current position and scale.
func (e *Engine) FrameBounds() (geom.Rect, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.frame == nil {
		return geom.Rect{}, false
	}
	return raster.FrameBounds(e.frame, e.pos, e.scale), true
}

// Position implements input.Target.
func (e *Engine) Position() geom.Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

// ActiveFrame returns the currently rendered overlay image, or nil.
func (e *Engine) ActiveFrame() *image.NRGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// Transitioning reports whether an animated frame switch is in progress.
func (e *Engine) Transitioning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transitioning
}

// CacheStats returns frame cache counters, or zero stats when the engine
// was built without a cache.
func (e *Engine) CacheStats() framecache.Stats {
	if e.cache == nil {
		return framecache.Stats{}
	}
	return e.cache.Stats()
}

// PreloadBatch forwards to the frame cache. Returns nil when the engine
// was built without a cache.
func (e *Engine) PreloadBatch(ctx context.Context, urls []string, tier string) []framecache.BatchResult {
	if e.cache == nil {
		return nil
	}
	return e.cache.PreloadBatch(ctx, urls, tier)
}
