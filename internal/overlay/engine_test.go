package overlay

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"specs-overlay-engine/internal/framecache"
	"specs-overlay-engine/internal/geom"
	"specs-overlay-engine/internal/source"
	"specs-overlay-engine/internal/transition"
)

// fakeSource serves pre-registered solid images by URL.
type fakeSource struct {
	mu     sync.Mutex
	images map[string]*image.NRGBA
	loads  int
}

func newFakeSource() *fakeSource {
	return &fakeSource{images: make(map[string]*image.NRGBA)}
}

func (f *fakeSource) add(url string, w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f.mu.Lock()
	f.images[url] = img
	f.mu.Unlock()
	return img
}

func (f *fakeSource) Load(ctx context.Context, url string) (*image.NRGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if img, ok := f.images[url]; ok {
		return img, nil
	}
	return nil, &source.LoadError{URL: url, Err: errors.New("not found")}
}

type testRig struct {
	eng   *Engine
	src   *fakeSource
	sched *transition.ManualScheduler
	clock *transition.ManualClock
}

func newTestRig(t *testing.T, withCache bool) *testRig {
	t.Helper()
	src := newFakeSource()
	src.add("base.png", 200, 100, color.NRGBA{10, 10, 10, 255})
	src.add("frameA.png", 40, 20, color.NRGBA{255, 0, 0, 255})
	src.add("frameB.png", 40, 20, color.NRGBA{0, 0, 255, 255})
	src.add("frameC.png", 40, 20, color.NRGBA{0, 255, 0, 255})

	sched := &transition.ManualScheduler{}
	clock := transition.NewManualClock(time.Unix(0, 0))

	opts := Options{
		Source:    src,
		Scheduler: sched,
		Clock:     clock,
	}
	if withCache {
		opts.Cache = framecache.New(src, framecache.Options{})
	}
	eng := NewEngine(opts)
	t.Cleanup(eng.Destroy)
	return &testRig{eng: eng, src: src, sched: sched, clock: clock}
}

func (r *testRig) finishTransition(t *testing.T) {
	t.Helper()
	for i := 0; i < 100 && r.sched.Pending() > 0; i++ {
		r.clock.Advance(50 * time.Millisecond)
		r.sched.Fire()
	}
	if r.eng.Transitioning() {
		t.Fatal("transition did not finish")
	}
}

func TestLoadBaseImageResizesAndCenters(t *testing.T) {
	r := newTestRig(t, false)

	size, err := r.eng.LoadBaseImage(context.Background(), "base.png")
	if err != nil {
		t.Fatalf("LoadBaseImage: %v", err)
	}
	if size.Width != 200 || size.Height != 100 {
		t.Fatalf("size = %+v", size)
	}
	if got := r.eng.Surface().Size(); got != size {
		t.Fatalf("surface size = %+v, want %+v", got, size)
	}
	if got := r.eng.GetState().Position; got.X != 100 || got.Y != 50 {
		t.Fatalf("position = %+v, want base center", got)
	}
}

func TestLoadBaseImageKeepsActiveFrame(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()

	if _, err := r.eng.LoadBaseImage(ctx, "base.png"); err != nil {
		t.Fatal(err)
	}
	if err := r.eng.LoadFrame(ctx, "frameA.png", transition.Fade); err != nil {
		t.Fatal(err)
	}
	frame := r.eng.ActiveFrame()

	r.eng.SetPosition(30, 30)
	if _, err := r.eng.LoadBaseImage(ctx, "base.png"); err != nil {
		t.Fatal(err)
	}

	if r.eng.ActiveFrame() != frame {
		t.Fatal("active frame dropped across base image reload")
	}
	if got := r.eng.GetState().Position; got.X != 100 || got.Y != 50 {
		t.Fatalf("position = %+v, want reset to base center", got)
	}
}

func TestLoadBaseImageFailurePreservesState(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()

	if _, err := r.eng.LoadBaseImage(ctx, "base.png"); err != nil {
		t.Fatal(err)
	}
	before := r.eng.GetState()

	var le *source.LoadError
	_, err := r.eng.LoadBaseImage(ctx, "missing.png")
	if !errors.As(err, &le) {
		t.Fatalf("error = %v, want LoadError", err)
	}
	if got := r.eng.GetState(); got != before {
		t.Fatalf("state changed after failed load: %+v -> %+v", before, got)
	}
}

func TestFirstLoadFrameRendersImmediately(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()

	r.eng.LoadBaseImage(ctx, "base.png")
	if err := r.eng.LoadFrame(ctx, "frameA.png", transition.Fade); err != nil {
		t.Fatal(err)
	}
	if r.eng.Transitioning() {
		t.Fatal("first frame load started a transition")
	}
	if r.sched.Pending() != 0 {
		t.Fatal("first frame load scheduled ticks")
	}

	// Frame is composited over the base at center.
	got := r.eng.Surface().Image().NRGBAAt(100, 50)
	if got.R != 255 {
		t.Fatalf("frame not rendered, center pixel %+v", got)
	}
}

func TestIdenticalFrameSkipsTransition(t *testing.T) {
	r := newTestRig(t, true)
	ctx := context.Background()

	r.eng.LoadBaseImage(ctx, "base.png")
	r.eng.LoadFrame(ctx, "frameA.png", transition.Fade)
	// Cached resolve returns the same image pointer: no animation.
	if err := r.eng.LoadFrame(ctx, "frameA.png", transition.Zoom); err != nil {
		t.Fatal(err)
	}
	if r.eng.Transitioning() || r.sched.Pending() != 0 {
		t.Fatal("identical frame reload started a transition")
	}
}

func TestLoadFrameStartsTransitionAndSwapsImmediately(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()

	r.eng.LoadBaseImage(ctx, "base.png")
	r.eng.LoadFrame(ctx, "frameA.png", transition.Fade)
	frameB := r.src.images["frameB.png"]

	if err := r.eng.LoadFrame(ctx, "frameB.png", transition.Fade); err != nil {
		t.Fatal(err)
	}
	if !r.eng.Transitioning() {
		t.Fatal("transition not running")
	}
	// Active frame swaps at once, mid-transition.
	if r.eng.ActiveFrame() != frameB {
		t.Fatal("active frame not swapped at transition start")
	}

	r.finishTransition(t)

	// Terminal render matches a direct load of frameB: pure frame color at
	// center, full opacity.
	got := r.eng.Surface().Image().NRGBAAt(100, 50)
	if got.B != 255 || got.R != 0 {
		t.Fatalf("post-transition pixel = %+v, want incoming frame", got)
	}
}

func TestPositionReadLiveMidTransition(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()

	r.eng.LoadBaseImage(ctx, "base.png")
	r.eng.LoadFrame(ctx, "frameA.png", transition.Fade)
	r.eng.LoadFrame(ctx, "frameB.png", transition.Fade)

	// Move the frame mid-transition; the next tick renders at the new spot.
	r.eng.SetPosition(40, 50)
	r.clock.Advance(350 * time.Millisecond) // p=0.875, incoming nearly opaque
	r.sched.Fire()

	got := r.eng.Surface().Image().NRGBAAt(40, 50)
	if got.B == 0 {
		t.Fatalf("frame not rendered at live position, pixel = %+v", got)
	}

	r.finishTransition(t)
	final := r.eng.Surface().Image().NRGBAAt(40, 50)
	if final.B != 255 {
		t.Fatalf("final render ignored live position, pixel = %+v", final)
	}
}

func TestSupersededTransitionNeverBlendsOldPair(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()

	r.eng.LoadBaseImage(ctx, "base.png")
	r.eng.LoadFrame(ctx, "frameA.png", transition.Fade)
	r.eng.LoadFrame(ctx, "frameB.png", transition.Fade)
	// Supersede B's transition with C before any tick fires.
	if err := r.eng.LoadFrame(ctx, "frameC.png", transition.Slide); err != nil {
		t.Fatal(err)
	}

	r.finishTransition(t)

	// Only frameC remains.
	got := r.eng.Surface().Image().NRGBAAt(100, 50)
	if got.G != 255 || got.B != 0 {
		t.Fatalf("final pixel = %+v, want frameC green", got)
	}
}

// cancelSpy forwards to a ManualScheduler and invokes onCancel whenever a
// scheduled tick is cancelled, before the cancellation takes effect.
type cancelSpy struct {
	inner    transition.ManualScheduler
	onCancel func()
}

func (s *cancelSpy) RequestTick(fn func()) transition.CancelFunc {
	cancel := s.inner.RequestTick(fn)
	return func() {
		if s.onCancel != nil {
			s.onCancel()
		}
		cancel()
	}
}

// Supersession must neutralize the old transition's pending tick before
// the frame swap: a tick firing from its timer goroutine in between would
// otherwise blend the old pair over the already-swapped state.
func TestSupersedeCancelsPendingTickBeforeSwap(t *testing.T) {
	src := newFakeSource()
	src.add("base.png", 200, 100, color.NRGBA{10, 10, 10, 255})
	src.add("frameA.png", 40, 20, color.NRGBA{255, 0, 0, 255})
	imgB := src.add("frameB.png", 40, 20, color.NRGBA{0, 0, 255, 255})
	imgC := src.add("frameC.png", 40, 20, color.NRGBA{0, 255, 0, 255})

	sched := &cancelSpy{}
	clock := transition.NewManualClock(time.Unix(0, 0))
	eng := NewEngine(Options{Source: src, Scheduler: sched, Clock: clock})
	t.Cleanup(eng.Destroy)

	var atCancel []*image.NRGBA
	sched.onCancel = func() { atCancel = append(atCancel, eng.ActiveFrame()) }

	ctx := context.Background()
	if _, err := eng.LoadBaseImage(ctx, "base.png"); err != nil {
		t.Fatal(err)
	}
	if err := eng.LoadFrame(ctx, "frameA.png", transition.Fade); err != nil {
		t.Fatal(err)
	}
	if err := eng.LoadFrame(ctx, "frameB.png", transition.Fade); err != nil {
		t.Fatal(err)
	}
	if sched.inner.Pending() == 0 {
		t.Fatal("no tick pending for the first transition")
	}

	if err := eng.LoadFrame(ctx, "frameC.png", transition.Fade); err != nil {
		t.Fatal(err)
	}

	if len(atCancel) != 1 {
		t.Fatalf("cancelled ticks during supersession = %d, want 1", len(atCancel))
	}
	if atCancel[0] != imgB {
		t.Fatal("pending tick cancelled after the frame swap, not before")
	}

	// The cancelled tick is skipped; the new transition runs to the end.
	for i := 0; i < 100 && sched.inner.Pending() > 0; i++ {
		clock.Advance(50 * time.Millisecond)
		sched.inner.Fire()
	}
	if eng.Transitioning() {
		t.Fatal("transition did not finish")
	}
	if eng.ActiveFrame() != imgC {
		t.Fatal("active frame after supersession is not the last requested one")
	}
}

func TestStateRoundTrip(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()
	r.eng.LoadBaseImage(ctx, "base.png")

	positions := []geom.Vec2{
		{X: 10, Y: 20},
		{X: 100.5, Y: 49.25},
		{X: -5, Y: 300}, // no clamping: out-of-surface positions are legal
	}
	for _, p := range positions {
		r.eng.SetPosition(p.X, p.Y)
		r.eng.SetScale(1.7)

		s := r.eng.GetState()
		r.eng.SetState(s)
		if got := r.eng.GetState(); got != s {
			t.Fatalf("SetState(GetState()) changed state: %+v -> %+v", s, got)
		}
	}
}

func TestResetPosition(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()
	r.eng.LoadBaseImage(ctx, "base.png")

	r.eng.SetPosition(5, 5)
	r.eng.SetScale(2.5)
	if err := r.eng.ResetPosition(nil); err != nil {
		t.Fatal(err)
	}
	got := r.eng.GetState()
	if got.Position.X != 100 || got.Position.Y != 50 || got.Scale != 1.0 {
		t.Fatalf("after reset: %+v", got)
	}

	custom := geom.Vec2{X: 33, Y: 44}
	if err := r.eng.ResetPosition(&custom); err != nil {
		t.Fatal(err)
	}
	if got := r.eng.GetState().Position; got != custom {
		t.Fatalf("custom reset position = %+v", got)
	}
}

func TestDestroyIdempotentAndCancelsTicks(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()

	r.eng.LoadBaseImage(ctx, "base.png")
	r.eng.LoadFrame(ctx, "frameA.png", transition.Fade)
	r.eng.LoadFrame(ctx, "frameB.png", transition.Fade)

	r.eng.Destroy()
	r.eng.Destroy() // must not panic

	// Pending ticks are cancelled; firing the queue renders nothing.
	before := cloneArea(r.eng.Surface().Image())
	for r.sched.Pending() > 0 {
		r.clock.Advance(50 * time.Millisecond)
		r.sched.Fire()
	}
	after := cloneArea(r.eng.Surface().Image())
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("surface changed after Destroy")
		}
	}

	if err := r.eng.LoadFrame(ctx, "frameC.png", transition.Fade); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("LoadFrame after Destroy = %v, want ErrDestroyed", err)
	}
	if _, err := r.eng.LoadBaseImage(ctx, "base.png"); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("LoadBaseImage after Destroy = %v, want ErrDestroyed", err)
	}
	if r.eng.ActiveFrame() != nil {
		t.Fatal("image references not released")
	}
}

func cloneArea(img *image.NRGBA) []uint8 {
	out := make([]uint8, len(img.Pix))
	copy(out, img.Pix)
	return out
}

func TestDragContractThroughInput(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()

	r.eng.LoadBaseImage(ctx, "base.png")
	r.eng.LoadFrame(ctx, "frameA.png", transition.Fade)

	// Frame is 40x20 centered at (100,50): press inside at an offset,
	// move by (dx,dy), and the center must move by exactly (dx,dy).
	inp := r.eng.Input()
	inp.PointerDown(110, 55)
	if !inp.Dragging() {
		t.Fatal("press inside bounds did not start drag")
	}
	inp.PointerMove(110+25, 55-10)
	got := r.eng.GetState().Position
	if got.X != 125 || got.Y != 40 {
		t.Fatalf("position after drag = %+v, want (125,40)", got)
	}
	inp.PointerUp()
	if inp.Dragging() {
		t.Fatal("drag not ended")
	}

	// Press outside the bounding box: no drag.
	inp.PointerDown(10, 10)
	if inp.Dragging() {
		t.Fatal("press outside bounds started drag")
	}
}

func TestPerfCountsRenders(t *testing.T) {
	r := newTestRig(t, false)
	ctx := context.Background()
	r.eng.LoadBaseImage(ctx, "base.png")
	r.eng.LoadFrame(ctx, "frameA.png", transition.Fade)

	for i := 0; i < 10; i++ {
		r.eng.SetPosition(float64(50+i), 50)
	}
	if got := r.eng.Perf().RenderCount; got < 12 {
		t.Fatalf("render count = %d, want at least 12", got)
	}
}

func TestCacheStatsExposedThroughEngine(t *testing.T) {
	r := newTestRig(t, true)
	ctx := context.Background()
	r.eng.LoadBaseImage(ctx, "base.png")

	r.eng.LoadFrame(ctx, "frameA.png", transition.Fade)
	r.eng.LoadFrame(ctx, "frameA.png", transition.Fade)

	stats := r.eng.CacheStats()
	if stats.Size != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	results := r.eng.PreloadBatch(ctx, []string{"frameB.png", "frameC.png"}, "")
	if len(results) != 2 {
		t.Fatalf("batch results = %d", len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("batch preload %s: %v", res.URL, res.Err)
		}
	}
}
