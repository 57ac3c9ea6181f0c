package transition

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"specs-overlay-engine/internal/logx"
)

// StepFunc renders one animation step. eased is the eased progress in
// [0,1]; final is true exactly once, for the terminal render of the
// incoming frame alone at full opacity.
type StepFunc func(kind Kind, outgoing, incoming *image.NRGBA, eased float64, final bool)

// Controller is the transition state machine. It is IDLE until Start and
// RUNNING while ticks are scheduled. Starting a new transition supersedes
// the running one: the old animation's pending tick is cancelled and never
// renders again.
type Controller struct {
	sched Scheduler
	clock Clock
	log   *slog.Logger

	mu      sync.Mutex
	running *active
}

// active is the per-transition state, recreated on every Start.
type active struct {
	kind     Kind
	outgoing *image.NRGBA
	incoming *image.NRGBA
	start    time.Time
	duration time.Duration
	step     StepFunc
	cancel   CancelFunc
}

// NewController creates an idle controller.
func NewController(sched Scheduler, clock Clock, log *slog.Logger) *Controller {
	return &Controller{sched: sched, clock: clock, log: logx.OrNop(log)}
}

// Running reports whether a transition is in progress.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running != nil
}

// Start begins animating outgoing into incoming. Any transition already
// running is superseded.
func (c *Controller) Start(kind Kind, outgoing, incoming *image.NRGBA, step StepFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old := c.running; old != nil && old.cancel != nil {
		old.cancel()
		c.log.Debug("transition superseded", slog.String("old", old.kind.String()),
			slog.String("new", kind.String()))
	}

	a := &active{
		kind:     kind,
		outgoing: outgoing,
		incoming: incoming,
		start:    c.clock.Now(),
		duration: kind.Duration(),
		step:     step,
	}
	c.running = a
	a.cancel = c.sched.RequestTick(func() { c.tick(a) })
}

// Cancel stops the running transition without a final render. Idempotent.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running != nil {
		if c.running.cancel != nil {
			c.running.cancel()
		}
		c.running = nil
	}
}

// tick advances a by one step. Ticks and Start serialize on c.mu, so a
// stale tick that raced a supersession sees c.running != a and does
// nothing.
func (c *Controller) tick(a *active) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running != a {
		return
	}

	p := float64(c.clock.Now().Sub(a.start)) / float64(a.duration)
	if p < 0 {
		p = 0
	}
	if p >= 1 {
		c.running = nil
		a.step(a.kind, a.outgoing, a.incoming, 1, true)
		return
	}

	a.step(a.kind, a.outgoing, a.incoming, easeInOutCubic(p), false)
	a.cancel = c.sched.RequestTick(func() { c.tick(a) })
}

// easeInOutCubic maps linear progress to cubic ease-in-out.
func easeInOutCubic(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	q := -2*p + 2
	return 1 - q*q*q/2
}
