package transition

import (
	"sync"
	"time"
)

// ManualScheduler queues ticks and fires them on demand. It gives tests
// and offline capture tools deterministic control over animation timing.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []*manualTick
}

type manualTick struct {
	fn        func()
	cancelled bool
}

func (s *ManualScheduler) RequestTick(fn func()) CancelFunc {
	t := &manualTick{fn: fn}
	s.mu.Lock()
	s.queue = append(s.queue, t)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		t.cancelled = true
		s.mu.Unlock()
	}
}

// Fire runs the oldest pending tick. It returns false when nothing ran.
// Cancelled ticks are skipped, matching a stopped timer never firing.
func (s *ManualScheduler) Fire() bool {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return false
		}
		t := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if t.cancelled {
			continue
		}
		t.fn()
		return true
	}
}

// Pending returns the number of queued ticks, cancelled ones included.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// ManualClock is a Clock advanced explicitly by the caller.
type ManualClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewManualClock starts a manual clock at the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
