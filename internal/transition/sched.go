package transition

import "time"

// CancelFunc cancels a scheduled tick. Calling it after the tick has fired
// is a no-op.
type CancelFunc func()

// Scheduler schedules a callback to run before the next display refresh.
type Scheduler interface {
	RequestTick(fn func()) CancelFunc
}

// Clock provides the monotonic time base for transition progress.
type Clock interface {
	Now() time.Time
}

// DisplayScheduler fires callbacks at display-refresh cadence using
// time.AfterFunc.
type DisplayScheduler struct {
	// Interval between ticks; defaults to ~60Hz when zero.
	Interval time.Duration
}

func (s *DisplayScheduler) RequestTick(fn func()) CancelFunc {
	d := s.Interval
	if d <= 0 {
		d = 16 * time.Millisecond
	}
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
