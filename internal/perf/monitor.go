// Package perf tracks render latency against a configured target.
package perf

import (
	"log/slog"
	"sync"
	"time"

	"specs-overlay-engine/internal/logx"
)

// sampleEvery is how many renders pass between fps recomputations.
const sampleEvery = 10

// Monitor samples render durations. Every 10th render it recomputes a
// rolling fps figure and, when the last render exceeded the target, emits
// a warning. The warning is diagnostic only.
type Monitor struct {
	target time.Duration
	log    *slog.Logger
	onWarn func(Sample)

	mu     sync.Mutex
	sample Sample
}

// Sample is the rolling performance counter.
type Sample struct {
	RenderCount int
	LastMs      float64
	FPS         float64
}

// NewMonitor builds a monitor with an explicit latency target. The target
// is passed in rather than read from ambient configuration. onWarn may be
// nil.
func NewMonitor(target time.Duration, log *slog.Logger, onWarn func(Sample)) *Monitor {
	return &Monitor{target: target, log: logx.OrNop(log), onWarn: onWarn}
}

// Record reports one render's wall-clock duration.
func (m *Monitor) Record(d time.Duration) {
	m.mu.Lock()
	m.sample.RenderCount++
	m.sample.LastMs = float64(d) / float64(time.Millisecond)

	if m.sample.RenderCount%sampleEvery != 0 {
		m.mu.Unlock()
		return
	}

	if m.sample.LastMs > 0 {
		m.sample.FPS = 1000 / m.sample.LastMs
	}
	over := m.target > 0 && d > m.target
	s := m.sample
	m.mu.Unlock()

	if over {
		m.log.Warn("render exceeded latency target",
			slog.Float64("last_ms", s.LastMs),
			slog.Float64("target_ms", float64(m.target)/float64(time.Millisecond)),
			slog.Float64("fps", s.FPS))
		if m.onWarn != nil {
			m.onWarn(s)
		}
	}
}

// Snapshot returns the current counters.
func (m *Monitor) Snapshot() Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sample
}
