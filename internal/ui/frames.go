package ui

import (
	"sync"
	"time"

	"glsandbox/internal/domain"
	"glsandbox/internal/eventbus"
	"glsandbox/internal/metrics"
)

// FrameTracker follows FrameRenderedEvents to report frame rate and the
// latest frame statistics
type FrameTracker struct {
	mu      sync.Mutex
	window  time.Duration
	recent  []time.Time
	last    domain.FrameStats
	total   uint64
	metrics *metrics.Frames
	sub     eventbus.Subscription
}

// NewFrameTracker subscribes a tracker to the bus. m may be nil.
func NewFrameTracker(bus *eventbus.Bus, m *metrics.Frames) *FrameTracker {
	t := &FrameTracker{window: time.Second, metrics: m}
	t.sub = eventbus.Subscribe(bus, t, (*FrameTracker).onFrame)
	return t
}

func (t *FrameTracker) onFrame(e *domain.FrameRenderedEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	t.last = e.Stats

	cutoff := e.At.Add(-t.window)
	keep := t.recent[:0]
	for _, at := range t.recent {
		if at.After(cutoff) {
			keep = append(keep, at)
		}
	}
	t.recent = append(keep, e.At)

	if t.metrics != nil {
		t.metrics.ObserveFrame(e.Stats.Mode.String(), e.Stats.BuildDuration, e.Stats.ComputeDuration)
	}
}

// FPS returns the number of frames seen in the last second
func (t *FrameTracker) FPS() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(len(t.recent)) / t.window.Seconds()
}

// Last returns the statistics of the most recent frame
func (t *FrameTracker) Last() domain.FrameStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Total returns how many frames have been seen
func (t *FrameTracker) Total() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Close unsubscribes the tracker
func (t *FrameTracker) Close() {
	t.sub.Unsubscribe()
}
