package ui

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"glsandbox/internal/domain"
	"glsandbox/internal/eventbus"
	"glsandbox/internal/metrics"
)

func TestFrameTrackerCountsRecentFrames(t *testing.T) {
	bus := eventbus.New()
	ft := NewFrameTracker(bus, nil)
	defer ft.Close()

	start := time.Unix(1000, 0)
	for i := 0; i < 30; i++ {
		eventbus.Publish(bus, domain.FrameRenderedEvent{
			Stats: domain.FrameStats{Frame: uint64(i + 1)},
			At:    start.Add(time.Duration(i) * 50 * time.Millisecond),
		})
	}

	assert.Equal(t, uint64(30), ft.Total())
	assert.Equal(t, uint64(30), ft.Last().Frame)
	// frames at 50ms spacing: the last second holds 20 of them
	assert.Equal(t, 20.0, ft.FPS())
}

func TestFrameTrackerRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewFrames(reg)

	bus := eventbus.New()
	ft := NewFrameTracker(bus, m)
	defer ft.Close()

	eventbus.Publish(bus, domain.FrameRenderedEvent{
		Stats: domain.FrameStats{Mode: domain.DrawCompute, BuildDuration: time.Millisecond},
		At:    time.Now(),
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rendered.WithLabelValues("compute")))
}
