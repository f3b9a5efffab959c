package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every sandbox metric
const Namespace = "glsandbox"

// Bus holds the collectors updated by the event bus
type Bus struct {
	Published     *prometheus.CounterVec
	Invoked       *prometheus.CounterVec
	Panics        *prometheus.CounterVec
	Subscriptions *prometheus.GaugeVec
}

// NewBus creates and registers event bus collectors on reg
func NewBus(reg prometheus.Registerer) *Bus {
	factory := promauto.With(reg)
	return &Bus{
		Published: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "eventbus",
				Name:      "published_total",
				Help:      "Total number of events published",
			},
			[]string{"event"},
		),
		Invoked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "eventbus",
				Name:      "handlers_invoked_total",
				Help:      "Total number of handler invocations",
			},
			[]string{"event"},
		),
		Panics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "eventbus",
				Name:      "handler_panics_total",
				Help:      "Total number of recovered handler panics",
			},
			[]string{"event"},
		),
		Subscriptions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "eventbus",
				Name:      "subscriptions",
				Help:      "Current number of registered handlers",
			},
			[]string{"event"},
		),
	}
}

// Log holds the collectors updated by the async log pipeline
type Log struct {
	Submitted    prometheus.Counter
	Emitted      prometheus.Counter
	Dropped      *prometheus.CounterVec
	SinkErrors   prometheus.Counter
	QueueDepth   prometheus.Gauge
	EmitDuration prometheus.Histogram
}

// NewLog creates and registers log pipeline collectors on reg
func NewLog(reg prometheus.Registerer) *Log {
	factory := promauto.With(reg)
	return &Log{
		Submitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "asynclog",
			Name:      "submitted_total",
			Help:      "Total number of log records enqueued",
		}),
		Emitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "asynclog",
			Name:      "emitted_total",
			Help:      "Total number of log records written to the sink",
		}),
		Dropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "asynclog",
				Name:      "dropped_total",
				Help:      "Total number of log records dropped",
			},
			[]string{"reason"},
		),
		SinkErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "asynclog",
			Name:      "sink_errors_total",
			Help:      "Total number of failed sink writes",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "asynclog",
			Name:      "queue_depth",
			Help:      "Number of records waiting for the drain worker",
		}),
		EmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "asynclog",
			Name:      "emit_duration_seconds",
			Help:      "Time to write one batch to the sink",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
	}
}

// Frames holds the collectors updated by the render loop
type Frames struct {
	Rendered        *prometheus.CounterVec
	FrameDuration   prometheus.Histogram
	ComputeDuration prometheus.Histogram
}

// NewFrames creates and registers frame collectors on reg
func NewFrames(reg prometheus.Registerer) *Frames {
	factory := promauto.With(reg)
	return &Frames{
		Rendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "sandbox",
				Name:      "frames_total",
				Help:      "Total number of frames built",
			},
			[]string{"mode"},
		),
		FrameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "sandbox",
			Name:      "frame_duration_seconds",
			Help:      "Time to build one frame",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		ComputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "sandbox",
			Name:      "compute_duration_seconds",
			Help:      "Time spent in the compute pass",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 12),
		}),
	}
}

// ObserveFrame records one built frame
func (f *Frames) ObserveFrame(mode string, frame, compute time.Duration) {
	f.Rendered.WithLabelValues(mode).Inc()
	f.FrameDuration.Observe(frame.Seconds())
	if compute > 0 {
		f.ComputeDuration.Observe(compute.Seconds())
	}
}

// Set bundles every sandbox collector
type Set struct {
	Bus    *Bus
	Log    *Log
	Frames *Frames
}

// NewSet registers every sandbox collector on reg
func NewSet(reg prometheus.Registerer) *Set {
	return &Set{
		Bus:    NewBus(reg),
		Log:    NewLog(reg),
		Frames: NewFrames(reg),
	}
}
