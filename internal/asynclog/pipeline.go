package asynclog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"glsandbox/internal/metrics"
)

// ErrClosed is returned when writing to a closed pipeline or sink
var ErrClosed = errors.New("asynclog: pipeline closed")

// Overflow selects what happens when a bounded queue is full
type Overflow int

const (
	// DropOldest discards the oldest queued record to make room
	DropOldest Overflow = iota
	// DropNewest discards the record being submitted
	DropNewest
)

// ParseOverflow parses "drop-oldest" or "drop-newest"
func ParseOverflow(s string) (Overflow, error) {
	switch strings.ToLower(s) {
	case "", "drop-oldest", "oldest":
		return DropOldest, nil
	case "drop-newest", "newest":
		return DropNewest, nil
	default:
		return DropOldest, fmt.Errorf("unknown overflow policy %q", s)
	}
}

func (o Overflow) String() string {
	if o == DropNewest {
		return "drop-newest"
	}
	return "drop-oldest"
}

// Stats is a point-in-time view of the pipeline counters
type Stats struct {
	Submitted  uint64
	Emitted    uint64
	Dropped    uint64
	SinkErrors uint64
	Queued     int
}

// Pipeline hands rendered log lines from any number of producer goroutines
// to one drain goroutine that writes them to a Sink. Submitting never waits
// for the sink.
type Pipeline struct {
	sink        Sink
	color       bool
	minSeverity Severity
	maxQueued   int
	overflow    Overflow
	metrics     *metrics.Log

	mu    sync.Mutex
	work  *sync.Cond // signalled when records arrive or the pipeline closes
	done  *sync.Cond // signalled when records are retired
	queue []string

	closed     bool
	enqueued   uint64
	retired    uint64 // emitted or evicted from the queue
	emitted    uint64
	dropped    uint64
	sinkErrors uint64
	lastErr    error

	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithColor styles severity markers with lipgloss
func WithColor(enabled bool) Option {
	return func(p *Pipeline) {
		p.color = enabled
	}
}

// WithMinSeverity discards records below sev before they are rendered
func WithMinSeverity(sev Severity) Option {
	return func(p *Pipeline) {
		p.minSeverity = sev
	}
}

// WithMaxQueued bounds the queue; 0 means unbounded
func WithMaxQueued(n int) Option {
	return func(p *Pipeline) {
		if n < 0 {
			n = 0
		}
		p.maxQueued = n
	}
}

// WithOverflow sets the policy for a bounded queue
func WithOverflow(o Overflow) Option {
	return func(p *Pipeline) {
		p.overflow = o
	}
}

// WithMetrics enables prometheus accounting
func WithMetrics(m *metrics.Log) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates a pipeline writing to sink and starts its drain worker.
// Call Close to stop the worker and flush what is queued.
func New(sink Sink, opts ...Option) *Pipeline {
	p := &Pipeline{
		sink:        sink,
		minSeverity: SeverityDebug,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.work = sync.NewCond(&p.mu)
	p.done = sync.NewCond(&p.mu)

	p.wg.Add(1)
	go p.drain()
	return p
}

// Submit renders format and args into one complete line on the calling
// goroutine and enqueues it.
func (p *Pipeline) Submit(sev Severity, format string, args ...any) {
	if sev < p.minSeverity {
		return
	}
	line := sev.Marker(p.color) + fmt.Sprintf(format, args...) + "\n"
	p.enqueue(line)
}

// Debugf submits a debug record
func (p *Pipeline) Debugf(format string, args ...any) { p.Submit(SeverityDebug, format, args...) }

// Infof submits an info record
func (p *Pipeline) Infof(format string, args ...any) { p.Submit(SeverityInfo, format, args...) }

// Warnf submits a warning record
func (p *Pipeline) Warnf(format string, args ...any) { p.Submit(SeverityWarn, format, args...) }

// Errorf submits an error record
func (p *Pipeline) Errorf(format string, args ...any) { p.Submit(SeverityError, format, args...) }

// Write enqueues p as one pre-rendered record, adding a trailing newline if
// missing. It lets structured loggers write through the pipeline.
func (p *Pipeline) Write(b []byte) (int, error) {
	line := string(b)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if !p.enqueue(line) {
		return 0, ErrClosed
	}
	return len(b), nil
}

func (p *Pipeline) enqueue(line string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.drop("closed")
		return false
	}

	if p.maxQueued > 0 && len(p.queue) >= p.maxQueued {
		if p.overflow == DropNewest {
			p.drop("overflow")
			return true
		}
		p.queue[0] = ""
		p.queue = p.queue[1:]
		p.retired++
		p.drop("overflow")
		p.done.Broadcast()
	}

	p.queue = append(p.queue, line)
	p.enqueued++
	if p.metrics != nil {
		p.metrics.Submitted.Inc()
		p.metrics.QueueDepth.Set(float64(len(p.queue)))
	}
	p.work.Signal()
	return true
}

// drop must be called with mu held
func (p *Pipeline) drop(reason string) {
	p.dropped++
	if p.metrics != nil {
		p.metrics.Dropped.WithLabelValues(reason).Inc()
	}
}

func (p *Pipeline) drain() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.work.Wait()
		}
		if len(p.queue) == 0 {
			// closed and fully drained
			p.mu.Unlock()
			return
		}
		batch := p.queue
		p.queue = nil
		if p.metrics != nil {
			p.metrics.QueueDepth.Set(0)
		}
		p.mu.Unlock()

		start := time.Now()
		var failed uint64
		var lastErr error
		for _, line := range batch {
			if err := p.sink.WriteLine(line); err != nil {
				failed++
				lastErr = err
			}
		}

		p.mu.Lock()
		n := uint64(len(batch))
		p.retired += n
		p.emitted += n - failed
		p.sinkErrors += failed
		if lastErr != nil {
			p.lastErr = lastErr
		}
		if p.metrics != nil {
			p.metrics.Emitted.Add(float64(n - failed))
			p.metrics.SinkErrors.Add(float64(failed))
			p.metrics.EmitDuration.Observe(time.Since(start).Seconds())
		}
		p.done.Broadcast()
		p.mu.Unlock()
	}
}

// Flush blocks until every record enqueued before the call has been handed
// to the sink, or ctx is done.
func (p *Pipeline) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := p.enqueued
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.done.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	for p.retired < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.done.Wait()
	}
	return nil
}

// Close stops accepting records, drains the queue, waits for the worker and
// closes the sink. Every caller, including concurrent ones, returns only
// after the sink is closed, and all of them get the same result.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.work.Broadcast()
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.closeOnce.Do(func() {
		p.closeErr = p.sink.Close()
	})
	return p.closeErr
}

// Len returns the number of records waiting for the worker
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Err returns the most recent sink error, if any
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Stats returns the current counters
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Submitted:  p.enqueued,
		Emitted:    p.emitted,
		Dropped:    p.dropped,
		SinkErrors: p.sinkErrors,
		Queued:     len(p.queue),
	}
}
