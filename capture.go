package parallel

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/parallel/metrics"
)

// FailureCapture is a write-once slot shared by the workers of one parallel
// region. Any number of workers may offer failures concurrently; the first
// writer wins and later offers are logged and dropped. After the region
// joins, the orchestrating goroutine collects the held failure via Replay.
//
// "First" means first to acquire the write path, which need not match
// loop-iteration order. Create a fresh instance per region; an instance is
// spent after its single replay.
type FailureCapture struct {
	logger Logger

	offered  metrics.Counter
	captured metrics.Counter

	// held is guarded by mu; done flips once on the first successful write
	// so subsequent offers take a lock-free fast path.
	mu   sync.Mutex
	done atomic.Bool
	held error
}

// NewFailureCapture constructs a capture slot. Only WithLogger and
// WithMetrics are meaningful here; other options are accepted and ignored.
func NewFailureCapture(opts ...Option) (*FailureCapture, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	return newFailureCapture(&cfg), nil
}

func newFailureCapture(cfg *config) *FailureCapture {
	return &FailureCapture{
		logger: cfg.Logger,
		offered: cfg.Metrics.Counter("failures_offered",
			metrics.WithDescription("failures offered to capture, including non-winning ones"), metrics.WithUnit("1")),
		captured: cfg.Metrics.Counter("failures_captured",
			metrics.WithDescription("failures that won the capture slot"), metrics.WithUnit("1")),
	}
}

// Capture offers err as the held failure. The first offer wins; every offer,
// winning or not, is counted and its message forwarded to the logger. A nil
// err is a no-op. Safe for concurrent use.
func (c *FailureCapture) Capture(err error) {
	if err == nil {
		return
	}
	c.logger.Warn(err.Error())
	c.offered.Add(1)

	if c.done.Load() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done.Load() {
		return
	}
	c.held = err
	c.done.Store(true)
	c.captured.Add(1)
}

// CaptureRecovered offers a value recovered from a panicking worker, wrapped
// as ErrWorkerPanicked so the original message survives replay. A nil value
// is a no-op.
func (c *FailureCapture) CaptureRecovered(v any) {
	if v == nil {
		return
	}
	c.Capture(fmt.Errorf("%w: %v", ErrWorkerPanicked, v))
}

// Replay returns the held failure and clears it, or nil if none is held.
// Call it on the orchestrating goroutine after all workers have joined; a
// second call returns nil. Offers arriving after replay are dropped.
func (c *FailureCapture) Replay() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.held
	c.held = nil
	return err
}
