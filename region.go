package parallel

import (
	"context"
	"sync"
	"time"

	"github.com/ygrebnov/parallel/metrics"
)

// Region is an explicit fork-join scope. NewRegion resolves the thread count
// and applies it to the runtime; Go launches guarded workers; Wait joins them
// and replays the first captured failure on the calling goroutine.
//
// A failure never cancels siblings: workers run to natural completion, each
// offering its own failure to the shared capture, and only the first is
// retained. Create a fresh Region per parallel span; it is spent after Wait.
type Region struct {
	ctx        context.Context
	capture    *FailureCapture
	numThreads int

	inflight   sync.WaitGroup
	duration   metrics.Histogram
	started    time.Time
	recordOnce sync.Once
}

// NewRegion opens a region: the requested count (WithNumThreads, environment
// override, or ambient default) is resolved and applied to the runtime before
// any worker starts. ctx is handed to worker bodies as-is; the region itself
// does not cancel it.
func NewRegion(ctx context.Context, opts ...Option) (*Region, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	n := cfg.resolverOrDefault().Resolve(cfg.NumThreads)
	cfg.runtimeOrDefault().SetNumThreads(n)

	return &Region{
		ctx:        ctx,
		capture:    newFailureCapture(&cfg),
		numThreads: n,
		duration: cfg.Metrics.Histogram("region_duration_seconds",
			metrics.WithDescription("wall time from region open to join"), metrics.WithUnit("seconds")),
		started: time.Now(),
	}, nil
}

// NumThreads reports the resolved team size applied to the runtime.
func (r *Region) NumThreads() int { return r.numThreads }

// Failures exposes the capture slot shared by this region's workers, for
// bodies that offer failures per item rather than per worker.
func (r *Region) Failures() *FailureCapture { return r.capture }

// Go launches fn as a guarded worker. A returned error or a panic is offered
// to the region's capture instead of crossing the fork-join boundary.
func (r *Region) Go(fn func(ctx context.Context) error) {
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		defer func() {
			if v := recover(); v != nil {
				r.capture.CaptureRecovered(v)
			}
		}()
		if err := fn(r.ctx); err != nil {
			r.capture.Capture(err)
		}
	}()
}

// Wait joins all workers and replays the first captured failure, if any.
// Replay happens on every exit path; a second Wait returns nil.
func (r *Region) Wait() (err error) {
	defer func() {
		if rerr := r.capture.Replay(); err == nil {
			err = rerr
		}
	}()
	r.inflight.Wait()
	r.recordOnce.Do(func() {
		r.duration.Record(time.Since(r.started).Seconds())
	})
	return nil
}
