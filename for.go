package parallel

import "context"

// For executes body for each i in [0,n) across a resolved team of workers.
// Iterations are chunked contiguously; each iteration is guarded, so a
// failing or panicking iteration is offered to the shared capture and the
// worker moves on to its next iteration. After all workers join, the first
// captured failure is returned; replay happens on every exit path.
//
// n <= 0 is a no-op. The team size never exceeds n.
func For(ctx context.Context, n int, body func(ctx context.Context, i int) error, opts ...Option) (err error) {
	if n <= 0 {
		return nil
	}

	r, rerr := NewRegion(ctx, opts...)
	if rerr != nil {
		return rerr
	}
	defer func() {
		if werr := r.Wait(); err == nil {
			err = werr
		}
	}()

	team := min(r.NumThreads(), n)
	chunk := (n + team - 1) / team
	for w := 0; w < team; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		r.Go(func(ctx context.Context) error {
			for i := lo; i < hi; i++ {
				runIteration(ctx, r.capture, i, body)
			}
			return nil
		})
	}
	return nil
}

// runIteration guards a single loop iteration so the enclosing worker
// continues with the rest of its chunk after a failure.
func runIteration(ctx context.Context, c *FailureCapture, i int, body func(ctx context.Context, i int) error) {
	defer func() {
		if v := recover(); v != nil {
			c.CaptureRecovered(v)
		}
	}()
	if err := body(ctx, i); err != nil {
		c.Capture(err)
	}
}
