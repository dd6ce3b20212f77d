package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFor_VisitsEveryIndexExactlyOnce(t *testing.T) {
	const n = 100

	visits := make([]atomic.Int32, n)
	err := For(context.Background(), n, func(_ context.Context, i int) error {
		visits[i].Add(1)
		return nil
	}, WithRuntime(&fakeRuntime{ambient: 4}))

	require.NoError(t, err)
	for i := range visits {
		require.Equal(t, int32(1), visits[i].Load(), "index %d", i)
	}
}

func TestFor_NonPositiveN_IsNoOp(t *testing.T) {
	for _, n := range []int{0, -1, -10} {
		called := false
		err := For(context.Background(), n, func(context.Context, int) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		require.False(t, called)
	}
}

func TestFor_SingleFailure_SurfacesWithOriginalMessage(t *testing.T) {
	const n = 16

	var ran atomic.Int32
	err := For(context.Background(), n, func(_ context.Context, i int) error {
		ran.Add(1)
		if i == 7 {
			return errors.New("boom")
		}
		return nil
	}, WithRuntime(&fakeRuntime{ambient: 4}))

	require.EqualError(t, err, "boom")
	require.Equal(t, int32(n), ran.Load(), "remaining iterations must still run")
}

func TestFor_FailingIteration_DoesNotStopWorkerChunk(t *testing.T) {
	// Single worker, first iteration fails: the worker must continue with
	// the rest of its chunk.
	const n = 8

	var ran atomic.Int32
	err := For(context.Background(), n, func(_ context.Context, i int) error {
		ran.Add(1)
		if i == 0 {
			return errors.New("boom")
		}
		return nil
	}, WithRuntime(&fakeRuntime{ambient: 1}))

	require.EqualError(t, err, "boom")
	require.Equal(t, int32(n), ran.Load())
}

func TestFor_MultipleFailures_ExactlyOneSurfaced(t *testing.T) {
	const n = 24

	logger := &recordingLogger{}
	want := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		want[fmt.Sprintf("boom %d", i)] = struct{}{}
	}

	err := For(context.Background(), n, func(_ context.Context, i int) error {
		return fmt.Errorf("boom %d", i)
	}, WithRuntime(&fakeRuntime{ambient: 4}), WithLogger(logger))

	require.Error(t, err)
	require.Contains(t, want, err.Error())
	require.Len(t, logger.messages(), n, "every failing iteration must be logged")
}

func TestFor_PanickingIteration_SurfacedAsError(t *testing.T) {
	err := For(context.Background(), 10, func(_ context.Context, i int) error {
		if i == 5 {
			panic("kaboom")
		}
		return nil
	}, WithRuntime(&fakeRuntime{ambient: 2}))

	require.ErrorIs(t, err, ErrWorkerPanicked)
	require.Contains(t, err.Error(), "kaboom")
}

func TestFor_TeamNeverExceedsRequestedCount(t *testing.T) {
	const n, team = 32, 2

	var cur, peak atomic.Int32
	err := For(context.Background(), n, func(context.Context, int) error {
		c := cur.Add(1)
		for {
			p := peak.Load()
			if c <= p || peak.CompareAndSwap(p, c) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		cur.Add(-1)
		return nil
	}, WithRuntime(&fakeRuntime{ambient: 8}), WithNumThreads(team))

	require.NoError(t, err)
	require.LessOrEqual(t, peak.Load(), int32(team))
}

func TestFor_TeamClampedToN(t *testing.T) {
	// More workers than iterations: every index still runs exactly once.
	const n = 3

	visits := make([]atomic.Int32, n)
	err := For(context.Background(), n, func(_ context.Context, i int) error {
		visits[i].Add(1)
		return nil
	}, WithRuntime(&fakeRuntime{ambient: 16}))

	require.NoError(t, err)
	for i := range visits {
		require.Equal(t, int32(1), visits[i].Load())
	}
}

func TestFor_InvalidOption(t *testing.T) {
	err := For(context.Background(), 4, func(context.Context, int) error { return nil }, WithRuntime(nil))
	require.ErrorIs(t, err, ErrInvalidConfig)
}
