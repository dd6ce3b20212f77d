package parallel

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// EnvDefaultNumThreads names the environment variable that, when set to a
// positive base-10 integer, overrides all other thread-count logic for the
// process. Non-numeric or non-positive values are ignored silently.
const EnvDefaultNumThreads = "PARALLEL_DEFAULT_NUM_THREADS"

// Runtime is the parallel-runtime capability consumed by thread-count
// resolution and by regions. Implementations must be safe for concurrent use.
type Runtime interface {
	// SetNumThreads applies n as the team size for subsequently opened
	// parallel regions. Non-positive values are ignored.
	SetNumThreads(n int)

	// NumThreads reports the ambient team size: the number of workers the
	// runtime assembles for a region opened with no explicit count.
	NumThreads() int
}

// goRuntime backs Runtime with the Go scheduler via GOMAXPROCS.
type goRuntime struct{}

func (goRuntime) SetNumThreads(n int) {
	if n > 0 {
		runtime.GOMAXPROCS(n)
	}
}

// NumThreads opens a trivial fork-join region with no explicit count and
// reports the team size that actually ran, reflecting whatever ambient
// policy is in effect (CPU count, GOMAXPROCS env, external caps).
func (goRuntime) NumThreads() int {
	var team atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < runtime.GOMAXPROCS(0); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			team.Add(1)
		}()
	}
	wg.Wait()
	if n := int(team.Load()); n > 0 {
		return n
	}
	return 1
}

var defaultRuntime Runtime = goRuntime{}

// ThreadResolver computes the worker-thread count for a parallel region.
// The environment override and the discovered ambient default are each read
// at most once per resolver and cached; later changes to the environment or
// to the runtime's ambient policy have no effect on an existing resolver.
//
// The zero value is not usable; construct via NewThreadResolver.
type ThreadResolver struct {
	rt Runtime

	overrideOnce sync.Once
	override     int // <= 0 means absent

	ambientOnce sync.Once
	ambient     int
}

// NewThreadResolver returns a resolver bound to rt. A nil rt selects the
// default Go runtime.
func NewThreadResolver(rt Runtime) *ThreadResolver {
	if rt == nil {
		rt = defaultRuntime
	}
	return &ThreadResolver{rt: rt}
}

// Resolve returns the thread count to use for a region, always >= 1.
// Priority order, first match wins: environment override, requested (if
// positive), discovered ambient default. Resolve never fails; malformed
// input degrades to the next tier.
func (r *ThreadResolver) Resolve(requested int) int {
	if n := r.envOverride(); n > 0 {
		return n
	}
	if requested > 0 {
		return requested
	}
	return r.ambientDefault()
}

func (r *ThreadResolver) envOverride() int {
	r.overrideOnce.Do(func() {
		r.override = -1
		n, err := strconv.Atoi(os.Getenv(EnvDefaultNumThreads))
		if err == nil && n > 0 {
			r.override = n
		}
	})
	return r.override
}

func (r *ThreadResolver) ambientDefault() int {
	r.ambientOnce.Do(func() {
		r.ambient = r.rt.NumThreads()
		if r.ambient < 1 {
			r.ambient = 1
		}
	})
	return r.ambient
}

// defaultResolver carries the process-wide memoized override and ambient
// default used by ResolveNumThreads and SetNumThreads.
var defaultResolver = NewThreadResolver(nil)

// ResolveNumThreads resolves requested against the process-wide resolver.
func ResolveNumThreads(requested int) int {
	return defaultResolver.Resolve(requested)
}

// SetNumThreads resolves requested and applies the result to the default
// runtime, returning the count that was applied.
func SetNumThreads(requested int) int {
	n := defaultResolver.Resolve(requested)
	defaultRuntime.SetNumThreads(n)
	return n
}
