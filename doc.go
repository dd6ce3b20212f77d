// Package parallel provides two small building blocks for fork-join,
// CPU-bound parallel loops: deterministic thread-count resolution and
// first-failure capture with guaranteed replay after join.
//
// Thread-count resolution
// A ThreadResolver reconciles three inputs, first match wins:
//   - the PARALLEL_DEFAULT_NUM_THREADS environment override (positive base-10
//     integer; anything else is treated as absent),
//   - the caller-requested count (positive values only),
//   - the ambient team size discovered by probing the runtime once.
//
// Both the override and the discovered default are read once per resolver and
// cached; the package-level ResolveNumThreads uses a process-wide resolver.
//
// Failure capture
// A FailureCapture is a thread-safe, write-once slot shared by all workers of
// one parallel region. Workers offer their failures to Capture; the first one
// wins, the rest are logged and dropped. After the region joins, Replay hands
// the held failure back to the orchestrating goroutine exactly once, so a
// parallel loop fails the way the equivalent sequential loop would.
//
// Regions
// Region and For wire the two together: they resolve the thread count, apply
// it to the runtime, guard every worker so panics and errors never cross the
// fork-join boundary, and replay the first failure on every exit path.
// Workers are never cancelled on a sibling's failure; they run to natural
// completion before replay.
//
// Defaults
// Unless overridden via options, a region uses the process-wide resolver and
// runtime, a no-op logger, and a no-op metrics provider.
package parallel
