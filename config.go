package parallel

import (
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/parallel/metrics"
)

// config holds Region and FailureCapture configuration.
type config struct {
	// NumThreads is the caller-requested team size. Non-positive (default)
	// means no preference: the resolver falls through to the environment
	// override or the discovered ambient default.
	NumThreads int

	// Runtime is the parallel-runtime capability the region applies its
	// resolved count to. Nil selects the default Go runtime.
	Runtime Runtime

	// Resolver supplies memoized thread-count resolution. Nil selects the
	// process-wide resolver when Runtime is default, or a fresh resolver
	// bound to Runtime otherwise.
	Resolver *ThreadResolver

	// Logger receives the message of every failure offered to capture.
	// Default: discard.
	Logger Logger

	// Metrics provides advisory instruments (offered/captured failure
	// counters, region duration histogram). Default: no-op.
	Metrics metrics.Provider
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		NumThreads: 0, // no preference
		Runtime:    nil,
		Resolver:   nil,
		Logger:     noopLogger{},
		Metrics:    metrics.NewNoopProvider(),
	}
}

func (c *config) runtimeOrDefault() Runtime {
	if c.Runtime != nil {
		return c.Runtime
	}
	return defaultRuntime
}

func (c *config) resolverOrDefault() *ThreadResolver {
	if c.Resolver != nil {
		return c.Resolver
	}
	if c.Runtime == nil {
		return defaultResolver
	}
	// A non-default runtime must not inherit the process-wide memoized
	// ambient default; bind a fresh resolver to it.
	return NewThreadResolver(c.Runtime)
}

// Option configures a Region or FailureCapture. Options return an error on
// invalid input instead of panicking.
type Option func(*config) error

// WithNumThreads requests a team size for the region. Non-positive values
// mean no preference; the environment override, when set, wins regardless.
func WithNumThreads(n int) Option {
	return func(cfg *config) error { cfg.NumThreads = n; return nil }
}

// WithRuntime injects the parallel-runtime capability (must be non-nil).
func WithRuntime(rt Runtime) Option {
	return func(cfg *config) error {
		if rt == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithRuntime requires a non-nil Runtime"))
		}
		cfg.Runtime = rt
		return nil
	}
}

// WithResolver shares a memoized ThreadResolver across regions (must be non-nil).
func WithResolver(r *ThreadResolver) Option {
	return func(cfg *config) error {
		if r == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithResolver requires a non-nil ThreadResolver"))
		}
		cfg.Resolver = r
		return nil
	}
}

// WithLogger injects the diagnostic sink for captured failures (must be non-nil).
func WithLogger(l Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil Logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics injects a metrics provider (must be non-nil).
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil Provider"))
		}
		cfg.Metrics = p
		return nil
	}
}

// buildConfig assembles a config from defaults and opts.
func buildConfig(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
