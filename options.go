package tokgo

import (
	"log/slog"

	"github.com/hupe1980/tokgo/blockindex"
	"github.com/hupe1980/tokgo/resource"
	"github.com/hupe1980/tokgo/tokenstore"
)

type options struct {
	blockSize        int
	breakMode        blockindex.BreakMode
	includeTargets   bool
	pad              tokenstore.Token
	eos              tokenstore.Token
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
}

// Option configures Dataset construction.
type Option func(*options)

// WithBlockSize configures the target block length in tokens.
// It applies to BreakNone and BreakComplete and is ignored by BreakEOS.
// Default: 1024.
func WithBlockSize(blockSize int) Option {
	return func(o *options) {
		o.blockSize = blockSize
	}
}

// WithBreakMode configures how unit boundaries influence block boundaries.
// Default: blockindex.BreakNone.
func WithBreakMode(mode blockindex.BreakMode) Option {
	return func(o *options) {
		o.breakMode = mode
	}
}

// WithTargets enables the shifted Source and PastTarget views on samples,
// for next-token prediction training. pad and eos are the sentinel tokens
// substituted at the start of the stream.
//
// Disabled by default: Get then fills only Sample.Target.
func WithTargets(pad, eos tokenstore.Token) Option {
	return func(o *options) {
		o.includeTargets = true
		o.pad = pad
		o.eos = eos
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &tokgo.BasicMetricsCollector{}
//	ds, _ := tokgo.New(store, tokgo.WithMetricsCollector(metrics))
//	// ... use ds ...
//	stats := metrics.GetStats()
//	fmt.Printf("Prefetches: %d, Avg latency: %dns\n", stats.PrefetchCount, stats.PrefetchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := tokgo.NewJSONLogger(slog.LevelInfo)
//	ds, _ := tokgo.New(store, tokgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController charges prefetch buffers against a shared
// resource controller. Several datasets and shard caches can share one
// controller so that they compete for a single memory budget.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		blockSize:        1024,
		breakMode:        blockindex.BreakNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
