package loader

import (
	"log"
	"os"
	"runtime"

	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Loader.
type Option func(*config)

type config struct {
	workerCount int
	pinWorkers  bool
	rateLimiter *rate.Limiter
	logger      *log.Logger

	beforeRequestStart func(LoadRequest)
	onRequestEnd       func(LoadRequest, error)
}

func createConfig(opts ...Option) *config {
	cfg := &config{
		workerCount: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = log.New(os.Stderr, "[imgpool] ", log.LstdFlags)
	}
	return cfg
}

// WithWorkerCount sets the number of decode workers.
// If not specified, defaults to runtime.GOMAXPROCS(0).
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithCPUAffinity pins worker i to CPU i modulo the CPU count. Every worker
// runs on its own locked OS thread regardless of this option.
func WithCPUAffinity(enabled bool) Option {
	return func(cfg *config) {
		cfg.pinWorkers = enabled
	}
}

// WithRateLimit caps how many decodes may start per second across all
// workers. It throttles decoding, not submission: Submit never blocks.
// If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(20, 4) // 20 decodes/sec with bursts of 4
func WithRateLimit(decodesPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if decodesPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(decodesPerSecond), burst)
		}
	}
}

// WithLogger sets the logger used for worker crashes and shutdown problems.
// Defaults to stderr with an "[imgpool] " prefix.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithBeforeRequestStart registers a hook called by a worker right after it
// dequeues a request. Hooks run on worker goroutines and must be safe for
// concurrent use.
func WithBeforeRequestStart(fn func(LoadRequest)) Option {
	return func(cfg *config) {
		cfg.beforeRequestStart = fn
	}
}

// WithOnRequestEnd registers a hook called after a request's terminal event
// was emitted. err is nil on success.
func WithOnRequestEnd(fn func(LoadRequest, error)) Option {
	return func(cfg *config) {
		cfg.onRequestEnd = fn
	}
}
