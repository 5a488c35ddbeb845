package vectis

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultTimeout applies to every call unless WithTimeout overrides it.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxIdleConns is the default number of idle pooled connections kept per host.
	DefaultMaxIdleConns = 16

	// DefaultParallelism bounds the fan-out of multi-key vector operations.
	DefaultParallelism = 8

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "vectis-go"
)

type options struct {
	timeout          time.Duration
	httpClient       *http.Client
	metricsCollector MetricsCollector
	logger           *Logger
	rateLimit        float64
	rateBurst        int
	maxInFlight      int64
	maxIdleConns     int
	parallelism      int
	userAgent        string
}

// Option configures Client construction.
type Option func(*options)

// WithTimeout sets the timeout applied uniformly to every call,
// including the liveness probe. Values <= 0 keep the default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient uses hc instead of a client built from the pool options.
// The client's Timeout is left untouched; WithTimeout still bounds each call
// through its context.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vectis.BasicMetricsCollector{}
//	c, _ := vectis.New(ctx, "http://localhost:8080", vectis.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
//	fmt.Printf("Requests: %d, Avg latency: %dns\n", stats.RequestCount, stats.RequestAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vectis.NewJSONLogger(slog.LevelInfo)
//	c, _ := vectis.New(ctx, addr, vectis.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
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

// WithRateLimit caps the client at rps requests per second with the given
// burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rateLimit = rps
		o.rateBurst = burst
	}
}

// WithMaxInFlight bounds the number of concurrent requests. Callers beyond
// the bound block until a slot frees or their context ends.
// n <= 0 means unbounded.
func WithMaxInFlight(n int) Option {
	return func(o *options) {
		o.maxInFlight = int64(n)
	}
}

// WithMaxIdleConns sets how many idle connections the pool keeps per host.
func WithMaxIdleConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIdleConns = n
		}
	}
}

// WithParallelism bounds the fan-out of GetVectors and PutVectors.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		timeout:          DefaultTimeout,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		maxIdleConns:     DefaultMaxIdleConns,
		parallelism:      DefaultParallelism,
		userAgent:        DefaultUserAgent,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
