package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds client-side admission limits.
type Config struct {
	// MaxInFlight is the maximum number of concurrent requests.
	// If 0, no bound is enforced (only tracking).
	MaxInFlight int64

	// RequestsPerSecond is the sustained request rate.
	// If 0, unlimited.
	RequestsPerSecond float64

	// Burst is the number of requests allowed above the sustained rate.
	// If 0, defaults to 1 when a rate is set.
	Burst int

	// IOLimitBytesPerSec is the maximum throughput for bulk transfers
	// such as snapshot streams. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller admits requests against the configured limits.
// A nil *Controller admits everything.
type Controller struct {
	cfg Config

	// Concurrency
	inflightSem *semaphore.Weighted // nil if unbounded
	inflight    atomic.Int64

	// Rate
	reqLimiter *rate.Limiter // nil if unlimited

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxInFlight > 0 {
		c.inflightSem = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.reqLimiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the limits the controller was built with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// Acquire waits for a request token and an in-flight slot.
// The returned release func must be called exactly once when the request
// completes. It blocks until admitted or ctx is canceled.
func (c *Controller) Acquire(ctx context.Context) (func(), error) {
	if c == nil {
		return func() {}, nil
	}

	if c.reqLimiter != nil {
		if err := c.reqLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if c.inflightSem != nil {
		if err := c.inflightSem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}

	c.inflight.Add(1)

	var once atomic.Bool
	return func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		c.inflight.Add(-1)
		if c.inflightSem != nil {
			c.inflightSem.Release(1)
		}
	}, nil
}

// TryAcquire admits a request without blocking.
// Returns false if either limit would be exceeded.
func (c *Controller) TryAcquire() (func(), bool) {
	if c == nil {
		return func() {}, true
	}

	if c.reqLimiter != nil && !c.reqLimiter.Allow() {
		return nil, false
	}

	if c.inflightSem != nil && !c.inflightSem.TryAcquire(1) {
		return nil, false
	}

	c.inflight.Add(1)

	var once atomic.Bool
	return func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		c.inflight.Add(-1)
		if c.inflightSem != nil {
			c.inflightSem.Release(1)
		}
	}, true
}

// InFlight returns the number of admitted requests not yet released.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inflight.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	// WaitN rejects requests larger than the burst.
	for bytes > 0 {
		n := min(bytes, c.ioLimiter.Burst())
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
