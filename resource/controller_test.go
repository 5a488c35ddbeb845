package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_InFlight(t *testing.T) {
	c := NewController(Config{MaxInFlight: 2})

	r1, err := c.Acquire(context.Background())
	require.NoError(t, err)
	r2, err := c.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.InFlight())

	// Third should block until the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, ok := c.TryAcquire()
	assert.False(t, ok)

	r1()
	r1() // double release is a no-op
	assert.Equal(t, int64(1), c.InFlight())

	r3, ok := c.TryAcquire()
	require.True(t, ok)
	r2()
	r3()
	assert.Equal(t, int64(0), c.InFlight())
}

func TestController_Unbounded(t *testing.T) {
	c := NewController(Config{})

	var releases []func()
	for i := 0; i < 100; i++ {
		r, err := c.Acquire(context.Background())
		require.NoError(t, err)
		releases = append(releases, r)
	}
	assert.Equal(t, int64(100), c.InFlight())

	for _, r := range releases {
		r()
	}
	assert.Equal(t, int64(0), c.InFlight())
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	release, err := c.Acquire(context.Background())
	require.NoError(t, err)
	release()

	_, ok := c.TryAcquire()
	assert.True(t, ok)
	assert.Equal(t, int64(0), c.InFlight())
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<20))
	assert.Equal(t, Config{}, c.Config())
}

func TestController_Rate(t *testing.T) {
	c := NewController(Config{RequestsPerSecond: 1, Burst: 2})

	for i := 0; i < 2; i++ {
		r, ok := c.TryAcquire()
		require.True(t, ok, "burst request %d", i)
		r()
	}

	// Burst exhausted; the next token is a second away.
	_, ok := c.TryAcquire()
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Acquire(ctx)
	assert.Error(t, err)
}

func TestController_DefaultBurst(t *testing.T) {
	c := NewController(Config{RequestsPerSecond: 1})

	r, ok := c.TryAcquire()
	require.True(t, ok)
	r()

	_, ok = c.TryAcquire()
	assert.False(t, ok)
}

func TestRateLimitedIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)
	_, err := io.Copy(w, strings.NewReader("hello world"))
	require.NoError(t, err)

	r := NewRateLimitedReader(ctx, &buf, c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestRateLimitedIO_Canceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 4})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewRateLimitedWriter(ctx, io.Discard, c)
	_, err := w.Write([]byte("more than four bytes"))
	assert.Error(t, err)
}
