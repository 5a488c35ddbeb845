package vectis_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/vectis"
	"github.com/hupe1980/vectis/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, srv *testutil.Server, opts ...vectis.Option) *vectis.Client {
	t.Helper()
	c, err := vectis.New(context.Background(), srv.URL(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew(t *testing.T) {
	t.Run("Probe", func(t *testing.T) {
		srv := testutil.NewServer(t)
		c := newClient(t, srv)
		assert.Equal(t, srv.URL(), c.Endpoint())
		assert.Equal(t, 1, srv.Hits("GET /api/stats"))
	})

	t.Run("TrailingSlash", func(t *testing.T) {
		srv := testutil.NewServer(t)
		c, err := vectis.New(context.Background(), srv.URL()+"/")
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, srv.URL(), c.Endpoint())
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := testutil.NewServer(t)
		addr := srv.URL()
		srv.Close()

		c, err := vectis.New(context.Background(), addr, vectis.WithTimeout(time.Second))
		assert.Nil(t, c)
		var cf *vectis.ErrConnectionFailure
		require.ErrorAs(t, err, &cf)
		assert.Equal(t, addr, cf.Endpoint)
	})

	t.Run("ProbeStatus", func(t *testing.T) {
		srv := testutil.NewServer(t)
		srv.Override("GET /api/stats", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "booting", http.StatusServiceUnavailable)
		})

		_, err := vectis.New(context.Background(), srv.URL())
		var cf *vectis.ErrConnectionFailure
		require.ErrorAs(t, err, &cf)
		var of *vectis.ErrOperationFailed
		require.ErrorAs(t, err, &of)
		assert.Equal(t, http.StatusServiceUnavailable, of.StatusCode)
		assert.Equal(t, "booting", of.Message)
	})

	t.Run("InvalidURL", func(t *testing.T) {
		for _, addr := range []string{"", "localhost:8080", "ftp://host", "http://"} {
			_, err := vectis.New(context.Background(), addr)
			assert.Error(t, err, addr)
		}
	})
}

func TestUse(t *testing.T) {
	srv := testutil.NewServer(t)
	ctx := context.Background()

	var leaked *vectis.Client
	sentinel := errors.New("boom")
	err := vectis.Use(ctx, srv.URL(), func(c *vectis.Client) error {
		leaked = c
		require.NoError(t, c.Put(ctx, "a", "1"))
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	require.NotNil(t, leaked)
	assert.True(t, leaked.Closed())

	assert.Panics(t, func() {
		_ = vectis.Use(ctx, srv.URL(), func(c *vectis.Client) error {
			leaked = c
			panic("fn panicked")
		})
	})
	assert.True(t, leaked.Closed())

	v, ok := srv.Value("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestPutGetDelete(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a", "1"))

	v, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", v)

	require.NoError(t, c.Delete(ctx, "a"))

	v, found, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v)

	// Deleting an absent key is passed through as the remote decides.
	assert.NoError(t, c.Delete(ctx, "a"))
}

func TestPut_SpecialCharacters(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	key, value := "user:1/ä&b=c", "line1\nline2 & more"
	require.NoError(t, c.Put(ctx, key, value))

	got, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, value, got)
}

func TestOperationFailed(t *testing.T) {
	tests := []struct {
		name  string
		route string
		run   func(c *vectis.Client) error
	}{
		{"Put", "POST /api/put", func(c *vectis.Client) error { return c.Put(context.Background(), "k", "v") }},
		{"Get", "GET /api/get", func(c *vectis.Client) error {
			_, _, err := c.Get(context.Background(), "k")
			return err
		}},
		{"Delete", "POST /api/delete", func(c *vectis.Client) error { return c.Delete(context.Background(), "k") }},
		{"BatchPut", "POST /api/batch", func(c *vectis.Client) error {
			return c.BatchPut(context.Background(), map[string]string{"k": "v"})
		}},
		{"BatchGet", "POST /api/batch_get", func(c *vectis.Client) error {
			_, err := c.BatchGet(context.Background(), []string{"k"})
			return err
		}},
		{"Scan", "GET /api/scan", func(c *vectis.Client) error {
			_, err := c.Scan(context.Background(), vectis.ScanRange{})
			return err
		}},
		{"Stats", "GET /api/stats", func(c *vectis.Client) error {
			_, err := c.Stats(context.Background())
			return err
		}},
		{"Health", "GET /api/health", func(c *vectis.Client) error {
			_, err := c.Health(context.Background())
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewServer(t)
			c := newClient(t, srv)
			srv.Override(tt.route, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "disk full", http.StatusInternalServerError)
			})

			err := tt.run(c)
			var of *vectis.ErrOperationFailed
			require.ErrorAs(t, err, &of)
			assert.Equal(t, http.StatusInternalServerError, of.StatusCode)
			assert.Equal(t, "disk full", of.Message)
		})
	}
}

func TestClosed(t *testing.T) {
	srv := testutil.NewServer(t)
	c, err := vectis.New(context.Background(), srv.URL())
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "Close must be idempotent")
	assert.True(t, c.Closed())

	ctx := context.Background()
	before := srv.Hits("POST /api/put")

	assert.ErrorIs(t, c.Put(ctx, "a", "1"), vectis.ErrClientClosed)
	_, _, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, vectis.ErrClientClosed)
	assert.ErrorIs(t, c.Delete(ctx, "a"), vectis.ErrClientClosed)
	assert.ErrorIs(t, c.BatchPut(ctx, map[string]string{"a": "1"}), vectis.ErrClientClosed)
	_, err = c.BatchGet(ctx, []string{"a"})
	assert.ErrorIs(t, err, vectis.ErrClientClosed)
	_, err = c.Scan(ctx, vectis.ScanRange{})
	assert.ErrorIs(t, err, vectis.ErrClientClosed)
	_, err = c.Stats(ctx)
	assert.ErrorIs(t, err, vectis.ErrClientClosed)
	_, err = c.Health(ctx)
	assert.ErrorIs(t, err, vectis.ErrClientClosed)
	_, err = c.SearchSimilar(ctx, testutil.NewRNG(1).Vectors(1, 3)[0], 0)
	assert.ErrorIs(t, err, vectis.ErrClientClosed)

	assert.Equal(t, before, srv.Hits("POST /api/put"))

	var nilClient *vectis.Client
	assert.NoError(t, nilClient.Close())
}

func TestTimeout(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv, vectis.WithTimeout(50*time.Millisecond))

	srv.Override("GET /api/get", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	_, _, err := c.Get(context.Background(), "slow")
	var cf *vectis.ErrConnectionFailure
	require.ErrorAs(t, err, &cf)
	assert.Equal(t, "get", cf.Op)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestContextCanceled(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Put(ctx, "a", "1")
	var cf *vectis.ErrConnectionFailure
	require.ErrorAs(t, err, &cf)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequestHeaders(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv, vectis.WithUserAgent("vectis-test/1.0"))

	var (
		mu  sync.Mutex
		ids []string
	)
	srv.Override("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "vectis-test/1.0", r.UserAgent())
		mu.Lock()
		ids = append(ids, r.Header.Get(vectis.RequestIDHeader))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	for i := 0; i < 2; i++ {
		h, err := c.Health(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "healthy", h["status"])
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ids, 2)
	for _, id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestStats(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.Seed(map[string]string{"a": "1", "b": "2"})
	c := newClient(t, srv)

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats["total_entries"])

	srv.Override("GET /api/stats", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err = c.Stats(context.Background())
	var pe *vectis.ErrProtocol
	assert.ErrorAs(t, err, &pe)
}

func TestMetricsAndLogging(t *testing.T) {
	srv := testutil.NewServer(t)
	metrics := &vectis.BasicMetricsCollector{}
	var buf bytes.Buffer

	c := newClient(t, srv,
		vectis.WithMetricsCollector(metrics),
		vectis.WithLogger(vectis.NewWriterLogger(&buf, slog.LevelDebug)),
	)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a", "1"))
	_, _, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	_, err = c.BatchGet(ctx, []string{"a", "missing"})
	require.NoError(t, err)

	srv.Override("POST /api/put", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	})
	require.Error(t, c.Put(ctx, "b", "2"))

	stats := metrics.GetStats()
	assert.Equal(t, int64(5), stats.RequestCount) // probe, put, get, batch_get, put
	assert.Equal(t, int64(1), stats.RequestErrors)
	assert.Equal(t, int64(2), stats.RequestsByOp["put"])
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(2), stats.BatchItems)
	assert.Equal(t, int64(1), stats.BatchMissing)

	logs := buf.String()
	assert.Contains(t, logs, "connected")
	assert.Contains(t, logs, "request completed")
	assert.Contains(t, logs, "request failed")
	assert.Contains(t, logs, "request_id=")
}

func TestAdmissionControl(t *testing.T) {
	srv := testutil.NewServer(t)

	var inflight, peak atomic.Int32
	srv.Override("POST /api/put", func(w http.ResponseWriter, _ *http.Request) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		_, _ = w.Write([]byte("OK"))
	})

	c := newClient(t, srv, vectis.WithMaxInFlight(2), vectis.WithRateLimit(1000, 10))

	ctx := context.Background()
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() { errs <- c.Put(ctx, strings.Repeat("k", i+1), "v") }()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
