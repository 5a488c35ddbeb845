package vectis

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vectis/vector"
)

type vectorPutRequest struct {
	Key    string        `json:"key"`
	Vector vector.Vector `json:"vector"`
}

type vectorGetResponse struct {
	Vector *vector.Vector `json:"vector"`
}

// PutVector stores v under key. Vectors with NaN or infinite components are
// rejected with *vector.ErrNonFinite before any request is sent.
func (c *Client) PutVector(ctx context.Context, key string, v vector.Vector) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if err := v.Validate(); err != nil {
		return err
	}

	_, err := c.do(ctx, call{
		op:     "vector_put",
		method: http.MethodPost,
		path:   "/api/vector/put",
		json:   vectorPutRequest{Key: key, Vector: v},
	})
	return err
}

// GetVector returns the vector stored under key. A missing key is reported
// by found == false, not by an error.
func (c *Client) GetVector(ctx context.Context, key string) (v vector.Vector, found bool, err error) {
	resp, err := c.do(ctx, call{
		op:            "vector_get",
		method:        http.MethodGet,
		path:          "/api/vector/get",
		query:         url.Values{"key": {key}},
		allowNotFound: true,
	})
	if err != nil {
		return vector.Vector{}, false, err
	}
	if resp.notFound() {
		return vector.Vector{}, false, nil
	}

	var out vectorGetResponse
	if err := decodeJSON("vector_get", resp.body, &out); err != nil {
		return vector.Vector{}, false, err
	}
	if out.Vector == nil {
		return vector.Vector{}, false, protocolError("vector_get", "missing vector field")
	}
	return *out.Vector, true, nil
}

// VectorLookup is the outcome of fetching one vector.
type VectorLookup struct {
	Vector vector.Vector
	Found  bool
}

// GetVectors fetches keys concurrently, at most WithParallelism requests at
// a time. The result is aligned with keys by position. The first error
// cancels the outstanding requests.
func (c *Client) GetVectors(ctx context.Context, keys []string) ([]VectorLookup, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	out := make([]VectorLookup, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.parallelism)
	for i, key := range keys {
		g.Go(func() error {
			v, found, err := c.GetVector(gctx, key)
			if err != nil {
				return err
			}
			out[i] = VectorLookup{Vector: v, Found: found}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PutVectors stores items concurrently, at most WithParallelism requests at
// a time. All vectors are validated before the first request.
func (c *Client) PutVectors(ctx context.Context, items map[string]vector.Vector) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	keys := make([]string, 0, len(items))
	for k, v := range items {
		if err := v.Validate(); err != nil {
			return err
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.parallelism)
	for _, key := range keys {
		g.Go(func() error {
			return c.PutVector(gctx, key, items[key])
		})
	}
	return g.Wait()
}

// VectorEntry is a stored vector as reported by ListVectors.
type VectorEntry struct {
	Key    string
	Vector vector.Vector
}

type vectorListResponse struct {
	Vectors []struct {
		Key       string `json:"key"`
		Dimension int    `json:"dimension"`
		Vector    string `json:"vector"`
	} `json:"vectors"`
}

// ListVectors returns every stored vector.
func (c *Client) ListVectors(ctx context.Context) ([]VectorEntry, error) {
	resp, err := c.do(ctx, call{
		op:     "vector_list",
		method: http.MethodGet,
		path:   "/api/vector/list",
	})
	if err != nil {
		return nil, err
	}

	var out vectorListResponse
	if err := decodeJSON("vector_list", resp.body, &out); err != nil {
		return nil, err
	}

	entries := make([]VectorEntry, 0, len(out.Vectors))
	for _, item := range out.Vectors {
		v, err := parseComponents(item.Vector)
		if err != nil {
			return nil, &ErrProtocol{Op: "vector_list", Detail: "vector " + strconv.Quote(item.Key), cause: err}
		}
		if v.Dim() != item.Dimension {
			return nil, protocolError("vector_list", "vector %q has %d components, reported dimension %d", item.Key, v.Dim(), item.Dimension)
		}
		entries = append(entries, VectorEntry{Key: item.Key, Vector: v})
	}
	return entries, nil
}

// parseComponents parses a comma-separated component list.
func parseComponents(s string) (vector.Vector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return vector.New(nil), nil
	}

	parts := strings.Split(s, ",")
	data := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return vector.Vector{}, err
		}
		data[i] = float32(f)
	}
	return vector.New(data), nil
}

// VectorStats describes the remote vector index.
type VectorStats struct {
	IndexEnabled   bool    `json:"index_enabled" yaml:"index_enabled"`
	NumVectors     int     `json:"num_vectors" yaml:"num_vectors"`
	Dimension      int     `json:"dimension" yaml:"dimension"`
	Metric         string  `json:"metric" yaml:"metric"`
	NumLayers      int     `json:"num_layers" yaml:"num_layers"`
	AvgConnections float64 `json:"avg_connections" yaml:"avg_connections"`
}

// ParsedMetric resolves the reported metric name.
func (s VectorStats) ParsedMetric() (vector.Metric, error) {
	return vector.ParseMetric(s.Metric)
}

// VectorStats returns statistics about the remote vector index.
func (c *Client) VectorStats(ctx context.Context) (VectorStats, error) {
	resp, err := c.do(ctx, call{
		op:     "vector_stats",
		method: http.MethodGet,
		path:   "/api/vector/stats",
	})
	if err != nil {
		return VectorStats{}, err
	}

	var out VectorStats
	if err := decodeJSON("vector_stats", resp.body, &out); err != nil {
		return VectorStats{}, err
	}
	return out, nil
}
