package vectis_test

import (
	"context"
	"math"
	"net/http"
	"testing"

	"github.com/hupe1980/vectis"
	"github.com/hupe1980/vectis/testutil"
	"github.com/hupe1980/vectis/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetVector(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	v := vector.New([]float32{0.1, 0.5, -0.3})
	require.NoError(t, c.PutVector(ctx, "doc:1", v))

	got, found, err := c.GetVector(ctx, "doc:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, v.Equal(got), "got %v", got)

	_, found, err = c.GetVector(ctx, "doc:404")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPutVector_NonFinite(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv)

	bad := vector.New([]float32{1, float32(math.NaN())})
	err := c.PutVector(context.Background(), "bad", bad)
	var nf *vector.ErrNonFinite
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 1, nf.Index)

	err = c.PutVectors(context.Background(), map[string]vector.Vector{
		"ok":  vector.New([]float32{1, 2}),
		"bad": vector.New([]float32{float32(math.Inf(1)), 2}),
	})
	require.ErrorAs(t, err, &nf)

	_, err = c.SearchSimilar(context.Background(), bad, 3)
	require.ErrorAs(t, err, &nf)

	assert.Equal(t, 0, srv.Hits("POST /api/vector/put"))
	assert.Equal(t, 0, srv.Hits("POST /api/vector/search"))
}

func TestPutVector_RemoteDimensionMismatch(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.PutVector(ctx, "a", vector.New([]float32{1, 2, 3})))

	err := c.PutVector(ctx, "b", vector.New([]float32{1, 2}))
	var of *vectis.ErrOperationFailed
	require.ErrorAs(t, err, &of)
	assert.Contains(t, of.Message, "dimension mismatch")
}

func TestGetVector_MissingField(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv)
	srv.Override("GET /api/vector/get", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, _, err := c.GetVector(context.Background(), "k")
	var pe *vectis.ErrProtocol
	assert.ErrorAs(t, err, &pe)
}

func TestGetPutVectors(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv, vectis.WithParallelism(3))
	ctx := context.Background()

	rng := testutil.NewRNG(11)
	vs := rng.Vectors(20, 8)
	items := make(map[string]vector.Vector, len(vs))
	keys := make([]string, 0, len(vs)+1)
	for i, v := range vs {
		k := "vec:" + string(rune('a'+i))
		items[k] = v
		keys = append(keys, k)
	}
	keys = append(keys[:5], append([]string{"vec:missing"}, keys[5:]...)...)

	require.NoError(t, c.PutVectors(ctx, items))
	assert.Equal(t, len(vs), srv.Hits("POST /api/vector/put"))

	got, err := c.GetVectors(ctx, keys)
	require.NoError(t, err)
	require.Len(t, got, len(keys))
	for i, k := range keys {
		if k == "vec:missing" {
			assert.False(t, got[i].Found)
			continue
		}
		assert.True(t, got[i].Found, k)
		assert.True(t, items[k].Equal(got[i].Vector), k)
	}
}

func TestGetVectors_FirstErrorWins(t *testing.T) {
	srv := testutil.NewServer(t)
	c := newClient(t, srv)
	srv.Override("GET /api/vector/get", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "index offline", http.StatusInternalServerError)
	})

	got, err := c.GetVectors(context.Background(), []string{"a", "b", "c"})
	assert.Nil(t, got)
	var of *vectis.ErrOperationFailed
	require.ErrorAs(t, err, &of)
	assert.Equal(t, "index offline", of.Message)
}

func TestListVectors(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.SeedVector("b", vector.New([]float32{0.25, -1, 3}))
	srv.SeedVector("a", vector.New([]float32{1, 0, 0}))
	c := newClient(t, srv)

	got, err := c.ListVectors(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Key)
	assert.Equal(t, []float32{1, 0, 0}, got[0].Vector.Slice())
	assert.Equal(t, "b", got[1].Key)
	assert.Equal(t, []float32{0.25, -1, 3}, got[1].Vector.Slice())
}

func TestListVectors_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"BadComponent", `{"vectors":[{"key":"a","dimension":2,"vector":"1,abc"}]}`},
		{"DimensionDisagrees", `{"vectors":[{"key":"a","dimension":3,"vector":"1, 2"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewServer(t)
			c := newClient(t, srv)
			srv.Override("GET /api/vector/list", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.ListVectors(context.Background())
			var pe *vectis.ErrProtocol
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "vector_list", pe.Op)
		})
	}
}

func TestVectorStats(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.SeedVector("a", vector.New([]float32{1, 0, 0, 0}))
	c := newClient(t, srv)

	stats, err := c.VectorStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumVectors)
	assert.Equal(t, 4, stats.Dimension)

	m, err := stats.ParsedMetric()
	require.NoError(t, err)
	assert.Equal(t, vector.MetricEuclidean, m)
}
