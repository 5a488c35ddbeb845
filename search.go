package vectis

import (
	"context"
	"net/http"
	"time"

	"github.com/hupe1980/vectis/vector"
)

// SearchResult is one neighbor returned by SearchSimilar.
type SearchResult struct {
	Key string `json:"key" yaml:"key"`
	// Distance is computed by the remote store; lower means more similar.
	Distance float64 `json:"distance" yaml:"distance"`
}

type searchRequest struct {
	Query vector.Vector `json:"query"`
	K     int           `json:"k"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchSimilar returns up to k stored vectors nearest to query, ordered as
// the remote store ranked them. The client does not re-rank.
//
// k < 0 fails with ErrInvalidK. k == 0 returns an empty result without a
// round trip. A reply with more than k results fails with *ErrProtocol.
func (c *Client) SearchSimilar(ctx context.Context, query vector.Vector, k int) ([]SearchResult, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if k < 0 {
		return nil, ErrInvalidK
	}
	if k == 0 {
		return []SearchResult{}, nil
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := c.search(ctx, query, k)
	c.metrics.RecordSearch(k, len(results), time.Since(start), err)
	c.logger.LogSearch(ctx, k, len(results), err)

	return results, err
}

func (c *Client) search(ctx context.Context, query vector.Vector, k int) ([]SearchResult, error) {
	resp, err := c.do(ctx, call{
		op:     "vector_search",
		method: http.MethodPost,
		path:   "/api/vector/search",
		json:   searchRequest{Query: query, K: k},
	})
	if err != nil {
		return nil, err
	}

	var out searchResponse
	if err := decodeJSON("vector_search", resp.body, &out); err != nil {
		return nil, err
	}
	if len(out.Results) > k {
		return nil, protocolError("vector_search", "got %d results for k=%d", len(out.Results), k)
	}
	if out.Results == nil {
		out.Results = []SearchResult{}
	}
	return out.Results, nil
}
