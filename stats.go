package vectis

import (
	"context"
	"net/http"
)

// Stats returns the remote store's statistics as an opaque JSON object.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	return c.getObject(ctx, "stats", "/api/stats")
}

// Health returns the remote store's health report as an opaque JSON object.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	return c.getObject(ctx, "health", "/api/health")
}

func (c *Client) getObject(ctx context.Context, op, path string) (map[string]any, error) {
	resp, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   path,
	})
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := decodeJSON(op, resp.body, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
