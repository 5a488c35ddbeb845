package vectis

import (
	"context"
	"net/http"
	"slices"
	"time"
)

// OpType is the kind of a batch write operation.
type OpType string

const (
	OpPut    OpType = "PUT"
	OpDelete OpType = "DELETE"
)

// BatchOp is one operation of a write batch.
type BatchOp struct {
	Type  OpType `json:"type"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

type batchRequest struct {
	Operations []BatchOp `json:"operations"`
}

// Lookup is the outcome of one batch-get slot.
type Lookup struct {
	Value string
	Found bool
}

type batchGetRequest struct {
	Keys []string `json:"keys"`
}

// Slots are pointers so that JSON null (absent) stays distinct from "".
type batchGetResponse struct {
	Values []*string `json:"values"`
}

// BatchPut writes items in a single request. Operations are sent in
// ascending key order. An empty map is a no-op.
func (c *Client) BatchPut(ctx context.Context, items map[string]string) error {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Value: items[k]}
	}
	return c.BatchPutEntries(ctx, entries)
}

// BatchPutEntries writes entries in a single request, in the given order.
// A later entry for the same key wins.
func (c *Client) BatchPutEntries(ctx context.Context, entries []Entry) error {
	ops := make([]BatchOp, len(entries))
	for i, e := range entries {
		ops[i] = BatchOp{Type: OpPut, Key: e.Key, Value: e.Value}
	}
	return c.batchWrite(ctx, "batch_put", ops)
}

// BatchDelete removes keys in a single request.
func (c *Client) BatchDelete(ctx context.Context, keys []string) error {
	ops := make([]BatchOp, len(keys))
	for i, k := range keys {
		ops[i] = BatchOp{Type: OpDelete, Key: k}
	}
	return c.batchWrite(ctx, "batch_delete", ops)
}

// WriteBatch applies a mixed sequence of puts and deletes in one request.
// The remote store accepts or rejects the batch as a whole.
func (c *Client) WriteBatch(ctx context.Context, ops []BatchOp) error {
	return c.batchWrite(ctx, "batch", ops)
}

func (c *Client) batchWrite(ctx context.Context, op string, ops []BatchOp) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if len(ops) == 0 {
		return nil
	}

	start := time.Now()
	_, err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/api/batch",
		json:   batchRequest{Operations: ops},
	})

	c.metrics.RecordBatch(op, len(ops), 0, time.Since(start))
	c.logger.LogBatch(ctx, op, len(ops), 0, err)
	return err
}

// BatchGetOrdered fetches keys in one request and returns one Lookup per
// key, aligned with keys by position. A reply whose length differs from
// len(keys) fails with *ErrProtocol.
func (c *Client) BatchGetOrdered(ctx context.Context, keys []string) ([]Lookup, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if len(keys) == 0 {
		return []Lookup{}, nil
	}

	start := time.Now()
	lookups, err := c.batchGet(ctx, keys)

	missing := 0
	for _, l := range lookups {
		if !l.Found {
			missing++
		}
	}
	c.metrics.RecordBatch("batch_get", len(keys), missing, time.Since(start))
	c.logger.LogBatch(ctx, "batch_get", len(keys), missing, err)

	return lookups, err
}

func (c *Client) batchGet(ctx context.Context, keys []string) ([]Lookup, error) {
	resp, err := c.do(ctx, call{
		op:     "batch_get",
		method: http.MethodPost,
		path:   "/api/batch_get",
		json:   batchGetRequest{Keys: keys},
	})
	if err != nil {
		return nil, err
	}

	var out batchGetResponse
	if err := decodeJSON("batch_get", resp.body, &out); err != nil {
		return nil, err
	}
	if len(out.Values) != len(keys) {
		return nil, protocolError("batch_get", "got %d values for %d keys", len(out.Values), len(keys))
	}

	lookups := make([]Lookup, len(keys))
	for i, v := range out.Values {
		if v != nil {
			lookups[i] = Lookup{Value: *v, Found: true}
		}
	}
	return lookups, nil
}

// BatchGet fetches keys in one request. The result holds exactly one entry
// per distinct input key; absent keys map to a Lookup with Found == false.
func (c *Client) BatchGet(ctx context.Context, keys []string) (map[string]Lookup, error) {
	lookups, err := c.BatchGetOrdered(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Lookup, len(keys))
	for i, k := range keys {
		out[k] = lookups[i]
	}
	return out, nil
}
