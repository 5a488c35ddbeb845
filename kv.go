package vectis

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// ErrInvalidLimit is returned when a scan limit is negative.
var ErrInvalidLimit = errors.New("scan limit must not be negative")

// Entry is a key/value pair.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Put stores value under key.
func (c *Client) Put(ctx context.Context, key, value string) error {
	_, err := c.do(ctx, call{
		op:     "put",
		method: http.MethodPost,
		path:   "/api/put",
		form:   url.Values{"key": {key}, "value": {value}},
	})
	return err
}

// Get returns the value stored under key. A missing key is reported by
// found == false, not by an error.
func (c *Client) Get(ctx context.Context, key string) (value string, found bool, err error) {
	resp, err := c.do(ctx, call{
		op:            "get",
		method:        http.MethodGet,
		path:          "/api/get",
		query:         url.Values{"key": {key}},
		allowNotFound: true,
	})
	if err != nil {
		return "", false, err
	}
	if resp.notFound() {
		return "", false, nil
	}
	return string(resp.body), true, nil
}

// Delete removes key. Whether deleting an absent key fails is up to the
// remote store.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.do(ctx, call{
		op:     "delete",
		method: http.MethodPost,
		path:   "/api/delete",
		form:   url.Values{"key": {key}},
	})
	return err
}

// ScanRange selects the half-open key interval [Start, End).
type ScanRange struct {
	Start string
	// End is exclusive. Empty means unbounded.
	End string
	// Limit caps the number of entries. 0 means unbounded.
	Limit int
	// Reverse returns entries in descending key order over the same interval.
	Reverse bool
}

// Contains reports whether key lies inside the range.
func (r ScanRange) Contains(key string) bool {
	return key >= r.Start && (r.End == "" || key < r.End)
}

type scanResponse struct {
	Entries []Entry `json:"entries"`
}

// Scan returns the entries in r, ascending by key unless r.Reverse is set.
//
// The response is checked before it is returned: every key must lie in r,
// keys must be strictly monotonic in the requested direction, and at most
// r.Limit entries may be present. Violations yield *ErrProtocol.
func (c *Client) Scan(ctx context.Context, r ScanRange) ([]Entry, error) {
	if r.Limit < 0 {
		return nil, ErrInvalidLimit
	}

	resp, err := c.do(ctx, call{
		op:     "scan",
		method: http.MethodGet,
		path:   "/api/scan",
		query: url.Values{
			"start":   {r.Start},
			"end":     {r.End},
			"limit":   {strconv.Itoa(r.Limit)},
			"reverse": {strconv.FormatBool(r.Reverse)},
		},
	})
	if err != nil {
		return nil, err
	}

	var out scanResponse
	if err := decodeJSON("scan", resp.body, &out); err != nil {
		return nil, err
	}
	if err := checkScan(r, out.Entries); err != nil {
		return nil, err
	}

	if out.Entries == nil {
		out.Entries = []Entry{}
	}
	return out.Entries, nil
}

func checkScan(r ScanRange, entries []Entry) error {
	if r.Limit > 0 && len(entries) > r.Limit {
		return protocolError("scan", "%d entries exceed limit %d", len(entries), r.Limit)
	}
	for i, e := range entries {
		if !r.Contains(e.Key) {
			return protocolError("scan", "key %q outside range [%q, %q)", e.Key, r.Start, r.End)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1].Key
		if (!r.Reverse && e.Key <= prev) || (r.Reverse && e.Key >= prev) {
			return protocolError("scan", "key %q out of order after %q", e.Key, prev)
		}
	}
	return nil
}
