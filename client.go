package vectis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/vectis/resource"
)

// RequestIDHeader carries a per-request UUID for log correlation.
const RequestIDHeader = "X-Request-ID"

// Client talks to a remote vectis store over HTTP.
//
// A Client is safe for concurrent use. Concurrent calls are independent
// requests served by a shared connection pool.
type Client struct {
	base     *url.URL
	endpoint string

	hc        *http.Client
	transport *http.Transport // nil when supplied via WithHTTPClient

	rc      *resource.Controller
	logger  *Logger
	metrics MetricsCollector
	opts    options

	closed atomic.Bool
}

// New connects to the store at baseURL and verifies it with a liveness probe
// (a stats call). If the probe fails, the pool is released and the returned
// error is an *ErrConnectionFailure.
//
// Example:
//
//	c, err := vectis.New(ctx, "http://localhost:8080", vectis.WithTimeout(5*time.Second))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
func New(ctx context.Context, baseURL string, optFns ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("vectis: invalid base url %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("vectis: invalid base url %q: want http(s)://host[:port]", baseURL)
	}

	o := applyOptions(optFns)

	c := &Client{
		base:     u,
		endpoint: u.String(),
		logger:   o.logger.WithEndpoint(u.String()),
		metrics:  o.metricsCollector,
		opts:     o,
	}

	if o.httpClient != nil {
		c.hc = o.httpClient
	} else {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.MaxIdleConnsPerHost = o.maxIdleConns
		c.transport = tr
		c.hc = &http.Client{Transport: tr}
	}

	if o.maxInFlight > 0 || o.rateLimit > 0 {
		c.rc = resource.NewController(resource.Config{
			MaxInFlight:       o.maxInFlight,
			RequestsPerSecond: o.rateLimit,
			Burst:             o.rateBurst,
		})
	}

	if _, err := c.Stats(ctx); err != nil {
		c.release()
		var cf *ErrConnectionFailure
		if !errors.As(err, &cf) {
			err = &ErrConnectionFailure{Op: "connect", Endpoint: c.endpoint, cause: err}
		}
		c.logger.LogConnect(ctx, c.endpoint, err)
		return nil, err
	}

	c.logger.LogConnect(ctx, c.endpoint, nil)
	return c, nil
}

// Use connects to baseURL, runs fn, and closes the client on every exit path,
// including a panic in fn.
func Use(ctx context.Context, baseURL string, fn func(*Client) error, optFns ...Option) error {
	c, err := New(ctx, baseURL, optFns...)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return fn(c)
}

// Endpoint returns the base URL the client is connected to.
func (c *Client) Endpoint() string { return c.endpoint }

// call describes one round trip.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	form   url.Values
	json   any

	// allowNotFound treats 404 as a valid "absent" answer.
	allowNotFound bool
}

type response struct {
	status int
	body   []byte
}

func (r *response) notFound() bool { return r.status == http.StatusNotFound }

// do performs a round trip. It returns an error for transport failures and
// for every status other than 200 (and 404 when allowNotFound is set).
func (c *Client) do(ctx context.Context, cl call) (*response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.roundTrip(ctx, cl, requestID)
	err = translateError(cl.op, c.endpoint, err)

	status := 0
	if resp != nil {
		status = resp.status
	}
	duration := time.Since(start)
	c.metrics.RecordRequest(cl.op, duration, err)
	c.logger.LogRequest(ctx, cl.op, requestID, status, duration, err)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, cl call, requestID string) (*response, error) {
	release, err := c.rc.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	u := c.base.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case cl.json != nil:
		b, err := json.Marshal(cl.json)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	case cl.form != nil:
		body, contentType = strings.NewReader(cl.form.Encode()), "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	httpResp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	b, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	resp := &response{status: httpResp.StatusCode, body: b}
	switch {
	case resp.status == http.StatusOK:
		return resp, nil
	case resp.notFound() && cl.allowNotFound:
		return resp, nil
	default:
		return resp, &ErrOperationFailed{
			Op:         cl.op,
			StatusCode: resp.status,
			Message:    strings.TrimSpace(string(b)),
		}
	}
}

// decodeJSON decodes a success body. Malformed bodies are protocol errors.
func decodeJSON(op string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &ErrProtocol{Op: op, Detail: "decode response", cause: err}
	}
	return nil
}
