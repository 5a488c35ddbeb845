package vectis

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vectis/vector"
)

var (
	// ErrClientClosed is returned by every operation on a closed client.
	ErrClientClosed = errors.New("vectis: client is closed")

	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")
)

type (
	// ErrDimensionMismatch indicates a vector dimensionality mismatch.
	ErrDimensionMismatch = vector.ErrDimensionMismatch

	// ErrIndexOutOfRange indicates an out-of-range component access.
	ErrIndexOutOfRange = vector.ErrIndexOutOfRange
)

// ErrConnectionFailure indicates the remote store could not be reached, the
// request timed out, or the context was canceled.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrConnectionFailure struct {
	Op       string
	Endpoint string
	cause    error
}

func (e *ErrConnectionFailure) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: connection to %s failed", e.Op, e.Endpoint)
	}
	return fmt.Sprintf("%s: connection to %s failed: %v", e.Op, e.Endpoint, e.cause)
}

func (e *ErrConnectionFailure) Unwrap() error { return e.cause }

// ErrOperationFailed indicates the remote store answered with a non-success
// status. Message carries the response body as diagnostic text.
type ErrOperationFailed struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ErrOperationFailed) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s failed: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// ErrProtocol indicates a response that violates the wire contract, such as
// a batch-get reply whose length differs from the request.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrProtocol struct {
	Op     string
	Detail string
	cause  error
}

func (e *ErrProtocol) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: protocol error: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: protocol error: %s: %v", e.Op, e.Detail, e.cause)
}

func (e *ErrProtocol) Unwrap() error { return e.cause }

func protocolError(op, format string, args ...any) error {
	return &ErrProtocol{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// translateError maps transport errors onto the public taxonomy.
// Errors already in the taxonomy pass through unchanged.
func translateError(op, endpoint string, err error) error {
	if err == nil {
		return nil
	}

	var (
		cf *ErrConnectionFailure
		of *ErrOperationFailed
		pe *ErrProtocol
	)
	if errors.As(err, &cf) || errors.As(err, &of) || errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, ErrClientClosed) {
		return err
	}

	// Timeouts, cancellation and dial errors all surface as connection failures.
	return &ErrConnectionFailure{Op: op, Endpoint: endpoint, cause: err}
}
