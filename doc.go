// Package vectis is a Go client for the vectis key-value and vector
// similarity store.
//
// The remote store owns indexing, persistence and similarity search. This
// package maps typed operations onto its HTTP API and decodes the answers
// into typed results or typed errors.
//
// # Quick Start
//
//	ctx := context.Background()
//	c, err := vectis.New(ctx, "http://localhost:8080")
//	if err != nil {
//	    return err // *vectis.ErrConnectionFailure if the store is unreachable
//	}
//	defer c.Close()
//
//	_ = c.Put(ctx, "user:1", "Alice")
//	v, found, _ := c.Get(ctx, "user:1")
//
// Or scoped, closing on every exit path:
//
//	err := vectis.Use(ctx, addr, func(c *vectis.Client) error {
//	    return c.Put(ctx, "k", "v")
//	})
//
// # Batches and Scans
//
// BatchGet decodes the reply positionally and fails with *ErrProtocol if the
// number of values differs from the number of keys. A missing key is
// reported as Lookup{Found: false}; an empty string is a present value.
//
//	got, _ := c.BatchGet(ctx, []string{"k1", "k2", "k3"})
//	if !got["k3"].Found { ... }
//
// Scan covers the half-open range [Start, End). Reverse flips the order but
// not the interval:
//
//	entries, _ := c.Scan(ctx, vectis.ScanRange{Start: "a", End: "m", Reverse: true})
//
// # Vectors
//
//	_ = c.PutVector(ctx, "doc:1", vector.New([]float32{0.1, 0.5, 0.3}))
//	results, _ := c.SearchSimilar(ctx, vector.New([]float32{0.1, 0.4, 0.3}), 5)
//	for _, r := range results {
//	    fmt.Println(r.Key, r.Distance)
//	}
//
// # Errors
//
// Absence is never an error. Failures are inspectable with errors.As and
// errors.Is:
//
//   - *ErrConnectionFailure: transport failure, timeout or cancellation
//   - *ErrOperationFailed: non-success status, with the remote's message
//   - *ErrProtocol: reply violates the wire contract
//   - ErrClientClosed: the client was closed
//   - ErrInvalidK, ErrInvalidLimit: invalid arguments
package vectis
