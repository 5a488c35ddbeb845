package vectis

import "context"

// Close releases idle pooled connections. Every later operation fails with
// ErrClientClosed. Close is idempotent and safe to call on a nil client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.release()
	c.logger.LogClose(context.Background(), c.endpoint)
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

func (c *Client) release() {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
		return
	}
	c.hc.CloseIdleConnections()
}
