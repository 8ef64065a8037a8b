// Package parallel provides helpers for fan-out work whose outcomes are
// gathered independently: every task runs to completion and the first
// failure is kept for the caller.
package parallel

import "sync"

// ErrorCollector keeps the first error reported by concurrent tasks and counts
// how many tasks failed. The zero value is ready to use and safe for use by
// multiple goroutines.
//
// Usage:
//
//	var ec parallel.ErrorCollector
//	for _, req := range pending {
//	    _, err := req.Wait(ctx)
//	    ec.SetError(err)
//	}
//	return ec.Err()
type ErrorCollector struct {
	mu     sync.Mutex
	err    error
	failed int
}

// SetError records err. The first non-nil error is kept; later ones only
// bump the failure count. Nil errors are ignored.
//
// Parameters:
//   - err: The error to record (nil is ignored).
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
	c.failed++
}

// Err returns the first recorded error, or nil if every task succeeded.
//
// Returns:
//   - error: The first recorded error or nil.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Failed returns how many non-nil errors were recorded.
func (c *ErrorCollector) Failed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

// Reset clears the collector for reuse.
func (c *ErrorCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
	c.failed = 0
}
