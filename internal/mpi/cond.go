package mpi

import (
	"context"
	"sync"
)

// cond is a condition variable whose Wait gives up when a context is done.
type cond struct {
	l     sync.Locker
	waitc chan struct{}
}

func newCond(l sync.Locker) *cond {
	return &cond{l: l}
}

// broadcast wakes every waiter. The lock must be held.
func (c *cond) broadcast() {
	if c.waitc != nil {
		close(c.waitc)
		c.waitc = nil
	}
}

// wait releases the lock until the next broadcast or until ctx is done, then
// reacquires it. The lock must be held when calling wait.
func (c *cond) wait(ctx context.Context) error {
	if c.waitc == nil {
		c.waitc = make(chan struct{})
	}
	waitc := c.waitc
	c.l.Unlock()
	var err error
	select {
	case <-waitc:
	case <-ctx.Done():
		err = ctx.Err()
	}
	c.l.Lock()
	return err
}
