package mpi

import (
	"context"
	"sync"
)

type mailKey struct {
	src int
	tag int
}

// Postbox is the inbound side of one rank. Messages are queued per
// (source, tag) so that a receive only ever matches its own envelope, and
// each queue is FIFO. Transports feed it with Put; receivers drain it with
// Take.
type Postbox struct {
	mu     sync.Mutex
	cond   *cond
	queues map[mailKey][][]int
	err    error
}

// NewPostbox returns an empty postbox.
func NewPostbox() *Postbox {
	p := &Postbox{queues: make(map[mailKey][][]int)}
	p.cond = newCond(&p.mu)
	return p
}

// Put queues data as a message from src with the given tag. The postbox takes
// ownership of data.
func (p *Postbox) Put(src, tag int, data []int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := mailKey{src, tag}
	p.queues[k] = append(p.queues[k], data)
	p.cond.broadcast()
}

// Take blocks until a message from src with the given tag is queued, the
// postbox fails, or ctx is done.
//
// Parameters:
//   - ctx: Bounds the wait.
//   - src: The sending rank.
//   - tag: The message tag.
//
// Returns:
//   - []int: The oldest matching payload.
//   - error: The context error, or the failure passed to Fail.
func (p *Postbox) Take(ctx context.Context, src, tag int) ([]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := mailKey{src, tag}
	for {
		if q := p.queues[k]; len(q) > 0 {
			data := q[0]
			q[0] = nil
			if len(q) == 1 {
				delete(p.queues, k)
			} else {
				p.queues[k] = q[1:]
			}
			return data, nil
		}
		if p.err != nil {
			return nil, p.err
		}
		if err := p.cond.wait(ctx); err != nil {
			return nil, err
		}
	}
}

// Pending returns the number of queued messages across all envelopes.
func (p *Postbox) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}

// Fail wakes every waiter with err once the queues they wait on are empty.
// Only the first failure is kept.
func (p *Postbox) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
	p.cond.broadcast()
}
