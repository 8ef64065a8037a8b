// Package mpi is the message-passing runtime the addition strategies run on.
//
// A Transport moves tagged integer payloads between a fixed set of ranks.
// Comm layers the programming model on top of any Transport: length-checked
// blocking send and receive, non-blocking send and receive returning a
// Request, and the collectives Scatter, Gather, Bcast and Barrier. Messages
// are FIFO per (source, destination, tag) and carry no ordering across tags.
//
// Two transports exist: World, which runs every rank as a goroutine in the
// current process, and the RabbitMQ transport in the rabbit subpackage, which
// runs one rank per process.
package mpi

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/agbru/bigadd/internal/parallel"
)

// Reserved tags for collectives. User tags must be >= 0.
const (
	tagScatter = -1 - iota
	tagGather
	tagBcast
	tagBarrierArrive
	tagBarrierRelease
)

// ErrClosed is returned by operations on a transport that has been shut down.
var ErrClosed = errors.New("mpi: transport closed")

// Transport moves tagged payloads between ranks.
type Transport interface {
	// Rank returns the rank of this endpoint, in [0, Size()).
	Rank() int
	// Size returns the number of ranks in the run.
	Size() int
	// Send delivers a copy of data to rank dst under tag. It may return
	// before the receiver has taken the message.
	Send(ctx context.Context, dst, tag int, data []int) error
	// Recv blocks for the oldest message from rank src with the given tag.
	Recv(ctx context.Context, src, tag int) ([]int, error)
	// Close releases the endpoint.
	Close() error
}

// Comm is the per-rank communicator. A Comm is driven by a single goroutine;
// the Requests it returns may be waited on from anywhere.
type Comm struct {
	t         Transport
	mu        sync.Mutex
	lastSend  *Request
	lastRecvs map[mailKey]*Request
}

// NewComm wraps a transport endpoint.
func NewComm(t Transport) *Comm {
	return &Comm{t: t, lastRecvs: make(map[mailKey]*Request)}
}

// Rank returns this communicator's rank.
func (c *Comm) Rank() int { return c.t.Rank() }

// Size returns the number of ranks.
func (c *Comm) Size() int { return c.t.Size() }

// Send is a blocking send: data is copied and handed to the transport before
// Send returns, after any earlier Isend from this rank.
//
// Parameters:
//   - ctx: Bounds the operation.
//   - dst: The destination rank.
//   - tag: The message tag (>= 0).
//   - data: The payload; the caller may reuse it once Send returns.
//
// Returns:
//   - error: A MessagingError on failure.
func (c *Comm) Send(ctx context.Context, dst, tag int, data []int) error {
	if err := c.checkPeer(dst, tag); err != nil {
		return err
	}
	if prev := c.takeLastSend(nil); prev != nil {
		if _, err := prev.Wait(ctx); err != nil {
			return err
		}
	}
	return c.send(ctx, dst, tag, data)
}

// Recv is a blocking receive of exactly want values from src under tag. A
// payload of any other length is a fatal MessagingError.
//
// Parameters:
//   - ctx: Bounds the wait.
//   - src: The source rank.
//   - tag: The message tag (>= 0).
//   - want: The exact payload length expected.
//
// Returns:
//   - []int: The received payload, owned by the caller.
//   - error: A MessagingError on mismatch or transport failure.
func (c *Comm) Recv(ctx context.Context, src, tag, want int) ([]int, error) {
	if err := c.checkPeer(src, tag); err != nil {
		return nil, err
	}
	k := mailKey{src, tag}
	if prev := c.swapLastRecv(k, nil); prev != nil {
		if _, err := prev.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return c.recv(ctx, src, tag, want)
}

// Isend starts a non-blocking send. The payload is copied immediately, so the
// caller may reuse data at once; sends from one rank leave in call order.
//
// Parameters:
//   - ctx: Bounds the background transfer.
//   - dst: The destination rank.
//   - tag: The message tag (>= 0).
//   - data: The payload.
//
// Returns:
//   - *Request: A handle whose Wait reports completion.
func (c *Comm) Isend(ctx context.Context, dst, tag int, data []int) *Request {
	req := newRequest()
	if err := c.checkPeer(dst, tag); err != nil {
		req.complete(nil, err)
		return req
	}
	payload := append([]int(nil), data...)
	prev := c.takeLastSend(req)
	go func() {
		if prev != nil {
			if _, err := prev.Wait(ctx); err != nil {
				req.complete(nil, err)
				return
			}
		}
		req.complete(nil, c.send(ctx, dst, tag, payload))
	}()
	return req
}

// Irecv starts a non-blocking receive of exactly want values from src under
// tag. The payload is only reachable through the returned Request's Wait.
// Receives posted for the same envelope match messages in posting order.
//
// Parameters:
//   - ctx: Bounds the background wait.
//   - src: The source rank.
//   - tag: The message tag (>= 0).
//   - want: The exact payload length expected.
//
// Returns:
//   - *Request: A handle whose Wait yields the payload.
func (c *Comm) Irecv(ctx context.Context, src, tag, want int) *Request {
	req := newRequest()
	if err := c.checkPeer(src, tag); err != nil {
		req.complete(nil, err)
		return req
	}
	prev := c.swapLastRecv(mailKey{src, tag}, req)
	go func() {
		if prev != nil {
			if _, err := prev.Wait(ctx); err != nil {
				req.complete(nil, err)
				return
			}
		}
		req.complete(c.recv(ctx, src, tag, want))
	}()
	return req
}

// Scatter splits send (significant at root only) into Size() chunks of chunk
// values and delivers chunk i to rank i. Every rank returns its own chunk.
func (c *Comm) Scatter(ctx context.Context, root int, send []int, chunk int) ([]int, error) {
	if c.Rank() != root {
		return c.recv(ctx, root, tagScatter, chunk)
	}
	if len(send) != chunk*c.Size() {
		return nil, apperrors.MessagingError{
			Rank: c.Rank(), Peer: -1, Tag: tagScatter,
			Expected: chunk * c.Size(), Actual: len(send),
		}
	}
	for r := 0; r < c.Size(); r++ {
		if r == root {
			continue
		}
		if err := c.send(ctx, r, tagScatter, send[r*chunk:(r+1)*chunk]); err != nil {
			return nil, err
		}
	}
	return append([]int(nil), send[root*chunk:(root+1)*chunk]...), nil
}

// Gather concatenates the equal-length local slices of every rank, in rank
// order, at root. Non-root ranks get a nil slice.
func (c *Comm) Gather(ctx context.Context, root int, local []int) ([]int, error) {
	if c.Rank() != root {
		return nil, c.send(ctx, root, tagGather, local)
	}
	out := make([]int, len(local)*c.Size())
	for r := 0; r < c.Size(); r++ {
		dst := out[r*len(local) : (r+1)*len(local)]
		if r == root {
			copy(dst, local)
			continue
		}
		part, err := c.recv(ctx, r, tagGather, len(local))
		if err != nil {
			return nil, err
		}
		copy(dst, part)
	}
	return out, nil
}

// Bcast sends value from root to every rank and returns it everywhere.
func (c *Comm) Bcast(ctx context.Context, root, value int) (int, error) {
	if c.Rank() != root {
		v, err := c.recv(ctx, root, tagBcast, 1)
		if err != nil {
			return 0, err
		}
		return v[0], nil
	}
	for r := 0; r < c.Size(); r++ {
		if r == root {
			continue
		}
		if err := c.send(ctx, r, tagBcast, []int{value}); err != nil {
			return 0, err
		}
	}
	return value, nil
}

// Barrier returns once every rank has entered it. Rank 0 collects arrivals
// and then releases everyone.
func (c *Comm) Barrier(ctx context.Context) error {
	if c.Size() == 1 {
		return nil
	}
	if c.Rank() != 0 {
		if err := c.send(ctx, 0, tagBarrierArrive, nil); err != nil {
			return err
		}
		_, err := c.recv(ctx, 0, tagBarrierRelease, 0)
		return err
	}
	for r := 1; r < c.Size(); r++ {
		if _, err := c.recv(ctx, r, tagBarrierArrive, 0); err != nil {
			return err
		}
	}
	for r := 1; r < c.Size(); r++ {
		if err := c.send(ctx, r, tagBarrierRelease, nil); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying transport endpoint.
func (c *Comm) Close() error { return c.t.Close() }

func (c *Comm) send(ctx context.Context, dst, tag int, data []int) error {
	if err := c.t.Send(ctx, dst, tag, data); err != nil {
		return c.wrap(dst, tag, err)
	}
	return nil
}

func (c *Comm) recv(ctx context.Context, src, tag, want int) ([]int, error) {
	data, err := c.t.Recv(ctx, src, tag)
	if err != nil {
		return nil, c.wrap(src, tag, err)
	}
	if len(data) != want {
		return nil, apperrors.MessagingError{
			Rank: c.Rank(), Peer: src, Tag: tag, Expected: want, Actual: len(data),
		}
	}
	return data, nil
}

func (c *Comm) wrap(peer, tag int, err error) error {
	var msgErr apperrors.MessagingError
	if errors.As(err, &msgErr) || apperrors.IsContextError(err) {
		return err
	}
	return apperrors.MessagingError{Rank: c.Rank(), Peer: peer, Tag: tag, Cause: err}
}

func (c *Comm) checkPeer(peer, tag int) error {
	if peer < 0 || peer >= c.Size() {
		return apperrors.MessagingError{
			Rank: c.Rank(), Peer: peer, Tag: tag,
			Cause: fmt.Errorf("rank %d outside [0,%d)", peer, c.Size()),
		}
	}
	if tag < 0 {
		return apperrors.MessagingError{
			Rank: c.Rank(), Peer: peer, Tag: tag,
			Cause: fmt.Errorf("negative tags are reserved"),
		}
	}
	return nil
}

func (c *Comm) takeLastSend(next *Request) *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.lastSend
	c.lastSend = next
	return prev
}

func (c *Comm) swapLastRecv(k mailKey, next *Request) *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.lastRecvs[k]
	if next == nil {
		delete(c.lastRecvs, k)
	} else {
		c.lastRecvs[k] = next
	}
	return prev
}

// Request tracks a non-blocking operation.
type Request struct {
	done chan struct{}
	data []int
	err  error
}

func newRequest() *Request {
	return &Request{done: make(chan struct{})}
}

func (r *Request) complete(data []int, err error) {
	r.data, r.err = data, err
	close(r.done)
}

// Wait blocks until the operation completes or ctx is done. For a receive it
// returns the payload; for a send the slice is nil. Wait may be called more
// than once, and a completed request always reports its own outcome, even
// after ctx is done.
func (r *Request) Wait(ctx context.Context) ([]int, error) {
	select {
	case <-r.done:
		return r.data, r.err
	default:
	}
	select {
	case <-r.done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Test reports whether the operation has completed without blocking.
func (r *Request) Test() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// WaitAll waits for every request, even after one fails, and returns the
// first failure.
func WaitAll(ctx context.Context, reqs ...*Request) error {
	var ec parallel.ErrorCollector
	for _, r := range reqs {
		if r == nil {
			continue
		}
		_, err := r.Wait(ctx)
		ec.SetError(err)
	}
	return ec.Err()
}
