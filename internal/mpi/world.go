package mpi

import (
	"context"
	"fmt"

	apperrors "github.com/agbru/bigadd/internal/errors"
	"golang.org/x/sync/errgroup"
)

// World is an in-process run: every rank is a goroutine and messages are
// copied between per-rank postboxes.
type World struct {
	boxes []*Postbox
}

// NewWorld creates a world of size ranks.
//
// Parameters:
//   - size: The number of ranks (>= 1).
//
// Returns:
//   - *World: The world, ready for Run.
//   - error: A ConfigError when size < 1.
func NewWorld(size int) (*World, error) {
	if size < 1 {
		return nil, apperrors.NewConfigError("world size must be at least 1, got %d", size)
	}
	w := &World{boxes: make([]*Postbox, size)}
	for i := range w.boxes {
		w.boxes[i] = NewPostbox()
	}
	return w, nil
}

// Size returns the number of ranks.
func (w *World) Size() int { return len(w.boxes) }

// Endpoint returns the transport endpoint of rank.
func (w *World) Endpoint(rank int) Transport {
	return &localEndpoint{world: w, rank: rank}
}

// Run starts fn once per rank, each with its own Comm, and waits for all of
// them. The first rank to fail cancels the others, and its error is returned
// annotated with its rank.
//
// Parameters:
//   - ctx: The parent context of every rank.
//   - fn: The per-rank program.
//
// Returns:
//   - error: The first rank failure, or nil.
func (w *World) Run(ctx context.Context, fn func(ctx context.Context, comm *Comm) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for rank := range w.boxes {
		rank := rank
		comm := NewComm(w.Endpoint(rank))
		g.Go(func() error {
			if err := fn(gctx, comm); err != nil {
				return fmt.Errorf("rank %d: %w", rank, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close fails every pending and future receive with ErrClosed.
func (w *World) Close() {
	for _, b := range w.boxes {
		b.Fail(ErrClosed)
	}
}

type localEndpoint struct {
	world *World
	rank  int
}

func (e *localEndpoint) Rank() int { return e.rank }
func (e *localEndpoint) Size() int { return len(e.world.boxes) }

func (e *localEndpoint) Send(ctx context.Context, dst, tag int, data []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dst < 0 || dst >= len(e.world.boxes) {
		return fmt.Errorf("no rank %d", dst)
	}
	e.world.boxes[dst].Put(e.rank, tag, append([]int(nil), data...))
	return nil
}

func (e *localEndpoint) Recv(ctx context.Context, src, tag int) ([]int, error) {
	return e.world.boxes[e.rank].Take(ctx, src, tag)
}

func (e *localEndpoint) Close() error { return nil }
