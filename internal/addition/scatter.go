package addition

import (
	"context"
	"fmt"

	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/partition"
	"github.com/agbru/bigadd/internal/store"
)

// Scatter uses the collectives: the coordinator pads the operands to a
// multiple of the world size, one scatter per operand hands every rank
// (rank 0 included) an equal slice, the carry moves by blocking messages and
// one gather brings the slices back.
type Scatter struct {
	tags Tags

	// coordinator state
	a, b     []int
	gathered []int
	final    int
}

// NewScatter returns a Scatter strategy.
func NewScatter() *Scatter {
	return &Scatter{tags: Tags{Carry: 4, Final: 5}}
}

// Name returns "scatter".
func (sc *Scatter) Name() string { return "scatter" }

// OutputID returns the store id of the Scatter result.
func (sc *Scatter) OutputID() string { return store.ScatterResult }

// Plan gives every rank an equal range over the padded length.
func (sc *Scatter) Plan(n, size int) (Layout, error) {
	parts, padded, err := partition.PlanEqual(n, size)
	if err != nil {
		return Layout{}, err
	}
	return Layout{N: n, Size: size, Parts: parts, Padded: padded, CoordinatorWorks: true}, nil
}

// Distribute loads both operands, zero-padded.
func (sc *Scatter) Distribute(ctx context.Context, s *Session) error {
	a, err := s.Store.ReadRange(store.FirstNumber, 0, s.Layout.Padded)
	if err != nil {
		return err
	}
	b, err := s.Store.ReadRange(store.SecondNumber, 0, s.Layout.Padded)
	if err != nil {
		return err
	}
	sc.a, sc.b = a, b
	return nil
}

// Receive takes part in the two scatters.
func (sc *Scatter) Receive(ctx context.Context, s *Session) (*Slice, error) {
	sl := s.newSlice()
	chunk := sl.Range.Len
	a, err := s.Comm.Scatter(ctx, CoordinatorRank, sc.a, chunk)
	if err != nil {
		return nil, err
	}
	b, err := s.Comm.Scatter(ctx, CoordinatorRank, sc.b, chunk)
	if err != nil {
		return nil, err
	}
	if sl.A, err = checkDigits(s, CoordinatorRank, 0, a); err != nil {
		return nil, err
	}
	if sl.B, err = checkDigits(s, CoordinatorRank, 0, b); err != nil {
		return nil, err
	}
	return sl, nil
}

// ComputeLocal adds the slice operands.
func (sc *Scatter) ComputeLocal(sl *Slice) { computeLocal(sl) }

// ExchangeCarry is the blocking carry chain.
func (sc *Scatter) ExchangeCarry(ctx context.Context, s *Session, sl *Slice) error {
	return chainCarry(ctx, s, sl, sc.tags.Carry)
}

// Deliver sends the final carry from the last rank and joins the gather.
func (sc *Scatter) Deliver(ctx context.Context, s *Session, sl *Slice) error {
	rank := s.Rank()
	if s.Layout.IsLast(rank) {
		if rank == CoordinatorRank {
			sc.final = sl.CarryOut
		} else if err := s.Comm.Send(ctx, CoordinatorRank, sc.tags.Final, []int{sl.CarryOut}); err != nil {
			return err
		}
	}
	gathered, err := s.Comm.Gather(ctx, CoordinatorRank, sl.Sum)
	if err != nil {
		return err
	}
	if rank == CoordinatorRank {
		sc.gathered = gathered
	}
	return nil
}

// Collect trims the padding. A carry out of the last real digit lands in the
// first padding position, so it is folded into the overflow.
func (sc *Scatter) Collect(ctx context.Context, s *Session) (digits.Result, error) {
	final := sc.final
	if last := s.Layout.LastRank(); last != CoordinatorRank {
		c, err := recvCarry(ctx, s, last, sc.tags.Final)
		if err != nil {
			return digits.Result{}, err
		}
		final = c
	}
	if len(sc.gathered) != s.Layout.Padded {
		return digits.Result{}, fmt.Errorf("gathered %d digits, expected %d", len(sc.gathered), s.Layout.Padded)
	}
	overflow := final
	if s.Layout.Padded > s.Layout.N {
		overflow += sc.gathered[s.Layout.N]
	}
	if overflow > 1 {
		return digits.Result{}, fmt.Errorf("overflow %d out of range", overflow)
	}
	s.Report(1)
	out := make(digits.Sequence, s.Layout.N)
	copy(out, sc.gathered)
	return digits.Result{Digits: out, Overflow: overflow}, nil
}
