package addition

import (
	"context"
	"fmt"

	"github.com/agbru/bigadd/internal/digits"
	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/agbru/bigadd/internal/store"
)

// Standard distributes slice pairs with blocking sends, chains the carry
// with blocking point-to-point messages after each worker has its local sum,
// and collects results one worker at a time in rank order. Rank 0 only
// coordinates.
type Standard struct {
	tags Tags
}

// NewStandard returns a Standard strategy.
func NewStandard() *Standard {
	return &Standard{tags: Tags{A: 0, B: 1, Result: 2, Final: 3, Carry: 4}}
}

// Name returns "standard".
func (st *Standard) Name() string { return "standard" }

// OutputID returns the store id of the Standard result.
func (st *Standard) OutputID() string { return store.StandardResult }

// Plan reserves rank 0 and splits the digits over the remaining ranks.
func (st *Standard) Plan(n, size int) (Layout, error) { return coordinatorOnlyPlan(n, size) }

// Distribute reads each worker's range of both operands and sends it.
func (st *Standard) Distribute(ctx context.Context, s *Session) error {
	for i := 0; i < s.Layout.Workers(); i++ {
		a, b, err := s.readOperands(i)
		if err != nil {
			return err
		}
		dst := s.Layout.WorkerRank(i)
		if err := s.Comm.Send(ctx, dst, st.tags.A, a); err != nil {
			return err
		}
		if err := s.Comm.Send(ctx, dst, st.tags.B, b); err != nil {
			return err
		}
	}
	return nil
}

// Receive blocks for this worker's two operand slices.
func (st *Standard) Receive(ctx context.Context, s *Session) (*Slice, error) {
	sl := s.newSlice()
	a, err := recvDigits(ctx, s, CoordinatorRank, st.tags.A, sl.Range.Len)
	if err != nil {
		return nil, err
	}
	b, err := recvDigits(ctx, s, CoordinatorRank, st.tags.B, sl.Range.Len)
	if err != nil {
		return nil, err
	}
	sl.A, sl.B = a, b
	return sl, nil
}

// ComputeLocal adds the slice operands.
func (st *Standard) ComputeLocal(sl *Slice) { computeLocal(sl) }

// ExchangeCarry waits for the previous worker's carry, applies it and sends
// the outgoing carry on.
func (st *Standard) ExchangeCarry(ctx context.Context, s *Session, sl *Slice) error {
	return chainCarry(ctx, s, sl, st.tags.Carry)
}

// Deliver sends the slice, and from the last worker the final carry, to the
// coordinator.
func (st *Standard) Deliver(ctx context.Context, s *Session, sl *Slice) error {
	if err := s.Comm.Send(ctx, CoordinatorRank, st.tags.Result, sl.Sum); err != nil {
		return err
	}
	if s.Layout.IsLast(s.Rank()) {
		return s.Comm.Send(ctx, CoordinatorRank, st.tags.Final, []int{sl.CarryOut})
	}
	return nil
}

// Collect receives every slice in rank order and then the final carry.
func (st *Standard) Collect(ctx context.Context, s *Session) (digits.Result, error) {
	out := make(digits.Sequence, s.Layout.N)
	for i, r := range s.Layout.Parts {
		part, err := recvDigits(ctx, s, s.Layout.WorkerRank(i), st.tags.Result, r.Len)
		if err != nil {
			return digits.Result{}, err
		}
		copy(out[r.Start:r.End()], part)
		s.Report(float64(i+1) / float64(s.Layout.Workers()))
	}
	final, err := recvCarry(ctx, s, s.Layout.LastRank(), st.tags.Final)
	if err != nil {
		return digits.Result{}, err
	}
	return digits.Result{Digits: out, Overflow: final}, nil
}

// chainCarry is the blocking carry hand-off shared by Standard and Scatter.
func chainCarry(ctx context.Context, s *Session, sl *Slice, tag int) error {
	rank := s.Rank()
	carryIn := 0
	if !s.Layout.IsFirst(rank) {
		c, err := recvCarry(ctx, s, s.Layout.Prev(rank), tag)
		if err != nil {
			return err
		}
		carryIn = c
	}
	applyCarry(sl, carryIn)
	if !s.Layout.IsLast(rank) {
		return s.Comm.Send(ctx, s.Layout.Next(rank), tag, []int{sl.CarryOut})
	}
	return nil
}

// recvDigits receives exactly n digits and checks that each is in [0,9].
func recvDigits(ctx context.Context, s *Session, src, tag, n int) (digits.Sequence, error) {
	data, err := s.Comm.Recv(ctx, src, tag, n)
	if err != nil {
		return nil, err
	}
	return checkDigits(s, src, tag, data)
}

func checkDigits(s *Session, src, tag int, data []int) (digits.Sequence, error) {
	seq := digits.Sequence(data)
	if err := seq.Validate(); err != nil {
		return nil, apperrors.MessagingError{Rank: s.Rank(), Peer: src, Tag: tag, Cause: err}
	}
	return seq, nil
}

// recvCarry receives one carry value and checks that it is 0 or 1.
func recvCarry(ctx context.Context, s *Session, src, tag int) (int, error) {
	data, err := s.Comm.Recv(ctx, src, tag, 1)
	if err != nil {
		return 0, err
	}
	return checkCarry(s, src, tag, data)
}

func checkCarry(s *Session, src, tag int, data []int) (int, error) {
	if c := data[0]; c != 0 && c != 1 {
		return 0, apperrors.MessagingError{
			Rank: s.Rank(), Peer: src, Tag: tag,
			Cause: fmt.Errorf("carry %d outside {0,1}", c),
		}
	}
	return data[0], nil
}
