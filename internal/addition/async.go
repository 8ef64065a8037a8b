package addition

import (
	"context"

	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/mpi"
	"github.com/agbru/bigadd/internal/store"
)

// Async replaces every blocking exchange with non-blocking requests. The
// coordinator posts all slice sends up front and all result receives before
// waiting on any of them; workers wait only on the requests they need next.
// Every outstanding send is waited on before the run ends.
type Async struct {
	tags  Tags
	sends []*mpi.Request
}

// NewAsync returns an Async strategy.
func NewAsync() *Async {
	return &Async{tags: Tags{A: 1, B: 2, Result: 3, Final: 4, Carry: 5}}
}

// Name returns "async".
func (as *Async) Name() string { return "async" }

// OutputID returns the store id of the Async result.
func (as *Async) OutputID() string { return store.AsyncResult }

// Plan reserves rank 0 and splits the digits over the remaining ranks.
func (as *Async) Plan(n, size int) (Layout, error) { return coordinatorOnlyPlan(n, size) }

// Distribute posts the sends of every slice pair without waiting.
func (as *Async) Distribute(ctx context.Context, s *Session) error {
	for i := 0; i < s.Layout.Workers(); i++ {
		a, b, err := s.readOperands(i)
		if err != nil {
			return err
		}
		dst := s.Layout.WorkerRank(i)
		as.sends = append(as.sends,
			s.Comm.Isend(ctx, dst, as.tags.A, a),
			s.Comm.Isend(ctx, dst, as.tags.B, b))
	}
	return nil
}

// Receive posts both operand receives and waits on the pair.
func (as *Async) Receive(ctx context.Context, s *Session) (*Slice, error) {
	sl := s.newSlice()
	ra := s.Comm.Irecv(ctx, CoordinatorRank, as.tags.A, sl.Range.Len)
	rb := s.Comm.Irecv(ctx, CoordinatorRank, as.tags.B, sl.Range.Len)
	if err := mpi.WaitAll(ctx, ra, rb); err != nil {
		return nil, err
	}
	a, err := ra.Wait(ctx)
	if err != nil {
		return nil, err
	}
	b, err := rb.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if sl.A, err = checkDigits(s, CoordinatorRank, as.tags.A, a); err != nil {
		return nil, err
	}
	if sl.B, err = checkDigits(s, CoordinatorRank, as.tags.B, b); err != nil {
		return nil, err
	}
	return sl, nil
}

// ComputeLocal adds the slice operands.
func (as *Async) ComputeLocal(sl *Slice) { computeLocal(sl) }

// ExchangeCarry receives the carry through a request, applies it and posts
// the outgoing carry.
func (as *Async) ExchangeCarry(ctx context.Context, s *Session, sl *Slice) error {
	rank := s.Rank()
	carryIn := 0
	if !s.Layout.IsFirst(rank) {
		prev := s.Layout.Prev(rank)
		data, err := s.Comm.Irecv(ctx, prev, as.tags.Carry, 1).Wait(ctx)
		if err != nil {
			return err
		}
		if carryIn, err = checkCarry(s, prev, as.tags.Carry, data); err != nil {
			return err
		}
	}
	applyCarry(sl, carryIn)
	if !s.Layout.IsLast(rank) {
		as.sends = append(as.sends, s.Comm.Isend(ctx, s.Layout.Next(rank), as.tags.Carry, []int{sl.CarryOut}))
	}
	return nil
}

// Deliver posts the result (and final carry) sends and waits for all of this
// worker's outstanding sends.
func (as *Async) Deliver(ctx context.Context, s *Session, sl *Slice) error {
	as.sends = append(as.sends, s.Comm.Isend(ctx, CoordinatorRank, as.tags.Result, sl.Sum))
	if s.Layout.IsLast(s.Rank()) {
		as.sends = append(as.sends, s.Comm.Isend(ctx, CoordinatorRank, as.tags.Final, []int{sl.CarryOut}))
	}
	return as.drain(ctx)
}

// Collect posts a receive for every result and the final carry, then waits
// on them in rank order. The distribution sends are drained last.
func (as *Async) Collect(ctx context.Context, s *Session) (digits.Result, error) {
	parts := s.Layout.Parts
	reqs := make([]*mpi.Request, len(parts))
	for i, r := range parts {
		reqs[i] = s.Comm.Irecv(ctx, s.Layout.WorkerRank(i), as.tags.Result, r.Len)
	}
	last := s.Layout.LastRank()
	finalReq := s.Comm.Irecv(ctx, last, as.tags.Final, 1)

	out := make(digits.Sequence, s.Layout.N)
	for i, r := range parts {
		data, err := reqs[i].Wait(ctx)
		if err != nil {
			return digits.Result{}, err
		}
		part, err := checkDigits(s, s.Layout.WorkerRank(i), as.tags.Result, data)
		if err != nil {
			return digits.Result{}, err
		}
		copy(out[r.Start:r.End()], part)
		s.Report(float64(i+1) / float64(len(parts)))
	}
	data, err := finalReq.Wait(ctx)
	if err != nil {
		return digits.Result{}, err
	}
	final, err := checkCarry(s, last, as.tags.Final, data)
	if err != nil {
		return digits.Result{}, err
	}
	if err := as.drain(ctx); err != nil {
		return digits.Result{}, err
	}
	return digits.Result{Digits: out, Overflow: final}, nil
}

func (as *Async) drain(ctx context.Context) error {
	err := mpi.WaitAll(ctx, as.sends...)
	as.sends = nil
	return err
}
