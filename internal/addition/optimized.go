package addition

import (
	"context"
	"fmt"

	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/store"
)

// Optimized distributes and collects like Standard. Each worker adds its
// slice as soon as the operands arrive and records whether a carry-in would
// ripple through the sum. Only afterward does it wait for the carry-in,
// apply it and forward the carry-out, which must equal the carry predicted
// from the local sum.
type Optimized struct {
	Standard
}

// NewOptimized returns an Optimized strategy.
func NewOptimized() *Optimized {
	return &Optimized{Standard: *NewStandard()}
}

// Name returns "optimized".
func (o *Optimized) Name() string { return "optimized" }

// OutputID returns the store id of the Optimized result.
func (o *Optimized) OutputID() string { return store.OptimizedResult }

// ExchangeCarry waits for the previous worker's carry, applies it, checks
// the carry-out against the prediction and forwards it.
func (o *Optimized) ExchangeCarry(ctx context.Context, s *Session, sl *Slice) error {
	rank := s.Rank()
	carryIn := 0
	if !s.Layout.IsFirst(rank) {
		c, err := recvCarry(ctx, s, s.Layout.Prev(rank), o.tags.Carry)
		if err != nil {
			return err
		}
		carryIn = c
	}

	predicted := digits.CarryOut(sl.LocalCarry, sl.Propagates, carryIn)
	applyCarry(sl, carryIn)
	if predicted != sl.CarryOut {
		return fmt.Errorf("worker %d predicted carry %d but applied carry-out is %d", sl.Index, predicted, sl.CarryOut)
	}
	if !s.Layout.IsLast(rank) {
		return s.Comm.Send(ctx, s.Layout.Next(rank), o.tags.Carry, []int{sl.CarryOut})
	}
	return nil
}
