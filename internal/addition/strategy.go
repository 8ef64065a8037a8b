package addition

import (
	"context"
	"time"

	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/logging"
	"github.com/agbru/bigadd/internal/mpi"
	"github.com/agbru/bigadd/internal/partition"
	"github.com/agbru/bigadd/internal/store"
)

// CoordinatorRank is the rank that owns the operands and the assembled result.
const CoordinatorRank = 0

// Tags names the message channels one strategy uses.
type Tags struct {
	A      int
	B      int
	Result int
	Final  int
	Carry  int
}

// Strategy is the communication policy of one distributed addition. A fresh
// instance is used for every run on every rank, so implementations may keep
// per-run state in their own fields.
type Strategy interface {
	// Name returns the registry name of the strategy (e.g., "async").
	Name() string
	// OutputID returns the store id the coordinator writes the result to.
	OutputID() string
	// Plan maps n digits onto the ranks of a world of the given size.
	Plan(n, size int) (Layout, error)

	// Distribute moves operands from the store toward the workers. It runs
	// on the coordinator only.
	Distribute(ctx context.Context, s *Session) error
	// Receive returns the calling worker's operand slices.
	Receive(ctx context.Context, s *Session) (*Slice, error)
	// ComputeLocal adds the slice operands without any incoming carry.
	ComputeLocal(sl *Slice)
	// ExchangeCarry takes the carry from the previous worker, applies it and
	// passes the outgoing carry to the next worker.
	ExchangeCarry(ctx context.Context, s *Session, sl *Slice) error
	// Deliver hands the finished slice back toward the coordinator.
	Deliver(ctx context.Context, s *Session, sl *Slice) error
	// Collect assembles the full result. It runs on the coordinator only.
	Collect(ctx context.Context, s *Session) (digits.Result, error)
}

// Layout is the assignment of digit ranges to worker ranks for one run.
type Layout struct {
	// N is the number of real digits.
	N int
	// Size is the number of ranks.
	Size int
	// Parts holds one range per worker, in worker order.
	Parts []partition.Range
	// Padded is the total length of all ranges (N unless padding was added).
	Padded int
	// CoordinatorWorks reports whether rank 0 also owns a range.
	CoordinatorWorks bool
}

// Workers returns the number of worker ranks.
func (l Layout) Workers() int { return len(l.Parts) }

// WorkerRank returns the rank of worker i.
func (l Layout) WorkerRank(i int) int {
	if l.CoordinatorWorks {
		return i
	}
	return i + 1
}

// WorkerIndex returns the worker index of rank, or -1 if rank is not a worker.
func (l Layout) WorkerIndex(rank int) int {
	i := rank
	if !l.CoordinatorWorks {
		i--
	}
	if i < 0 || i >= len(l.Parts) {
		return -1
	}
	return i
}

// IsWorker reports whether rank owns a range.
func (l Layout) IsWorker(rank int) bool { return l.WorkerIndex(rank) >= 0 }

// IsFirst reports whether rank is the lowest-order worker.
func (l Layout) IsFirst(rank int) bool { return l.WorkerIndex(rank) == 0 }

// IsLast reports whether rank is the highest-order worker.
func (l Layout) IsLast(rank int) bool { return l.WorkerIndex(rank) == len(l.Parts)-1 }

// Prev returns the rank feeding carry into rank.
func (l Layout) Prev(rank int) int { return rank - 1 }

// Next returns the rank that receives rank's carry.
func (l Layout) Next(rank int) int { return rank + 1 }

// LastRank returns the rank of the highest-order worker.
func (l Layout) LastRank() int { return l.WorkerRank(len(l.Parts) - 1) }

// coordinatorOnlyPlan reserves rank 0 and splits n digits over the other
// ranks, remainder first.
func coordinatorOnlyPlan(n, size int) (Layout, error) {
	parts, err := partition.Plan(n, size-1)
	if err != nil {
		return Layout{}, err
	}
	return Layout{N: n, Size: size, Parts: parts, Padded: n}, nil
}

// Slice is one worker's share of a run.
type Slice struct {
	// Index is the worker index.
	Index int
	// Range is the digit range this worker owns.
	Range partition.Range
	// A and B are the operand digits of the range.
	A, B digits.Sequence
	// Sum is the local sum, and after ExchangeCarry the final digits.
	Sum digits.Sequence
	// LocalCarry is the carry out of ComputeLocal.
	LocalCarry int
	// Propagates reports whether an incoming carry would ripple through Sum.
	Propagates bool
	// CarryIn is the carry received from the previous worker.
	CarryIn int
	// CarryOut is the total carry leaving this slice.
	CarryOut int
}

// Session is the per-rank context of one strategy run.
type Session struct {
	Comm   *mpi.Comm
	Store  store.NumberStore
	Layout Layout
	Logger logging.Logger

	progress *ProgressSubject
	index    int
	started  time.Time
}

// Rank returns the calling rank.
func (s *Session) Rank() int { return s.Comm.Rank() }

// Report publishes the coordinator's collection progress.
func (s *Session) Report(fraction float64) {
	if s.progress != nil {
		s.progress.Notify(s.index, fraction)
	}
}

// readOperands reads worker i's range of both operands from the store.
func (s *Session) readOperands(i int) (digits.Sequence, digits.Sequence, error) {
	r := s.Layout.Parts[i]
	a, err := s.Store.ReadRange(store.FirstNumber, r.Start, r.Len)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.Store.ReadRange(store.SecondNumber, r.Start, r.Len)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// newSlice prepares the slice owned by the calling rank.
func (s *Session) newSlice() *Slice {
	i := s.Layout.WorkerIndex(s.Rank())
	return &Slice{Index: i, Range: s.Layout.Parts[i]}
}

// computeLocal is the shared ComputeLocal step.
func computeLocal(sl *Slice) {
	sl.Sum, sl.LocalCarry = digits.AddSlice(sl.A, sl.B)
	sl.Propagates = digits.Propagates(sl.Sum)
}

// applyCarry applies the incoming carry and records the outgoing one.
func applyCarry(sl *Slice, carryIn int) {
	sl.CarryIn = carryIn
	sl.CarryOut = sl.LocalCarry + digits.ApplyCarry(sl.Sum, carryIn)
}
