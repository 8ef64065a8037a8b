package addition

import (
	"bytes"
	"context"
	"errors"
	stdlog "log"
	"strings"
	"testing"
	"time"

	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/logging"
	"github.com/agbru/bigadd/internal/mpi"
)

// workerSession returns a session for rank in a fresh world of size ranks,
// laid out by strategy for n digits.
func workerSession(t *testing.T, strategy Strategy, n, size, rank int) (*Session, *mpi.World) {
	t.Helper()
	w, err := mpi.NewWorld(size)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Close)
	layout, err := strategy.Plan(n, size)
	if err != nil {
		t.Fatal(err)
	}
	return &Session{Comm: mpi.NewComm(w.Endpoint(rank)), Layout: layout, Logger: logging.Nop()}, w
}

// TestAsyncReceiveWithCanceledContext queues both operand slices and then
// receives them under a context that is already done. The worker must get
// either the full slices or an error, never a short slice.
func TestAsyncReceiveWithCanceledContext(t *testing.T) {
	t.Parallel()
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 200; i++ {
		as := NewAsync()
		s, w := workerSession(t, as, 3, 2, 1)
		coord := mpi.NewComm(w.Endpoint(CoordinatorRank))
		if err := coord.Send(context.Background(), 1, as.tags.A, []int{1, 2, 3}); err != nil {
			t.Fatal(err)
		}
		if err := coord.Send(context.Background(), 1, as.tags.B, []int{4, 5, 6}); err != nil {
			t.Fatal(err)
		}

		sl, err := as.Receive(canceled, s)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("iteration %d: unexpected error %v", i, err)
			}
			continue
		}
		if len(sl.A) != 3 || len(sl.B) != 3 {
			t.Fatalf("iteration %d: got A=%v B=%v for a 3-digit slice", i, sl.A, sl.B)
		}
		as.ComputeLocal(sl)
		if sl.Sum.String() != "975" || sl.LocalCarry != 0 {
			t.Fatalf("iteration %d: sum %s carry %d", i, sl.Sum, sl.LocalCarry)
		}
	}
}

// TestOptimizedForwardsAfterCarryIn gives the middle worker a slice whose
// carry-out is known from its local sum alone and checks that it still
// forwards nothing until its own carry-in arrives.
func TestOptimizedForwardsAfterCarryIn(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	o := NewOptimized()
	// Ranks 1..3 are workers, one digit each; rank 2 is the middle one.
	s, w := workerSession(t, o, 3, 4, 2)
	sl := s.newSlice()
	sl.A, sl.B = digits.Sequence{5}, digits.Sequence{5}
	o.ComputeLocal(sl)
	if sl.LocalCarry != 1 {
		t.Fatalf("5+5 should carry, got %d", sl.LocalCarry)
	}

	done := make(chan error, 1)
	go func() { done <- o.ExchangeCarry(ctx, s, sl) }()

	next := mpi.NewComm(w.Endpoint(3)).Irecv(ctx, 2, o.tags.Carry, 1)
	time.Sleep(50 * time.Millisecond)
	if next.Test() {
		t.Fatal("carry was forwarded before the carry-in arrived")
	}

	if err := mpi.NewComm(w.Endpoint(1)).Send(ctx, 2, o.tags.Carry, []int{0}); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatalf("ExchangeCarry: %v", err)
	}
	got, err := next.Wait(ctx)
	if err != nil || len(got) != 1 || got[0] != 1 {
		t.Fatalf("forwarded carry = %v, %v; want [1]", got, err)
	}
	if sl.CarryIn != 0 || sl.CarryOut != 1 || sl.Sum.String() != "0" {
		t.Errorf("unexpected slice state %+v", sl)
	}
}

// TestOptimizedRejectsWrongPrediction feeds the last worker a slice whose
// propagate flag disagrees with its digits, so the applied carry-out cannot
// match the predicted one.
func TestOptimizedRejectsWrongPrediction(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	o := NewOptimized()
	s, w := workerSession(t, o, 2, 3, 2)
	sl := s.newSlice()
	sl.Sum, sl.LocalCarry, sl.Propagates = digits.Sequence{5}, 0, true

	if err := mpi.NewComm(w.Endpoint(1)).Send(ctx, 2, o.tags.Carry, []int{1}); err != nil {
		t.Fatal(err)
	}
	err := o.ExchangeCarry(ctx, s, sl)
	if err == nil || !strings.Contains(err.Error(), "predicted carry 1 but applied carry-out is 0") {
		t.Fatalf("expected a prediction mismatch, got %v", err)
	}
}

// TestRunCompletionGoesToRoleLogger checks that every rank reports the end of
// its run through the logger it was given.
func TestRunCompletionGoesToRoleLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewStdLoggerAdapter(stdlog.New(&buf, "", 0))
	st := operands(digits.MustParse("123"), digits.MustParse("877"))

	if _, err := runStrategy(t, st, 3, 3, "standard", WithLogger(logger)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "[DEBUG] strategy run completed"); n != 3 {
		t.Errorf("expected one completion event per rank, got %d:\n%s", n, out)
	}
	for _, want := range []string{"role=coordinator", "role=worker", "status=success"} {
		if !strings.Contains(out, want) {
			t.Errorf("completion events should contain %q:\n%s", want, out)
		}
	}
}
