package addition

import (
	"context"
	"time"

	"github.com/agbru/bigadd/internal/digits"
	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/agbru/bigadd/internal/logging"
	"github.com/agbru/bigadd/internal/mpi"
	"github.com/agbru/bigadd/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Job describes one strategy run.
type Job struct {
	// N is the number of digits to add.
	N int
	// Index identifies the run in progress events.
	Index int
}

// Outcome is what a rank produced for one strategy run. Only the
// coordinator's outcome carries a result.
type Outcome struct {
	Strategy string
	OutputID string
	Rank     int
	Result   digits.Result
	Duration time.Duration
}

// Role is the part a rank plays in every strategy run. It is chosen once per
// process by NewRole.
type Role interface {
	// Rank returns the rank playing this role.
	Rank() int
	// RunStrategy executes one strategy run and returns after the closing
	// barrier.
	RunStrategy(ctx context.Context, strategy Strategy, job Job) (*Outcome, error)
}

// RoleOption configures a Role.
type RoleOption func(*roleBase)

// WithLogger sets the logger for strategy events. A nil logger keeps the
// silent default.
func WithLogger(l logging.Logger) RoleOption {
	return func(r *roleBase) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgress attaches a progress subject fed by the coordinator.
func WithProgress(p *ProgressSubject) RoleOption {
	return func(r *roleBase) { r.progress = p }
}

type roleBase struct {
	comm     *mpi.Comm
	store    store.NumberStore
	logger   logging.Logger
	progress *ProgressSubject
}

// Coordinator owns the operands and the assembled result. It runs on rank 0.
type Coordinator struct{ roleBase }

// Worker computes one slice per run. It runs on every rank but 0.
type Worker struct{ roleBase }

var (
	_ Role = (*Coordinator)(nil)
	_ Role = (*Worker)(nil)
)

// NewRole returns the Coordinator for rank 0 and a Worker for every other
// rank.
//
// Parameters:
//   - comm: The rank's communicator.
//   - st: The number store (read and written by the coordinator only).
//   - opts: Optional logger and progress subject.
//
// Returns:
//   - Role: The role of comm's rank.
func NewRole(comm *mpi.Comm, st store.NumberStore, opts ...RoleOption) Role {
	base := roleBase{comm: comm, store: st, logger: logging.Nop()}
	for _, opt := range opts {
		opt(&base)
	}
	if comm.Rank() == CoordinatorRank {
		return &Coordinator{base}
	}
	return &Worker{base}
}

func (r *roleBase) Rank() int { return r.comm.Rank() }

func (r *roleBase) session(strategy Strategy, job Job) (*Session, error) {
	layout, err := strategy.Plan(job.N, r.comm.Size())
	if err != nil {
		return nil, err
	}
	return &Session{
		Comm:     r.comm,
		Store:    r.store,
		Layout:   layout,
		Logger:   r.logger,
		progress: r.progress,
		index:    job.Index,
		started:  time.Now(),
	}, nil
}

// RunStrategy distributes the operands, works its own slice if the layout
// gives it one, collects and writes the result, then joins the closing
// barrier.
func (c *Coordinator) RunStrategy(ctx context.Context, strategy Strategy, job Job) (out *Outcome, err error) {
	ctx, finish := c.instrument(ctx, strategy, "coordinator", job, &err)
	defer finish()

	s, err := c.session(strategy, job)
	if err != nil {
		return nil, err
	}
	if err = strategy.Distribute(ctx, s); err != nil {
		return nil, wrap(strategy, err)
	}
	if s.Layout.IsWorker(c.Rank()) {
		if err = workSlice(ctx, strategy, s); err != nil {
			return nil, wrap(strategy, err)
		}
	}
	result, err := strategy.Collect(ctx, s)
	if err != nil {
		return nil, wrap(strategy, err)
	}
	if err = c.store.Write(strategy.OutputID(), result.Sequence()); err != nil {
		return nil, wrap(strategy, err)
	}
	if err = c.comm.Barrier(ctx); err != nil {
		return nil, wrap(strategy, err)
	}
	return &Outcome{
		Strategy: strategy.Name(),
		OutputID: strategy.OutputID(),
		Rank:     c.Rank(),
		Result:   result,
		Duration: time.Since(s.started),
	}, nil
}

// RunStrategy works this rank's slice and joins the closing barrier.
func (w *Worker) RunStrategy(ctx context.Context, strategy Strategy, job Job) (out *Outcome, err error) {
	ctx, finish := w.instrument(ctx, strategy, "worker", job, &err)
	defer finish()

	s, err := w.session(strategy, job)
	if err != nil {
		return nil, err
	}
	if s.Layout.IsWorker(w.Rank()) {
		if err = workSlice(ctx, strategy, s); err != nil {
			return nil, wrap(strategy, err)
		}
	}
	if err = w.comm.Barrier(ctx); err != nil {
		return nil, wrap(strategy, err)
	}
	return &Outcome{
		Strategy: strategy.Name(),
		OutputID: strategy.OutputID(),
		Rank:     w.Rank(),
		Duration: time.Since(s.started),
	}, nil
}

// workSlice runs the worker steps of a strategy in order.
func workSlice(ctx context.Context, strategy Strategy, s *Session) error {
	sl, err := strategy.Receive(ctx, s)
	if err != nil {
		return err
	}
	strategy.ComputeLocal(sl)
	if err := strategy.ExchangeCarry(ctx, s, sl); err != nil {
		return err
	}
	if err := strategy.Deliver(ctx, s, sl); err != nil {
		return err
	}
	digitsAdded.WithLabelValues(strategy.Name()).Add(float64(sl.Range.Len))
	s.Logger.Debug("slice done",
		logging.String("strategy", strategy.Name()),
		logging.Int("worker", sl.Index),
		logging.Int("digits", sl.Range.Len),
		logging.Int("carry_in", sl.CarryIn),
		logging.Int("carry_out", sl.CarryOut))
	return nil
}

// instrument opens a span and returns a func that records metrics and a
// completion event for the run.
func (r *roleBase) instrument(ctx context.Context, strategy Strategy, role string, job Job, errp *error) (context.Context, func()) {
	ctx, span := otel.Tracer("addition").Start(ctx, "RunStrategy",
		trace.WithAttributes(
			attribute.String("strategy", strategy.Name()),
			attribute.String("role", role),
			attribute.Int("rank", r.Rank()),
			attribute.Int("digits", job.N),
		))
	start := time.Now()
	return ctx, func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if *errp != nil {
			status = "error"
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		span.End()
		strategyRuns.WithLabelValues(strategy.Name(), role, status).Inc()
		strategyDuration.WithLabelValues(strategy.Name(), role).Observe(duration)

		r.logger.Debug("strategy run completed",
			logging.String("strategy", strategy.Name()),
			logging.String("role", role),
			logging.Int("rank", r.Rank()),
			logging.Int("digits", job.N),
			logging.Float64("duration", duration),
			logging.String("status", status))
	}
}

func wrap(strategy Strategy, err error) error {
	return apperrors.StrategyError{Strategy: strategy.Name(), Cause: err}
}
