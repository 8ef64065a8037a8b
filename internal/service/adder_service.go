// Package service runs single additions for the HTTP API: it places the
// operands in a private in-memory store, runs one strategy over an
// in-process world and checks the sum against the sequential one.
package service

//go:generate mockgen -source=adder_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/agbru/bigadd/internal/addition"
	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/logging"
	"github.com/agbru/bigadd/internal/mpi"
	"github.com/agbru/bigadd/internal/store"
	"github.com/agbru/bigadd/internal/verify"
)

// SequentialName selects the single-process reference instead of a
// distributed strategy.
const SequentialName = "sequential"

var (
	// ErrMaxDigitsExceeded is returned when an operand is wider than the
	// configured limit.
	ErrMaxDigitsExceeded = errors.New("maximum operand width exceeded")
	// ErrProcessesOutOfRange is returned for a rank count outside the
	// configured bounds.
	ErrProcessesOutOfRange = errors.New("process count out of range")
	// ErrEmptyOperand is returned when an operand has no digits.
	ErrEmptyOperand = errors.New("operand has no digits")
)

// Request is one addition.
type Request struct {
	// Strategy is a registered strategy name or SequentialName.
	Strategy string
	// A and B are the operands, least-significant digit first.
	A, B digits.Sequence
	// Processes is the number of ranks of the world.
	Processes int
}

// Result is the outcome of a Request.
type Result struct {
	Strategy  string
	Processes int
	Digits    int
	Sum       digits.Result
	// Verified reports whether Sum equals the sequential sum.
	Verified bool
	Duration time.Duration
}

// Service defines the addition service used by the HTTP server.
type Service interface {
	// Add performs one addition.
	//
	// Parameters:
	//   - ctx: The context for cancellation.
	//   - req: The operands, the strategy and the rank count.
	//
	// Returns:
	//   - *Result: The sum and its verification.
	//   - error: An error if validation or the run fails.
	Add(ctx context.Context, req Request) (*Result, error)
	// Strategies returns the registry the service resolves names in.
	Strategies() *addition.Registry
}

// AdderService implements Service over a fresh in-process world per request.
type AdderService struct {
	registry     *addition.Registry
	logger       logging.Logger
	maxDigits    int
	maxProcesses int
}

var _ Service = (*AdderService)(nil)

// NewAdderService creates a service.
//
// Parameters:
//   - registry: The strategies to resolve names in.
//   - logger: The logger handed to every rank (nil for none).
//   - maxDigits: The widest operand accepted (0 for no limit).
//   - maxProcesses: The largest world accepted (0 for no limit).
func NewAdderService(registry *addition.Registry, logger logging.Logger, maxDigits, maxProcesses int) *AdderService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AdderService{registry: registry, logger: logger, maxDigits: maxDigits, maxProcesses: maxProcesses}
}

// Strategies returns the service's registry.
func (s *AdderService) Strategies() *addition.Registry { return s.registry }

// Add validates req, runs it and verifies the sum.
func (s *AdderService) Add(ctx context.Context, req Request) (*Result, error) {
	n := max(len(req.A), len(req.B))
	if len(req.A) == 0 || len(req.B) == 0 {
		return nil, ErrEmptyOperand
	}
	if s.maxDigits > 0 && n > s.maxDigits {
		return nil, ErrMaxDigitsExceeded
	}
	if req.Processes < 1 || (s.maxProcesses > 0 && req.Processes > s.maxProcesses) {
		return nil, ErrProcessesOutOfRange
	}

	start := time.Now()
	reference := addition.Sequential(req.A, req.B)
	res := &Result{Strategy: req.Strategy, Processes: req.Processes, Digits: n}
	if req.Strategy == SequentialName {
		res.Sum, res.Verified, res.Duration = reference, true, time.Since(start)
		return res, nil
	}
	strategy, err := s.registry.Create(req.Strategy)
	if err != nil {
		return nil, err
	}

	st := store.NewMemoryStore(store.WithLogger(s.logger))
	st.Put(store.FirstNumber, req.A)
	st.Put(store.SecondNumber, req.B)
	if err := st.Write(store.Reference, reference.Sequence()); err != nil {
		return nil, err
	}

	world, err := mpi.NewWorld(req.Processes)
	if err != nil {
		return nil, err
	}
	defer world.Close()

	start = time.Now()
	err = world.Run(ctx, func(ctx context.Context, comm *mpi.Comm) error {
		strategy, err := s.registry.Create(req.Strategy)
		if err != nil {
			return err
		}
		role := addition.NewRole(comm, st, addition.WithLogger(s.logger))
		out, err := role.RunStrategy(ctx, strategy, addition.Job{N: n})
		if err == nil && comm.Rank() == addition.CoordinatorRank {
			res.Sum = out.Result
		}
		return err
	})
	res.Duration = time.Since(start)
	if err != nil {
		return nil, err
	}

	res.Verified, err = verify.Compare(st, store.Reference, strategy.OutputID())
	if err != nil {
		return nil, err
	}
	return res, nil
}
