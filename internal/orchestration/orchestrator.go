// Package orchestration runs one invocation of the adder on every rank:
// operand generation, the sequential reference, the selected strategies and
// the verification pass, then turns the coordinator's findings into a
// summary and an exit code.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/agbru/bigadd/internal/addition"
	"github.com/agbru/bigadd/internal/cli"
	"github.com/agbru/bigadd/internal/config"
	"github.com/agbru/bigadd/internal/digits"
	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/agbru/bigadd/internal/logging"
	"github.com/agbru/bigadd/internal/mpi"
	"github.com/agbru/bigadd/internal/mpi/rabbit"
	"github.com/agbru/bigadd/internal/store"
	"github.com/agbru/bigadd/internal/ui"
	"github.com/agbru/bigadd/internal/verify"
)

// ProgressBufferMultiplier sizes the progress channel per strategy run so the
// coordinator rarely finds it full.
const ProgressBufferMultiplier = 16

// errAborted is what workers report when the coordinator broadcast that it
// could not go on.
var errAborted = errors.New("coordinator aborted the run")

// StrategyResult is the coordinator's record of one run.
type StrategyResult struct {
	// Name is "sequential" or a strategy name.
	Name string
	// OutputID is the store id the result was written to.
	OutputID string
	// Duration is the time the run took on the coordinator.
	Duration time.Duration
	// Err is set if the run failed.
	Err error
}

// RunReport is everything the coordinator knows at the end of an invocation.
// Workers get an empty report.
type RunReport struct {
	Mode       config.Mode
	N1, N2     int
	Processes  int
	Results    []StrategyResult
	// Verification is set for the modes that verify.
	Verification *verify.Report
	// CrossChecked reports whether the reference was checked against an
	// arbitrary-precision sum, and CrossCheckOK its outcome.
	CrossChecked bool
	CrossCheckOK bool
	CrossCheckErr error
	// Sum is the reference sum, when it could be read.
	Sum digits.Sequence
}

// Runner executes an invocation on one rank.
type Runner struct {
	Store    store.NumberStore
	Registry *addition.Registry
	Logger   logging.Logger
	// Progress, if set, receives the coordinator's collection progress.
	Progress *addition.ProgressSubject
}

// NewRunner returns a runner over st with the built-in strategies.
func NewRunner(st store.NumberStore, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{Store: st, Registry: addition.NewRegistry(), Logger: logger}
}

// StrategiesFor returns the strategy names a mode runs, in execution order.
func (r *Runner) StrategiesFor(mode config.Mode) []string {
	switch mode {
	case config.ModeAll:
		return r.Registry.List()
	case config.ModeStandard, config.ModeScatter, config.ModeAsync, config.ModeOptimized:
		if name, ok := r.Registry.BySelector(int(mode)); ok {
			return []string{name}
		}
	}
	return nil
}

// RunProcess is the per-rank flow of an invocation:
//  1. the coordinator generates both operands (except when only verifying);
//  2. the mode is broadcast from the coordinator, then all ranks meet;
//  3. the coordinator computes the sequential reference, then all ranks meet;
//  4. every selected strategy runs on every rank;
//  5. the coordinator verifies, for the modes that ask for it.
//
// Parameters:
//   - ctx: Bounds the whole invocation.
//   - comm: The rank's communicator.
//   - cfg: The configuration; only the coordinator's mode counts.
//
// Returns:
//   - *RunReport: The coordinator's findings (empty on workers).
//   - error: The first fatal error (I/O, messaging or configuration).
func (r *Runner) RunProcess(ctx context.Context, comm *mpi.Comm, cfg config.AppConfig) (*RunReport, error) {
	coordinator := comm.Rank() == addition.CoordinatorRank
	report := &RunReport{N1: cfg.N1, N2: cfg.N2, Processes: comm.Size()}

	var genErr error
	if coordinator && cfg.Mode != config.ModeVerify {
		genErr = r.generate(cfg)
	}
	modeValue := int(cfg.Mode)
	if genErr != nil {
		modeValue = -1
	}
	m, err := comm.Bcast(ctx, addition.CoordinatorRank, modeValue)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return nil, genErr
	}
	if m < 0 {
		return nil, errAborted
	}
	mode := config.Mode(m)
	report.Mode = mode
	if err := comm.Barrier(ctx); err != nil {
		return nil, err
	}

	var seqErr error
	if coordinator && mode != config.ModeVerify {
		res := r.sequential(cfg)
		report.Results = append(report.Results, res)
		seqErr = res.Err
	}
	if err := agree(ctx, comm, seqErr); err != nil {
		return nil, err
	}
	if err := comm.Barrier(ctx); err != nil {
		return nil, err
	}

	role := addition.NewRole(comm, r.Store, r.roleOptions(comm)...)
	n := max(cfg.N1, cfg.N2)
	for i, name := range r.StrategiesFor(mode) {
		strategy, err := r.Registry.Create(name)
		if err != nil {
			return nil, err
		}
		out, err := role.RunStrategy(ctx, strategy, addition.Job{N: n, Index: i})
		if err != nil {
			return nil, err
		}
		if coordinator {
			report.Results = append(report.Results, StrategyResult{
				Name: out.Strategy, OutputID: out.OutputID, Duration: out.Duration,
			})
		}
	}

	if coordinator {
		r.finish(ctx, mode, report)
	}
	return report, nil
}

func (r *Runner) roleOptions(comm *mpi.Comm) []addition.RoleOption {
	opts := []addition.RoleOption{addition.WithLogger(r.Logger)}
	if r.Progress != nil && comm.Rank() == addition.CoordinatorRank {
		opts = append(opts, addition.WithProgress(r.Progress))
	}
	return opts
}

func (r *Runner) generate(cfg config.AppConfig) error {
	if _, err := r.Store.Generate(store.FirstNumber, cfg.N1); err != nil {
		return err
	}
	if _, err := r.Store.Generate(store.SecondNumber, cfg.N2); err != nil {
		return err
	}
	r.Logger.Debug("operands generated", logging.Int("n1", cfg.N1), logging.Int("n2", cfg.N2))
	return nil
}

// sequential computes and stores the reference sum.
func (r *Runner) sequential(cfg config.AppConfig) StrategyResult {
	start := time.Now()
	res := StrategyResult{Name: "sequential", OutputID: store.Reference}
	a, err := r.Store.ReadAll(store.FirstNumber)
	if err == nil {
		var b digits.Sequence
		if b, err = r.Store.ReadAll(store.SecondNumber); err == nil {
			err = r.Store.Write(store.Reference, addition.Sequential(a, b).Sequence())
		}
	}
	res.Duration = time.Since(start)
	res.Err = err
	return res
}

// finish runs the verification pass and reads the sum for display.
func (r *Runner) finish(ctx context.Context, mode config.Mode, report *RunReport) {
	if mode == config.ModeAll || mode == config.ModeVerify {
		targets := make([]verify.Target, 0, len(r.Registry.List()))
		for _, name := range r.Registry.List() {
			targets = append(targets, verify.Target{Name: name, ID: r.Registry.MustCreate(name).OutputID()})
		}
		v := verify.RunAll(ctx, r.Store, store.Reference, targets)
		report.Verification = &v

		report.CrossChecked = true
		report.CrossCheckOK, report.CrossCheckErr = verify.CrossCheck(r.Store, store.FirstNumber, store.SecondNumber, store.Reference)
	}
	if sum, err := r.Store.ReadAll(store.Reference); err == nil {
		report.Sum = sum
	}
}

// agree makes a coordinator-side failure visible to every rank: the
// coordinator broadcasts whether it can go on, and workers stop if not.
func agree(ctx context.Context, comm *mpi.Comm, coordErr error) error {
	status := 0
	if coordErr != nil {
		status = 1
	}
	s, err := comm.Bcast(ctx, addition.CoordinatorRank, status)
	if err != nil {
		return err
	}
	if coordErr != nil {
		return coordErr
	}
	if s != 0 {
		return errAborted
	}
	return nil
}

// ExecuteLocal runs every rank of an invocation as goroutines of this
// process and shows the coordinator's collection progress on out.
//
// Parameters:
//   - ctx: Bounds the invocation.
//   - cfg: The validated configuration.
//   - st: The store shared by the coordinator.
//   - logger: The base logger; each rank gets its own rank field.
//   - out: Where progress is displayed.
//
// Returns:
//   - *RunReport: The coordinator's report.
//   - error: The first rank failure.
func ExecuteLocal(ctx context.Context, cfg config.AppConfig, st store.NumberStore, logger *logging.ZerologAdapter, out io.Writer) (*RunReport, error) {
	world, err := mpi.NewWorld(cfg.Processes)
	if err != nil {
		return nil, err
	}
	defer world.Close()

	planner := NewRunner(st, nil)
	runs := len(planner.StrategiesFor(cfg.Mode))
	progressChan := make(chan addition.ProgressUpdate, max(runs, 1)*ProgressBufferMultiplier)
	subject := addition.NewProgressSubject()
	subject.Register(addition.NewChannelObserver(progressChan))
	subject.Register(addition.NewMetricsObserver())

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, runs, out)

	var report *RunReport
	err = world.Run(ctx, func(ctx context.Context, comm *mpi.Comm) error {
		runner := NewRunner(st, logger.WithRank(comm.Rank()))
		runner.Progress = subject
		rep, err := runner.RunProcess(ctx, comm, cfg)
		if comm.Rank() == addition.CoordinatorRank {
			report = rep
		}
		return err
	})

	close(progressChan)
	displayWg.Wait()
	return report, err
}

// ExecuteRank runs this process's single rank over RabbitMQ. The coordinator
// rank shows progress on out.
func ExecuteRank(ctx context.Context, cfg config.AppConfig, st store.NumberStore, logger *logging.ZerologAdapter, out io.Writer) (*RunReport, error) {
	rankLogger := logger.WithRank(cfg.Rank)
	t, err := rabbit.Dial(rabbit.Config{
		URL:     cfg.AMQPURL,
		Session: cfg.Session,
		Rank:    cfg.Rank,
		Size:    cfg.Processes,
	}, rankLogger)
	if err != nil {
		return nil, err
	}
	comm := mpi.NewComm(t)
	defer comm.Close()

	runner := NewRunner(st, rankLogger)
	if cfg.Rank != addition.CoordinatorRank {
		return runner.RunProcess(ctx, comm, cfg)
	}

	runs := len(runner.StrategiesFor(cfg.Mode))
	progressChan := make(chan addition.ProgressUpdate, max(runs, 1)*ProgressBufferMultiplier)
	runner.Progress = addition.NewProgressSubject()
	runner.Progress.Register(addition.NewChannelObserver(progressChan))

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, runs, out)

	report, err := runner.RunProcess(ctx, comm, cfg)
	close(progressChan)
	displayWg.Wait()
	return report, err
}

// AnalyzeResults prints the comparison summary, the verification lines and
// the sum, and returns the exit code of the invocation.
//
// Parameters:
//   - report: The coordinator's report.
//   - cfg: The configuration (for display options).
//   - out: The writer for the summary.
//
// Returns:
//   - int: ExitSuccess, or ExitErrorMismatch if any verification failed.
func AnalyzeResults(report *RunReport, cfg config.AppConfig, out io.Writer) int {
	if len(report.Results) > 0 {
		fmt.Fprintf(out, "\n--- Run Summary ---\n")
		tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintf(tw, "%sRun%s\t%sDuration%s\t%sOutput%s\t%sStatus%s\n",
			ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
			ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
		for _, res := range report.Results {
			status := fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			if res.Err != nil {
				status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			}
			duration := cli.FormatExecutionDuration(res.Duration)
			if res.Duration == 0 {
				duration = "< 1µs"
			}
			fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\t%s\n",
				ui.ColorBlue(), res.Name, ui.ColorReset(),
				ui.ColorYellow(), duration, ui.ColorReset(),
				res.OutputID, status)
		}
		if err := tw.Flush(); err != nil {
			fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
		}
	}

	exitCode := apperrors.ExitSuccess
	if report.Verification != nil {
		cli.PrintVerification(*report.Verification, out)
		if !report.Verification.Passed() {
			exitCode = apperrors.ExitErrorMismatch
		}
	}
	if report.CrossChecked {
		switch {
		case report.CrossCheckErr != nil:
			fmt.Fprintf(out, "%s reference could not be cross-checked (%s): %v\n", ui.Status("ERROR"), verify.Backend, report.CrossCheckErr)
			exitCode = apperrors.ExitErrorMismatch
		case report.CrossCheckOK:
			fmt.Fprintf(out, "%s reference equals the %s sum of the operands\n", ui.Status("OK"), verify.Backend)
		default:
			fmt.Fprintf(out, "%s reference differs from the %s sum of the operands\n", ui.Status("FAIL"), verify.Backend)
			exitCode = apperrors.ExitErrorMismatch
		}
	}

	if exitCode == apperrors.ExitErrorMismatch {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! At least one result differs from the sequential reference.\n")
		return exitCode
	}
	fmt.Fprintf(out, "\nGlobal Status: Success.\n")
	cli.DisplayResult(report.Sum, cfg.Verbose, out)
	return exitCode
}
