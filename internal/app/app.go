package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agbru/bigadd/internal/cli"
	"github.com/agbru/bigadd/internal/config"
	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/agbru/bigadd/internal/logging"
	"github.com/agbru/bigadd/internal/orchestration"
	"github.com/agbru/bigadd/internal/server"
	"github.com/agbru/bigadd/internal/store"
	"github.com/agbru/bigadd/internal/ui"
	"github.com/agbru/bigadd/pkg/models"
)

// Application is one invocation of bigadd: a run over the local or the
// RabbitMQ transport, or the HTTP server.
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// ErrWriter receives logs and error messages (typically os.Stderr).
	ErrWriter io.Writer
	// Store overrides the file store of a run; tests inject a MemoryStore.
	Store store.NumberStore
}

// New creates an Application by parsing command-line arguments.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "bigadd"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	return &Application{Config: cfg, ErrWriter: errWriter}, nil
}

// Run executes the configured mode.
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if err := logging.SetLevel(a.Config.LogLevel); err != nil {
		fmt.Fprintf(a.ErrWriter, "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	ui.InitTheme(a.Config.NoColor)

	if a.Config.ServerMode {
		return a.runServer()
	}
	return a.runAdd(ctx, out)
}

func (a *Application) runServer() int {
	srv := server.NewServer(a.Config, server.WithLogger(logging.NewLogger(a.ErrWriter, "server")))
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runAdd performs one invocation and reports it.
func (a *Application) runAdd(ctx context.Context, out io.Writer) int {
	ctx, cancels := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancels.Cleanup()

	st, err := a.numberStore()
	if err != nil {
		return apperrors.HandleRunError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}

	logger := logging.NewLogger(a.ErrWriter, "bigadd")
	coordinator := a.Config.Transport == config.TransportLocal || a.Config.Rank == 0
	showProgress := coordinator && !a.Config.JSONOutput && !a.Config.Quiet
	if showProgress {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(a.Config.Mode, orchestration.NewRunner(st, nil).StrategiesFor(a.Config.Mode), out)
	}
	progressOut := out
	if !showProgress {
		progressOut = io.Discard
	}

	start := time.Now()
	var report *orchestration.RunReport
	if a.Config.Transport == config.TransportAMQP {
		report, err = orchestration.ExecuteRank(ctx, a.Config, st, logger, progressOut)
	} else {
		report, err = orchestration.ExecuteLocal(ctx, a.Config, st, logger, progressOut)
	}
	duration := time.Since(start)

	if a.Config.JSONOutput && coordinator {
		return printJSONResults(report, err, duration, a.Config, out)
	}
	if err != nil {
		errOut := out
		if a.Config.Quiet {
			errOut = a.ErrWriter
		}
		return apperrors.HandleRunError(err, duration, errOut, cli.CLIColorProvider{})
	}
	if !coordinator {
		return apperrors.ExitSuccess
	}
	if a.Config.Quiet {
		code := quietExitCode(report)
		cli.DisplayQuietResult(out, report.Sum)
		return code
	}

	code := orchestration.AnalyzeResults(report, a.Config, out)
	a.printOutputFiles(report, st, out)
	return code
}

// numberStore returns the injected store or a file store in the data
// directory.
func (a *Application) numberStore() (store.NumberStore, error) {
	if a.Store != nil {
		return a.Store, nil
	}
	return store.NewFileStore(a.Config.DataDir,
		store.WithSeed(a.Config.Seed),
		store.WithLogger(logging.NewLogger(a.ErrWriter, "store")))
}

// printOutputFiles names the records the run wrote.
func (a *Application) printOutputFiles(report *orchestration.RunReport, st store.NumberStore, out io.Writer) {
	if len(report.Results) == 0 {
		return
	}
	names := []string{store.FirstNumber, store.SecondNumber}
	for _, r := range report.Results {
		names = append(names, r.OutputID)
	}
	if fs, ok := st.(*store.FileStore); ok {
		for i, id := range names {
			names[i] = fs.Path(id)
		}
	}
	fmt.Fprintf(out, "Output records: %s%s%s\n", ui.ColorCyan(), strings.Join(names, ", "), ui.ColorReset())
}

func quietExitCode(report *orchestration.RunReport) int {
	if report.Verification != nil && !report.Verification.Passed() {
		return apperrors.ExitErrorMismatch
	}
	if report.CrossChecked && !report.CrossCheckOK {
		return apperrors.ExitErrorMismatch
	}
	return apperrors.ExitSuccess
}

// IsHelpError reports whether err is the flag package's -h/--help signal.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: True if the error indicates help was requested.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// printJSONResults writes the run as a models.RunSummary and returns the
// exit code the table output would have produced.
func printJSONResults(report *orchestration.RunReport, runErr error, duration time.Duration, cfg config.AppConfig, out io.Writer) int {
	summary := models.RunSummary{
		Mode:      cfg.Mode.String(),
		N1:        cfg.N1,
		N2:        cfg.N2,
		Processes: cfg.Processes,
		Runs:      []models.RunEntry{},
	}
	code := apperrors.ExitSuccess
	if runErr != nil {
		summary.Error = runErr.Error()
		code = apperrors.HandleRunError(runErr, duration, io.Discard, nil)
	}
	if report != nil {
		for _, r := range report.Results {
			entry := models.RunEntry{Name: r.Name, OutputID: r.OutputID, Duration: r.Duration.String()}
			if r.Err != nil {
				entry.Error = r.Err.Error()
			}
			summary.Runs = append(summary.Runs, entry)
		}
		if report.Verification != nil {
			for _, e := range report.Verification.Entries {
				row := models.VerificationRow{Strategy: e.Name, Status: e.Status.String()}
				if e.Err != nil {
					row.Error = e.Err.Error()
				} else {
					row.Digest = fmt.Sprintf("%016x", e.Digest)
				}
				summary.Verification = append(summary.Verification, row)
			}
		}
		if report.CrossChecked {
			switch {
			case report.CrossCheckErr != nil:
				summary.CrossCheck = "ERROR"
			case report.CrossCheckOK:
				summary.CrossCheck = "OK"
			default:
				summary.CrossCheck = "FAIL"
			}
		}
		if len(report.Sum) > 0 {
			summary.Sum = report.Sum.String()
		}
		if code == apperrors.ExitSuccess {
			code = quietExitCode(report)
		}
	}
	summary.ExitCode = code

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return code
}
