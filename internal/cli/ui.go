// Package cli renders a run for the terminal: the configuration banner, a
// spinner with the coordinator's collection progress, the comparison
// summary, the verification lines and the sum itself.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/agbru/bigadd/internal/addition"
	"github.com/agbru/bigadd/internal/config"
	"github.com/agbru/bigadd/internal/digits"
	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/agbru/bigadd/internal/ui"
	"github.com/agbru/bigadd/internal/verify"
	"github.com/briandowns/spinner"
)

const (
	// TruncationLimit is the digit count above which a sum is shown
	// truncated unless -v is given.
	TruncationLimit = 100
	// DisplayEdges is how many digits of each end a truncated sum shows.
	DisplayEdges = 25
	// ProgressRefreshRate is the spinner refresh interval.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// FormatExecutionDuration formats a duration with µs or ms resolution for
// short runs.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// CLIColorProvider supplies theme colors to apperrors.HandleRunError.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

// Yellow returns the warning color.
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }

// Red returns the error color.
func (CLIColorProvider) Red() string { return ui.ColorRed() }

// Reset returns the reset code.
func (CLIColorProvider) Reset() string { return ui.ColorReset() }

// Spinner abstracts the terminal spinner so DisplayProgress can be tested.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState tracks the collection progress of each strategy run of one
// invocation and averages it.
type ProgressState struct {
	progresses []float64
}

// NewProgressState tracks n strategy runs.
func NewProgressState(n int) *ProgressState {
	return &ProgressState{progresses: make([]float64, n)}
}

// Update records the progress of run index. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress over all runs.
func (ps *ProgressState) CalculateAverage() float64 {
	if len(ps.progresses) == 0 {
		return 0.0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(len(ps.progresses))
}

// progressBar renders progress (clamped to [0,1]) as a bar of length cells.
func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0.0), 1.0)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// DisplayProgress shows a spinner with the average collection progress until
// progressChan is closed. It runs in its own goroutine and signals wg when
// done.
//
// Parameters:
//   - wg: Signaled when the display routine exits.
//   - progressChan: Progress updates from the coordinator.
//   - numRuns: The number of strategy runs feeding the channel.
//   - out: Where the spinner is rendered.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan addition.ProgressUpdate, numRuns int, out io.Writer) {
	defer wg.Done()
	if numRuns <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressState(numRuns)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	stopped := false
	defer func() {
		if !stopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	label := "Collected"
	if numRuns > 1 {
		label = "Avg collected"
	}
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				stopped = true
				fmt.Fprintf(out, "%s: %6.2f%% [%s]\n", label, state.CalculateAverage()*100, progressBar(state.CalculateAverage(), ProgressBarWidth))
				return
			}
			state.Update(update.Index, update.Value)
		case <-ticker.C:
			avg := state.CalculateAverage()
			s.UpdateSuffix(fmt.Sprintf(" %s: %6.2f%% [%s]", label, avg*100, progressBar(avg, ProgressBarWidth)))
		}
	}
}

// PrintExecutionConfig displays the run parameters.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Adding %s%d%s-digit and %s%d%s-digit numbers over %s%d%s ranks (%s transport), timeout %s%s%s.\n",
		ui.ColorMagenta(), cfg.N1, ui.ColorReset(),
		ui.ColorMagenta(), cfg.N2, ui.ColorReset(),
		ui.ColorCyan(), cfg.Processes, ui.ColorReset(), cfg.Transport,
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode displays the selected variant and the strategies it
// runs.
func PrintExecutionMode(mode config.Mode, strategies []string, out io.Writer) {
	var desc string
	switch {
	case mode == config.ModeSequential:
		desc = "Sequential reference only"
	case mode == config.ModeVerify:
		desc = "Verification of the previous run"
	case len(strategies) > 1:
		desc = fmt.Sprintf("All strategies (%s), then verification", strings.Join(strategies, ", "))
	default:
		desc = fmt.Sprintf("Single run of the %s%s%s strategy", ui.ColorGreen(), strings.Join(strategies, ""), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", desc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

// PrintVerification writes one colored line per verification entry.
func PrintVerification(report verify.Report, out io.Writer) {
	fmt.Fprintf(out, "\n%s--- Verification ---%s\n", ui.ColorBold(), ui.ColorReset())
	for _, e := range report.Entries {
		switch e.Status {
		case verify.StatusOK:
			fmt.Fprintf(out, "%s %s matches sequential result %s(%016x)%s\n",
				ui.Status("OK"), e.Name, ui.ColorCyan(), e.Digest, ui.ColorReset())
		case verify.StatusFail:
			fmt.Fprintf(out, "%s %s differs from sequential result\n", ui.Status("FAIL"), e.Name)
		default:
			fmt.Fprintf(out, "%s %s could not be verified: %v\n", ui.Status("ERROR"), e.Name, e.Err)
		}
	}
}

// DisplayResult prints the digit count and the sum, truncated for long sums
// unless verbose is set.
//
// Parameters:
//   - sum: The sum, least-significant digit first.
//   - verbose: If true, prints every digit.
//   - out: The writer for the output.
func DisplayResult(sum digits.Sequence, verbose bool, out io.Writer) {
	if len(sum) == 0 {
		return
	}
	text := sum.String()
	fmt.Fprintf(out, "Sum size: %s%s%s digits.\n", ui.ColorCyan(), formatNumberString(fmt.Sprint(len(text))), ui.ColorReset())
	fmt.Fprintf(out, "\n%s--- Sum ---%s\n", ui.ColorBold(), ui.ColorReset())
	switch {
	case verbose || len(text) <= TruncationLimit:
		fmt.Fprintf(out, "%s%s%s\n", ui.ColorGreen(), text, ui.ColorReset())
	default:
		fmt.Fprintf(out, "%s%s...%s%s (truncated)\n",
			ui.ColorGreen(), text[:DisplayEdges], text[len(text)-DisplayEdges:], ui.ColorReset())
		fmt.Fprintf(out, "(Tip: use the %s-v%s option to display every digit)\n", ui.ColorYellow(), ui.ColorReset())
	}
}

// DisplayQuietResult prints the bare sum for scripts.
func DisplayQuietResult(out io.Writer, sum digits.Sequence) {
	fmt.Fprintln(out, sum.String())
}

// formatNumberString inserts thousand separators into a numeric string.
func formatNumberString(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var builder strings.Builder
	builder.Grow(n + (n-1)/3)
	first := n % 3
	if first == 0 {
		first = 3
	}
	builder.WriteString(s[:first])
	for i := first; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
