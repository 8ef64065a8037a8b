package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agbru/bigadd/internal/addition"
	"github.com/agbru/bigadd/internal/config"
	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/testutil"
	"github.com/agbru/bigadd/internal/ui"
	"github.com/agbru/bigadd/internal/verify"
	"github.com/briandowns/spinner"
)

// MockSpinner for testing
type MockSpinner struct {
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start()                     { m.started = true }
func (m *MockSpinner) Stop()                      { m.stopped = true }
func (m *MockSpinner) UpdateSuffix(suffix string) { m.suffix = suffix }

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{500 * time.Nanosecond, "0µs"},
		{10 * time.Microsecond, "10µs"},
		{10 * time.Millisecond, "10ms"},
		{2 * time.Second, "2s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.expected {
			t.Errorf("FormatExecutionDuration(%v) = %s; want %s", tt.d, got, tt.expected)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		length   int
		want     string
	}{
		{0.0, 10, "░░░░░░░░░░"},
		{0.5, 10, "█████░░░░░"},
		{1.0, 10, "██████████"},
		{1.2, 10, "██████████"},
		{-0.1, 10, "░░░░░░░░░░"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.progress, tt.length); got != tt.want {
			t.Errorf("progressBar(%f, %d) = %s; want %s", tt.progress, tt.length, got, tt.want)
		}
	}
}

func TestProgressState(t *testing.T) {
	t.Parallel()
	ps := NewProgressState(4)
	ps.Update(0, 1.0)
	ps.Update(1, 0.5)
	ps.Update(9, 1.0) // ignored
	if got := ps.CalculateAverage(); got != 0.375 {
		t.Errorf("CalculateAverage() = %v, want 0.375", got)
	}
	if NewProgressState(0).CalculateAverage() != 0 {
		t.Error("empty state should average to 0")
	}
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input, expected string
	}{
		{"", ""},
		{"1", "1"},
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
	}
	for _, tt := range tests {
		if got := formatNumberString(tt.input); got != tt.expected {
			t.Errorf("formatNumberString(%q) = %q; want %q", tt.input, got, tt.expected)
		}
	}
}

// The tests below set the shared theme and do not run in parallel.

func TestDisplayResult(t *testing.T) {
	defer ui.SetCurrentTheme(ui.GetCurrentTheme())
	ui.SetCurrentTheme(ui.NoColorTheme)

	long := digits.Sequence(testutil.RandomDigits(3, 200, true))
	tests := []struct {
		name     string
		sum      digits.Sequence
		verbose  bool
		contains []string
		excludes []string
	}{
		{"Short", digits.MustParse("1000"), false, []string{"Sum size: 4 digits.", "1000"}, []string{"truncated"}},
		{"Truncated", long, false, []string{"(truncated)", "Tip: use", long.String()[:DisplayEdges]}, nil},
		{"Verbose", long, true, []string{long.String()}, []string{"truncated"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			DisplayResult(tt.sum, tt.verbose, &buf)
			out := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output should contain %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}

	var buf bytes.Buffer
	DisplayQuietResult(&buf, digits.MustParse("0042"))
	if buf.String() != "0042\n" {
		t.Errorf("quiet output = %q", buf.String())
	}
}

func TestPrintVerification(t *testing.T) {
	defer ui.SetCurrentTheme(ui.GetCurrentTheme())
	ui.SetCurrentTheme(ui.NoColorTheme)

	report := verify.Report{Entries: []verify.Entry{
		{Target: verify.Target{Name: "standard"}, Status: verify.StatusOK, Digest: 0xabc},
		{Target: verify.Target{Name: "scatter"}, Status: verify.StatusFail},
		{Target: verify.Target{Name: "async"}, Status: verify.StatusError, Err: errors.New("boom")},
	}}
	var buf bytes.Buffer
	PrintVerification(report, &buf)
	out := buf.String()
	for _, want := range []string{
		"[OK] standard matches sequential result (0000000000000abc)",
		"[FAIL] scatter differs",
		"[ERROR] async could not be verified: boom",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
}

func TestPrintExecution(t *testing.T) {
	defer ui.SetCurrentTheme(ui.GetCurrentTheme())
	ui.SetCurrentTheme(ui.NoColorTheme)

	var buf bytes.Buffer
	cfg := config.AppConfig{N1: 10, N2: 20, Processes: 4, Transport: config.TransportLocal, Timeout: time.Minute}
	PrintExecutionConfig(cfg, &buf)
	PrintExecutionMode(config.ModeAll, []string{"standard", "scatter"}, &buf)
	PrintExecutionMode(config.ModeAsync, []string{"async"}, &buf)
	out := buf.String()
	for _, want := range []string{"Adding 10-digit and 20-digit numbers over 4 ranks", "All strategies (standard, scatter)", "Single run of the async strategy"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
}

func TestDisplayProgress(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()

	mockS := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner { return mockS }

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan addition.ProgressUpdate)
	var buf bytes.Buffer

	go func() {
		progressChan <- addition.ProgressUpdate{Index: 0, Value: 0.5}
		progressChan <- addition.ProgressUpdate{Index: 0, Value: 1.0}
		close(progressChan)
	}()

	DisplayProgress(&wg, progressChan, 1, &buf)
	wg.Wait()

	if !mockS.started || !mockS.stopped {
		t.Error("spinner should have started and stopped")
	}
	if !strings.Contains(buf.String(), "100.00%") {
		t.Errorf("final line should show completion, got %q", buf.String())
	}
}

func TestDisplayProgress_NoRuns(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan addition.ProgressUpdate)
	close(progressChan)
	DisplayProgress(&wg, progressChan, 0, io.Discard)
	wg.Wait()
}
