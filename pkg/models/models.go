/*
Package models defines the JSON documents the adder produces.

They are used for:
- **HTTP API**: the bodies returned by the server endpoints.
- **Scripted runs**: the summary printed by the CLI with --json.
*/
package models

// AddResponse is the body of a successful or failed /add request.
type AddResponse struct {
	Strategy  string `json:"strategy"`            // Strategy name, or "sequential".
	Processes int    `json:"processes"`           // Ranks the addition ran on.
	Digits    int    `json:"digits"`              // Width N of the addition.
	Sum       string `json:"sum,omitempty"`       // Sum, most-significant digit first.
	Overflow  int    `json:"overflow"`            // Carry out of the top digit (0 or 1).
	Verified  bool   `json:"verified"`            // Whether the sum equals the sequential one.
	Duration  string `json:"duration"`            // Wall time of the strategy run.
	Error     string `json:"error,omitempty"`     // Error message, if the run failed.
}

// StrategiesResponse lists the strategies by selector.
type StrategiesResponse struct {
	Strategies []StrategyInfo `json:"strategies"`
}

// StrategyInfo describes one registered strategy.
type StrategyInfo struct {
	Name     string `json:"name"`
	Selector int    `json:"selector"`
	OutputID string `json:"output_id"`
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`             // Short status text.
	Message string `json:"message,omitempty"` // Descriptive message.
}

// RunSummary is the --json rendering of one CLI invocation.
type RunSummary struct {
	Mode         string            `json:"mode"`
	N1           int               `json:"n1"`
	N2           int               `json:"n2"`
	Processes    int               `json:"processes"`
	Runs         []RunEntry        `json:"runs"`
	Verification []VerificationRow `json:"verification,omitempty"`
	CrossCheck   string            `json:"cross_check,omitempty"`
	Sum          string            `json:"sum,omitempty"`
	ExitCode     int               `json:"exit_code"`
	Error        string            `json:"error,omitempty"`
}

// RunEntry is one timed run of a RunSummary.
type RunEntry struct {
	Name     string `json:"name"`
	OutputID string `json:"output_id"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// VerificationRow is one verification line of a RunSummary.
type VerificationRow struct {
	Strategy string `json:"strategy"`
	Status   string `json:"status"`
	Digest   string `json:"digest,omitempty"`
	Error    string `json:"error,omitempty"`
}
