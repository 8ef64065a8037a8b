package addition

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────────────────────
// Channel Observer
// ─────────────────────────────────────────────────────────────────────────────

// ChannelObserver forwards progress to a channel, typically read by the CLI
// progress display.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer that sends updates to ch.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update sends without blocking; an update is dropped when the channel is full.
func (o *ChannelObserver) Update(index int, progress float64) {
	if o.channel == nil {
		return
	}
	if progress > 1.0 {
		progress = 1.0
	}
	select {
	case o.channel <- ProgressUpdate{Index: index, Value: progress}:
	default:
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging Observer
// ─────────────────────────────────────────────────────────────────────────────

// LoggingObserver logs progress at debug level, throttled to steps of at
// least threshold.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64
	lastLog   map[int]float64
	mu        sync.Mutex
}

// NewLoggingObserver creates a throttled logging observer. A non-positive
// threshold defaults to 0.25.
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	if threshold <= 0 {
		threshold = 0.25
	}
	return &LoggingObserver{
		logger:    logger,
		threshold: threshold,
		lastLog:   make(map[int]float64),
	}
}

// Update logs the first update, completion, and every threshold step.
func (o *LoggingObserver) Update(index int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	last, seen := o.lastLog[index]
	if !seen || progress >= 1.0 || progress-last >= o.threshold {
		o.logger.Debug().
			Int("strategy_index", index).
			Float64("progress", progress).
			Str("percent", fmt.Sprintf("%.1f%%", progress*100)).
			Msg("collection progress")
		o.lastLog[index] = progress
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics Observer
// ─────────────────────────────────────────────────────────────────────────────

// MetricsObserver exports progress to a Prometheus gauge.
type MetricsObserver struct {
	gauge *prometheus.GaugeVec
}

// NewMetricsObserver creates an observer that sets the collection progress
// gauge.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{gauge: collectionProgress}
}

// Update sets the gauge for index.
func (o *MetricsObserver) Update(index int, progress float64) {
	o.gauge.WithLabelValues(strconv.Itoa(index)).Set(progress)
}

// ─────────────────────────────────────────────────────────────────────────────
// No-op Observer
// ─────────────────────────────────────────────────────────────────────────────

// NoOpObserver discards updates.
type NoOpObserver struct{}

// Update does nothing.
func (NoOpObserver) Update(int, float64) {}
