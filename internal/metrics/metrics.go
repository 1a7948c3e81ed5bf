package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed pipeline runs.
	OutcomeSuccess = "success"
	// OutcomeError labels aborted runs (empty upstream, storage failures).
	OutcomeError = "error"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	runDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "curator",
			Name:      "run_seconds",
			Help:      "Pipeline run duration in seconds.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	labelFilesSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "label_files_skipped_total",
			Help:      "Label filenames dropped because they could not be parsed.",
		},
	)

	syntheticShortfallTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "synthetic_shortfall_total",
			Help:      "Synthetic normal windows the sampler failed to place before exhausting its retry budget.",
		},
	)

	emptyTelemetryWindowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "empty_telemetry_windows_total",
			Help:      "Event windows whose time range contained no telemetry samples.",
		},
	)

	windowsBuiltTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "curator",
			Name:      "windows_built_total",
			Help:      "Event windows built, partitioned by origin.",
		},
		[]string{"origin"},
	)
)

// Register attaches curator collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		runsTotal,
		runDurationSeconds,
		labelFilesSkippedTotal,
		syntheticShortfallTotal,
		emptyTelemetryWindowsTotal,
		windowsBuiltTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRun records a run's duration and outcome. Unknown outcome
// strings count as errors so the success series only ever reflects
// completed runs.
func ObserveRun(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeSuccess && label != OutcomeError {
		label = OutcomeError
	}
	runsTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	runDurationSeconds.Observe(duration.Seconds())
}

func AddLabelFilesSkipped(n int) {
	if n > 0 {
		labelFilesSkippedTotal.Add(float64(n))
	}
}

func AddSyntheticShortfall(n int) {
	if n > 0 {
		syntheticShortfallTotal.Add(float64(n))
	}
}

func AddEmptyTelemetryWindows(n int) {
	if n > 0 {
		emptyTelemetryWindowsTotal.Add(float64(n))
	}
}

func AddWindowsBuilt(origin string, n int) {
	if n > 0 {
		windowsBuiltTotal.WithLabelValues(origin).Add(float64(n))
	}
}
