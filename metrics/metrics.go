package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transcription outcomes.
const (
	OutcomePasted    = "pasted"
	OutcomeEmpty     = "empty"
	OutcomeNoAudio   = "no_audio"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// Clipboard restore results.
const (
	RestoreRestored = "restored"
	RestoreSkipped  = "skipped"
	RestoreFailed   = "failed"
)

var (
	transcriptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dictate_transcriptions_total",
		Help: "Recording sessions by outcome",
	}, []string{"outcome"})

	inferenceSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dictate_inference_seconds",
		Help:    "Model decode latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})

	recordingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dictate_recording_seconds",
		Help:    "Captured audio length in seconds",
		Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
	})

	modelLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dictate_model_loads_total",
		Help: "Model loads (cache misses)",
	})

	clipboardRestores = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dictate_clipboard_restores_total",
		Help: "Clipboard restore attempts by result",
	}, []string{"result"})
)

func RecordOutcome(outcome string) {
	transcriptions.WithLabelValues(outcome).Inc()
}

func RecordInference(d time.Duration) {
	inferenceSeconds.Observe(d.Seconds())
}

func RecordRecording(seconds float64) {
	recordingSeconds.Observe(seconds)
}

func RecordModelLoad() {
	modelLoads.Inc()
}

func RecordRestore(result string) {
	clipboardRestores.WithLabelValues(result).Inc()
}

// Handler serves the default registry for the -metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
