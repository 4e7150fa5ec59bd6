package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what a generation run produced. Each run owns its registry
// so batch runs and tests never share counters.
type Metrics struct {
	registry *prometheus.Registry

	NotesSynthesized prometheus.Counter
	FilesWritten     *prometheus.CounterVec
	BytesWritten     prometheus.Counter
	EncodeFailures   *prometheus.CounterVec
	EncoderDisabled  prometheus.Gauge
	SynthDuration    prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Counters
		NotesSynthesized: factory.NewCounter(prometheus.CounterOpts{
			Name: "stringtone_notes_synthesized_total",
			Help: "Notes rendered to a sample buffer",
		}),
		FilesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stringtone_files_written_total",
			Help: "Audio files kept in the output directory by format",
		}, []string{"format"}),
		BytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "stringtone_bytes_written_total",
			Help: "Size of the audio files kept in the output directory",
		}),
		EncodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stringtone_encode_failures_total",
			Help: "Compressed encodes that failed by reason",
		}, []string{"reason"}),

		// Gauges
		EncoderDisabled: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stringtone_encoder_disabled",
			Help: "1 when the run fell back to uncompressed output",
		}),

		// Histograms
		SynthDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stringtone_synth_duration_seconds",
			Help:    "Time spent synthesizing one note",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile dumps the metrics in the text exposition format, suitable for
// the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
