package capture

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

// Metrics counts what an Acquirer does with the frames of its source.
type Metrics struct {
	FramesRead      prometheus.Counter
	InvalidFrames   prometheus.Counter
	DiscardedFrames prometheus.Counter
	Placeholders    prometheus.Counter
	WarmupRetries   prometheus.Counter
}

// NewMetrics creates the counters for the source named name and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, name string) (*Metrics, error) {
	counter := func(metric, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "framekit",
			Subsystem:   "capture",
			Name:        metric,
			Help:        help,
			ConstLabels: prometheus.Labels{"source": name},
		})
	}
	m := &Metrics{
		FramesRead:      counter("frames_read_total", "Frames read from the source."),
		InvalidFrames:   counter("invalid_frames_total", "Empty frames seen after warm-up."),
		DiscardedFrames: counter("discarded_frames_total", "Frames dropped while recovering from an invalid frame."),
		Placeholders:    counter("placeholder_frames_total", "Placeholder frames substituted for invalid ones."),
		WarmupRetries:   counter("warmup_retries_total", "Empty frames read while waiting for the stream to start."),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	for _, c := range m.collectors() {
		err = multierr.Combine(err, reg.Register(c))
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.FramesRead, m.InvalidFrames, m.DiscardedFrames, m.Placeholders, m.WarmupRetries}
}

func noopMetrics() *Metrics {
	m, _ := NewMetrics(nil, "")
	return m
}
