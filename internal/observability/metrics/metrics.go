package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReminderMetrics exposes counters/histograms for the reminder dispatch loop.
type ReminderMetrics struct {
	pollCycles   prometheus.Counter
	dispatched   *prometheus.CounterVec
	pollDuration prometheus.Histogram
}

func NewReminderMetrics(reg prometheus.Registerer) *ReminderMetrics {
	m := &ReminderMetrics{
		pollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medscheduler",
			Subsystem: "reminders",
			Name:      "poll_cycles_total",
			Help:      "Total dispatch loop poll cycles",
		}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medscheduler",
			Subsystem: "reminders",
			Name:      "dispatched_total",
			Help:      "Reminder dispatch attempts by outcome",
		}, []string{"outcome"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medscheduler",
			Subsystem: "reminders",
			Name:      "poll_duration_seconds",
			Help:      "Duration of one dispatch loop poll cycle",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.pollCycles, m.dispatched, m.pollDuration)
	return m
}

func (m *ReminderMetrics) ObservePollCycle(seconds float64) {
	if m == nil {
		return
	}
	m.pollCycles.Inc()
	m.pollDuration.Observe(seconds)
}

func (m *ReminderMetrics) ObserveDispatch(outcome string) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(outcome).Inc()
}

// ContentMetrics tracks generated content by kind and by which path produced it.
type ContentMetrics struct {
	generated *prometheus.CounterVec
}

func NewContentMetrics(reg prometheus.Registerer) *ContentMetrics {
	m := &ContentMetrics{
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medscheduler",
			Subsystem: "content",
			Name:      "generated_total",
			Help:      "Generated content by kind and source (llm or template)",
		}, []string{"kind", "source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.generated)
	return m
}

func (m *ContentMetrics) ObserveGenerated(kind, source string) {
	if m == nil {
		return
	}
	m.generated.WithLabelValues(kind, source).Inc()
}
