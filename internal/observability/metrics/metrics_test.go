package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestReminderMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReminderMetrics(reg)
	m.ObservePollCycle(0.12)
	m.ObserveDispatch("sent")
	m.ObserveDispatch("failed")
}

func TestContentMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewContentMetrics(reg)
	m.ObserveGenerated("confirmation", "llm")
	m.ObserveGenerated("summary", "template")
}

func TestMetricsNilSafe(t *testing.T) {
	var rm *ReminderMetrics
	rm.ObservePollCycle(0.1)
	rm.ObserveDispatch("sent")

	var cm *ContentMetrics
	cm.ObserveGenerated("reminder", "template")
}
