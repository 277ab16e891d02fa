package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name, label, value string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric
				}
			}
		}
	}
	return nil
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	return findMetric(t, reg, name, label, value).GetCounter().GetValue()
}

func TestConsultationMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConsultationMetrics(reg)

	m.ObserveRows(3, 2)
	m.ObserveRows(1, 0)
	m.ObserveGeneration("success", 0.4)
	m.ObserveGeneration("retry", 1.2)
	m.ObserveOutcomeSave("saved")
	m.ObserveSessionEvent("completed")

	if got := counterValue(t, reg, "eumlog_intake_rows_total", "status", "parsed"); got != 4 {
		t.Fatalf("expected 4 parsed rows, got %v", got)
	}
	if got := counterValue(t, reg, "eumlog_intake_rows_total", "status", "dropped"); got != 2 {
		t.Fatalf("expected 2 dropped rows, got %v", got)
	}
	if got := counterValue(t, reg, "eumlog_generation_attempts_total", "outcome", "retry"); got != 1 {
		t.Fatalf("expected 1 retry, got %v", got)
	}
	if got := counterValue(t, reg, "eumlog_consultation_outcome_saves_total", "status", "saved"); got != 1 {
		t.Fatalf("expected 1 save, got %v", got)
	}
	hist := findMetric(t, reg, "eumlog_generation_latency_seconds", "outcome", "success").GetHistogram()
	if hist.GetSampleCount() != 1 {
		t.Fatalf("expected 1 latency sample, got %d", hist.GetSampleCount())
	}
}

func TestConsultationMetricsDefaultRegistry(t *testing.T) {
	m := NewConsultationMetrics(nil)
	m.ObserveSessionEvent("started")
	prometheus.DefaultRegisterer.Unregister(m.rowsTotal)
	prometheus.DefaultRegisterer.Unregister(m.generationTotal)
	prometheus.DefaultRegisterer.Unregister(m.generationLatency)
	prometheus.DefaultRegisterer.Unregister(m.outcomeSavesTotal)
	prometheus.DefaultRegisterer.Unregister(m.sessionEventsTotal)
}

func TestConsultationMetricsNilSafe(t *testing.T) {
	var m *ConsultationMetrics
	m.ObserveRows(1, 1)
	m.ObserveGeneration("success", 0.1)
	m.ObserveOutcomeSave("failed")
	m.ObserveSessionEvent("started")
}
