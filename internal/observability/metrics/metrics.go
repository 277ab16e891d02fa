package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConsultationMetrics exposes counters/histograms for parsing, generation and
// outcome persistence.
type ConsultationMetrics struct {
	rowsTotal          *prometheus.CounterVec
	generationTotal    *prometheus.CounterVec
	generationLatency  *prometheus.HistogramVec
	outcomeSavesTotal  *prometheus.CounterVec
	sessionEventsTotal *prometheus.CounterVec
}

func NewConsultationMetrics(reg prometheus.Registerer) *ConsultationMetrics {
	m := &ConsultationMetrics{
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eumlog",
			Subsystem: "intake",
			Name:      "rows_total",
			Help:      "Survey export rows seen by the parser",
		}, []string{"status"}),
		generationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eumlog",
			Subsystem: "generation",
			Name:      "attempts_total",
			Help:      "Generation service attempts by outcome",
		}, []string{"outcome"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eumlog",
			Subsystem: "generation",
			Name:      "latency_seconds",
			Help:      "Latency of a single generation attempt",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"outcome"}),
		outcomeSavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eumlog",
			Subsystem: "consultation",
			Name:      "outcome_saves_total",
			Help:      "Consultation outcome saves by status",
		}, []string{"status"}),
		sessionEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eumlog",
			Subsystem: "consultation",
			Name:      "session_events_total",
			Help:      "Interactive session lifecycle events",
		}, []string{"event"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.rowsTotal, m.generationTotal, m.generationLatency, m.outcomeSavesTotal, m.sessionEventsTotal)
	return m
}

// ObserveRows records one parse batch.
func (m *ConsultationMetrics) ObserveRows(parsed, dropped int) {
	if m == nil {
		return
	}
	m.rowsTotal.WithLabelValues("parsed").Add(float64(parsed))
	m.rowsTotal.WithLabelValues("dropped").Add(float64(dropped))
}

// ObserveGeneration records one attempt. Outcome is success, retry, rejected
// or exhausted.
func (m *ConsultationMetrics) ObserveGeneration(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.generationTotal.WithLabelValues(outcome).Inc()
	m.generationLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *ConsultationMetrics) ObserveOutcomeSave(status string) {
	if m == nil {
		return
	}
	m.outcomeSavesTotal.WithLabelValues(status).Inc()
}

func (m *ConsultationMetrics) ObserveSessionEvent(event string) {
	if m == nil {
		return
	}
	m.sessionEventsTotal.WithLabelValues(event).Inc()
}
