package factory

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts records flowing through factories, labelled by factory name.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Generated *prometheus.CounterVec
	Persisted *prometheus.CounterVec
	Failures  *prometheus.CounterVec
}

// NewMetrics creates the factory counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixture",
			Name:      "records_generated_total",
			Help:      "Records produced by factory definitions.",
		}, []string{"factory"}),
		Persisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixture",
			Name:      "records_persisted_total",
			Help:      "Records returned by a backend after a successful create.",
		}, []string{"factory"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixture",
			Name:      "persist_failures_total",
			Help:      "Backend calls that failed during create.",
		}, []string{"factory"}),
	}

	for _, c := range []prometheus.Collector{m.Generated, m.Persisted, m.Failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) generated(name string, n int) {
	if m == nil {
		return
	}
	m.Generated.WithLabelValues(name).Add(float64(n))
}

func (m *Metrics) persisted(name string, n int) {
	if m == nil {
		return
	}
	m.Persisted.WithLabelValues(name).Add(float64(n))
}

func (m *Metrics) failed(name string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(name).Inc()
}
