package bank

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opInsert      = "insert"
	opBulkLoad    = "bulk_load"
	opRemove      = "remove"
	opRemoveEntry = "remove_entry"
)

// Metrics holds the Prometheus collectors for a bank.
type Metrics struct {
	// Records is the number of stored lists.
	Records prometheus.Gauge

	// Archetypes is the number of stored labels.
	Archetypes prometheus.Gauge

	// Mutations counts mutation attempts.
	// Labels: op (insert, bulk_load, remove, remove_entry), result (success, rejected)
	Mutations *prometheus.CounterVec
}

// NewMetrics creates bank collectors and registers them with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Records: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "archetype",
			Subsystem: "bank",
			Name:      "records",
			Help:      "Number of labelled lists in the knowledge bank",
		}),
		Archetypes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "archetype",
			Subsystem: "bank",
			Name:      "archetypes",
			Help:      "Number of archetypes in the knowledge bank",
		}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archetype",
			Subsystem: "bank",
			Name:      "mutations_total",
			Help:      "Total number of knowledge bank mutation attempts",
		}, []string{"op", "result"}),
	}
}

func (m *Metrics) observe(s *Snapshot) {
	if m == nil {
		return
	}
	m.Records.Set(float64(s.Len()))
	m.Archetypes.Set(float64(len(s.order)))
}

func (m *Metrics) recordMutation(op string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "rejected"
	}
	m.Mutations.WithLabelValues(op, result).Inc()
}
