package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/swiftpay/swiftpay/internal/domain"
)

// Metrics holds the ledger's Prometheus collectors.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	volume     *prometheus.CounterVec
}

// NewMetrics registers the ledger collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swiftpay",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "swiftpay",
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Time spent applying ledger operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		volume: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swiftpay",
			Subsystem: "ledger",
			Name:      "volume_total",
			Help:      "Sum of committed transaction amounts by type.",
		}, []string{"type"}),
	}
}

func (m *Metrics) observe(op, outcome string, elapsed time.Duration, records []domain.Transaction) {
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	for _, t := range records {
		m.volume.WithLabelValues(string(t.Type)).Add(t.Amount.InexactFloat64())
	}
}
