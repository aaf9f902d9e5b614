package sql

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports statement and transaction statistics to Prometheus.
type Metrics struct {
	statements *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	slow       prometheus.Counter
	txs        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		statements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialgraph",
			Name:      "sql_statements_total",
			Help:      "Total number of SQL statements executed.",
		}, []string{"kind", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "socialgraph",
			Name:      "sql_statement_duration_seconds",
			Help:      "Duration of SQL statements in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		slow: f.NewCounter(prometheus.CounterOpts{
			Namespace: "socialgraph",
			Name:      "sql_slow_statements_total",
			Help:      "Total number of statements exceeding the slow threshold.",
		}),
		txs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialgraph",
			Name:      "sql_transactions_total",
			Help:      "Total number of finished transactions.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observe(kind string, d time.Duration, err error, slow bool) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.statements.WithLabelValues(kind, status).Inc()
	m.duration.WithLabelValues(kind).Observe(d.Seconds())
	if slow {
		m.slow.Inc()
	}
}

func (m *Metrics) observeTx(commit bool) {
	outcome := "rollback"
	if commit {
		outcome = "commit"
	}
	m.txs.WithLabelValues(outcome).Inc()
}
