package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the staking pool.
type Metrics struct {
	// --- Pool operations ---
	OpsApplied  *prometheus.CounterVec
	OpsRejected *prometheus.CounterVec
	OpDuration  *prometheus.HistogramVec
	OpSequence  prometheus.Gauge

	// --- Pool aggregate ---
	PoolTotalAmount prometheus.Gauge
	PoolStakers     prometheus.Gauge
	PoolStakes      prometheus.Gauge
	TreasuryBalance prometheus.Gauge
	FeesCharged     prometheus.Counter

	// --- Record channel ---
	RecordDrops prometheus.Counter

	// --- Ingestion ---
	CommandsReceived *prometheus.CounterVec
	CommandsInvalid  *prometheus.CounterVec
	PublishDrops     prometheus.Counter

	// --- Audit ---
	AuditRowsWritten prometheus.Counter
	AuditBatchDur    prometheus.Histogram
	AuditErrors      *prometheus.CounterVec

	// --- HTTP API ---
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	opBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005,
		0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	httpBuckets := []float64{
		0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005,
		0.01, 0.025, 0.05, 0.1, 0.25, 0.5,
	}

	return &Metrics{
		OpsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stake_ops_applied_total",
			Help: "Pool operations committed",
		}, []string{"op"}),

		OpsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stake_ops_rejected_total",
			Help: "Pool operations rejected by validation",
		}, []string{"op", "reason"}),

		OpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stake_op_duration_seconds",
			Help:    "Time to apply a single pool operation",
			Buckets: opBuckets,
		}, []string{"op"}),

		OpSequence: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "stake_op_sequence",
			Help: "Current operation sequence number",
		}),

		PoolTotalAmount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "stake_pool_total_amount_e8s",
			Help: "Total locked amount across all stakes",
		}),

		PoolStakers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "stake_pool_stakers",
			Help: "Number of identities with a stake book",
		}),

		PoolStakes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "stake_pool_stakes",
			Help: "Number of active stake records",
		}),

		TreasuryBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "stake_treasury_balance_e8s",
			Help: "Simulated settlement balance",
		}),

		FeesCharged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stake_fees_charged_e8s_total",
			Help: "Total withdrawal fees charged",
		}),

		RecordDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stake_record_drops_total",
			Help: "Operation records dropped on full channel",
		}),

		CommandsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stake_commands_received_total",
			Help: "Commands received from NATS",
		}, []string{"command"}),

		CommandsInvalid: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stake_commands_invalid_total",
			Help: "Commands dropped as unparseable",
		}, []string{"command"}),

		PublishDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stake_publish_drops_total",
			Help: "Outbound events dropped on full channel",
		}),

		AuditRowsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stake_audit_rows_written_total",
			Help: "Audit rows written to Postgres",
		}),

		AuditBatchDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "stake_audit_batch_duration_seconds",
			Help:    "Postgres audit batch write duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		AuditErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stake_audit_errors_total",
			Help: "Audit write failures by stage",
		}, []string{"stage"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stake_http_requests_total",
			Help: "HTTP API requests",
		}, []string{"route", "code"}),

		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stake_http_request_duration_seconds",
			Help:    "HTTP API request duration",
			Buckets: httpBuckets,
		}, []string{"route"}),
	}
}
