// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Mining metrics
	MiningAttempts  *prometheus.CounterVec
	MiningDenials   *prometheus.CounterVec
	RewardIssued    prometheus.Counter
	RewardAmountSum prometheus.Counter

	// Transfer metrics
	TransfersSubmitted prometheus.Counter
	TransfersConfirmed prometheus.Counter
	TransfersFailed    prometheus.Counter
	TransferDuration   prometheus.Histogram

	// Upstream metrics
	RPCCallLatency      *prometheus.HistogramVec
	PriceLookupErrors   prometheus.Counter
	BalanceLookupErrors prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solay_backend"
	}

	return &Metrics{
		// Mining metrics
		MiningAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "attempts_total",
			Help:      "Total number of mining attempts by outcome",
		}, []string{"outcome"}),
		MiningDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "denials_total",
			Help:      "Total number of denied mining attempts by reason",
		}, []string{"reason"}),
		RewardIssued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "rewards_issued_total",
			Help:      "Total number of rewards issued",
		}),
		RewardAmountSum: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "reward_amount_sum",
			Help:      "Cumulative token amount issued as rewards",
		}),

		// Transfer metrics
		TransfersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "submitted_total",
			Help:      "Total number of transfer transactions submitted",
		}),
		TransfersConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "confirmed_total",
			Help:      "Total number of transfer transactions confirmed",
		}),
		TransfersFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "failed_total",
			Help:      "Total number of transfer transactions that failed or timed out",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "duration_seconds",
			Help:      "Submit-to-confirmation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),

		// Upstream metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		PriceLookupErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price",
			Name:      "lookup_errors_total",
			Help:      "Total number of failed price lookups",
		}),
		BalanceLookupErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "balance_lookup_errors_total",
			Help:      "Total number of failed token balance lookups",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// HTTP metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by path and status",
		}, []string{"path", "status"}),
		HTTPRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAttempt increments the mining attempts counter for the outcome.
func RecordAttempt(outcome string) {
	DefaultMetrics.MiningAttempts.WithLabelValues(outcome).Inc()
}

// RecordDenial increments the denial counter for the reason.
func RecordDenial(reason string) {
	DefaultMetrics.MiningDenials.WithLabelValues(reason).Inc()
}

// RecordReward records one issued reward of the given amount.
func RecordReward(amount float64) {
	DefaultMetrics.RewardIssued.Inc()
	DefaultMetrics.RewardAmountSum.Add(amount)
}

// RecordTransferSubmitted increments the submitted transfers counter.
func RecordTransferSubmitted() {
	DefaultMetrics.TransfersSubmitted.Inc()
}

// RecordTransferConfirmed records a confirmed transfer and its duration.
func RecordTransferConfirmed(elapsed time.Duration) {
	DefaultMetrics.TransfersConfirmed.Inc()
	DefaultMetrics.TransferDuration.Observe(elapsed.Seconds())
}

// RecordTransferFailed increments the failed transfers counter.
func RecordTransferFailed() {
	DefaultMetrics.TransfersFailed.Inc()
}

// RecordPriceLookupError increments the failed price lookups counter.
func RecordPriceLookupError() {
	DefaultMetrics.PriceLookupErrors.Inc()
}

// RecordBalanceLookupError increments the failed balance lookups counter.
func RecordBalanceLookupError() {
	DefaultMetrics.BalanceLookupErrors.Inc()
}
