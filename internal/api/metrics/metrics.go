// Package metrics defines the custom Prometheus metrics for the NannysLM
// platform API. It is the single source of truth for metric names, labels,
// and help strings. Request-level metrics (latency, status codes) come from
// the echoprometheus middleware; everything here is domain-specific.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nannyslm"

// RegistrationsTotal counts completed registrations.
// Labels:
//   - role: "admin", "client" or "nanny"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successful user registrations, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// BankAccountOpsTotal counts payout-record operations.
// Labels:
//   - operation: "create", "update" or "delete"
//   - result: "success" or "failure"
var BankAccountOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bank_account_ops_total",
		Help:      "Total number of bank-account write operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// StatsComputeDuration measures how long the statistics aggregation takes on
// a cache miss.
var StatsComputeDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "bank_stats_compute_duration_seconds",
		Help:      "Duration of the bank-account statistics aggregation.",
		Buckets:   prometheus.DefBuckets,
	},
)
