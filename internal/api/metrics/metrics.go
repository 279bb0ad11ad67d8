// Package metrics defines and registers the custom Prometheus metrics of the
// session service. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register with the default Prometheus registry at package
// initialisation via promauto. HTTP request metrics come from the
// echoprometheus middleware wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "casedesk"

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts security audit events.
// Label:
//   - type: the audit event type (e.g. "login_success", "rate_limit_exceeded")
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of security audit events, by type.",
	},
	[]string{"type"},
)

// ── Rate limiter metrics ──────────────────────────────────────────────────────

// RateLimitDecisionsTotal counts limiter checks.
// Labels:
//   - backend: "memory" or "redis"
//   - result: "allowed", "denied" or "error"
var RateLimitDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_decisions_total",
		Help:      "Total number of rate limiter checks, by backend and result.",
	},
	[]string{"backend", "result"},
)

// RateLimitCheckDuration measures the latency of a single limiter check.
// Label:
//   - backend: "memory" or "redis"
var RateLimitCheckDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rate_limit_check_duration_seconds",
		Help:      "Duration of rate limiter checks.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	},
	[]string{"backend"},
)

// ── Session store metrics ─────────────────────────────────────────────────────

// StoreOperationsTotal counts key-value store calls.
// Labels:
//   - backend: "memory", "redis", "mongo" or "file"
//   - op: "get", "set" or "remove"
//   - result: "ok" or "error"
var StoreOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_operations_total",
		Help:      "Total number of session store operations, by backend, operation and result.",
	},
	[]string{"backend", "op", "result"},
)
