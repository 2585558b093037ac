// Package metrics defines the custom Prometheus metrics of the members
// service. Metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "members"

// Result labels shared by the auth counters.
const (
	ResultSuccess            = "success"
	ResultInvalidInput       = "invalid_input"
	ResultInvalidCredentials = "invalid_credentials"
	ResultError              = "error"
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignupsTotal counts signup submissions.
// Label:
//   - result: "success", "invalid_input" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup submissions, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login submissions.
// Label:
//   - result: "success", "invalid_input", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login submissions, by result.",
	},
	[]string{"result"},
)

// InjectionAttemptsTotal counts probe requests rejected because the
// identifier was not a plain string.
var InjectionAttemptsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "injection_attempts_total",
		Help:      "Total number of lookups rejected as query-operator injection attempts.",
	},
)

// MembersGateTotal counts members-area requests.
// Label:
//   - outcome: "allowed" or "redirected"
var MembersGateTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "members_gate_total",
		Help:      "Total number of members-area requests, by gate outcome.",
	},
	[]string{"outcome"},
)

// ── Hashing metrics ───────────────────────────────────────────────────────────

// PasswordHashDuration measures how long a single bcrypt operation takes on a
// hash pool worker.
// Label:
//   - op: "hash" or "compare"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt operations executed by the hash pool.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)
