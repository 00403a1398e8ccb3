// Prometheus metrics for the authorization system.
//
// Categories:
//   - Access decisions: allow/deny/observe counts per key kind
//   - Observed denials: would-have-denied counts, the key rollout signal
//   - Effective-authz rebuilds: session cache misses by trigger
//   - Override edits: admin changes to per-user diffs

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision outcome labels.
const (
	DecisionAllow   = "allow"
	DecisionDeny    = "deny"
	DecisionObserve = "observe"
)

var (
	// accessDecisionsTotal counts access-check outcomes.
	accessDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_access_decisions_total",
			Help: "Total access-check decisions by key kind, role, and outcome",
		},
		[]string{"kind", "role", "decision"},
	)

	// observedDenialsTotal specifically tracks failed checks that passed
	// because enforcement was inactive for the key. A nonzero rate here
	// is the signal watched during staged rollout.
	observedDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_observed_denials_total",
			Help: "Failed access checks allowed through because enforcement was inactive",
		},
		[]string{"kind"},
	)

	// effectiveRebuildsTotal counts effective-authz recomputations by
	// trigger: "missing" (no cached value), "legacy" (stale session
	// shape), or "refresh" (explicit refresh endpoint).
	effectiveRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_effective_rebuilds_total",
			Help: "Effective-authz recomputations by trigger",
		},
		[]string{"trigger"},
	)

	// sessionCacheTotal counts session-cached effective-authz lookups.
	sessionCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_session_cache_total",
			Help: "Session effective-authz cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// overrideEditsTotal counts admin edits to per-user overrides.
	overrideEditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_override_edits_total",
			Help: "Total admin edits to per-user authz overrides",
		},
	)
)

// RecordDecision records an access-check outcome.
func RecordDecision(kind Kind, role, decision string) {
	accessDecisionsTotal.WithLabelValues(string(kind), role, decision).Inc()
	if decision == DecisionObserve {
		observedDenialsTotal.WithLabelValues(string(kind)).Inc()
	}
}

// RecordEffectiveRebuild records an effective-authz recomputation.
func RecordEffectiveRebuild(trigger string) {
	effectiveRebuildsTotal.WithLabelValues(trigger).Inc()
}

// RecordSessionCacheHit records a session cache hit.
func RecordSessionCacheHit() {
	sessionCacheTotal.WithLabelValues("hit").Inc()
}

// RecordSessionCacheMiss records a session cache miss.
func RecordSessionCacheMiss() {
	sessionCacheTotal.WithLabelValues("miss").Inc()
}

// RecordOverrideEdit records an admin edit to a user's override.
func RecordOverrideEdit() {
	overrideEditsTotal.Inc()
}
