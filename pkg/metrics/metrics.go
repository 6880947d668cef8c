package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docflow", Name: "transitions_total", Help: "Number of workflow transitions by track and resulting status."},
		[]string{"track", "to"},
	)
	TransitionConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "docflow", Name: "transition_conflicts_total", Help: "Number of transitions lost to a concurrent writer."},
	)
	AssignmentsFannedOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docflow", Name: "assignments_fanned_out_total", Help: "Number of per-recipient assignment records created by outcome."},
		[]string{"outcome"},
	)
	StatsCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docflow", Name: "stats_cache_total", Help: "Stats snapshot cache lookups by result."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docflow", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docflow", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(Transitions)
	reg.MustRegister(TransitionConflicts)
	reg.MustRegister(AssignmentsFannedOut)
	reg.MustRegister(StatsCache)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
