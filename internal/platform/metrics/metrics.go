package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec

	EntriesRecorded  prometheus.Counter
	EntriesRejected  prometheus.Counter
	EntriesValidated prometheus.Counter
	EntriesRemoved   prometheus.Counter

	LoginSuccess      prometheus.Counter
	LoginFailure      prometheus.Counter
	LockoutsTriggered prometheus.Counter

	MembersCreated prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clubdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		EntriesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubdesk_entries_recorded_total",
			Help: "Check-in entries successfully recorded.",
		}),
		EntriesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubdesk_entries_rejected_total",
			Help: "Check-in attempts rejected by the cool-down window.",
		}),
		EntriesValidated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubdesk_entries_validated_total",
			Help: "Entries transitioned to validated by an admin.",
		}),
		EntriesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubdesk_entries_removed_total",
			Help: "Entries deleted by an admin.",
		}),
		LoginSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubdesk_login_success_total",
			Help: "Successful logins.",
		}),
		LoginFailure: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubdesk_login_failure_total",
			Help: "Failed login attempts.",
		}),
		LockoutsTriggered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubdesk_login_lockouts_total",
			Help: "Logins refused because the account was locked out.",
		}),
		MembersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubdesk_members_created_total",
			Help: "Members registered in the system.",
		}),
	}
}
