// Package metrics holds the domain counters shared by services and clients.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeCached  = "cached"
	OutcomeSkipped = "skipped"
)

var (
	HabitRecordsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_records_created_total",
			Help: "Habit records created, by habit type",
		},
		[]string{"habit_type"},
	)
	ExternalAPIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_api_requests_total",
			Help: "Calls to third-party APIs, by api and outcome",
		},
		[]string{"api", "outcome"},
	)
	LocalFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_local_fallbacks_total",
			Help: "Operations served by the local store because the remote store failed",
		},
		[]string{"operation"},
	)
	RemindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Push reminders, by outcome",
		},
		[]string{"outcome"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(HabitRecordsCreated, ExternalAPIRequests, LocalFallbacks, RemindersSent)
}
