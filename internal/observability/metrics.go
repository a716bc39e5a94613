package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	schedulerRunsTotal           prometheus.Counter
	schedulerCompetitionsTotal   prometheus.Counter
	schedulerFailuresTotal       prometheus.Counter
	winnersRecordedTotal         prometheus.Counter
	moderationMailsTotal         *prometheus.CounterVec
	submissionsCreatedTotal      *prometheus.CounterVec
	evaluationsRecordedTotal     prometheus.Counter
	duplicateEvaluationsRejected prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API and
// the winner scheduler.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skilins_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skilins_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skilins_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		schedulerRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skilins_winner_scheduler_runs_total",
			Help: "Total number of winner determination passes started.",
		})

		schedulerCompetitionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skilins_winner_scheduler_competitions_total",
			Help: "Total number of competitions processed by the scheduler.",
		})

		schedulerFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skilins_winner_scheduler_failures_total",
			Help: "Total number of per-competition failures during winner determination.",
		})

		winnersRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skilins_winners_recorded_total",
			Help: "Total number of winner rows persisted.",
		})

		moderationMailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skilins_moderation_mails_total",
			Help: "Total number of moderation notification mails attempted.",
		}, []string{"outcome", "result"})

		submissionsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skilins_submissions_created_total",
			Help: "Total number of competition submissions accepted.",
		}, []string{"type"})

		evaluationsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skilins_evaluations_recorded_total",
			Help: "Total number of judge evaluations stored.",
		})

		duplicateEvaluationsRejected = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skilins_duplicate_evaluations_rejected_total",
			Help: "Total number of evaluations rejected by the once-per-judge guard.",
		})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			schedulerRunsTotal, schedulerCompetitionsTotal, schedulerFailuresTotal,
			winnersRecordedTotal, moderationMailsTotal, submissionsCreatedTotal,
			evaluationsRecordedTotal, duplicateEvaluationsRejected,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SchedulerRuns exposes the counter for scheduler passes.
func SchedulerRuns() prometheus.Counter {
	RegisterMetrics()
	return schedulerRunsTotal
}

// SchedulerCompetitions exposes the counter for processed competitions.
func SchedulerCompetitions() prometheus.Counter {
	RegisterMetrics()
	return schedulerCompetitionsTotal
}

// SchedulerFailures exposes the counter for per-competition failures.
func SchedulerFailures() prometheus.Counter {
	RegisterMetrics()
	return schedulerFailuresTotal
}

// WinnersRecorded exposes the counter for persisted winner rows.
func WinnersRecorded() prometheus.Counter {
	RegisterMetrics()
	return winnersRecordedTotal
}

// ModerationMails exposes the counter for moderation mail attempts.
func ModerationMails() *prometheus.CounterVec {
	RegisterMetrics()
	return moderationMailsTotal
}

// SubmissionsCreated exposes the counter for accepted submissions.
func SubmissionsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsCreatedTotal
}

// EvaluationsRecorded exposes the counter for stored evaluations.
func EvaluationsRecorded() prometheus.Counter {
	RegisterMetrics()
	return evaluationsRecordedTotal
}

// DuplicateEvaluationsRejected exposes the counter for rejected duplicates.
func DuplicateEvaluationsRejected() prometheus.Counter {
	RegisterMetrics()
	return duplicateEvaluationsRejected
}
