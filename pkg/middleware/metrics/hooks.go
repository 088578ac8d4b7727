package metrics

import "time"

// Dispatch outcomes.
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomePartial   = "partial"
	OutcomeFailed    = "failed"
)

func ObserveDispatch(model, event, outcome string) {
	dispatchTotal.WithLabelValues(model, event, outcome).Inc()
}

func ObserveJobQueued(task string, depth int) {
	jobsTotal.WithLabelValues(task, "queued").Inc()
	queueDepth.Set(float64(depth))
}

func ObserveJobRejected(task string) {
	jobsTotal.WithLabelValues(task, "rejected").Inc()
}

// ObserveJobForwarded counts jobs handed to a remote broker.
func ObserveJobForwarded(task string) {
	jobsTotal.WithLabelValues(task, "forwarded").Inc()
}

func ObserveJobFinished(task, status string, lat time.Duration, depth int) {
	jobsTotal.WithLabelValues(task, status).Inc()
	jobDuration.WithLabelValues(task).Observe(lat.Seconds())
	queueDepth.Set(float64(depth))
}
