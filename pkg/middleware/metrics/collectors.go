package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hooks_dispatch_total", Help: "webhook dispatches by routing key and outcome"},
		[]string{"model", "event", "outcome"},
	)

	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hooks_jobs_total", Help: "hook jobs by task and status"},
		[]string{"task", "status"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hooks_job_duration_seconds",
			Help:    "hook job run time.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "hooks_queue_depth", Help: "jobs waiting in the in-process queue"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsToUri,
		totalHttpRequests,
		dispatchTotal,
		jobsTotal,
		jobDuration,
		queueDepth,
	)
}
