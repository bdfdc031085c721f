package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "paperrag_http_requests_total",
	Help: "Total number of requests labelled by route and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "paperrag_jobs_in_queue",
	Help: "Number of tasks waiting for a worker",
})

var dispatcherSignalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "paperrag_dispatcher_signals_total",
	Help: "How often the dispatcher has been signalled to start a worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "paperrag_active_workers",
	Help: "Number of active workers",
})

var rejectedJobs = promauto.NewCounter(prometheus.CounterOpts{
	Name: "paperrag_jobs_rejected_total",
	Help: "Tasks refused because the queue was full",
})

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "paperrag_response_cache_lookups_total",
	Help: "Response cache lookups labelled by purpose and result",
}, []string{"purpose", "result"})

var jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "paperrag_job_duration_seconds",
	Help:    "Time from worker pickup to terminal state.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120, 300},
}, []string{"type", "status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "paperrag_dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses (the MCP endpoint) working through the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func IncrementRejectedJobs() {
	rejectedJobs.Inc()
}

func CaptureCacheLookup(purpose string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(purpose, result).Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(jobType string, status string, timeElapsed time.Duration) {
	jobDuration.WithLabelValues(jobType, status).Observe(timeElapsed.Seconds())
}
