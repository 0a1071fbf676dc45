package metrics

import (
	"runtime"
	"time"
)

// Run outcomes for RunsTotal.
const (
	RunSuccess = "success"
	RunError   = "error"
	RunEmpty   = "empty"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the size of an HTTP response body.
func (r *Registry) RecordResponseSize(method, path string, bytes int) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(bytes))
}

// RecordStage records the duration of one detection stage
// (extract, partition, fit, predict, score).
func (r *Registry) RecordStage(stage string, duration time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordSnapshot records a processed snapshot and its partition quality.
func (r *Registry) RecordSnapshot(phase string, nodes, communities int, modularity float64) {
	r.SnapshotsTotal.WithLabelValues(phase).Inc()
	r.SnapshotNodes.Observe(float64(nodes))
	r.SnapshotCommunities.Set(float64(communities))
	r.SnapshotModularity.Set(modularity)
}

// RecordRun records the outcome of a detection run.
func (r *Registry) RecordRun(status string) {
	r.RunsTotal.WithLabelValues(status).Inc()
}

// UpdateSystemMetrics refreshes the process gauges.
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// IncHTTPRequestsInFlight marks the start of an HTTP request.
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks the end of an HTTP request.
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}
