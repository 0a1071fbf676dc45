package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDetectionMetrics() {
	r.SnapshotsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "dyncomm_snapshots_total",
			Help: "Total number of snapshots processed, by phase",
		},
		[]string{"phase"},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dyncomm_stage_duration_seconds",
			Help:    "Time spent in each detection stage",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
		},
		[]string{"stage"},
	)

	r.SnapshotModularity = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "dyncomm_snapshot_modularity",
			Help: "Modularity of the most recently processed snapshot",
		},
	)

	r.SnapshotCommunities = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "dyncomm_snapshot_communities",
			Help: "Number of communities in the most recently processed snapshot",
		},
	)

	r.SnapshotNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dyncomm_snapshot_nodes",
			Help:    "Number of nodes per processed snapshot",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "dyncomm_runs_total",
			Help: "Total number of detection runs, by outcome",
		},
		[]string{"status"},
	)
}
