// Package observability holds process-wide Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for leaderboard runs.
const (
	OutcomeSuccess    = "success"
	OutcomeReadError  = "read_error"
	OutcomeWriteError = "write_error"
	OutcomeSkipped    = "skipped"
)

var (
	recordsInsertedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octofit",
		Subsystem: "store",
		Name:      "records_inserted_total",
		Help:      "Number of records inserted, labeled by collection.",
	}, []string{"collection"})

	lastActivityGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "octofit",
		Subsystem: "store",
		Name:      "last_activity_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity written to the store.",
	})

	leaderboardRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octofit",
		Subsystem: "leaderboard",
		Name:      "rebuilds_total",
		Help:      "Leaderboard rebuild attempts grouped by outcome.",
	}, []string{"outcome"})

	leaderboardDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "octofit",
		Subsystem: "leaderboard",
		Name:      "rebuild_duration_seconds",
		Help:      "Time spent reading, aggregating and swapping the leaderboard.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	leaderboardEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "octofit",
		Subsystem: "leaderboard",
		Name:      "entries",
		Help:      "Number of entries written by the last successful rebuild.",
	})

	leaderboardLastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "octofit",
		Subsystem: "leaderboard",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful rebuild.",
	})
)

func init() {
	prometheus.MustRegister(
		recordsInsertedCounter,
		lastActivityGauge,
		leaderboardRuns,
		leaderboardDuration,
		leaderboardEntries,
		leaderboardLastSuccess,
	)
}

// RecordInserted counts a stored record.
func RecordInserted(collection string) {
	recordsInsertedCounter.WithLabelValues(collection).Inc()
}

// RecordActivityPersisted updates the activity watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastActivityGauge.Set(float64(ts.Unix()))
}

// RecordLeaderboardRun tracks the outcome of one rebuild.
func RecordLeaderboardRun(outcome string, entries int, elapsed time.Duration, finishedAt time.Time) {
	leaderboardRuns.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSkipped {
		return
	}
	leaderboardDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		leaderboardEntries.Set(float64(entries))
		leaderboardLastSuccess.Set(float64(finishedAt.Unix()))
	}
}
