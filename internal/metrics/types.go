package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	SessionsStarted  prometheus.Counter
	MatchesCompleted prometheus.Counter
	RotationDuration prometheus.Histogram
	ClockStalls      prometheus.Counter
	ClockFallbacks   prometheus.Counter
	SnapshotSaves    prometheus.Counter
	SnapshotFailures prometheus.Counter
	ArchivePublished prometheus.Counter
	ArchiveFailed    prometheus.Counter
	NotifSent        prometheus.Counter
	NotifFailed      prometheus.Counter
	StartupSeconds   prometheus.Gauge
}
