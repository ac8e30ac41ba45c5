package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSessionsStarted()
	IncMatchesCompleted()
	ObserveRotationDuration(seconds float64)
	IncClockStalls()
	IncClockFallbacks()
	IncSnapshotSaves()
	IncSnapshotFailures()
	IncArchivePublished()
	IncArchiveFailed()
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(seconds float64)
}

// MetricsStore persists coarse operational counters across restarts,
// independent of the Prometheus registry.
type MetricsStore interface {
	Increment(key string)
	Add(key string, delta int)
	GetAll() (map[string]int, error)
}
