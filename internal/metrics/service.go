package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_sessions_started_total",
			Help: "The total number of sessions started.",
		}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_matches_completed_total",
			Help: "The total number of matches completed and rotated.",
		}),
		RotationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pelada_rotation_duration_seconds",
			Help:    "The duration of post-match team rotation.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		ClockStalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_clock_stalls_total",
			Help: "The total number of detected match clock stalls.",
		}),
		ClockFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_clock_fallbacks_total",
			Help: "The total number of fallback timer activations.",
		}),
		SnapshotSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_session_snapshot_saves_total",
			Help: "The total number of session snapshots persisted.",
		}),
		SnapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_session_snapshot_failures_total",
			Help: "The total number of session snapshot writes that failed.",
		}),
		ArchivePublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_archive_published_total",
			Help: "The total number of matches and reports published to the archive.",
		}),
		ArchiveFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_archive_failed_total",
			Help: "The total number of archive publishes that failed.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pelada_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		StartupSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pelada_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SessionsStarted,
		s.MatchesCompleted,
		s.RotationDuration,
		s.ClockStalls,
		s.ClockFallbacks,
		s.SnapshotSaves,
		s.SnapshotFailures,
		s.ArchivePublished,
		s.ArchiveFailed,
		s.NotifSent,
		s.NotifFailed,
		s.StartupSeconds,
	)

	return s
}

func (s *Service) IncSessionsStarted()  { s.SessionsStarted.Inc() }
func (s *Service) IncMatchesCompleted() { s.MatchesCompleted.Inc() }

func (s *Service) ObserveRotationDuration(seconds float64) {
	s.RotationDuration.Observe(seconds)
}

func (s *Service) IncClockStalls()      { s.ClockStalls.Inc() }
func (s *Service) IncClockFallbacks()   { s.ClockFallbacks.Inc() }
func (s *Service) IncSnapshotSaves()    { s.SnapshotSaves.Inc() }
func (s *Service) IncSnapshotFailures() { s.SnapshotFailures.Inc() }
func (s *Service) IncArchivePublished() { s.ArchivePublished.Inc() }
func (s *Service) IncArchiveFailed()    { s.ArchiveFailed.Inc() }
func (s *Service) IncNotifSent()        { s.NotifSent.Inc() }
func (s *Service) IncNotifFailed()      { s.NotifFailed.Inc() }

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupSeconds.Set(seconds)
}
