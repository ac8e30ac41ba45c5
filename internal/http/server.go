// Package http is the thin calling shell around the session engine. The
// JSON bodies here are a convenience surface for the CLI, not a stable
// wire format.
package http

import (
	"net/http"

	"github.com/peladaclub/rachao/internal/config"
	"github.com/peladaclub/rachao/internal/metrics"
	"github.com/peladaclub/rachao/internal/roster"
	"github.com/peladaclub/rachao/internal/session"
)

func NewServer(engine *session.Engine, rosterStore roster.Store, metricsSvc metrics.Metrics, metricsStore metrics.MetricsStore, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Engine:         engine,
		Roster:         rosterStore,
		Metrics:        metricsSvc,
		MetricsStore:   metricsStore,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/metrics/counters", Chain(s.CountersHandler(), paramsMiddleware))
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/players/seed", Chain(s.SeedPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/session/state", Chain(s.SessionStateHandler(), paramsMiddleware))
	s.Router.Handle("/session/configure", Chain(s.ConfigureHandler(), paramsMiddleware))
	s.Router.Handle("/session/start", Chain(s.StartSessionHandler(), paramsMiddleware))
	s.Router.Handle("/session/teams", Chain(s.AssignTeamsHandler(), paramsMiddleware))
	s.Router.Handle("/session/end", Chain(s.EndSessionHandler(), paramsMiddleware))
	s.Router.Handle("/session/abandon", Chain(s.AbandonHandler(), paramsMiddleware))
	s.Router.Handle("/match/start", Chain(s.StartMatchHandler(), paramsMiddleware))
	s.Router.Handle("/match/event", Chain(s.RecordEventHandler(), paramsMiddleware))
	s.Router.Handle("/match/undo", Chain(s.UndoEventHandler(), paramsMiddleware))
	s.Router.Handle("/match/pause", Chain(s.PauseClockHandler(), paramsMiddleware))
	s.Router.Handle("/match/resume", Chain(s.ResumeClockHandler(), paramsMiddleware))
	s.Router.Handle("/match/extend", Chain(s.ExtendClockHandler(), paramsMiddleware))
	s.Router.Handle("/match/complete", Chain(s.CompleteMatchHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
