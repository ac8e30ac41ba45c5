package http

import (
	"net/http"

	"github.com/peladaclub/rachao/internal/config"
	"github.com/peladaclub/rachao/internal/metrics"
	"github.com/peladaclub/rachao/internal/roster"
	"github.com/peladaclub/rachao/internal/session"
)

type Server struct {
	Engine         *session.Engine
	Roster         roster.Store
	Metrics        metrics.Metrics
	MetricsStore   metrics.MetricsStore
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}
