package notifier

import (
	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/roster"
)

// Notifier defines a high-level interface for announcing session events.
// This decouples the rest of the application from the specific
// notification provider (e.g., Slack).
type Notifier interface {
	// When the draw is done and the first matchup is set
	SendSessionStarted(sessionKey string, teams []match.Team, bench []roster.Player, dryRun bool) error
	// For every finished match
	SendMatchResult(m *match.Match, dryRun bool) error
	// For the end-of-session summary
	SendSessionReport(r *match.SessionReport, dryRun bool) error
}
