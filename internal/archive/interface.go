package archive

import "github.com/peladaclub/rachao/internal/match"

// Archive receives finished matches and end-of-session reports. Once a
// match is handed over it is out of the session engine's hands.
type Archive interface {
	SaveMatch(m *match.Match) error
	SaveReport(r *match.SessionReport) error
	Close()
}
