package session

import (
	"errors"

	"github.com/peladaclub/rachao/internal/roster"
)

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseConfig      Phase = "config"
	PhaseManualSetup Phase = "manual_setup"
	PhasePreGame     Phase = "pre_game"
	PhaseInGame      Phase = "in_game"
	PhasePostGame    Phase = "post_game"
)

// TieBreakerRule selects which teams occupy the active pair after a draw.
type TieBreakerRule string

const (
	// TieWinnerStays keeps slot A's occupant and pulls a fresh challenger
	// into slot B.
	TieWinnerStays TieBreakerRule = "winner-stays"
	// TieBothExit queues both competing teams and promotes the next two.
	TieBothExit TieBreakerRule = "both-exit"
	// TieChallengerStays promotes slot B into slot A and pulls a fresh
	// challenger; the displaced incumbent re-enters the queue.
	TieChallengerStays TieBreakerRule = "challenger-stays-on-draw"
)

// Config holds the session parameters fixed at setup time.
type Config struct {
	NumberOfTeams        int             `json:"number_of_teams"`
	PlayersPerTeam       int             `json:"players_per_team"`
	DrawType             roster.DrawType `json:"draw_type"`
	MatchDurationSeconds int             `json:"match_duration_seconds"`
	StreakLimit          int             `json:"streak_limit"`
	TieBreakerRule       TieBreakerRule  `json:"tie_breaker_rule"`
	BenchPreference      []string        `json:"bench_preference,omitempty"`
}

// Streak tracks consecutive decisive wins by one roster identity.
type Streak struct {
	RosterID string `json:"roster_id"`
	Count    int    `json:"count"`
}

var (
	ErrTooFewPlayers   = errors.New("at least 2 players are required")
	ErrInvalidConfig   = errors.New("invalid session config")
	ErrWrongPhase      = errors.New("operation not allowed in current phase")
	ErrEmptyTeam       = errors.New("manual setup left an empty team")
	ErrNoChallenger    = errors.New("no challenger in slot B")
	ErrMatchesRecorded = errors.New("session has recorded matches, end it instead")
	ErrUnknownPlayer   = errors.New("player not found in roster")
)
