// Package match holds the boundary types for finished matches and session
// reports. These records are immutable once handed to the archive.
package match

import (
	"sort"
	"strings"
	"time"

	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/roster"
)

// Result is a player's outcome in one match.
type Result string

const (
	ResultWin  Result = "win"
	ResultDraw Result = "draw"
	ResultLoss Result = "loss"
)

// Team is an ordered, deduplicated list of players.
type Team struct {
	Name    string          `json:"name"`
	Players []roster.Player `json:"players"`
}

// RosterID returns the team's identity for streak and queue comparisons:
// the sorted, joined set of player ids. Two teams are the same team iff
// this string matches, regardless of player order.
func (t Team) RosterID() string {
	ids := make([]string, 0, len(t.Players))
	for _, p := range t.Players {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "+")
}

// PlayerIDs returns the ids of the team's players in order.
func (t Team) PlayerIDs() []string {
	ids := make([]string, 0, len(t.Players))
	for _, p := range t.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// Has reports whether the team contains the player.
func (t Team) Has(playerID string) bool {
	for _, p := range t.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// Match is a finished match as handed to the archive.
type Match struct {
	ID               string                        `json:"id"`
	TeamA            Team                          `json:"team_a"`
	TeamB            Team                          `json:"team_b"`
	Score            ledger.Score                  `json:"score"`
	PlayerStats      map[string]ledger.PlayerStats `json:"player_stats"`
	Events           []ledger.MatchEvent           `json:"events"`
	ResultsPerPlayer map[string]Result             `json:"results_per_player"`
	StartedAt        time.Time                     `json:"started_at"`
	EndedAt          time.Time                     `json:"ended_at"`
}

// SessionPlayerStats aggregate a player's results across a whole session.
type SessionPlayerStats struct {
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
	ledger.PlayerStats
}

// SessionReport is the end-of-session summary handed to the archive.
type SessionReport struct {
	SessionKey string                        `json:"session_key"`
	Players    []roster.Player               `json:"players"`
	Matches    []*Match                      `json:"matches"`
	Stats      map[string]SessionPlayerStats `json:"stats"`
	EndedAt    time.Time                     `json:"ended_at"`
}
