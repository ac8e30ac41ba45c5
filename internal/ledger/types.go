package ledger

// EventType classifies an in-match action.
type EventType string

const (
	EventGoal         EventType = "goal"
	EventOwnGoal      EventType = "ownGoal"
	EventAssist       EventType = "assist"
	EventDribble      EventType = "dribble"
	EventTackle       EventType = "tackle"
	EventSave         EventType = "save"
	EventFailure      EventType = "failure"
	EventSubstitution EventType = "substitution"
)

// TeamKey identifies one side of the active pair.
type TeamKey string

const (
	TeamA TeamKey = "A"
	TeamB TeamKey = "B"
)

// Opponent returns the other side.
func (k TeamKey) Opponent() TeamKey {
	if k == TeamA {
		return TeamB
	}
	return TeamA
}

// MatchEvent is one immutable entry on the match timeline.
type MatchEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Minute     int       `json:"minute"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	TeamKey    TeamKey   `json:"team_key"`
	Extra      string    `json:"extra,omitempty"`
}

// Action is the caller-supplied part of an event, before the ledger assigns
// an id and minute stamp.
type Action struct {
	Type       EventType `json:"type"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name,omitempty"`
	TeamKey    TeamKey   `json:"team_key"`
	Extra      string    `json:"extra,omitempty"`
}

// PlayerStats are the per-player counters for a single match.
type PlayerStats struct {
	Goals    int `json:"goals"`
	OwnGoals int `json:"own_goals"`
	Assists  int `json:"assists"`
	Dribbles int `json:"dribbles"`
	Tackles  int `json:"tackles"`
	Saves    int `json:"saves"`
	Failures int `json:"failures"`
}

// Score is the running scoreline of the active pair.
type Score struct {
	A int `json:"a"`
	B int `json:"b"`
}
