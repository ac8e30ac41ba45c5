package session

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/roster"
)

// persistedState is the JSON shape written to the snapshot store. It is
// internal to the engine; the store only sees bytes.
type persistedState struct {
	Phase          Phase                                 `json:"phase"`
	Config         Config                                `json:"config"`
	SlotA          *match.Team                           `json:"slot_a,omitempty"`
	SlotB          *match.Team                           `json:"slot_b,omitempty"`
	Queue          []match.Team                          `json:"queue,omitempty"`
	Bench          []roster.Player                       `json:"bench,omitempty"`
	Players        []roster.Player                       `json:"players,omitempty"`
	Matches        []*match.Match                        `json:"matches,omitempty"`
	PendingArchive []string                              `json:"pending_archive,omitempty"`
	SessionStats   map[string]match.SessionPlayerStats   `json:"session_stats,omitempty"`
	Streak         Streak                                `json:"streak"`
	Live           *liveState                            `json:"live,omitempty"`
}

// liveState captures an in-flight match for crash recovery.
type liveState struct {
	Events           []ledger.MatchEvent           `json:"events"`
	Stats            map[string]ledger.PlayerStats `json:"stats,omitempty"`
	Score            *ledger.Score                 `json:"score,omitempty"`
	RemainingSeconds int                           `json:"remaining_seconds"`
	StartedAt        time.Time                     `json:"started_at"`
}

// scheduleSaveLocked arms the debounced persistence write. Rapid state
// changes coalesce into a single save.
func (e *Engine) scheduleSaveLocked() {
	if e.saveTimer != nil {
		e.saveTimer.Stop()
	}
	e.saveTimer = time.AfterFunc(e.saveDelay, e.persist)
}

func (e *Engine) cancelSaveLocked() {
	if e.saveTimer != nil {
		e.saveTimer.Stop()
		e.saveTimer = nil
	}
}

// persist writes the current state to the snapshot store. Best-effort: a
// failed write is logged and retried on the next state change.
func (e *Engine) persist() {
	e.mu.Lock()
	state := e.snapshotLocked()
	key := e.key
	e.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		e.metrics.IncSnapshotFailures()
		log.Error("Failed to encode session snapshot", "session", key, "error", err)
		return
	}
	if err := e.snapshots.Save(key, data); err != nil {
		e.metrics.IncSnapshotFailures()
		log.Warn("Failed to save session snapshot", "session", key, "error", err)
		return
	}
	e.metrics.IncSnapshotSaves()
}

func (e *Engine) snapshotLocked() persistedState {
	state := persistedState{
		Phase:        e.phase,
		Config:       e.cfg,
		SlotA:        copyTeam(e.slotA),
		SlotB:        copyTeam(e.slotB),
		Queue:        append([]match.Team(nil), e.queue...),
		Bench:        append([]roster.Player(nil), e.bench...),
		Players:      e.playerListLocked(),
		Matches:      e.matches,
		SessionStats: copySessionStats(e.sessionStats),
		Streak:       e.streak,
	}
	for _, m := range e.pendingArchive {
		state.PendingArchive = append(state.PendingArchive, m.ID)
	}
	if e.phase == PhaseInGame && e.ledger != nil {
		score := e.ledger.Score()
		state.Live = &liveState{
			Events:           e.ledger.Events(),
			Stats:            e.ledger.Stats(),
			Score:            &score,
			RemainingSeconds: e.clock.Remaining(),
			StartedAt:        e.matchStartedAt,
		}
	}
	return state
}

// Resume reloads a persisted session. Reports whether a usable snapshot
// was found; a corrupt snapshot is discarded and the engine stays in
// fresh config state.
func (e *Engine) Resume() (bool, error) {
	data, ok, err := e.snapshots.Load(e.key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil || !validPhase(state.Phase) {
		log.Warn("Corrupt session snapshot, starting fresh", "session", e.key, "error", err)
		if clearErr := e.snapshots.Clear(e.key); clearErr != nil {
			log.Warn("Failed to clear corrupt snapshot", "session", e.key, "error", clearErr)
		}
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.phase = state.Phase
	e.cfg = state.Config
	e.slotA = state.SlotA
	e.slotB = state.SlotB
	e.queue = state.Queue
	e.bench = state.Bench
	e.players = make(map[string]*roster.Player, len(state.Players))
	for _, p := range state.Players {
		clone := p.Clone()
		e.players[p.ID] = &clone
	}
	e.matches = state.Matches
	e.pendingArchive = nil
	pending := make(map[string]bool, len(state.PendingArchive))
	for _, id := range state.PendingArchive {
		pending[id] = true
	}
	for _, m := range e.matches {
		if pending[m.ID] {
			e.pendingArchive = append(e.pendingArchive, m)
		}
	}
	e.sessionStats = state.SessionStats
	if e.sessionStats == nil {
		e.sessionStats = make(map[string]match.SessionPlayerStats)
	}
	e.streak = state.Streak

	if state.Phase == PhaseInGame && state.Live != nil {
		l := ledger.New(state.Config.MatchDurationSeconds)
		l.Restore(state.Live.Events, state.Live.Stats, state.Live.Score)
		e.ledger = l
		e.matchStartedAt = state.Live.StartedAt
		e.clock.Start(state.Live.RemainingSeconds)
	}
	log.Info("Session resumed", "session", e.key, "phase", e.phase, "matches", len(e.matches))
	return true, nil
}

func validPhase(p Phase) bool {
	switch p {
	case PhaseConfig, PhaseManualSetup, PhasePreGame, PhaseInGame, PhasePostGame:
		return true
	}
	return false
}
