// Package ledger keeps the append-only timeline of in-match actions. The
// timeline is the source of truth: aggregate stats are maintained
// incrementally but can always be rebuilt by replaying the events.
package ledger

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// snapshot is a full value copy of score and stats taken just before an
// action is recorded. Undo pops one snapshot and truncates the timeline by
// exactly one entry, so the stack and the timeline stay length-synchronized.
type snapshot struct {
	score Score
	stats map[string]PlayerStats
}

// Ledger accumulates events and derived stats for one live match.
type Ledger struct {
	durationSeconds int
	events          []MatchEvent
	stats           map[string]PlayerStats
	score           Score
	snapshots       []snapshot
}

// New creates an empty ledger for a match of the given configured duration.
func New(durationSeconds int) *Ledger {
	return &Ledger{
		durationSeconds: durationSeconds,
		stats:           make(map[string]PlayerStats),
	}
}

// Record appends an action to the timeline. The minute stamp is derived
// from the clock's remaining seconds at the moment of the action.
func (l *Ledger) Record(a Action, remainingSeconds int) MatchEvent {
	l.pushSnapshot()

	minute := 0
	if elapsed := l.durationSeconds - remainingSeconds; elapsed > 0 {
		minute = elapsed / 60
	}
	event := MatchEvent{
		ID:         uuid.New().String(),
		Type:       a.Type,
		Minute:     minute,
		PlayerID:   a.PlayerID,
		PlayerName: a.PlayerName,
		TeamKey:    a.TeamKey,
		Extra:      a.Extra,
	}
	l.events = append(l.events, event)
	l.apply(event)
	log.Debug("Recorded match event", "type", event.Type, "player", event.PlayerName, "minute", event.Minute)
	return event
}

// Undo reverts the most recent action: the last snapshot is restored
// wholesale and the timeline shrinks by one entry. Undoing with an empty
// history is a no-op.
func (l *Ledger) Undo() bool {
	if len(l.snapshots) == 0 {
		return false
	}
	last := l.snapshots[len(l.snapshots)-1]
	l.snapshots = l.snapshots[:len(l.snapshots)-1]
	l.events = l.events[:len(l.events)-1]
	l.score = last.score
	l.stats = last.stats
	return true
}

// Events returns a copy of the timeline.
func (l *Ledger) Events() []MatchEvent {
	out := make([]MatchEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Score returns the current scoreline.
func (l *Ledger) Score() Score {
	return l.score
}

// Stats returns a copy of the per-player counters.
func (l *Ledger) Stats() map[string]PlayerStats {
	return copyStats(l.stats)
}

// Restore reloads a ledger from persisted state. When stats are absent
// (recovered events without counters) they are derived by replaying the
// timeline.
func (l *Ledger) Restore(events []MatchEvent, stats map[string]PlayerStats, score *Score) {
	l.events = make([]MatchEvent, len(events))
	copy(l.events, events)
	l.snapshots = nil
	if stats != nil && score != nil {
		l.stats = copyStats(stats)
		l.score = *score
		return
	}
	log.Info("Incremental stats unavailable, replaying event timeline", "events", len(events))
	l.stats = ReplayStats(l.events)
	l.score = ReplayScore(l.events)
}

func (l *Ledger) pushSnapshot() {
	l.snapshots = append(l.snapshots, snapshot{
		score: l.score,
		stats: copyStats(l.stats),
	})
}

func (l *Ledger) apply(e MatchEvent) {
	stats := l.stats[e.PlayerID]
	switch e.Type {
	case EventGoal:
		stats.Goals++
		if e.TeamKey == TeamA {
			l.score.A++
		} else {
			l.score.B++
		}
	case EventOwnGoal:
		stats.OwnGoals++
		// An own goal scores for the opposing side.
		if e.TeamKey.Opponent() == TeamA {
			l.score.A++
		} else {
			l.score.B++
		}
	case EventAssist:
		stats.Assists++
	case EventDribble:
		stats.Dribbles++
	case EventTackle:
		stats.Tackles++
	case EventSave:
		stats.Saves++
	case EventFailure:
		stats.Failures++
	case EventSubstitution:
		// Affects the roster, not the counters.
	}
	l.stats[e.PlayerID] = stats
}

// ReplayStats re-aggregates per-player counters from an event sequence.
func ReplayStats(events []MatchEvent) map[string]PlayerStats {
	replay := &Ledger{stats: make(map[string]PlayerStats)}
	for _, e := range events {
		replay.apply(e)
	}
	return replay.stats
}

// ReplayScore re-derives the scoreline from an event sequence.
func ReplayScore(events []MatchEvent) Score {
	replay := &Ledger{stats: make(map[string]PlayerStats)}
	for _, e := range events {
		replay.apply(e)
	}
	return replay.score
}

func copyStats(stats map[string]PlayerStats) map[string]PlayerStats {
	out := make(map[string]PlayerStats, len(stats))
	for id, s := range stats {
		out[id] = s
	}
	return out
}
