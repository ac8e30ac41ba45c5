package session

import (
	"github.com/charmbracelet/log"

	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/match"
)

// rotateLocked applies the post-match rotation: streak bookkeeping, draw
// resolution by tie-breaker rule, queue movement, then bench pinning and
// queue sanitation.
func (e *Engine) rotateLocked(score ledger.Score) {
	if score.A == score.B {
		e.resolveDrawLocked()
	} else {
		winner, loser := e.slotA, e.slotB
		winnerInSlotB := false
		if score.B > score.A {
			winner, loser = e.slotB, e.slotA
			winnerInSlotB = true
		}
		e.resolveDecisiveLocked(winner, loser, winnerInSlotB)
	}
	e.enforceBenchPreferenceLocked()
	e.sanitizeQueueLocked()
	log.Debug("Rotation applied", "session", e.key, "queue", len(e.queue), "streak", e.streak.Count)
}

// resolveDecisiveLocked handles a match with a winner. The winner keeps
// its slot and a fresh challenger replaces the loser, unless its streak
// has outrun the limit, in which case both teams rotate out.
func (e *Engine) resolveDecisiveLocked(winner, loser *match.Team, winnerInSlotB bool) {
	winnerID := winner.RosterID()
	if e.streak.RosterID == winnerID {
		e.streak.Count++
	} else {
		e.streak = Streak{RosterID: winnerID, Count: 1}
	}

	// A team that already reached the limit rotates out the next time it
	// wins, so a limit of 2 allows exactly two consecutive stays.
	if e.cfg.StreakLimit > 0 && e.streak.Count > e.cfg.StreakLimit {
		log.Info("Streak limit reached, rotating winner out", "session", e.key, "roster", winnerID, "streak", e.streak.Count)
		e.enqueueLocked(*loser)
		e.enqueueLocked(*winner)
		e.slotA = e.dequeueLocked()
		e.slotB = e.dequeueLocked()
		e.streak = Streak{}
		return
	}

	if len(e.queue) == 0 {
		// No challengers: the pair replays as winner vs loser. Nothing is
		// enqueued, so no duplicate rosters can appear.
		return
	}
	challenger := e.dequeueLocked()
	e.enqueueLocked(*loser)
	if winnerInSlotB {
		e.slotA = challenger
	} else {
		e.slotB = challenger
	}
}

// resolveDrawLocked applies the configured tie-breaker rule.
func (e *Engine) resolveDrawLocked() {
	switch e.cfg.TieBreakerRule {
	case TieBothExit:
		a, b := e.slotA, e.slotB
		e.enqueueLocked(*a)
		e.enqueueLocked(*b)
		e.slotA = e.dequeueLocked()
		e.slotB = e.dequeueLocked()
		e.streak = Streak{}

	case TieChallengerStays:
		// Slot B wins the draw by default: it moves into slot A with a
		// streak of 1 and the displaced incumbent re-enters the queue.
		displaced := e.slotA
		staying := e.slotB
		e.slotA = staying
		if len(e.queue) > 0 {
			e.slotB = e.dequeueLocked()
			e.enqueueLocked(*displaced)
		} else {
			e.slotB = displaced
		}
		e.streak = Streak{RosterID: staying.RosterID(), Count: 1}

	default: // winner-stays
		if len(e.queue) > 0 {
			displaced := e.slotB
			e.slotB = e.dequeueLocked()
			e.enqueueLocked(*displaced)
		}
		e.streak = Streak{}
	}
}

func (e *Engine) enqueueLocked(t match.Team) {
	e.queue = append(e.queue, t)
}

func (e *Engine) dequeueLocked() *match.Team {
	if len(e.queue) == 0 {
		return nil
	}
	t := e.queue[0]
	e.queue = e.queue[1:]
	return &t
}

// sanitizeQueueLocked removes duplicate rosters and any roster currently
// occupying the active pair, preserving FIFO order. Running it twice in a
// row yields the same queue as running it once.
func (e *Engine) sanitizeQueueLocked() {
	seen := make(map[string]bool)
	if e.slotA != nil {
		seen[e.slotA.RosterID()] = true
	}
	if e.slotB != nil {
		seen[e.slotB.RosterID()] = true
	}
	clean := e.queue[:0:0]
	for _, t := range e.queue {
		id := t.RosterID()
		if seen[id] {
			continue
		}
		seen[id] = true
		clean = append(clean, t)
	}
	e.queue = clean
}

// enforceBenchPreferenceLocked moves pinned players out of any team and
// onto the bench. Idempotent; applied on every state mutation.
func (e *Engine) enforceBenchPreferenceLocked() {
	if len(e.cfg.BenchPreference) == 0 {
		return
	}
	pinned := make(map[string]bool, len(e.cfg.BenchPreference))
	for _, id := range e.cfg.BenchPreference {
		pinned[id] = true
	}
	onBench := make(map[string]bool, len(e.bench))
	for _, p := range e.bench {
		onBench[p.ID] = true
	}
	strip := func(t *match.Team) {
		if t == nil {
			return
		}
		kept := t.Players[:0:0]
		for _, p := range t.Players {
			if pinned[p.ID] {
				if !onBench[p.ID] {
					e.bench = append(e.bench, p)
					onBench[p.ID] = true
				}
				continue
			}
			kept = append(kept, p)
		}
		t.Players = kept
	}
	strip(e.slotA)
	strip(e.slotB)
	for i := range e.queue {
		strip(&e.queue[i])
	}
}
