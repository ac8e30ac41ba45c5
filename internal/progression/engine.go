// Package progression adjusts player skill profiles after each archived
// match: role-specific gains from raw stats, failure and loss penalties, a
// conditioning milestone bonus, and a separate peer-rating penalty pass.
package progression

import (
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/rating"
	"github.com/peladaclub/rachao/internal/roster"
)

// Engine applies skill progression. It mutates session-scoped player copies
// in place and persists global roster updates through the store.
type Engine struct {
	store roster.Store
	rng   *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the RNG used by the peer-rating penalty pass. Tests pin
// it to a fixed seed.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// New creates a progression engine.
func New(store roster.Store, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return e
}

// ApplyMatch runs progression once for every participant of the finished
// match. Updates are applied consistently to each profile copy found: the
// session-scoped copy (if present) and the global roster record.
func (e *Engine) ApplyMatch(m *match.Match, sessionCopies map[string]*roster.Player) {
	for _, team := range []match.Team{m.TeamA, m.TeamB} {
		for _, participant := range team.Players {
			stats := m.PlayerStats[participant.ID]
			result := m.ResultsPerPlayer[participant.ID]
			e.progressPlayer(participant.ID, stats, result, sessionCopies[participant.ID])
		}
	}
}

func (e *Engine) progressPlayer(id string, stats ledger.PlayerStats, result match.Result, sessionCopy *roster.Player) {
	global, err := e.store.GetPlayer(id)
	if err != nil {
		log.Warn("Player missing from roster, progressing session copy only", "player", id, "error", err)
		global = nil
	}

	copies := make([]*roster.Player, 0, 2)
	if sessionCopy != nil {
		copies = append(copies, sessionCopy)
	}
	if global != nil {
		copies = append(copies, global)
	}
	if len(copies) == 0 {
		return
	}

	for _, copy := range copies {
		role := copy.Role()
		d := matchDelta(role, stats)
		if result == match.ResultLoss {
			for skill := range copy.SelfSkills {
				if !lossExempt[skill] {
					d[skill] += lossPenalty
				}
			}
		}
		if role != roster.RoleGoalkeeper && (copy.MatchesPlayed+1)%milestoneEvery == 0 {
			d[rating.SkillStamina] += 1
			d[rating.SkillSpeed] += 1
		}
		changed := applyDelta(copy.SelfSkills, d)
		copy.MatchesPlayed++
		log.Debug("Progressed player", "player", id, "role", role, "changed", changed)
	}

	if global != nil {
		// The counter always advances on a played match, so this always
		// persists; the guard mirrors the contract.
		update := roster.PlayerUpdate{
			SelfSkills:    global.SelfSkills,
			MatchesPlayed: &global.MatchesPlayed,
		}
		if err := e.store.UpdatePlayer(id, update); err != nil {
			log.Error("Failed to persist progression", "player", id, "error", err)
		}
	}
}

// matchDelta accumulates the role-specific gains and failure penalties for
// one match's raw stats. Own goals count as failure units.
func matchDelta(role roster.Role, stats ledger.PlayerStats) delta {
	d := delta{}
	add := func(dd delta, units int) {
		for skill, perUnit := range dd {
			d[skill] += perUnit * float64(units)
		}
	}

	table := gainTables[role]
	add(table[ledger.EventGoal], stats.Goals)
	add(table[ledger.EventAssist], stats.Assists)
	add(table[ledger.EventDribble], stats.Dribbles)
	add(table[ledger.EventTackle], stats.Tackles)
	add(table[ledger.EventSave], stats.Saves)
	add(failurePenalties[role], stats.Failures+stats.OwnGoals)
	return d
}

// applyDelta adds each adjustment to the matching skill, rounding to two
// decimals and clamping to bounds. Skills the player does not carry are
// skipped. Reports whether any value changed.
func applyDelta(skills rating.SkillMap, d delta) bool {
	changed := false
	for skill, dv := range d {
		old, ok := skills[skill]
		if !ok || dv == 0 {
			continue
		}
		next := rating.Clamp(rating.Round2(old + dv))
		if next != old {
			skills[skill] = next
			changed = true
		}
	}
	return changed
}

// ApplyRatingPenalties converts post-session peer ratings into skill
// penalties. For each rated player the rating is compared against
// escalating thresholds of their overall; each unmet threshold costs one
// point off a randomly chosen distinct skill. The same chosen skill keys
// are applied to every profile copy.
func (e *Engine) ApplyRatingPenalties(ratings map[string]float64, sessionCopies map[string]*roster.Player) {
	// Iterate in stable order so RNG consumption is reproducible.
	ids := make([]string, 0, len(ratings))
	for id := range ratings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		stars := ratings[id]
		global, err := e.store.GetPlayer(id)
		if err != nil {
			log.Warn("Player missing from roster, penalizing session copy only", "player", id, "error", err)
			global = nil
		}

		copies := make([]*roster.Player, 0, 2)
		if sc := sessionCopies[id]; sc != nil {
			copies = append(copies, sc)
		}
		if global != nil {
			copies = append(copies, global)
		}
		if len(copies) == 0 {
			continue
		}

		overall := rating.Overall(copies[0].SelfSkills)
		count := penaltyCount(overall, stars)
		if count == 0 {
			continue
		}

		chosen := e.pickSkills(copies[0].SelfSkills, count)
		log.Debug("Applying rating penalties", "player", id, "overall", overall, "rating", stars, "skills", chosen)
		for _, copy := range copies {
			for _, skill := range chosen {
				if v, ok := copy.SelfSkills[skill]; ok {
					copy.SelfSkills[skill] = rating.Clamp(rating.Round2(v - 1))
				}
			}
		}

		if global != nil {
			if err := e.store.UpdatePlayer(id, roster.PlayerUpdate{SelfSkills: global.SelfSkills}); err != nil {
				log.Error("Failed to persist rating penalties", "player", id, "error", err)
			}
		}
	}
}

// penaltyCount counts how many rating thresholds the player fell short of,
// scaled by how highly they are rated overall.
func penaltyCount(overall int, stars float64) int {
	count := 0
	if overall >= 50 && stars < 2 {
		count++
	}
	if overall >= 60 && stars < 3 {
		count++
	}
	if overall >= 70 && stars < 4 {
		count++
	}
	if overall >= 80 && stars < 5 {
		count++
	}
	return count
}

// pickSkills selects count distinct skill keys at random, without
// repetition.
func (e *Engine) pickSkills(skills rating.SkillMap, count int) []string {
	keys := make([]string, 0, len(skills))
	for k := range skills {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if count > len(keys) {
		count = len(keys)
	}
	perm := e.rng.Perm(len(keys))
	chosen := make([]string, 0, count)
	for _, idx := range perm[:count] {
		chosen = append(chosen, keys[idx])
	}
	return chosen
}
