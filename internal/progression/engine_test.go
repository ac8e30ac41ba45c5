package progression

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/rating"
	"github.com/peladaclub/rachao/internal/roster"
)

func fullSkills(base float64) rating.SkillMap {
	return rating.SkillMap{
		rating.SkillFinishing:    base,
		rating.SkillPassing:      base,
		rating.SkillDribbling:    base,
		rating.SkillTackling:     base,
		rating.SkillMarking:      base,
		rating.SkillPositioning:  base,
		rating.SkillReflexes:     base,
		rating.SkillDistribution: base,
		rating.SkillVision:       base,
		rating.SkillHeading:      base,
		rating.SkillStamina:      base,
		rating.SkillSpeed:        base,
	}
}

func newPlayer(id string, pos roster.Position, base float64) *roster.Player {
	return &roster.Player{
		ID:         id,
		Name:       id,
		Position:   pos,
		SelfSkills: fullSkills(base),
	}
}

// storeWith serves players from a map and records updates through the mock.
func storeWith(players map[string]*roster.Player) *roster.MockStore {
	mock := roster.NewMock()
	mock.GetPlayerFunc = func(id string) (*roster.Player, error) {
		p, ok := players[id]
		if !ok {
			return nil, errors.New("player not found")
		}
		return p, nil
	}
	return mock
}

func oneSidedMatch(player roster.Player, stats ledger.PlayerStats, result match.Result) *match.Match {
	return &match.Match{
		ID:               "m1",
		TeamA:            match.Team{Name: "A", Players: []roster.Player{player}},
		TeamB:            match.Team{Name: "B"},
		PlayerStats:      map[string]ledger.PlayerStats{player.ID: stats},
		ResultsPerPlayer: map[string]match.Result{player.ID: result},
	}
}

func TestApplyMatch_AttackerGainsFailuresAndLoss(t *testing.T) {
	global := newPlayer("p1", roster.PositionForward, 50)
	store := storeWith(map[string]*roster.Player{"p1": global})
	engine := New(store)

	sessionCopy := newPlayer("p1", roster.PositionForward, 50)
	m := oneSidedMatch(*sessionCopy, ledger.PlayerStats{Goals: 2, Failures: 1}, match.ResultLoss)

	engine.ApplyMatch(m, map[string]*roster.Player{"p1": sessionCopy})

	for _, p := range []*roster.Player{sessionCopy, global} {
		// +2 from goals, -1 from the failure, -0.5 loss penalty.
		assert.Equal(t, 50.5, p.SelfSkills[rating.SkillFinishing])
		// Non-exempt skills take the loss penalty.
		assert.Equal(t, 49.5, p.SelfSkills[rating.SkillPassing])
		assert.Equal(t, 49.5, p.SelfSkills[rating.SkillMarking])
		// Conditioning skills are exempt from the loss penalty.
		assert.Equal(t, 50.0, p.SelfSkills[rating.SkillStamina])
		assert.Equal(t, 50.0, p.SelfSkills[rating.SkillSpeed])
		assert.Equal(t, 1, p.MatchesPlayed)
	}

	require.Len(t, store.UpdatePlayerCalls, 1)
	call := store.UpdatePlayerCalls[0]
	assert.Equal(t, "p1", call.ID)
	require.NotNil(t, call.Update.MatchesPlayed)
	assert.Equal(t, 1, *call.Update.MatchesPlayed)
}

func TestApplyMatch_GoalkeeperSaves(t *testing.T) {
	global := newPlayer("gk", roster.PositionGoalkeeper, 60)
	store := storeWith(map[string]*roster.Player{"gk": global})
	engine := New(store)

	m := oneSidedMatch(*global, ledger.PlayerStats{Saves: 3, Assists: 1}, match.ResultWin)
	engine.ApplyMatch(m, nil)

	assert.Equal(t, 63.0, global.SelfSkills[rating.SkillPositioning])
	assert.Equal(t, 63.0, global.SelfSkills[rating.SkillReflexes])
	assert.Equal(t, 61.0, global.SelfSkills[rating.SkillDistribution])
	assert.Equal(t, 60.0, global.SelfSkills[rating.SkillFinishing], "outfield gains do not apply to keepers")
}

func TestApplyMatch_OwnGoalsCountAsFailures(t *testing.T) {
	global := newPlayer("d1", roster.PositionCenterBack, 70)
	store := storeWith(map[string]*roster.Player{"d1": global})
	engine := New(store)

	m := oneSidedMatch(*global, ledger.PlayerStats{OwnGoals: 2}, match.ResultDraw)
	engine.ApplyMatch(m, nil)

	assert.Equal(t, 68.0, global.SelfSkills[rating.SkillMarking])
}

func TestApplyMatch_MilestoneBonus(t *testing.T) {
	global := newPlayer("p1", roster.PositionMidfielder, 40)
	global.MatchesPlayed = 9
	store := storeWith(map[string]*roster.Player{"p1": global})
	engine := New(store)

	m := oneSidedMatch(*global, ledger.PlayerStats{}, match.ResultWin)
	engine.ApplyMatch(m, nil)

	assert.Equal(t, 10, global.MatchesPlayed)
	assert.Equal(t, 41.0, global.SelfSkills[rating.SkillStamina])
	assert.Equal(t, 41.0, global.SelfSkills[rating.SkillSpeed])
}

func TestApplyMatch_NoMilestoneForGoalkeeper(t *testing.T) {
	global := newPlayer("gk", roster.PositionGoalkeeper, 40)
	global.MatchesPlayed = 9
	store := storeWith(map[string]*roster.Player{"gk": global})
	engine := New(store)

	m := oneSidedMatch(*global, ledger.PlayerStats{}, match.ResultWin)
	engine.ApplyMatch(m, nil)

	assert.Equal(t, 10, global.MatchesPlayed)
	assert.Equal(t, 40.0, global.SelfSkills[rating.SkillStamina])
	assert.Equal(t, 40.0, global.SelfSkills[rating.SkillSpeed])
}

func TestApplyMatch_ClampsAtCeiling(t *testing.T) {
	global := newPlayer("p1", roster.PositionForward, 98.5)
	store := storeWith(map[string]*roster.Player{"p1": global})
	engine := New(store)

	m := oneSidedMatch(*global, ledger.PlayerStats{Goals: 4}, match.ResultWin)
	engine.ApplyMatch(m, nil)

	assert.Equal(t, rating.MaxSkill, global.SelfSkills[rating.SkillFinishing])
}

func TestApplyMatch_SessionCopyOnlyWhenUnknownToRoster(t *testing.T) {
	store := storeWith(nil)
	engine := New(store)

	sessionCopy := newPlayer("guest", roster.PositionForward, 50)
	m := oneSidedMatch(*sessionCopy, ledger.PlayerStats{Goals: 1}, match.ResultWin)
	engine.ApplyMatch(m, map[string]*roster.Player{"guest": sessionCopy})

	assert.Equal(t, 51.0, sessionCopy.SelfSkills[rating.SkillFinishing])
	assert.Equal(t, 1, sessionCopy.MatchesPlayed)
	assert.Empty(t, store.UpdatePlayerCalls)
}

func TestApplyRatingPenalties_HighOverallLowRating(t *testing.T) {
	global := newPlayer("star", roster.PositionForward, 85)
	store := storeWith(map[string]*roster.Player{"star": global})
	engine := New(store, WithRand(rand.New(rand.NewSource(1))))

	sessionCopy := newPlayer("star", roster.PositionForward, 85)
	engine.ApplyRatingPenalties(map[string]float64{"star": 1}, map[string]*roster.Player{"star": sessionCopy})

	// Overall 85 rated one star misses all four thresholds.
	dropped := 0
	for skill, v := range sessionCopy.SelfSkills {
		if v == 84.0 {
			dropped++
		}
		assert.Equal(t, v, global.SelfSkills[skill], "both copies take identical penalties")
	}
	assert.Equal(t, 4, dropped)
	require.Len(t, store.UpdatePlayerCalls, 1)
}

func TestApplyRatingPenalties_GoodRatingIsUntouched(t *testing.T) {
	global := newPlayer("star", roster.PositionForward, 85)
	store := storeWith(map[string]*roster.Player{"star": global})
	engine := New(store)

	engine.ApplyRatingPenalties(map[string]float64{"star": 5}, nil)

	assert.Equal(t, fullSkills(85), global.SelfSkills)
	assert.Empty(t, store.UpdatePlayerCalls)
}

func TestApplyRatingPenalties_LowOverallIsExempt(t *testing.T) {
	global := newPlayer("novice", roster.PositionMidfielder, 40)
	store := storeWith(map[string]*roster.Player{"novice": global})
	engine := New(store)

	engine.ApplyRatingPenalties(map[string]float64{"novice": 1}, nil)

	assert.Equal(t, fullSkills(40), global.SelfSkills)
	assert.Empty(t, store.UpdatePlayerCalls)
}

func TestPenaltyCount(t *testing.T) {
	tests := []struct {
		name    string
		overall int
		stars   float64
		want    int
	}{
		{"below all thresholds", 45, 1, 0},
		{"mid overall low rating", 65, 1, 2},
		{"high overall low rating", 85, 1, 4},
		{"high overall decent rating", 85, 4, 1},
		{"high overall top rating", 85, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, penaltyCount(tt.overall, tt.stars))
		})
	}
}
