package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MinuteStamp(t *testing.T) {
	l := New(600) // 10 minute match

	e := l.Record(Action{Type: EventGoal, PlayerID: "p1", TeamKey: TeamA}, 600)
	assert.Equal(t, 0, e.Minute, "goal at kickoff is minute 0")

	e = l.Record(Action{Type: EventGoal, PlayerID: "p1", TeamKey: TeamA}, 479)
	assert.Equal(t, 2, e.Minute, "121 elapsed seconds is minute 2")

	e = l.Record(Action{Type: EventTackle, PlayerID: "p2", TeamKey: TeamB}, 0)
	assert.Equal(t, 10, e.Minute)
}

func TestRecord_ScoreAndStats(t *testing.T) {
	l := New(600)

	l.Record(Action{Type: EventGoal, PlayerID: "p1", TeamKey: TeamA}, 500)
	l.Record(Action{Type: EventAssist, PlayerID: "p2", TeamKey: TeamA}, 500)
	l.Record(Action{Type: EventOwnGoal, PlayerID: "p3", TeamKey: TeamB}, 400)
	l.Record(Action{Type: EventSave, PlayerID: "p4", TeamKey: TeamB}, 300)

	assert.Equal(t, Score{A: 2, B: 0}, l.Score(), "own goal by B scores for A")

	stats := l.Stats()
	assert.Equal(t, 1, stats["p1"].Goals)
	assert.Equal(t, 1, stats["p2"].Assists)
	assert.Equal(t, 1, stats["p3"].OwnGoals)
	assert.Equal(t, 1, stats["p4"].Saves)
}

func TestRecord_GoalWithAssistSharesMinute(t *testing.T) {
	l := New(600)

	goal := l.Record(Action{Type: EventGoal, PlayerID: "p1", TeamKey: TeamA}, 475)
	assist := l.Record(Action{Type: EventAssist, PlayerID: "p2", TeamKey: TeamA}, 475)

	assert.Equal(t, goal.Minute, assist.Minute)
	assert.Len(t, l.Events(), 2)
}

func TestUndo_RestoresSnapshot(t *testing.T) {
	l := New(600)

	l.Record(Action{Type: EventGoal, PlayerID: "p1", TeamKey: TeamA}, 500)
	scoreBefore := l.Score()
	statsBefore := l.Stats()

	l.Record(Action{Type: EventGoal, PlayerID: "p2", TeamKey: TeamB}, 400)
	require.Equal(t, Score{A: 1, B: 1}, l.Score())

	ok := l.Undo()
	assert.True(t, ok)
	assert.Equal(t, scoreBefore, l.Score())
	assert.Equal(t, statsBefore, l.Stats())
	assert.Len(t, l.Events(), 1)
}

func TestUndo_EmptyHistoryIsNoOp(t *testing.T) {
	l := New(600)
	assert.False(t, l.Undo())
	assert.False(t, l.Undo())
	assert.Empty(t, l.Events())
	assert.Equal(t, Score{}, l.Score())
}

func TestUndo_SubstitutionOnlyTruncatesTimeline(t *testing.T) {
	l := New(600)
	l.Record(Action{Type: EventSubstitution, PlayerID: "p1", TeamKey: TeamA, Extra: "p9"}, 300)
	require.Len(t, l.Events(), 1)

	assert.True(t, l.Undo())
	assert.Empty(t, l.Events())
}

func TestReplay_MatchesIncrementalStats(t *testing.T) {
	l := New(1200)

	actions := []Action{
		{Type: EventGoal, PlayerID: "p1", TeamKey: TeamA},
		{Type: EventAssist, PlayerID: "p2", TeamKey: TeamA},
		{Type: EventDribble, PlayerID: "p1", TeamKey: TeamA},
		{Type: EventTackle, PlayerID: "p3", TeamKey: TeamB},
		{Type: EventFailure, PlayerID: "p3", TeamKey: TeamB},
		{Type: EventGoal, PlayerID: "p4", TeamKey: TeamB},
		{Type: EventOwnGoal, PlayerID: "p2", TeamKey: TeamA},
		{Type: EventSave, PlayerID: "p5", TeamKey: TeamA},
		{Type: EventSubstitution, PlayerID: "p1", TeamKey: TeamA},
	}
	remaining := 1200
	for _, a := range actions {
		l.Record(a, remaining)
		remaining -= 60
	}

	assert.Equal(t, l.Stats(), ReplayStats(l.Events()))
	assert.Equal(t, l.Score(), ReplayScore(l.Events()))
}

func TestRestore_ReplaysWhenStatsAbsent(t *testing.T) {
	orig := New(600)
	orig.Record(Action{Type: EventGoal, PlayerID: "p1", TeamKey: TeamA}, 500)
	orig.Record(Action{Type: EventFailure, PlayerID: "p2", TeamKey: TeamB}, 450)

	recovered := New(600)
	recovered.Restore(orig.Events(), nil, nil)

	assert.Equal(t, orig.Stats(), recovered.Stats())
	assert.Equal(t, orig.Score(), recovered.Score())
}

func TestRestore_UsesIncrementalStatsWhenPresent(t *testing.T) {
	orig := New(600)
	orig.Record(Action{Type: EventGoal, PlayerID: "p1", TeamKey: TeamA}, 500)

	stats := orig.Stats()
	score := orig.Score()
	recovered := New(600)
	recovered.Restore(orig.Events(), stats, &score)

	assert.Equal(t, orig.Stats(), recovered.Stats())
	assert.Equal(t, orig.Score(), recovered.Score())
}
