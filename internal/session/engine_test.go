package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peladaclub/rachao/internal/archive"
	"github.com/peladaclub/rachao/internal/clock"
	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/metrics"
	"github.com/peladaclub/rachao/internal/notifier"
	"github.com/peladaclub/rachao/internal/persistence"
	"github.com/peladaclub/rachao/internal/progression"
	"github.com/peladaclub/rachao/internal/rating"
	"github.com/peladaclub/rachao/internal/roster"
)

type testDeps struct {
	roster    *roster.MockStore
	snapshots *persistence.MockStore
	archive   *archive.MockArchive
	notifier  *notifier.MockNotifier
	metrics   *metrics.Mock
}

func testPlayer(id string) roster.Player {
	return roster.Player{
		ID:       id,
		Name:     "Player " + id,
		Position: roster.PositionMidfielder,
		SelfSkills: rating.SkillMap{
			rating.SkillPassing:  50,
			rating.SkillStamina:  50,
			rating.SkillSpeed:    50,
			rating.SkillVision:   50,
			rating.SkillTackling: 50,
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *testDeps) {
	t.Helper()

	deps := &testDeps{
		roster:    roster.NewMock(),
		snapshots: persistence.NewMock(),
		archive:   archive.NewMock(),
		notifier:  notifier.NewMock(),
		metrics:   metrics.NewMock(),
	}
	deps.roster.GetPlayersFunc = func(ids []string) ([]roster.Player, error) {
		players := make([]roster.Player, 0, len(ids))
		for _, id := range ids {
			players = append(players, testPlayer(id))
		}
		return players, nil
	}
	deps.roster.GetPlayerFunc = func(id string) (*roster.Player, error) {
		p := testPlayer(id)
		return &p, nil
	}

	e := New(
		"pelada-test",
		deps.roster,
		deps.snapshots,
		deps.archive,
		deps.notifier,
		deps.metrics,
		progression.New(deps.roster),
		WithDryRun(true),
		WithSaveDelay(time.Millisecond),
		WithClock(clock.NewSupervisor(deps.metrics, clock.WithTickInterval(10*time.Millisecond))),
	)
	t.Cleanup(e.Clock().Stop)
	return e, deps
}

// setupManual drives the engine into pre_game with one single-player team
// per assignment, in order: first two become the active pair, the rest
// queue up.
func setupManual(t *testing.T, e *Engine, cfg Config, teams ...[]string) {
	t.Helper()

	var ids []string
	for _, team := range teams {
		ids = append(ids, team...)
	}
	require.NoError(t, e.Configure(cfg))
	require.NoError(t, e.StartManual(ids))
	require.NoError(t, e.AssignTeams(teams))
}

func defaultConfig() Config {
	return Config{
		NumberOfTeams:        2,
		MatchDurationSeconds: 600,
	}
}

func playMatch(t *testing.T, e *Engine, goalsA, goalsB int) *match.Match {
	t.Helper()

	require.NoError(t, e.StartMatch())
	a, b := e.ActivePair()
	for i := 0; i < goalsA; i++ {
		_, err := e.RecordEvent(ledger.Action{Type: ledger.EventGoal, PlayerID: a.Players[0].ID, TeamKey: ledger.TeamA})
		require.NoError(t, err)
	}
	for i := 0; i < goalsB; i++ {
		_, err := e.RecordEvent(ledger.Action{Type: ledger.EventGoal, PlayerID: b.Players[0].ID, TeamKey: ledger.TeamB})
		require.NoError(t, err)
	}
	m, err := e.CompleteMatch()
	require.NoError(t, err)
	return m
}

func TestConfigure_Validation(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.Configure(Config{NumberOfTeams: 1, MatchDurationSeconds: 600})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	err = e.Configure(Config{NumberOfTeams: 2, MatchDurationSeconds: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	require.NoError(t, e.Configure(defaultConfig()))
	assert.Equal(t, TieWinnerStays, e.Config().TieBreakerRule, "tie breaker defaults to winner-stays")
	assert.Equal(t, roster.DrawSelf, e.Config().DrawType)
}

func TestStartAuto_RequiresTwoPlayers(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Configure(defaultConfig()))

	err := e.StartAuto([]string{"p1"})
	assert.ErrorIs(t, err, ErrTooFewPlayers)
	assert.Equal(t, PhaseConfig, e.Phase(), "no transition on invalid input")
}

func TestStartAuto_SeedsTeamsAndNotifies(t *testing.T) {
	e, deps := newTestEngine(t)
	require.NoError(t, e.Configure(defaultConfig()))

	require.NoError(t, e.StartAuto([]string{"p1", "p2", "p3", "p4"}))

	assert.Equal(t, PhasePreGame, e.Phase())
	a, b := e.ActivePair()
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Len(t, a.Players, 2)
	assert.Len(t, b.Players, 2)
	assert.Empty(t, e.Queue())
	assert.Equal(t, 1, deps.metrics.SessionsStarted())
	assert.Equal(t, []string{"pelada-test"}, deps.notifier.SessionStartedCalls)
}

func TestAssignTeams_RejectsEmptyTeam(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Configure(defaultConfig()))
	require.NoError(t, e.StartManual([]string{"p1", "p2"}))

	err := e.AssignTeams([][]string{{"p1"}, {}})
	assert.ErrorIs(t, err, ErrEmptyTeam)
	assert.Equal(t, PhaseManualSetup, e.Phase())
}

func TestStartMatch_RequiresChallenger(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Configure(defaultConfig()))

	err := e.StartMatch()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestCompleteMatch_ArchivesAndProgresses(t *testing.T) {
	e, deps := newTestEngine(t)
	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"})

	m := playMatch(t, e, 2, 1)

	assert.Equal(t, PhasePostGame, e.Phase())
	assert.Equal(t, ledger.Score{A: 2, B: 1}, m.Score)
	assert.Equal(t, match.ResultWin, m.ResultsPerPlayer["p1"])
	assert.Equal(t, match.ResultLoss, m.ResultsPerPlayer["p2"])
	require.Len(t, deps.archive.SaveMatchCalls, 1)
	assert.Equal(t, 1, deps.metrics.MatchesCompleted())
	require.Len(t, deps.notifier.MatchResultCalls, 1)
	// progression persisted both participants
	assert.Len(t, deps.roster.UpdatePlayerCalls, 2)
}

func TestCompleteMatch_ArchiveFailureKeepsMatchPending(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.archive.SaveMatchFunc = func(m *match.Match) error {
		return errors.New("pubsub unavailable")
	}
	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"})

	playMatch(t, e, 1, 0)

	// Gameplay proceeds regardless of archive failures.
	assert.Equal(t, PhasePostGame, e.Phase())

	// The retry happens at session end.
	deps.archive.SaveMatchFunc = nil
	report, err := e.EndSession(nil)
	require.NoError(t, err)
	assert.Len(t, report.Matches, 1)
	assert.Len(t, deps.archive.SaveMatchCalls, 2, "one failed attempt plus one successful retry")
}

func TestEndSession_FlushesAndResets(t *testing.T) {
	e, deps := newTestEngine(t)
	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"})
	playMatch(t, e, 3, 1)

	report, err := e.EndSession(nil)
	require.NoError(t, err)

	assert.Equal(t, "pelada-test", report.SessionKey)
	assert.Len(t, report.Matches, 1)
	assert.Equal(t, 1, report.Stats["p1"].Wins)
	assert.Equal(t, 3, report.Stats["p1"].Goals)
	assert.Equal(t, 1, report.Stats["p2"].Losses)
	require.Len(t, deps.archive.SaveReportCalls, 1)
	require.Len(t, deps.notifier.SessionReportCalls, 1)
	assert.Equal(t, PhaseConfig, e.Phase())
	assert.Contains(t, deps.snapshots.ClearCalls, "pelada-test")
}

func TestEndSession_AppliesRatingPenalties(t *testing.T) {
	e, deps := newTestEngine(t)
	strong := testPlayer("p1")
	for k := range strong.SelfSkills {
		strong.SelfSkills[k] = 90
	}
	deps.roster.GetPlayersFunc = func(ids []string) ([]roster.Player, error) {
		players := []roster.Player{strong}
		for _, id := range ids[1:] {
			players = append(players, testPlayer(id))
		}
		return players, nil
	}
	deps.roster.GetPlayerFunc = func(id string) (*roster.Player, error) {
		if id == "p1" {
			p := strong.Clone()
			return &p, nil
		}
		p := testPlayer(id)
		return &p, nil
	}
	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"})

	updatesBefore := len(deps.roster.UpdatePlayerCalls)
	_, err := e.EndSession(map[string]float64{"p1": 1})
	require.NoError(t, err)
	assert.Greater(t, len(deps.roster.UpdatePlayerCalls), updatesBefore, "penalty pass persisted an update")
}

func TestAbandon_OnlyBeforeMatches(t *testing.T) {
	e, _ := newTestEngine(t)
	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"})

	require.NoError(t, e.Abandon())
	assert.Equal(t, PhaseConfig, e.Phase())

	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"})
	playMatch(t, e, 1, 0)

	err := e.Abandon()
	assert.ErrorIs(t, err, ErrMatchesRecorded)
	assert.Equal(t, PhasePostGame, e.Phase())
}

func TestUndoEvent_RevertsScore(t *testing.T) {
	e, _ := newTestEngine(t)
	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"})
	require.NoError(t, e.StartMatch())

	_, err := e.RecordEvent(ledger.Action{Type: ledger.EventGoal, PlayerID: "p1", TeamKey: ledger.TeamA})
	require.NoError(t, err)
	require.Equal(t, ledger.Score{A: 1}, e.Score())

	assert.True(t, e.UndoEvent())
	assert.Equal(t, ledger.Score{}, e.Score())
	assert.False(t, e.UndoEvent(), "empty history is a no-op")
}

func TestPersistence_DebouncedSave(t *testing.T) {
	e, deps := newTestEngine(t)

	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"})

	assert.Eventually(t, func() bool {
		return deps.metrics.SnapshotSaves() > 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestResume_RestoresState(t *testing.T) {
	e, deps := newTestEngine(t)
	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"}, []string{"p3"})

	// Force an immediate snapshot instead of waiting on the debounce.
	e.persist()
	require.NotEmpty(t, deps.snapshots.SaveCalls)
	saved := deps.snapshots.SaveCalls[len(deps.snapshots.SaveCalls)-1].State

	restored, rdeps := newTestEngine(t)
	rdeps.snapshots.LoadFunc = func(key string) ([]byte, bool, error) {
		return saved, true, nil
	}

	ok, err := restored.Resume()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, PhasePreGame, restored.Phase())
	a, b := restored.ActivePair()
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, "p1", a.Players[0].ID)
	assert.Equal(t, "p2", b.Players[0].ID)
	require.Len(t, restored.Queue(), 1)
	assert.Equal(t, "p3", restored.Queue()[0].Players[0].ID)
}

func TestResume_CorruptSnapshotFallsBackToConfig(t *testing.T) {
	e, deps := newTestEngine(t)
	deps.snapshots.LoadFunc = func(key string) ([]byte, bool, error) {
		return []byte("{not json"), true, nil
	}

	ok, err := e.Resume()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, PhaseConfig, e.Phase())
	assert.Contains(t, deps.snapshots.ClearCalls, "pelada-test")
}

func TestResume_NoSnapshot(t *testing.T) {
	e, _ := newTestEngine(t)

	ok, err := e.Resume()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStats_AccumulateAcrossMatches(t *testing.T) {
	e, _ := newTestEngine(t)
	setupManual(t, e, defaultConfig(), []string{"p1"}, []string{"p2"})

	playMatch(t, e, 1, 0)
	playMatch(t, e, 0, 2)

	report, err := e.EndSession(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stats["p1"].Wins)
	assert.Equal(t, 1, report.Stats["p1"].Losses)
	assert.Equal(t, 1, report.Stats["p1"].Goals)
	assert.Equal(t, 1, report.Stats["p2"].Wins)
	assert.Equal(t, 2, report.Stats["p2"].Goals)
}

func TestManyPlayersAuto_QueueSeeded(t *testing.T) {
	e, _ := newTestEngine(t)
	cfg := defaultConfig()
	cfg.NumberOfTeams = 3
	cfg.PlayersPerTeam = 2
	require.NoError(t, e.Configure(cfg))

	ids := make([]string, 6)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i+1)
	}
	require.NoError(t, e.StartAuto(ids))

	a, b := e.ActivePair()
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Len(t, e.Queue(), 1, "third team waits in the queue")
}
