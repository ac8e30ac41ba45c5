// Package session implements the rotation state machine that runs a
// pelada: it seeds teams from the draw, runs live matches against the
// clock and the event ledger, rotates the active pair through the
// challenger queue, and hands finished matches to progression and the
// archive.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/peladaclub/rachao/internal/archive"
	"github.com/peladaclub/rachao/internal/clock"
	"github.com/peladaclub/rachao/internal/draw"
	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/metrics"
	"github.com/peladaclub/rachao/internal/notifier"
	"github.com/peladaclub/rachao/internal/persistence"
	"github.com/peladaclub/rachao/internal/progression"
	"github.com/peladaclub/rachao/internal/roster"
)

const defaultSaveDelay = 800 * time.Millisecond

// Engine owns one session. All entry points serialize on an internal
// mutex; the engine assumes a single logical actor per session key.
type Engine struct {
	mu sync.Mutex

	key   string
	cfg   Config
	phase Phase

	slotA *match.Team
	slotB *match.Team
	queue []match.Team
	bench []roster.Player

	// session-scoped player copies, progressed independently of the
	// global roster records
	players map[string]*roster.Player

	ledger         *ledger.Ledger
	clock          *clock.Supervisor
	matchStartedAt time.Time

	matches        []*match.Match
	pendingArchive []*match.Match
	sessionStats   map[string]match.SessionPlayerStats
	streak         Streak

	rosterStore roster.Store
	snapshots   persistence.Store
	archive     archive.Archive
	notifier    notifier.Notifier
	metrics     metrics.Metrics
	progression *progression.Engine

	dryRun    bool
	saveDelay time.Duration
	saveTimer *time.Timer
}

// Option configures an Engine.
type Option func(*Engine)

// WithSaveDelay overrides the persistence debounce window for tests.
func WithSaveDelay(d time.Duration) Option {
	return func(e *Engine) { e.saveDelay = d }
}

// WithClock injects a preconfigured clock supervisor.
func WithClock(c *clock.Supervisor) Option {
	return func(e *Engine) { e.clock = c }
}

// WithDryRun suppresses outbound notifications.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) { e.dryRun = dryRun }
}

// New creates a session engine for the given session key.
func New(
	key string,
	rosterStore roster.Store,
	snapshots persistence.Store,
	arc archive.Archive,
	notif notifier.Notifier,
	m metrics.Metrics,
	prog *progression.Engine,
	opts ...Option,
) *Engine {
	e := &Engine{
		key:          key,
		phase:        PhaseConfig,
		players:      make(map[string]*roster.Player),
		sessionStats: make(map[string]match.SessionPlayerStats),
		rosterStore:  rosterStore,
		snapshots:    snapshots,
		archive:      arc,
		notifier:     notif,
		metrics:      m,
		progression:  prog,
		saveDelay:    defaultSaveDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = clock.NewSupervisor(m)
	}
	return e
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// ActivePair returns copies of the teams in slot A and slot B. Either may
// be nil before setup.
func (e *Engine) ActivePair() (*match.Team, *match.Team) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyTeam(e.slotA), copyTeam(e.slotB)
}

// Queue returns a copy of the challenger queue in order.
func (e *Engine) Queue() []match.Team {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]match.Team, len(e.queue))
	copy(out, e.queue)
	return out
}

// Bench returns a copy of the benched players.
func (e *Engine) Bench() []roster.Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]roster.Player, len(e.bench))
	copy(out, e.bench)
	return out
}

// Score returns the live scoreline. Zero outside in_game/post_game.
func (e *Engine) Score() ledger.Score {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ledger == nil {
		return ledger.Score{}
	}
	return e.ledger.Score()
}

// Streak returns the current winner streak.
func (e *Engine) Streak() Streak {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streak
}

// Clock exposes the match clock for event consumption and time control.
func (e *Engine) Clock() *clock.Supervisor { return e.clock }

// Configure sets the session parameters. Only valid before setup.
func (e *Engine) Configure(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseConfig {
		return fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	if cfg.NumberOfTeams < 2 {
		return fmt.Errorf("%w: numberOfTeams must be >= 2", ErrInvalidConfig)
	}
	if cfg.PlayersPerTeam < 0 || cfg.MatchDurationSeconds <= 0 || cfg.StreakLimit < 0 {
		return fmt.Errorf("%w: negative or zero field", ErrInvalidConfig)
	}
	if cfg.TieBreakerRule == "" {
		cfg.TieBreakerRule = TieWinnerStays
	}
	if cfg.DrawType == "" {
		cfg.DrawType = roster.DrawSelf
	}
	e.cfg = cfg
	e.scheduleSaveLocked()
	return nil
}

// Config returns the configured session parameters.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// StartAuto selects the players, runs the team draw and seeds the active
// pair, the queue and the bench. Transitions config -> pre_game.
func (e *Engine) StartAuto(playerIDs []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseConfig {
		return fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	pool, err := e.stagePlayersLocked(playerIDs)
	if err != nil {
		return err
	}

	result, err := draw.Build(pool, e.cfg.NumberOfTeams, e.cfg.PlayersPerTeam, e.cfg.DrawType)
	if err != nil {
		return fmt.Errorf("team draw failed: %w", err)
	}
	teams := make([]match.Team, 0, len(result.Teams))
	for i, players := range result.Teams {
		teams = append(teams, match.Team{
			Name:    fmt.Sprintf("Time %d", i+1),
			Players: players,
		})
	}
	e.seedTeamsLocked(teams, result.Bench)
	e.phase = PhasePreGame
	e.metrics.IncSessionsStarted()
	log.Info("Session started", "session", e.key, "teams", len(teams), "bench", len(e.bench))

	allTeams := e.allTeamsLocked()
	if err := e.notifier.SendSessionStarted(e.key, allTeams, e.bench, e.dryRun); err != nil {
		log.Warn("Failed to announce session start", "error", err)
	}
	e.scheduleSaveLocked()
	return nil
}

// StartManual selects the players and transitions to manual_setup, where
// teams are hand-assigned before play.
func (e *Engine) StartManual(playerIDs []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseConfig {
		return fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	if _, err := e.stagePlayersLocked(playerIDs); err != nil {
		return err
	}
	e.phase = PhaseManualSetup
	e.scheduleSaveLocked()
	return nil
}

// AssignTeams completes manual setup with hand-picked teams. Player ids
// not assigned to any team go to the bench. Transitions manual_setup ->
// pre_game.
func (e *Engine) AssignTeams(teamAssignments [][]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseManualSetup {
		return fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	if len(teamAssignments) < 2 {
		return fmt.Errorf("%w: need at least 2 teams", ErrInvalidConfig)
	}

	assigned := make(map[string]bool)
	teams := make([]match.Team, 0, len(teamAssignments))
	for i, ids := range teamAssignments {
		if len(ids) == 0 {
			return ErrEmptyTeam
		}
		team := match.Team{Name: fmt.Sprintf("Time %d", i+1)}
		for _, id := range ids {
			p, ok := e.players[id]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
			}
			if assigned[id] {
				continue
			}
			assigned[id] = true
			team.Players = append(team.Players, *p)
		}
		teams = append(teams, team)
	}

	var bench []roster.Player
	for _, p := range e.players {
		if !assigned[p.ID] {
			bench = append(bench, *p)
		}
	}
	e.seedTeamsLocked(teams, bench)
	e.phase = PhasePreGame
	e.metrics.IncSessionsStarted()
	e.scheduleSaveLocked()
	return nil
}

// StartMatch begins a live match between the active pair. Valid from
// pre_game and post_game; requires a challenger in slot B.
func (e *Engine) StartMatch() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhasePreGame && e.phase != PhasePostGame {
		return fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	if e.slotB == nil || len(e.slotB.Players) == 0 {
		return ErrNoChallenger
	}

	e.ledger = ledger.New(e.cfg.MatchDurationSeconds)
	e.matchStartedAt = time.Now()
	e.clock.Start(e.cfg.MatchDurationSeconds)
	e.phase = PhaseInGame
	log.Info("Match started", "session", e.key, "team_a", e.slotA.Name, "team_b", e.slotB.Name, "duration_s", e.cfg.MatchDurationSeconds)
	e.scheduleSaveLocked()
	return nil
}

// RecordEvent appends an in-match action to the ledger, stamped with the
// clock's remaining time.
func (e *Engine) RecordEvent(a ledger.Action) (ledger.MatchEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInGame {
		return ledger.MatchEvent{}, fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	if a.PlayerName == "" {
		if p, ok := e.players[a.PlayerID]; ok {
			a.PlayerName = p.Name
		}
	}
	event := e.ledger.Record(a, e.clock.Remaining())
	e.scheduleSaveLocked()
	return event, nil
}

// UndoEvent reverts the most recent ledger entry. No-op outside a live
// match or with an empty timeline.
func (e *Engine) UndoEvent() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInGame || e.ledger == nil {
		return false
	}
	ok := e.ledger.Undo()
	if ok {
		e.scheduleSaveLocked()
	}
	return ok
}

// CompleteMatch ends the live match: it freezes the ledger into a Match,
// updates session stats, runs progression, hands the match to the archive
// and rotates the active pair. Transitions in_game -> post_game.
func (e *Engine) CompleteMatch() (*match.Match, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInGame {
		return nil, fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	e.clock.Stop()

	score := e.ledger.Score()
	m := &match.Match{
		ID:               uuid.New().String(),
		TeamA:            *copyTeam(e.slotA),
		TeamB:            *copyTeam(e.slotB),
		Score:            score,
		PlayerStats:      e.ledger.Stats(),
		Events:           e.ledger.Events(),
		ResultsPerPlayer: resultsPerPlayer(e.slotA, e.slotB, score),
		StartedAt:        e.matchStartedAt,
		EndedAt:          time.Now(),
	}
	e.matches = append(e.matches, m)
	e.updateSessionStatsLocked(m)
	e.metrics.IncMatchesCompleted()

	e.progression.ApplyMatch(m, e.players)
	e.refreshTeamPlayersLocked()

	if err := e.archive.SaveMatch(m); err != nil {
		log.Warn("Failed to archive match, keeping it for retry", "match", m.ID, "error", err)
		e.pendingArchive = append(e.pendingArchive, m)
	}
	if err := e.notifier.SendMatchResult(m, e.dryRun); err != nil {
		log.Warn("Failed to announce match result", "error", err)
	}

	rotationStart := time.Now()
	e.rotateLocked(score)
	e.metrics.ObserveRotationDuration(time.Since(rotationStart).Seconds())

	e.ledger = nil
	e.phase = PhasePostGame
	log.Info("Match completed", "session", e.key, "match", m.ID, "score_a", score.A, "score_b", score.B)
	e.scheduleSaveLocked()
	return m, nil
}

// EndSession flushes the session to the archive and returns to config.
// Optional post-session peer ratings feed the progression penalty pass.
// Valid from pre_game and post_game.
func (e *Engine) EndSession(ratings map[string]float64) (*match.SessionReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhasePreGame && e.phase != PhasePostGame {
		return nil, fmt.Errorf("%w: %s", ErrWrongPhase, e.phase)
	}
	e.clock.Stop()

	if len(ratings) > 0 {
		e.progression.ApplyRatingPenalties(ratings, e.players)
	}

	// Opportunistic retry of matches the archive rejected earlier.
	var stillPending []*match.Match
	for _, m := range e.pendingArchive {
		if err := e.archive.SaveMatch(m); err != nil {
			log.Warn("Match archive retry failed", "match", m.ID, "error", err)
			stillPending = append(stillPending, m)
		}
	}
	e.pendingArchive = stillPending

	report := &match.SessionReport{
		SessionKey: e.key,
		Players:    e.playerListLocked(),
		Matches:    e.matches,
		Stats:      copySessionStats(e.sessionStats),
		EndedAt:    time.Now(),
	}
	if err := e.archive.SaveReport(report); err != nil {
		log.Warn("Failed to archive session report", "session", e.key, "error", err)
	}
	if err := e.notifier.SendSessionReport(report, e.dryRun); err != nil {
		log.Warn("Failed to announce session report", "error", err)
	}

	e.resetLocked()
	if err := e.snapshots.Clear(e.key); err != nil {
		log.Warn("Failed to clear session snapshot", "session", e.key, "error", err)
	}
	log.Info("Session ended", "session", e.key, "matches", len(report.Matches))
	return report, nil
}

// Abandon discards the in-progress setup and returns to config. Refused
// once matches have been recorded; those sessions must be ended properly.
func (e *Engine) Abandon() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseConfig {
		return nil
	}
	if len(e.matches) > 0 {
		return ErrMatchesRecorded
	}
	e.clock.Stop()
	e.resetLocked()
	if err := e.snapshots.Clear(e.key); err != nil {
		log.Warn("Failed to clear session snapshot", "session", e.key, "error", err)
	}
	log.Info("Session abandoned", "session", e.key)
	return nil
}

// stagePlayersLocked loads and clones the selected players into the
// session.
func (e *Engine) stagePlayersLocked(playerIDs []string) ([]roster.Player, error) {
	if len(playerIDs) < 2 {
		return nil, ErrTooFewPlayers
	}
	players, err := e.rosterStore.GetPlayers(playerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: found %d of %d selected", ErrTooFewPlayers, len(players), len(playerIDs))
	}
	e.players = make(map[string]*roster.Player, len(players))
	pool := make([]roster.Player, 0, len(players))
	for _, p := range players {
		clone := p.Clone()
		e.players[p.ID] = &clone
		pool = append(pool, clone)
	}
	return pool, nil
}

// seedTeamsLocked installs the drawn teams into the reserved slots and the
// queue, then applies bench pinning and sanitation.
func (e *Engine) seedTeamsLocked(teams []match.Team, bench []roster.Player) {
	e.slotA, e.slotB = nil, nil
	e.queue = nil
	e.bench = bench
	if len(teams) > 0 {
		t := teams[0]
		e.slotA = &t
	}
	if len(teams) > 1 {
		t := teams[1]
		e.slotB = &t
	}
	for _, t := range teams[min(2, len(teams)):] {
		e.queue = append(e.queue, t)
	}
	e.enforceBenchPreferenceLocked()
	e.sanitizeQueueLocked()
	e.streak = Streak{}
	e.matches = nil
	e.pendingArchive = nil
	e.sessionStats = make(map[string]match.SessionPlayerStats)
}

// refreshTeamPlayersLocked re-reads the session player copies into the
// team rosters so progressed skills show up in later draws and reports.
func (e *Engine) refreshTeamPlayersLocked() {
	refresh := func(players []roster.Player) {
		for i := range players {
			if p, ok := e.players[players[i].ID]; ok {
				players[i] = *p
			}
		}
	}
	if e.slotA != nil {
		refresh(e.slotA.Players)
	}
	if e.slotB != nil {
		refresh(e.slotB.Players)
	}
	for i := range e.queue {
		refresh(e.queue[i].Players)
	}
	refresh(e.bench)
}

func (e *Engine) updateSessionStatsLocked(m *match.Match) {
	for id, result := range m.ResultsPerPlayer {
		stats := e.sessionStats[id]
		switch result {
		case match.ResultWin:
			stats.Wins++
		case match.ResultDraw:
			stats.Draws++
		case match.ResultLoss:
			stats.Losses++
		}
		raw := m.PlayerStats[id]
		stats.Goals += raw.Goals
		stats.OwnGoals += raw.OwnGoals
		stats.Assists += raw.Assists
		stats.Dribbles += raw.Dribbles
		stats.Tackles += raw.Tackles
		stats.Saves += raw.Saves
		stats.Failures += raw.Failures
		e.sessionStats[id] = stats
	}
}

func (e *Engine) allTeamsLocked() []match.Team {
	var teams []match.Team
	if e.slotA != nil {
		teams = append(teams, *e.slotA)
	}
	if e.slotB != nil {
		teams = append(teams, *e.slotB)
	}
	teams = append(teams, e.queue...)
	return teams
}

func (e *Engine) playerListLocked() []roster.Player {
	out := make([]roster.Player, 0, len(e.players))
	for _, p := range e.players {
		out = append(out, *p)
	}
	return out
}

func (e *Engine) resetLocked() {
	e.cancelSaveLocked()
	e.phase = PhaseConfig
	e.slotA, e.slotB = nil, nil
	e.queue = nil
	e.bench = nil
	e.players = make(map[string]*roster.Player)
	e.ledger = nil
	e.matches = nil
	e.pendingArchive = nil
	e.sessionStats = make(map[string]match.SessionPlayerStats)
	e.streak = Streak{}
}

func resultsPerPlayer(a, b *match.Team, score ledger.Score) map[string]match.Result {
	resultA, resultB := match.ResultDraw, match.ResultDraw
	switch {
	case score.A > score.B:
		resultA, resultB = match.ResultWin, match.ResultLoss
	case score.B > score.A:
		resultA, resultB = match.ResultLoss, match.ResultWin
	}
	out := make(map[string]match.Result, len(a.Players)+len(b.Players))
	for _, p := range a.Players {
		out[p.ID] = resultA
	}
	for _, p := range b.Players {
		out[p.ID] = resultB
	}
	return out
}

func copyTeam(t *match.Team) *match.Team {
	if t == nil {
		return nil
	}
	players := make([]roster.Player, len(t.Players))
	copy(players, t.Players)
	return &match.Team{Name: t.Name, Players: players}
}

func copySessionStats(stats map[string]match.SessionPlayerStats) map[string]match.SessionPlayerStats {
	out := make(map[string]match.SessionPlayerStats, len(stats))
	for id, s := range stats {
		out[id] = s
	}
	return out
}
