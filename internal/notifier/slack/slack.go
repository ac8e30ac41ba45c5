// Package slack sends session announcements to a Slack channel using
// Block Kit messages.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/metrics"
	"github.com/peladaclub/rachao/internal/notifier"
	"github.com/peladaclub/rachao/internal/roster"
)

// slackClient is an interface that contains the methods from the
// slack.Client that we use. This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client
// instance. Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return nil
}

func (s *Notifier) SendSessionStarted(sessionKey string, teams []match.Team, bench []roster.Player, dryRun bool) error {
	msg := s.formatSessionStarted(sessionKey, teams, bench)
	return s.sendMessage(msg, dryRun)
}

func (s *Notifier) SendMatchResult(m *match.Match, dryRun bool) error {
	msg := s.formatMatchResult(m)
	return s.sendMessage(msg, dryRun)
}

func (s *Notifier) SendSessionReport(r *match.SessionReport, dryRun bool) error {
	msg := s.formatSessionReport(r)
	return s.sendMessage(msg, dryRun)
}

// formatSessionStarted creates the Slack message for a freshly drawn
// session using Block Kit.
func (s *Notifier) formatSessionStarted(sessionKey string, teams []match.Team, bench []roster.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Pelada on! Teams are drawn ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	for _, team := range teams {
		var playerNames []string
		for _, player := range team.Players {
			playerNames = append(playerNames, fmt.Sprintf("• %s", player.Name))
		}
		teamText := fmt.Sprintf("%s:\n%s", team.Name, strings.Join(playerNames, "\n"))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", teamText, true, false), nil, nil))
	}

	if len(bench) > 0 {
		var benchNames []string
		for _, player := range bench {
			benchNames = append(benchNames, player.Name)
		}
		benchText := fmt.Sprintf("On the bench: %s", strings.Join(benchNames, ", "))
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", benchText, true, false)))
	}

	footer := slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", fmt.Sprintf("Session: %s", sessionKey), true, false))
	blocks = append(blocks, footer)

	return slack.NewBlockMessage(blocks...)
}

// formatMatchResult creates the Slack message for a finished match.
func (s *Notifier) formatMatchResult(m *match.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Match finished! ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	scoreText := fmt.Sprintf("%s %d x %d %s", m.TeamA.Name, m.Score.A, m.Score.B, m.TeamB.Name)
	if winner := winnerName(m); winner != "" {
		scoreText += fmt.Sprintf("\n%s won! 🏆", winner)
	} else {
		scoreText += "\nIt's a draw."
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", scoreText, true, false), nil, nil))

	if scorers := scorerLines(m); len(scorers) > 0 {
		scorersText := "Goals:\n" + strings.Join(scorers, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", scorersText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatSessionReport creates the Slack message for the end-of-session
// summary.
func (s *Notifier) formatSessionReport(r *match.SessionReport) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Pelada is over! 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	summaryText := fmt.Sprintf("%d matches played", len(r.Matches))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", summaryText, true, false), nil, nil))

	type ranked struct {
		name  string
		stats match.SessionPlayerStats
	}
	nameByID := make(map[string]string, len(r.Players))
	for _, p := range r.Players {
		nameByID[p.ID] = p.Name
	}
	var rankings []ranked
	for id, stats := range r.Stats {
		name := nameByID[id]
		if name == "" {
			name = id
		}
		rankings = append(rankings, ranked{name, stats})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].stats.Goals != rankings[j].stats.Goals {
			return rankings[i].stats.Goals > rankings[j].stats.Goals
		}
		return rankings[i].name < rankings[j].name
	})

	for i, entry := range rankings {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
		playerText := fmt.Sprintf("%d. %s %s\n> Goals: %d | Assists: %d | W-D-L: %d-%d-%d",
			rank,
			medal,
			entry.name,
			entry.stats.Goals,
			entry.stats.Assists,
			entry.stats.Wins,
			entry.stats.Draws,
			entry.stats.Losses,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	footer := slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", fmt.Sprintf("Session: %s", r.SessionKey), true, false))
	blocks = append(blocks, footer)

	return slack.NewBlockMessage(blocks...)
}

func winnerName(m *match.Match) string {
	switch {
	case m.Score.A > m.Score.B:
		return m.TeamA.Name
	case m.Score.B > m.Score.A:
		return m.TeamB.Name
	}
	return ""
}

func scorerLines(m *match.Match) []string {
	var lines []string
	for _, e := range m.Events {
		switch e.Type {
		case ledger.EventGoal:
			lines = append(lines, fmt.Sprintf("• %s (%d')", e.PlayerName, e.Minute))
		case ledger.EventOwnGoal:
			lines = append(lines, fmt.Sprintf("• %s (og, %d')", e.PlayerName, e.Minute))
		}
	}
	return lines
}
