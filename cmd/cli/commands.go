package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(abandonCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(metricsCmd)

	matchCmd.AddCommand(matchStartCmd)
	matchCmd.AddCommand(matchEventCmd)
	matchCmd.AddCommand(matchUndoCmd)
	matchCmd.AddCommand(matchPauseCmd)
	matchCmd.AddCommand(matchResumeCmd)
	matchCmd.AddCommand(matchExtendCmd)
	matchCmd.AddCommand(matchCompleteCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the current session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/session/state")
	},
}

var configureCmd = &cobra.Command{
	Use:   "configure [config-json]",
	Short: "Configure the session before the draw",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/session/configure", []byte(args[0]))
	},
}

var startCmd = &cobra.Command{
	Use:   "start [player-ids-json]",
	Short: "Start the session with the given players",
	Long:  `Start the session. Pass a JSON body like {"player_ids":["p1","p2"],"manual":false}.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/session/start", []byte(args[0]))
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams [teams-json]",
	Short: "Assign teams manually after a manual start",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/session/teams", []byte(args[0]))
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Control the active match",
}

var matchStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Kick off the next match",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/start", nil)
	},
}

var matchEventCmd = &cobra.Command{
	Use:   "event [action-json]",
	Short: "Record a match event",
	Long:  `Record a match event. Pass a JSON body like {"type":"goal","player_id":"p1","team_key":"A"}.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/event", []byte(args[0]))
	},
}

var matchUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the most recent match event",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/undo", nil)
	},
}

var matchPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the match clock",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/pause", nil)
	},
}

var matchResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the match clock",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/resume", nil)
	},
}

var matchExtendCmd = &cobra.Command{
	Use:   "extend [seconds]",
	Short: "Add seconds to the match clock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/extend?seconds="+args[0], nil)
	},
}

var matchCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete the match and rotate the teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/complete", nil)
	},
}

var endCmd = &cobra.Command{
	Use:   "end [ratings-json]",
	Short: "End the session and publish the report",
	Long:  `End the session. Optionally pass a JSON body like {"ratings":{"p1":4.5}} to apply peer ratings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body []byte
		if len(args) == 1 {
			body = []byte(args[0])
		}
		return performPostRequest("/session/end", body)
	},
}

var abandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Abandon the session before any match is recorded",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/session/abandon", nil)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed [players-json-file]",
	Short: "Seed the roster from a JSON file of players",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read players file: %w", err)
		}
		return performPostRequest("/players/seed", body)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, body []byte) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
