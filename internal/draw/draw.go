// Package draw partitions a player pool into teams for a session. The
// "draw" is fully deterministic: given the same pool order and ratings it
// always produces the same teams.
package draw

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/peladaclub/rachao/internal/rating"
	"github.com/peladaclub/rachao/internal/roster"
)

// Result holds the outcome of a team draw. Overflow players land on the
// bench, never dropped.
type Result struct {
	Teams [][]roster.Player `json:"teams"`
	Bench []roster.Player   `json:"bench"`
}

// Build partitions the pool into numberOfTeams teams. Players are rated via
// the skill map selected by drawType and stable-sorted by position priority
// (keepers first, forwards last) then rating descending.
//
// With playersPerTeam == 0 the sorted pool is dealt round-robin by strict
// modulo index, so team sizes differ by at most one. With a positive cap,
// teams fill sequentially up to the cap and the remainder is benched.
func Build(pool []roster.Player, numberOfTeams, playersPerTeam int, drawType roster.DrawType) (*Result, error) {
	if numberOfTeams < 2 {
		return nil, fmt.Errorf("invalid draw: need at least 2 teams, got %d", numberOfTeams)
	}
	if playersPerTeam < 0 {
		return nil, fmt.Errorf("invalid draw: playersPerTeam must be >= 0, got %d", playersPerTeam)
	}

	sorted := dedupe(pool)
	ratings := make(map[string]int, len(sorted))
	for _, p := range sorted {
		ratings[p.ID] = rating.Overall(p.Skills(drawType))
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := roster.DrawPriority(sorted[i].Position), roster.DrawPriority(sorted[j].Position)
		if pi != pj {
			return pi < pj
		}
		return ratings[sorted[i].ID] > ratings[sorted[j].ID]
	})

	result := &Result{
		Teams: make([][]roster.Player, numberOfTeams),
		Bench: []roster.Player{},
	}
	for i := range result.Teams {
		result.Teams[i] = []roster.Player{}
	}

	if playersPerTeam == 0 {
		for i, p := range sorted {
			team := i % numberOfTeams
			result.Teams[team] = append(result.Teams[team], p)
		}
	} else {
		for _, p := range sorted {
			placed := false
			for t := 0; t < numberOfTeams; t++ {
				if len(result.Teams[t]) < playersPerTeam {
					result.Teams[t] = append(result.Teams[t], p)
					placed = true
					break
				}
			}
			if !placed {
				result.Bench = append(result.Bench, p)
			}
		}
	}

	log.Debug("Team draw complete", "teams", numberOfTeams, "pool", len(sorted), "benched", len(result.Bench))
	return result, nil
}

// dedupe drops repeated player ids, keeping the first occurrence in pool
// order.
func dedupe(pool []roster.Player) []roster.Player {
	seen := make(map[string]bool, len(pool))
	out := make([]roster.Player, 0, len(pool))
	for _, p := range pool {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}
