package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/peladaclub/rachao/internal/ledger"
	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/roster"
	"github.com/peladaclub/rachao/internal/session"
)

// sessionStateResponse is the JSON view of the engine returned by
// /session/state.
type sessionStateResponse struct {
	Phase            session.Phase   `json:"phase"`
	Config           session.Config  `json:"config"`
	SlotA            *match.Team     `json:"slot_a,omitempty"`
	SlotB            *match.Team     `json:"slot_b,omitempty"`
	Queue            []match.Team    `json:"queue"`
	Bench            []roster.Player `json:"bench"`
	Score            ledger.Score    `json:"score"`
	Streak           session.Streak  `json:"streak"`
	RemainingSeconds int             `json:"remaining_seconds"`
	ClockDegraded    bool            `json:"clock_degraded"`
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Roster.AllPlayers()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) SeedPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var players []roster.Player
		if err := json.NewDecoder(r.Body).Decode(&players); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.Roster.UpsertPlayers(players); err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		log.Info("Seeded players", "count", len(players))
		respondJSON(w, http.StatusOK, map[string]int{"seeded": len(players)})
	}
}

func (s *Server) SessionStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotA, slotB := s.Engine.ActivePair()
		resp := sessionStateResponse{
			Phase:            s.Engine.Phase(),
			Config:           s.Engine.Config(),
			SlotA:            slotA,
			SlotB:            slotB,
			Queue:            s.Engine.Queue(),
			Bench:            s.Engine.Bench(),
			Score:            s.Engine.Score(),
			Streak:           s.Engine.Streak(),
			RemainingSeconds: s.Engine.Clock().Remaining(),
			ClockDegraded:    s.Engine.Clock().Degraded(),
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) ConfigureHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg session.Config
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.Engine.Configure(cfg); err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, s.Engine.Config())
	}
}

func (s *Server) StartSessionHandler() http.HandlerFunc {
	type request struct {
		PlayerIDs []string `json:"player_ids"`
		Manual    bool     `json:"manual"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		var err error
		if req.Manual {
			err = s.Engine.StartManual(req.PlayerIDs)
		} else {
			err = s.Engine.StartAuto(req.PlayerIDs)
		}
		if err != nil {
			respondEngineError(w, err)
			return
		}
		s.MetricsStore.Increment("sessions_started")
		respondJSON(w, http.StatusOK, map[string]session.Phase{"phase": s.Engine.Phase()})
	}
}

func (s *Server) AssignTeamsHandler() http.HandlerFunc {
	type request struct {
		Teams [][]string `json:"teams"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.Engine.AssignTeams(req.Teams); err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]session.Phase{"phase": s.Engine.Phase()})
	}
}

func (s *Server) StartMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.StartMatch(); err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]int{"remaining_seconds": s.Engine.Clock().Remaining()})
	}
}

func (s *Server) RecordEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var action ledger.Action
		if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		event, err := s.Engine.RecordEvent(action)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, event)
	}
}

func (s *Server) UndoEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]bool{"undone": s.Engine.UndoEvent()})
	}
}

func (s *Server) PauseClockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Engine.Clock().Pause()
		respondJSON(w, http.StatusOK, map[string]int{"remaining_seconds": s.Engine.Clock().Remaining()})
	}
}

func (s *Server) ResumeClockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Engine.Clock().Resume()
		respondJSON(w, http.StatusOK, map[string]int{"remaining_seconds": s.Engine.Clock().Remaining()})
	}
}

func (s *Server) ExtendClockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seconds, err := strconv.Atoi(r.URL.Query().Get("seconds"))
		if err != nil || seconds <= 0 {
			respondError(w, http.StatusBadRequest, fmt.Errorf("seconds must be a positive integer"))
			return
		}
		s.Engine.Clock().AddSeconds(seconds)
		respondJSON(w, http.StatusOK, map[string]int{"remaining_seconds": s.Engine.Clock().Remaining()})
	}
}

func (s *Server) CompleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.Engine.CompleteMatch()
		if err != nil {
			respondEngineError(w, err)
			return
		}
		s.MetricsStore.Increment("matches_completed")
		respondJSON(w, http.StatusOK, m)
	}
}

func (s *Server) EndSessionHandler() http.HandlerFunc {
	type request struct {
		Ratings map[string]float64 `json:"ratings,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, err)
				return
			}
		}
		report, err := s.Engine.EndSession(req.Ratings)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}

func (s *Server) AbandonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.Abandon(); err != nil {
			respondEngineError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]session.Phase{"phase": s.Engine.Phase()})
	}
}

// CountersHandler exposes the durable counters, which survive restarts
// unlike the Prometheus registry.
func (s *Server) CountersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.MetricsStore.GetAll()
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, counters)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// respondEngineError maps engine errors to HTTP status codes: validation
// and phase errors are the caller's fault, everything else is ours.
func respondEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrWrongPhase),
		errors.Is(err, session.ErrMatchesRecorded):
		status = http.StatusConflict
	case errors.Is(err, session.ErrInvalidConfig),
		errors.Is(err, session.ErrTooFewPlayers),
		errors.Is(err, session.ErrEmptyTeam),
		errors.Is(err, session.ErrNoChallenger),
		errors.Is(err, session.ErrUnknownPlayer):
		status = http.StatusBadRequest
	}
	respondError(w, status, err)
}
