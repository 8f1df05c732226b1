package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/zeusync/arena/internal/backend"
	"github.com/zeusync/arena/internal/core/arena"
	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
)

type healthRequest struct {
	Health backend.Number `json:"health"`
}

type healthResponse struct {
	Team   arena.Team `json:"team"`
	Health int        `json:"health"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Metrics is the body of GET /metrics.
type Metrics struct {
	State    string              `json:"state"`
	RunID    string              `json:"runID"`
	Clients  int                 `json:"clients"`
	Dropped  uint64              `json:"dropped"`
	Live     int                 `json:"live"`
	EventBus bus.EventBusMetrics `json:"eventBus"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := s.sim.Snapshot()
	if snap == nil {
		snap = arena.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := Metrics{
		State:   s.sim.State().String(),
		RunID:   s.sim.RunID(),
		Clients: s.hub.Clients(),
		Dropped: s.hub.Dropped(),
		Live:    len(s.sim.Snapshot()),
	}
	if s.events != nil {
		m.EventBus = s.events.GetMetrics()
	}
	writeJSON(w, http.StatusOK, m)
}

// handleSetHealth overrides a team's health. A body that does not carry a
// usable number sets health to 0.
func (s *Server) handleSetHealth(w http.ResponseWriter, r *http.Request) {
	if !s.config.AllowHealthOverride {
		writeError(w, http.StatusForbidden, ErrHealthOverrideDisabled)
		return
	}
	team, ok := arena.ParseTeam(r.PathValue("team"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrUnknownTeam)
		return
	}

	var req healthRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxMessageSize))
	if err == nil {
		_ = json.Unmarshal(body, &req)
	}
	health := int(req.Health)

	ctx, cancel := context.WithTimeout(r.Context(), s.config.CommandTimeout)
	defer cancel()
	applied, err := s.sim.SetHealth(ctx, team, health)
	if err != nil {
		s.logger.Warn("health override failed", log.String("team", team.String()), log.Error(err))
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if !applied {
		writeError(w, http.StatusConflict, ErrTeamNotLive)
		return
	}

	current, _ := s.sim.Snapshot().Health(team)
	writeJSON(w, http.StatusOK, healthResponse{Team: team, Health: current})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "simulation busy"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
