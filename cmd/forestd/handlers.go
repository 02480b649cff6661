// handlers.go - REST surface over the state manager.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"encforest/internal/ledger"
	"encforest/internal/mpc"
)

// Server wires the manager, store and observability pieces under one mux.
type Server struct {
	mgr     *ledger.Manager
	store   ledger.Store
	hub     *Hub
	metrics *MetricsCollector
	health  *HealthChecker
	log     zerolog.Logger
	timeout time.Duration
}

// NewServer builds the HTTP server plumbing.
func NewServer(mgr *ledger.Manager, store ledger.Store, hub *Hub, metrics *MetricsCollector, health *HealthChecker, log zerolog.Logger, timeout time.Duration) *Server {
	return &Server{
		mgr:     mgr,
		store:   store,
		hub:     hub,
		metrics: metrics,
		health:  health,
		log:     log.With().Str("component", "http").Logger(),
		timeout: timeout,
	}
}

// Routes registers all endpoints on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("POST /games/{id}/players", s.handleJoin)
	mux.HandleFunc("POST /games/{id}/spawn", s.handleSpawn)
	mux.HandleFunc("POST /games/{id}/verify-spawn", s.handleVerifySpawn)
	mux.HandleFunc("POST /games/{id}/planets", s.handleCreatePlanet)
	mux.HandleFunc("POST /games/{id}/moves", s.handleMove)
	mux.HandleFunc("POST /games/{id}/planets/{hash}/flush", s.handleFlush)
	mux.HandleFunc("POST /games/{id}/upgrade", s.handleUpgrade)
	mux.HandleFunc("POST /games/{id}/broadcast", s.handleBroadcast)
	mux.HandleFunc("DELETE /games/{id}", s.handleCleanupGame)
	mux.HandleFunc("GET /games/{id}/planets/{hash}", s.handleGetPlanet)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		s.hub.ServeWS(w, r)
	})
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("response encode failed")
	}
}

// writeError maps ledger sentinel errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrAlreadyExists),
		errors.Is(err, ledger.ErrAlreadySpawned),
		errors.Is(err, ledger.ErrPlanetBusy),
		errors.Is(err, ledger.ErrFlushRequired),
		errors.Is(err, ledger.ErrQueueFull),
		errors.Is(err, ledger.ErrNotLanded),
		errors.Is(err, ledger.ErrQueueEmpty):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrNotWhitelisted),
		errors.Is(err, ledger.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrBadConfig),
		errors.Is(err, ledger.ErrOutOfBounds),
		errors.Is(err, ledger.ErrNotSpawned),
		errors.Is(err, ledger.ErrGameNotRunning),
		errors.Is(err, ledger.ErrGameNotEnded),
		errors.Is(err, mpc.ErrBadPubkey):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.metrics.RecordError(http.StatusText(status))
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

func gameID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(r.PathValue("id"), 10, 64)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var g ledger.Game
	if !s.decode(w, r, &g) {
		return
	}
	if err := s.mgr.CreateGame(&g); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	var req struct {
		Account string `json:"account"`
		Pubkey  []byte `json:"pubkey"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	player, err := s.mgr.InitPlayer(id, req.Account, req.Pubkey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, player)
}

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	var req struct {
		Account string `json:"account"`
		X       int64  `json:"x"`
		Y       int64  `json:"y"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := s.roundContext(r)
	defer cancel()
	start := time.Now()
	res, err := s.mgr.Spawn(ctx, id, req.Account, req.X, req.Y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.RecordRound("spawn", time.Since(start))
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleVerifySpawn(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	var req struct {
		X    int64  `json:"x"`
		Y    int64  `json:"y"`
		Hash string `json:"hash"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := s.roundContext(r)
	defer cancel()
	valid, spawnValid, err := s.mgr.VerifySpawnClaim(ctx, id, req.X, req.Y, req.Hash)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"valid": valid, "spawn_valid": spawnValid})
}

func (s *Server) handleCreatePlanet(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	var req struct {
		X int64 `json:"x"`
		Y int64 `json:"y"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := s.roundContext(r)
	defer cancel()
	start := time.Now()
	res, err := s.mgr.CreatePlanet(ctx, id, req.X, req.Y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.RecordRound("create_planet", time.Since(start))
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	var req struct {
		Account string `json:"account"`
		SourceX int64  `json:"source_x"`
		SourceY int64  `json:"source_y"`
		TargetX int64  `json:"target_x"`
		TargetY int64  `json:"target_y"`
		Ships   uint64 `json:"ships"`
		Metal   uint64 `json:"metal"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := s.roundContext(r)
	defer cancel()
	start := time.Now()
	res, err := s.mgr.MoveShips(ctx, id, req.Account, req.SourceX, req.SourceY, req.TargetX, req.TargetY, req.Ships, req.Metal)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.RecordRound("move", time.Since(start))
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	ctx, cancel := s.roundContext(r)
	defer cancel()
	start := time.Now()
	res, err := s.mgr.FlushPlanet(ctx, id, r.PathValue("hash"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.RecordRound("flush", time.Since(start))
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	var req struct {
		Account string `json:"account"`
		X       int64  `json:"x"`
		Y       int64  `json:"y"`
		Focus   uint64 `json:"focus"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := s.roundContext(r)
	defer cancel()
	start := time.Now()
	res, err := s.mgr.UpgradePlanet(ctx, id, req.Account, req.X, req.Y, req.Focus)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.RecordRound("upgrade", time.Since(start))
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	var req struct {
		Account string `json:"account"`
		X       int64  `json:"x"`
		Y       int64  `json:"y"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	planet, err := s.mgr.Broadcast(id, req.Account, req.X, req.Y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, planet)
}

func (s *Server) handleCleanupGame(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	var req struct {
		Account string `json:"account"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.mgr.CleanupGame(id, req.Account); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleGetPlanet(w http.ResponseWriter, r *http.Request) {
	id, err := gameID(r)
	if err != nil {
		s.writeError(w, ledger.ErrNotFound)
		return
	}
	planet, err := s.store.GetPlanet(id, r.PathValue("hash"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	queue, err := s.store.GetQueue(id, planet.Hash)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"planet":        planet,
		"pending_moves": queue.Len(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.health.CheckHealth()
	status := http.StatusOK
	if health.OverallStatus == Unhealthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, health)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.GetMetricsSummary())
}

func (s *Server) roundContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}
