// Package server exposes the stochastic search drivers as a job-oriented
// HTTP service: REST endpoints for starting, inspecting and cancelling runs,
// plus a JSON-RPC 2.0 surface for the same operations.
package server

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/copyleftdev/SCREE/internal/config"
	"github.com/copyleftdev/SCREE/internal/errors"
	"github.com/copyleftdev/SCREE/internal/logging"
	"github.com/copyleftdev/SCREE/internal/optimization"
	"github.com/copyleftdev/SCREE/internal/storage"
)

// Logger is the logging surface the server needs; *logging.Logger satisfies
// it.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// RunStore archives finished runs. *storage.SQLiteStore satisfies it.
type RunStore interface {
	SaveRun(rec *storage.RunRecord) error
}

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scree_runs_total",
		Help: "Search runs by algorithm and terminal status.",
	}, []string{"algorithm", "status"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scree_run_duration_seconds",
		Help:    "Wall-clock duration of completed search runs.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"algorithm"})
)

// RunState tracks one search job from acceptance to a terminal status.
type RunState struct {
	ID          string
	Request     RunRequest
	Status      string // "pending", "running", "completed", "failed", "cancelled"
	Seed        int64
	StartTime   time.Time
	EndTime     *time.Time
	Solution    *optimization.Solution
	Err         string
	LastUpdated time.Time

	cancel context.CancelFunc
}

// Server manages search jobs over a bounded worker pool.
type Server struct {
	cfg       *config.Config
	logger    Logger
	zapLogger *zap.Logger
	store     RunStore
	defaults  RunDefaults

	runs   map[string]*RunState
	runsMu sync.RWMutex

	workers chan struct{}
	wg      sync.WaitGroup
}

// NewServer creates a server. The store may be nil, in which case finished
// runs are not archived.
func NewServer(cfg *config.Config, logger *logging.Logger, store RunStore) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		zapLogger: logging.NewZapLogger(logger),
		store:     store,
		defaults: RunDefaults{
			MaxAttempts:  cfg.Optimization.MaxAttempts,
			Restarts:     cfg.Optimization.Restarts,
			PopSize:      cfg.Optimization.PopSize,
			MutationProb: cfg.Optimization.MutationProb,
			KeepPct:      cfg.Optimization.KeepPct,
		},
		runs:    make(map[string]*RunState),
		workers: make(chan struct{}, cfg.Optimization.WorkerCount),
	}
}

// RegisterRoutes mounts the REST and JSON-RPC surfaces on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", s.handleStartRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleRunStatus)
		r.Delete("/runs/{id}", s.handleCancelRun)
	})

	r.Post("/rpc", s.handleJSONRPC)
}

// StartRun validates the request, registers a pending job and schedules it on
// the worker pool.
func (s *Server) StartRun(req RunRequest) (*RunState, error) {
	seed := s.cfg.Optimization.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Fail fast on bad requests instead of surfacing the error from a
	// worker later.
	rng := rand.New(rand.NewSource(seed))
	if _, err := buildProblem(&req, rng, zap.NewNop()); err != nil {
		return nil, err
	}
	if !validAlgorithm(req.Algorithm) {
		return nil, errors.Errorf("unknown algorithm %q", req.Algorithm).WithComponent("server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	state := &RunState{
		ID:          uuid.NewString(),
		Request:     req,
		Status:      "pending",
		Seed:        seed,
		StartTime:   now,
		LastUpdated: now,
		cancel:      cancel,
	}

	s.runsMu.Lock()
	s.runs[state.ID] = state
	s.runsMu.Unlock()

	s.wg.Add(1)
	go s.runJob(ctx, state)

	s.logger.Info("run accepted", map[string]interface{}{
		"run_id":    state.ID,
		"algorithm": req.Algorithm,
		"problem":   req.Problem,
		"seed":      seed,
	})
	return state, nil
}

func validAlgorithm(name string) bool {
	switch name {
	case "hill_climb", "random_hill_climb", "simulated_annealing", "genetic", "mimic":
		return true
	}
	return false
}

// runJob executes one search job on the worker pool. Cancellation is
// job-granular: a cancelled job is skipped if it has not started, and its
// result discarded if it has.
func (s *Server) runJob(ctx context.Context, state *RunState) {
	defer s.wg.Done()

	select {
	case s.workers <- struct{}{}:
		defer func() { <-s.workers }()
	case <-ctx.Done():
		return
	}

	s.runsMu.Lock()
	if state.Status != "pending" {
		s.runsMu.Unlock()
		return
	}
	state.Status = "running"
	state.LastUpdated = time.Now()
	s.runsMu.Unlock()

	started := time.Now()
	rng := rand.New(rand.NewSource(state.Seed))
	bestState, bestFitness, err := ExecuteRun(&state.Request, s.defaults, rng, s.zapLogger)
	elapsed := time.Since(started)

	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	if state.Status == "cancelled" {
		return
	}

	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	if err != nil {
		state.Status = "failed"
		state.Err = err.Error()
		s.logger.Error("run failed", map[string]interface{}{
			"run_id": state.ID,
			"error":  err.Error(),
		})
	} else {
		state.Status = "completed"
		state.Solution = &optimization.Solution{State: bestState, Fitness: bestFitness}
		s.logger.Info("run completed", map[string]interface{}{
			"run_id":       state.ID,
			"algorithm":    state.Request.Algorithm,
			"best_fitness": bestFitness,
			"duration_ms":  elapsed.Milliseconds(),
		})
	}

	runsTotal.WithLabelValues(state.Request.Algorithm, state.Status).Inc()
	runDuration.WithLabelValues(state.Request.Algorithm).Observe(elapsed.Seconds())

	s.archive(state, elapsed)
}

// archive persists the terminal run state; failures are logged, not fatal.
func (s *Server) archive(state *RunState, elapsed time.Duration) {
	if s.store == nil {
		return
	}

	rec := &storage.RunRecord{
		ID:        state.ID,
		Algorithm: state.Request.Algorithm,
		Problem:   state.Request.Problem,
		Seed:      state.Seed,
		Status:    state.Status,
		Error:     state.Err,
		Duration:  elapsed,
		CreatedAt: state.StartTime,
	}
	if state.Solution != nil {
		rec.BestFitness = state.Solution.Fitness
		rec.BestState = state.Solution.State
	}
	if rec.BestState == nil {
		rec.BestState = optimization.State{}
	}

	if err := s.store.SaveRun(rec); err != nil {
		s.logger.Error("archiving run failed", map[string]interface{}{
			"run_id": state.ID,
			"error":  err.Error(),
		})
	}
}

// RunStatus returns the state of a run, or false when the ID is unknown.
func (s *Server) RunStatus(id string) (*RunState, bool) {
	s.runsMu.RLock()
	defer s.runsMu.RUnlock()
	state, ok := s.runs[id]
	return state, ok
}

// CancelRun moves a non-terminal run to cancelled.
func (s *Server) CancelRun(id string) error {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	state, ok := s.runs[id]
	if !ok {
		return errors.New("run not found").WithComponent("server")
	}

	switch state.Status {
	case "completed", "failed", "cancelled":
		return errors.Errorf("cannot cancel run with status %q", state.Status).WithComponent("server")
	}

	state.cancel()
	state.Status = "cancelled"
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	runsTotal.WithLabelValues(state.Request.Algorithm, "cancelled").Inc()
	s.logger.Info("run cancelled", map[string]interface{}{"run_id": id})
	return nil
}

// Close cancels every non-terminal run and waits for workers to drain.
func (s *Server) Close() error {
	s.runsMu.Lock()
	for _, state := range s.runs {
		switch state.Status {
		case "pending", "running":
			state.cancel()
			state.Status = "cancelled"
			state.LastUpdated = time.Now()
		}
	}
	s.runsMu.Unlock()

	s.wg.Wait()
	return nil
}

// statusView renders a run state for both the REST and JSON-RPC surfaces.
func statusView(state *RunState) map[string]interface{} {
	view := map[string]interface{}{
		"run_id":      state.ID,
		"status":      state.Status,
		"algorithm":   state.Request.Algorithm,
		"problem":     state.Request.Problem,
		"seed":        state.Seed,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
	}
	if state.EndTime != nil {
		view["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.Solution != nil {
		view["best_solution"] = state.Solution
	}
	if state.Err != "" {
		view["error"] = state.Err
	}
	return view
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request body: " + err.Error()})
		return
	}

	state, err := s.StartRun(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"run_id": state.ID,
		"status": state.Status,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	s.runsMu.RLock()
	views := make([]map[string]interface{}, 0, len(s.runs))
	for _, state := range s.runs {
		views = append(views, statusView(state))
	}
	s.runsMu.RUnlock()

	sort.Slice(views, func(i, j int) bool {
		return views[i]["start_time"].(string) > views[j]["start_time"].(string)
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": views})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, ok := s.RunStatus(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "run not found"})
		return
	}

	s.runsMu.RLock()
	view := statusView(state)
	s.runsMu.RUnlock()
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.CancelRun(id); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// handleJSONRPC serves the JSON-RPC 2.0 methods run.start, run.status and
// run.cancel.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      interface{}     `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeRPCError(w, -32700, "Parse error", nil)
		return
	}
	if request.JSONRPC != "2.0" {
		s.writeRPCError(w, -32600, "Invalid Request", request.ID)
		return
	}

	var (
		result interface{}
		err    error
	)
	switch request.Method {
	case "run.start":
		result, err = s.rpcStartRun(request.Params)
	case "run.status":
		result, err = s.rpcRunStatus(request.Params)
	case "run.cancel":
		result, err = s.rpcCancelRun(request.Params)
	default:
		s.writeRPCError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.writeRPCError(w, -32000, err.Error(), request.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	})
}

func (s *Server) rpcStartRun(params json.RawMessage) (interface{}, error) {
	var req RunRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, errors.Wrap(err, "invalid run parameters").WithComponent("server")
	}

	state, err := s.StartRun(req)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"run_id": state.ID,
		"status": state.Status,
	}, nil
}

type runIDParams struct {
	RunID string `json:"run_id"`
}

func (s *Server) rpcRunStatus(params json.RawMessage) (interface{}, error) {
	var p runIDParams
	if err := json.Unmarshal(params, &p); err != nil || p.RunID == "" {
		return nil, errors.New("run_id is required").WithComponent("server")
	}

	state, ok := s.RunStatus(p.RunID)
	if !ok {
		return nil, errors.New("run not found").WithComponent("server")
	}

	s.runsMu.RLock()
	defer s.runsMu.RUnlock()
	return statusView(state), nil
}

func (s *Server) rpcCancelRun(params json.RawMessage) (interface{}, error) {
	var p runIDParams
	if err := json.Unmarshal(params, &p); err != nil || p.RunID == "" {
		return nil, errors.New("run_id is required").WithComponent("server")
	}

	if err := s.CancelRun(p.RunID); err != nil {
		return nil, err
	}
	return map[string]string{"status": "cancelled"}, nil
}

func (s *Server) writeRPCError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("rpc error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
