package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/SCREE/internal/config"
	"github.com/copyleftdev/SCREE/internal/logging"
	"github.com/copyleftdev/SCREE/internal/storage"
)

func newTestServer(t *testing.T, workers int) (*Server, *httptest.Server, *storage.SQLiteStore) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Optimization.WorkerCount = workers
	cfg.Optimization.MaxAttempts = 100
	cfg.Optimization.Restarts = 1
	cfg.Optimization.PopSize = 50
	cfg.Optimization.MutationProb = 0.1
	cfg.Optimization.KeepPct = 0.2

	store, err := storage.NewSQLiteStore(":memory:", 1)
	require.NoError(t, err)

	logger := logging.New(logging.ErrorLevel, io.Discard)
	srv := NewServer(cfg, logger, store)

	router := chi.NewRouter()
	srv.RegisterRoutes(router)
	ts := httptest.NewServer(router)

	t.Cleanup(func() {
		ts.Close()
		srv.Close()
		store.Close()
	})
	return srv, ts, store
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func waitForStatus(t *testing.T, srv *Server, id, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		state, ok := srv.RunStatus(id)
		if !ok {
			return false
		}
		srv.runsMu.RLock()
		defer srv.runsMu.RUnlock()
		return state.Status == want
	}, 10*time.Second, 10*time.Millisecond, "run %s never reached status %q", id, want)
}

func TestStartRunREST(t *testing.T) {
	srv, ts, store := newTestServer(t, 2)

	seed := int64(42)
	resp, body := postJSON(t, ts.URL+"/api/v1/runs", RunRequest{
		Algorithm: "hill_climb",
		Problem:   "one_max",
		Length:    8,
		Restarts:  5,
		Seed:      &seed,
	})

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	id, ok := body["run_id"].(string)
	require.True(t, ok, "response must carry a run_id")

	waitForStatus(t, srv, id, "completed")

	statusResp, status := getJSON(t, ts.URL+"/api/v1/runs/"+id)
	require.Equal(t, http.StatusOK, statusResp.StatusCode)
	assert.Equal(t, "completed", status["status"])

	best, ok := status["best_solution"].(map[string]interface{})
	require.True(t, ok, "completed runs must expose the best solution")
	assert.Equal(t, 8.0, best["fitness"], "hill climbing solves 8-bit one_max exactly")

	t.Run("the run is archived", func(t *testing.T) {
		rec, err := store.GetRun(id)
		require.NoError(t, err)
		assert.Equal(t, "completed", rec.Status)
		assert.Equal(t, 8.0, rec.BestFitness)
		assert.Equal(t, seed, rec.Seed)
	})
}

func TestStartRunValidation(t *testing.T) {
	_, ts, _ := newTestServer(t, 2)

	resp, body := postJSON(t, ts.URL+"/api/v1/runs", RunRequest{
		Algorithm: "gradient_descent",
		Problem:   "one_max",
		Length:    8,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown algorithm")

	resp, body = postJSON(t, ts.URL+"/api/v1/runs", RunRequest{
		Algorithm: "hill_climb",
		Problem:   "rastrigin",
		Length:    8,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown problem")
}

func TestRunStatusNotFound(t *testing.T) {
	_, ts, _ := newTestServer(t, 2)

	resp, _ := getJSON(t, ts.URL+"/api/v1/runs/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListRuns(t *testing.T) {
	srv, ts, _ := newTestServer(t, 2)

	seed := int64(7)
	_, body := postJSON(t, ts.URL+"/api/v1/runs", RunRequest{
		Algorithm: "random_hill_climb",
		Problem:   "flip_flop",
		Length:    10,
		Seed:      &seed,
	})
	id := body["run_id"].(string)
	waitForStatus(t, srv, id, "completed")

	resp, list := getJSON(t, ts.URL+"/api/v1/runs")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	runs, ok := list["runs"].([]interface{})
	require.True(t, ok)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].(map[string]interface{})["run_id"])
}

func TestCancelPendingRun(t *testing.T) {
	// Zero workers: accepted runs stay pending, so cancellation is
	// deterministic.
	srv, ts, _ := newTestServer(t, 0)

	_, body := postJSON(t, ts.URL+"/api/v1/runs", RunRequest{
		Algorithm: "simulated_annealing",
		Problem:   "one_max",
		Length:    8,
	})
	id := body["run_id"].(string)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/runs/"+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	srv.runsMu.RLock()
	status := srv.runs[id].Status
	srv.runsMu.RUnlock()
	assert.Equal(t, "cancelled", status)

	t.Run("terminal runs cannot be cancelled again", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/runs/"+id, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestJSONRPC(t *testing.T) {
	srv, ts, _ := newTestServer(t, 2)

	t.Run("run.start and run.status", func(t *testing.T) {
		_, body := postJSON(t, ts.URL+"/rpc", map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"method":  "run.start",
			"params": map[string]interface{}{
				"algorithm": "genetic",
				"problem":   "one_max",
				"length":    8,
				"seed":      11,
			},
		})
		result, ok := body["result"].(map[string]interface{})
		require.True(t, ok, "expected a result, got %v", body)
		id := result["run_id"].(string)

		waitForStatus(t, srv, id, "completed")

		_, statusBody := postJSON(t, ts.URL+"/rpc", map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      2,
			"method":  "run.status",
			"params":  map[string]interface{}{"run_id": id},
		})
		status := statusBody["result"].(map[string]interface{})
		assert.Equal(t, "completed", status["status"])
		assert.NotNil(t, status["best_solution"])
	})

	t.Run("unknown method", func(t *testing.T) {
		_, body := postJSON(t, ts.URL+"/rpc", map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      3,
			"method":  "run.bogus",
		})
		rpcErr := body["error"].(map[string]interface{})
		assert.Equal(t, float64(-32601), rpcErr["code"])
	})

	t.Run("rejects non-2.0 requests", func(t *testing.T) {
		_, body := postJSON(t, ts.URL+"/rpc", map[string]interface{}{
			"jsonrpc": "1.0",
			"id":      4,
			"method":  "run.status",
		})
		rpcErr := body["error"].(map[string]interface{})
		assert.Equal(t, float64(-32600), rpcErr["code"])
	})

	t.Run("run.status for an unknown run", func(t *testing.T) {
		_, body := postJSON(t, ts.URL+"/rpc", map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      5,
			"method":  "run.status",
			"params":  map[string]interface{}{"run_id": "nope"},
		})
		rpcErr := body["error"].(map[string]interface{})
		assert.Equal(t, float64(-32000), rpcErr["code"])
	})
}

func TestBuildSchedule(t *testing.T) {
	t.Run("defaults to geometric decay", func(t *testing.T) {
		s, err := buildSchedule(nil)
		require.NoError(t, err)
		assert.Equal(t, 10.0, s.Evaluate(0))
	})

	t.Run("constant schedule", func(t *testing.T) {
		s, err := buildSchedule(&ScheduleSpec{Type: "constant", InitTemp: 2})
		require.NoError(t, err)
		assert.Equal(t, 2.0, s.Evaluate(100))
	})

	t.Run("invalid parameters become errors", func(t *testing.T) {
		_, err := buildSchedule(&ScheduleSpec{Type: "geometric", Decay: 2})
		assert.Error(t, err)

		_, err = buildSchedule(&ScheduleSpec{Type: "brownian"})
		assert.Error(t, err)
	})
}
