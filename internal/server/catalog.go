package server

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/copyleftdev/SCREE/internal/errors"
	"github.com/copyleftdev/SCREE/internal/optimization"
	"github.com/copyleftdev/SCREE/internal/optimization/discrete"
	"github.com/copyleftdev/SCREE/internal/optimization/fitness"
	"github.com/copyleftdev/SCREE/internal/optimization/schedule"
)

// RunRequest describes one search run: which algorithm to drive over which
// named problem, with optional parameter overrides. Zero-valued fields fall
// back to the server defaults.
type RunRequest struct {
	Algorithm string `json:"algorithm"`
	Problem   string `json:"problem"`
	Length    int    `json:"length"`
	Seed      *int64 `json:"seed,omitempty"`

	MaxAttempts  int     `json:"max_attempts,omitempty"`
	Restarts     int     `json:"restarts,omitempty"`
	PopSize      int     `json:"pop_size,omitempty"`
	MutationProb float64 `json:"mutation_prob,omitempty"`
	KeepPct      float64 `json:"keep_pct,omitempty"`

	// Problem tuning. TPct applies to four_peaks and continuous_peaks;
	// the weights, values and capacity fraction to knapsack.
	TPct         float64   `json:"t_pct,omitempty"`
	Weights      []float64 `json:"weights,omitempty"`
	Values       []float64 `json:"values,omitempty"`
	MaxWeightPct float64   `json:"max_weight_pct,omitempty"`

	Schedule *ScheduleSpec `json:"schedule,omitempty"`
}

// ScheduleSpec selects the annealing temperature schedule.
type ScheduleSpec struct {
	Type     string  `json:"type"`
	InitTemp float64 `json:"init_temp,omitempty"`
	Decay    float64 `json:"decay,omitempty"`
	ExpConst float64 `json:"exp_const,omitempty"`
	MinTemp  float64 `json:"min_temp,omitempty"`
}

// RunDefaults are the driver parameters applied when a request leaves them
// unset, loaded from the server configuration.
type RunDefaults struct {
	MaxAttempts  int
	Restarts     int
	PopSize      int
	MutationProb float64
	KeepPct      float64
}

const catalogComponent = "catalog"

// buildProblem resolves the named problem to a discrete problem instance.
// Problems scored by penalty (queens) are wired as the negated objective with
// the reported fitness reoriented back to the penalty scale.
func buildProblem(req *RunRequest, rng *rand.Rand, logger *zap.Logger) (*discrete.Problem, error) {
	if req.Length < 1 {
		return nil, errors.Errorf("length must be >= 1, got %d", req.Length).WithComponent(catalogComponent)
	}

	tPct := req.TPct
	if tPct == 0 {
		tPct = 0.1
	}

	var (
		objective optimization.Objective
		maximize  = true
		maxVal    = 2
	)

	switch req.Problem {
	case "one_max":
		objective = fitness.OneMax()
	case "flip_flop":
		objective = fitness.FlipFlop()
	case "four_peaks":
		objective = fitness.FourPeaks(tPct)
	case "continuous_peaks":
		objective = fitness.ContinuousPeaks(tPct)
	case "queens":
		objective = fitness.Negate(fitness.Queens())
		maximize = false
		maxVal = req.Length
	case "knapsack":
		obj, err := fitness.Knapsack(req.Weights, req.Values, req.MaxWeightPct)
		if err != nil {
			return nil, err
		}
		if len(req.Weights) != req.Length {
			return nil, errors.Errorf("knapsack needs %d weights for length %d", req.Length, req.Length).WithComponent(catalogComponent)
		}
		objective = obj
	default:
		return nil, errors.Errorf("unknown problem %q", req.Problem).WithComponent(catalogComponent)
	}

	p, err := discrete.New(req.Length, objective, maximize, maxVal, rng)
	if err != nil {
		return nil, err
	}
	p.SetLogger(logger)
	return p, nil
}

// buildSchedule resolves the schedule spec, defaulting to geometric decay.
// Constructor panics over bad parameters surface as errors to the caller.
func buildSchedule(spec *ScheduleSpec) (s optimization.Schedule, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s = nil
			err = errors.Errorf("invalid schedule: %v", rec).WithComponent(catalogComponent)
		}
	}()

	if spec == nil {
		return schedule.NewGeomDecay(10, 0.95, 0.001), nil
	}

	initTemp := spec.InitTemp
	if initTemp == 0 {
		initTemp = 10
	}

	switch spec.Type {
	case "", "geometric":
		decay := spec.Decay
		if decay == 0 {
			decay = 0.95
		}
		return schedule.NewGeomDecay(initTemp, decay, spec.MinTemp), nil
	case "arithmetic":
		decay := spec.Decay
		if decay == 0 {
			decay = 0.0001
		}
		return schedule.NewArithDecay(initTemp, decay, spec.MinTemp), nil
	case "exponential":
		expConst := spec.ExpConst
		if expConst == 0 {
			expConst = 0.005
		}
		return schedule.NewExpDecay(initTemp, expConst, spec.MinTemp), nil
	case "constant":
		return schedule.NewConst(initTemp), nil
	default:
		return nil, errors.Errorf("unknown schedule type %q", spec.Type).WithComponent(catalogComponent)
	}
}

// ExecuteRun drives the requested algorithm to completion and returns the
// best state and reported fitness. The server workers and the CLI both go
// through it.
func ExecuteRun(req *RunRequest, defaults RunDefaults, rng *rand.Rand, logger *zap.Logger) (optimization.State, float64, error) {
	p, err := buildProblem(req, rng, logger)
	if err != nil {
		return nil, 0, err
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = defaults.MaxAttempts
	}
	restarts := req.Restarts
	if restarts == 0 {
		restarts = defaults.Restarts
	}
	popSize := req.PopSize
	if popSize == 0 {
		popSize = defaults.PopSize
	}
	mutationProb := req.MutationProb
	if mutationProb == 0 {
		mutationProb = defaults.MutationProb
	}
	keepPct := req.KeepPct
	if keepPct == 0 {
		keepPct = defaults.KeepPct
	}

	switch req.Algorithm {
	case "hill_climb":
		return optimization.HillClimb(p, restarts)
	case "random_hill_climb":
		return optimization.RandomHillClimb(p, maxAttempts, restarts)
	case "simulated_annealing":
		sched, err := buildSchedule(req.Schedule)
		if err != nil {
			return nil, 0, err
		}
		return optimization.SimulatedAnnealing(p, sched, maxAttempts, rng)
	case "genetic":
		return optimization.GeneticAlgorithm(p, popSize, mutationProb, maxAttempts, rng)
	case "mimic":
		return optimization.MIMIC(p, popSize, keepPct, maxAttempts)
	default:
		return nil, 0, errors.Errorf("unknown algorithm %q", req.Algorithm).WithComponent(catalogComponent)
	}
}
