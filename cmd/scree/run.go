package main

import (
	"encoding/json"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/SCREE/internal/logging"
	"github.com/copyleftdev/SCREE/internal/optimization"
	"github.com/copyleftdev/SCREE/internal/server"
)

var (
	algorithm    string
	problem      string
	length       int
	seed         int64
	maxAttempts  int
	restarts     int
	popSize      int
	mutationProb float64
	keepPct      float64
	tPct         float64

	scheduleType string
	initTemp     float64
	decay        float64
	minTemp      float64

	weights      []float64
	values       []float64
	maxWeightPct float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one search to completion",
	Long:  `Runs the chosen algorithm over the chosen problem and prints the result as JSON.`,
	RunE:  runSearch,
}

func init() {
	runCmd.Flags().StringVar(&algorithm, "algorithm", "simulated_annealing", "Algorithm: hill_climb, random_hill_climb, simulated_annealing, genetic, mimic")
	runCmd.Flags().StringVar(&problem, "problem", "one_max", "Problem: one_max, flip_flop, four_peaks, continuous_peaks, queens, knapsack")
	runCmd.Flags().IntVar(&length, "length", 20, "State vector length")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 picks one from the clock)")
	runCmd.Flags().IntVar(&maxAttempts, "max-attempts", 100, "Consecutive non-improving attempts before stopping")
	runCmd.Flags().IntVar(&restarts, "restarts", 1, "Restarts for the hill climbers")
	runCmd.Flags().IntVar(&popSize, "pop", 200, "Population size for genetic and mimic")
	runCmd.Flags().Float64Var(&mutationProb, "mutation-prob", 0.1, "Per-position mutation probability for genetic")
	runCmd.Flags().Float64Var(&keepPct, "keep-pct", 0.2, "Elite fraction for mimic")
	runCmd.Flags().Float64Var(&tPct, "t-pct", 0.1, "Threshold fraction for four_peaks and continuous_peaks")

	runCmd.Flags().StringVar(&scheduleType, "schedule", "geometric", "Annealing schedule: geometric, arithmetic, exponential, constant")
	runCmd.Flags().Float64Var(&initTemp, "init-temp", 10, "Initial annealing temperature")
	runCmd.Flags().Float64Var(&decay, "decay", 0, "Schedule decay parameter (0 uses the schedule default)")
	runCmd.Flags().Float64Var(&minTemp, "min-temp", 0.001, "Temperature floor")

	runCmd.Flags().Float64SliceVar(&weights, "weights", nil, "Item weights for knapsack")
	runCmd.Flags().Float64SliceVar(&values, "values", nil, "Item values for knapsack")
	runCmd.Flags().Float64Var(&maxWeightPct, "max-weight-pct", 0.35, "Knapsack capacity as a fraction of total weight")

	rootCmd.AddCommand(runCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	req := &server.RunRequest{
		Algorithm:    algorithm,
		Problem:      problem,
		Length:       length,
		MaxAttempts:  maxAttempts,
		Restarts:     restarts,
		PopSize:      popSize,
		MutationProb: mutationProb,
		KeepPct:      keepPct,
		TPct:         tPct,
		Weights:      weights,
		Values:       values,
		MaxWeightPct: maxWeightPct,
		Schedule: &server.ScheduleSpec{
			Type:     scheduleType,
			InitTemp: initTemp,
			Decay:    decay,
			ExpConst: decay,
			MinTemp:  minTemp,
		},
	}
	defaults := server.RunDefaults{
		MaxAttempts:  maxAttempts,
		Restarts:     restarts,
		PopSize:      popSize,
		MutationProb: mutationProb,
		KeepPct:      keepPct,
	}

	logger.Info("starting search", map[string]interface{}{
		"algorithm": algorithm,
		"problem":   problem,
		"length":    length,
		"seed":      seed,
	})

	start := time.Now()
	rng := rand.New(rand.NewSource(seed))
	state, fitness, err := server.ExecuteRun(req, defaults, rng, logging.NewZapLogger(logger))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	result := struct {
		Algorithm   string             `json:"algorithm"`
		Problem     string             `json:"problem"`
		Seed        int64              `json:"seed"`
		BestFitness float64            `json:"best_fitness"`
		BestState   optimization.State `json:"best_state"`
		DurationMS  int64              `json:"duration_ms"`
	}{
		Algorithm:   algorithm,
		Problem:     problem,
		Seed:        seed,
		BestFitness: fitness,
		BestState:   state,
		DurationMS:  elapsed.Milliseconds(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
