// Package optimization contains the randomized search drivers and the
// abstract contracts they operate on. Drivers never inspect the concrete
// representation of a state; they branch only on scalar fitness comparisons
// and the problem's maximize orientation.
package optimization

// State is an ordered sequence of values owned by a Problem. Drivers treat
// it as opaque: they obtain it, hand it back, and compare derived fitness
// scalars, nothing more.
type State []float64

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	return append(State(nil), s...)
}

// Objective is the fitness function evaluated by a Problem implementation.
// It must be a pure function of the state.
type Objective func(State) float64

// Problem is the capability set consumed by the local-search drivers.
// Implementations own the current state, its cached fitness and the cached
// neighbor set. Fitness values exposed through Fitness and EvalFitness are
// in the problem's internal always-maximize orientation; Maximize reports
// the multiplier that converts them back to the caller's true objective.
type Problem interface {
	// Reset reinitializes the current state to a fresh random value and
	// clears any cached neighbors or population.
	Reset()

	// FindNeighbors computes and caches the full neighbor set of the
	// current state.
	FindNeighbors()

	// BestNeighbor returns the best-fitness neighbor among the cached set.
	// Ties are broken in favor of the first neighbor encountered.
	BestNeighbor() State

	// RandomNeighbor returns one neighbor of the current state drawn at
	// random.
	RandomNeighbor() State

	// EvalFitness returns the internal-orientation fitness of an arbitrary
	// state without mutating the current state.
	EvalFitness(s State) float64

	// Fitness returns the cached fitness of the current state.
	Fitness() float64

	// State returns the current committed state.
	State() State

	// SetState commits s as the new current state and updates the cached
	// fitness.
	SetState(s State)

	// Maximize returns +1 when the true objective is maximization and -1
	// when it is minimization.
	Maximize() float64
}

// PopulationProblem extends Problem with the population bookkeeping shared
// by the genetic algorithm and MIMIC. The population is replaced wholesale
// each generation and its size stays constant across a run.
type PopulationProblem interface {
	Problem

	// RandomPop initializes a population of n states drawn at random.
	RandomPop(n int)

	// Population returns the current population.
	Population() []State

	// SetPopulation replaces the whole population and refreshes the cached
	// per-individual fitness values.
	SetPopulation(pop []State)

	// BestChild returns the best-fitness individual in the current
	// population. Ties are broken in favor of the first individual.
	BestChild() State
}

// BreedingProblem is the contract consumed by GeneticAlgorithm. Selection
// weighting, crossover and mutation internals all live behind it.
type BreedingProblem interface {
	PopulationProblem

	// EvalMateProbs recomputes the selection-probability weights over the
	// current population.
	EvalMateProbs()

	// MateProbs returns the current selection weights. They sum to one.
	MateProbs() []float64

	// Reproduce returns one child state bred from two parents with mutation
	// applied at the given per-position rate.
	Reproduce(parent1, parent2 State, mutationProb float64) State
}

// ModelProblem is the contract consumed by MIMIC. All structural learning is
// delegated to the problem: the driver only orchestrates elite selection,
// model re-estimation and resampling.
type ModelProblem interface {
	PopulationProblem

	// FindTopPct restricts the model-fitting sample to the top pct fraction
	// of the population by fitness.
	FindTopPct(pct float64)

	// EvalNodeProbs re-estimates the joint probability model from the
	// retained elite sample.
	EvalNodeProbs()

	// SamplePop draws n fresh states from the current probability model.
	SamplePop(n int) []State
}

// Schedule maps a monotonically increasing time index to a non-negative
// annealing temperature. A returned temperature of exactly zero signals that
// no further annealing is possible.
type Schedule interface {
	Evaluate(t int) float64
}

// Solution is a state/fitness pair in the caller's true objective
// orientation.
type Solution struct {
	State   State   `json:"state"`
	Fitness float64 `json:"fitness"`
}
