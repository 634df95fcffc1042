// Package discrete implements the optimization problem contract over
// fixed-length integer vectors. It backs all five drivers, including the
// dependency-tree probability model MIMIC refits each generation.
package discrete

import (
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/SCREE/internal/optimization"
)

// Problem is a discrete-state optimization problem. States are vectors of
// length Length with elements in [0, maxVal). The cached fitness is always
// stored in the internal always-maximize orientation; Maximize reports the
// multiplier back to the true objective.
type Problem struct {
	length    int
	objective optimization.Objective
	direction float64
	maxVal    int
	rng       *rand.Rand
	logger    *zap.Logger

	state   optimization.State
	fitness float64

	neighbors []optimization.State

	population []optimization.State
	popFitness []float64
	mateProbs  []float64

	keepSample []optimization.State
	model      *nodeModel
}

// New creates a discrete problem over vectors of the given length with
// elements in [0, maxVal). The rng handle is shared with the drivers so a
// single seed reproduces an entire run.
func New(length int, objective optimization.Objective, maximize bool, maxVal int, rng *rand.Rand) (*Problem, error) {
	const component = "discrete"

	if length < 1 {
		return nil, optimization.NewErrorf("length must be >= 1, got %d", length).WithComponent(component)
	}
	if objective == nil {
		return nil, optimization.NewError("objective must not be nil").WithComponent(component)
	}
	if maxVal < 2 {
		return nil, optimization.NewErrorf("maxVal must be >= 2, got %d", maxVal).WithComponent(component)
	}
	if rng == nil {
		return nil, optimization.NewError("random source must not be nil").WithComponent(component)
	}

	direction := 1.0
	if !maximize {
		direction = -1.0
	}

	p := &Problem{
		length:    length,
		objective: objective,
		direction: direction,
		maxVal:    maxVal,
		rng:       rng,
		logger:    zap.NewNop(),
	}
	p.Reset()
	return p, nil
}

// SetLogger attaches a structured logger for model-estimation diagnostics.
func (p *Problem) SetLogger(logger *zap.Logger) {
	if logger != nil {
		p.logger = logger.Named("discrete")
	}
}

// Length returns the state vector length.
func (p *Problem) Length() int {
	return p.length
}

// Reset reinitializes the current state to a fresh random vector and drops
// cached neighbors, population and model-fitting data.
func (p *Problem) Reset() {
	p.state = p.randomState()
	p.fitness = p.EvalFitness(p.state)
	p.neighbors = nil
	p.population = nil
	p.popFitness = nil
	p.mateProbs = nil
	p.keepSample = nil
	p.model = nil
}

// FindNeighbors computes and caches the full neighbor set of the current
// state: one bit flip per position for binary problems, every single-position
// value substitution otherwise.
func (p *Problem) FindNeighbors() {
	if p.maxVal == 2 {
		p.neighbors = make([]optimization.State, 0, p.length)
		for i := 0; i < p.length; i++ {
			n := p.state.Clone()
			n[i] = 1 - n[i]
			p.neighbors = append(p.neighbors, n)
		}
		return
	}

	p.neighbors = make([]optimization.State, 0, p.length*(p.maxVal-1))
	for i := 0; i < p.length; i++ {
		for v := 0; v < p.maxVal; v++ {
			if float64(v) == p.state[i] {
				continue
			}
			n := p.state.Clone()
			n[i] = float64(v)
			p.neighbors = append(p.neighbors, n)
		}
	}
}

// BestNeighbor returns the best-fitness neighbor among the cached set,
// first-encountered-wins on ties.
func (p *Problem) BestNeighbor() optimization.State {
	if len(p.neighbors) == 0 {
		return p.state.Clone()
	}

	best := p.neighbors[0]
	bestFitness := p.EvalFitness(best)
	for _, n := range p.neighbors[1:] {
		if f := p.EvalFitness(n); f > bestFitness {
			best = n
			bestFitness = f
		}
	}
	return best
}

// RandomNeighbor returns one neighbor drawn uniformly at random: a random
// position set to a random value different from the current one.
func (p *Problem) RandomNeighbor() optimization.State {
	n := p.state.Clone()
	i := p.rng.Intn(p.length)

	if p.maxVal == 2 {
		n[i] = 1 - n[i]
		return n
	}

	v := p.rng.Intn(p.maxVal - 1)
	if float64(v) >= n[i] {
		v++
	}
	n[i] = float64(v)
	return n
}

// EvalFitness returns the fitness of s without mutating the current state.
// The objective is supplied in the internal always-maximize orientation; the
// maximize flag only reorients the value a driver finally reports.
func (p *Problem) EvalFitness(s optimization.State) float64 {
	return p.objective(s)
}

// Fitness returns the cached fitness of the current state.
func (p *Problem) Fitness() float64 {
	return p.fitness
}

// State returns the current committed state.
func (p *Problem) State() optimization.State {
	return p.state
}

// SetState commits s as the new current state and refreshes the cached
// fitness.
func (p *Problem) SetState(s optimization.State) {
	p.state = s.Clone()
	p.fitness = p.EvalFitness(p.state)
}

// Maximize returns +1 when the true objective is maximization, -1 otherwise.
func (p *Problem) Maximize() float64 {
	return p.direction
}

// RandomPop initializes a population of n uniformly random states.
func (p *Problem) RandomPop(n int) {
	pop := make([]optimization.State, n)
	for i := range pop {
		pop[i] = p.randomState()
	}
	p.SetPopulation(pop)
}

// Population returns the current population.
func (p *Problem) Population() []optimization.State {
	return p.population
}

// SetPopulation replaces the population wholesale and refreshes the cached
// per-individual fitness values.
func (p *Problem) SetPopulation(pop []optimization.State) {
	p.population = pop
	p.popFitness = make([]float64, len(pop))
	for i, s := range pop {
		p.popFitness[i] = p.EvalFitness(s)
	}
}

// BestChild returns the best-fitness individual in the current population,
// first-encountered-wins on ties.
func (p *Problem) BestChild() optimization.State {
	if len(p.population) == 0 {
		return p.state.Clone()
	}

	best := 0
	for i := 1; i < len(p.population); i++ {
		if p.popFitness[i] > p.popFitness[best] {
			best = i
		}
	}
	return p.population[best].Clone()
}

// EvalMateProbs recomputes the selection weights over the population:
// fitness shifted to non-negative and normalized to sum to one, or uniform
// when every individual scores the same floor.
func (p *Problem) EvalMateProbs() {
	probs := append([]float64(nil), p.popFitness...)

	if min := floats.Min(probs); min < 0 {
		floats.AddConst(-min, probs)
	}
	total := floats.Sum(probs)
	if total == 0 {
		uniform := 1.0 / float64(len(probs))
		for i := range probs {
			probs[i] = uniform
		}
	} else {
		floats.Scale(1/total, probs)
	}
	p.mateProbs = probs
}

// MateProbs returns the current selection weights.
func (p *Problem) MateProbs() []float64 {
	return p.mateProbs
}

// Reproduce returns one child bred by single-point crossover with mutation
// applied independently at each position. Binary positions mutate by
// complement, others by a uniform redraw.
func (p *Problem) Reproduce(parent1, parent2 optimization.State, mutationProb float64) optimization.State {
	child := make(optimization.State, p.length)
	split := p.rng.Intn(p.length)
	copy(child[:split], parent1[:split])
	copy(child[split:], parent2[split:])

	for i := range child {
		if p.rng.Float64() >= mutationProb {
			continue
		}
		if p.maxVal == 2 {
			child[i] = 1 - child[i]
		} else {
			child[i] = float64(p.rng.Intn(p.maxVal))
		}
	}
	return child
}

// FindTopPct restricts the model-fitting sample to the ceil(pct * popSize)
// best individuals by fitness.
func (p *Problem) FindTopPct(pct float64) {
	if len(p.population) == 0 {
		p.keepSample = nil
		return
	}

	cutoff := int(math.Ceil(pct * float64(len(p.population))))
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff > len(p.population) {
		cutoff = len(p.population)
	}

	idx := make([]int, len(p.population))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return p.popFitness[idx[a]] > p.popFitness[idx[b]]
	})

	p.keepSample = make([]optimization.State, cutoff)
	for i := 0; i < cutoff; i++ {
		p.keepSample[i] = p.population[idx[i]]
	}
}

// EvalNodeProbs re-estimates the dependency-tree probability model from the
// retained elite sample.
func (p *Problem) EvalNodeProbs() {
	sample := p.keepSample
	if len(sample) == 0 {
		sample = p.population
	}
	if len(sample) == 0 {
		return
	}
	p.model = estimateModel(sample, p.length, p.maxVal, p.logger)
}

// SamplePop draws n fresh states from the current probability model. Without
// a fitted model it falls back to uniform random states.
func (p *Problem) SamplePop(n int) []optimization.State {
	if p.model == nil {
		pop := make([]optimization.State, n)
		for i := range pop {
			pop[i] = p.randomState()
		}
		return pop
	}
	return p.model.sample(n, p.rng)
}

func (p *Problem) randomState() optimization.State {
	s := make(optimization.State, p.length)
	for i := range s {
		s[i] = float64(p.rng.Intn(p.maxVal))
	}
	return s
}
