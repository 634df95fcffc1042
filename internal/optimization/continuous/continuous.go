// Package continuous implements the optimization problem contract over
// bounded real-valued vectors with a fixed neighborhood step size. It serves
// the local-search drivers and the genetic algorithm; MIMIC's probability
// model is discrete-only.
package continuous

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/SCREE/internal/optimization"
)

// Problem is a continuous-state optimization problem. States are vectors of
// length Length with every element in [minVal, maxVal]; neighbors differ
// from the current state by ±step in one position, clipped to the bounds.
type Problem struct {
	length    int
	objective optimization.Objective
	direction float64
	minVal    float64
	maxVal    float64
	step      float64
	rng       *rand.Rand

	state   optimization.State
	fitness float64

	neighbors []optimization.State

	population []optimization.State
	popFitness []float64
	mateProbs  []float64
}

// New creates a continuous problem over vectors of the given length bounded
// by [minVal, maxVal] with neighborhood step size step.
func New(length int, objective optimization.Objective, maximize bool, minVal, maxVal, step float64, rng *rand.Rand) (*Problem, error) {
	const component = "continuous"

	if length < 1 {
		return nil, optimization.NewErrorf("length must be >= 1, got %d", length).WithComponent(component)
	}
	if objective == nil {
		return nil, optimization.NewError("objective must not be nil").WithComponent(component)
	}
	if maxVal <= minVal {
		return nil, optimization.NewErrorf("bounds must satisfy minVal < maxVal, got [%v, %v]", minVal, maxVal).WithComponent(component)
	}
	if step <= 0 || step > maxVal-minVal {
		return nil, optimization.NewErrorf("step must be in (0, maxVal-minVal], got %v", step).WithComponent(component)
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
		minVal:    minVal,
		maxVal:    maxVal,
		step:      step,
		rng:       rng,
	}
	p.Reset()
	return p, nil
}

// Length returns the state vector length.
func (p *Problem) Length() int {
	return p.length
}

// Reset reinitializes the current state to a fresh uniform random vector and
// drops cached neighbors and population.
func (p *Problem) Reset() {
	p.state = p.randomState()
	p.fitness = p.EvalFitness(p.state)
	p.neighbors = nil
	p.population = nil
	p.popFitness = nil
	p.mateProbs = nil
}

// FindNeighbors computes and caches the neighbor set: for every position,
// the current state shifted by +step and by -step, clipped to the bounds.
// Shifts that leave the state unchanged (already at a bound) are skipped.
func (p *Problem) FindNeighbors() {
	p.neighbors = make([]optimization.State, 0, 2*p.length)
	for i := 0; i < p.length; i++ {
		for _, delta := range [2]float64{-p.step, p.step} {
			v := p.clip(p.state[i] + delta)
			if v == p.state[i] {
				continue
			}
			n := p.state.Clone()
			n[i] = v
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

// RandomNeighbor returns the current state shifted by ±step in one random
// position, clipped to the bounds.
func (p *Problem) RandomNeighbor() optimization.State {
	n := p.state.Clone()
	i := p.rng.Intn(p.length)

	delta := p.step
	if p.rng.Float64() < 0.5 {
		delta = -p.step
	}
	n[i] = p.clip(n[i] + delta)
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

// Reproduce returns one child bred by single-point crossover, with mutated
// positions redrawn uniformly within the bounds.
func (p *Problem) Reproduce(parent1, parent2 optimization.State, mutationProb float64) optimization.State {
	child := make(optimization.State, p.length)
	split := p.rng.Intn(p.length)
	copy(child[:split], parent1[:split])
	copy(child[split:], parent2[split:])

	for i := range child {
		if p.rng.Float64() < mutationProb {
			child[i] = p.minVal + p.rng.Float64()*(p.maxVal-p.minVal)
		}
	}
	return child
}

func (p *Problem) randomState() optimization.State {
	s := make(optimization.State, p.length)
	for i := range s {
		s[i] = p.minVal + p.rng.Float64()*(p.maxVal-p.minVal)
	}
	return s
}

func (p *Problem) clip(v float64) float64 {
	if v < p.minVal {
		return p.minVal
	}
	if v > p.maxVal {
		return p.maxVal
	}
	return v
}
