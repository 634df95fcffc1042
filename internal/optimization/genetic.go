package optimization

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// GeneticAlgorithm runs population-based search with fitness-proportional
// selection and problem-defined reproduction. Each generation builds popSize
// children by drawing two parent indices per child, independently and with
// replacement, from the problem's mate-probability distribution, then
// replaces the population wholesale. The best individual of the new
// generation becomes the candidate next state and is committed only on
// strict improvement.
//
// Selection weighting, crossover and mutation internals all belong to the
// problem; the driver only orchestrates generational turnover and the
// improvement bookkeeping.
func GeneticAlgorithm(p BreedingProblem, popSize int, mutationProb float64, maxAttempts int, rng *rand.Rand) (State, float64, error) {
	const op = "genetic_alg"

	if p == nil {
		return nil, 0, NewError("problem must not be nil").WithOperation(op)
	}
	if popSize < 1 {
		return nil, 0, NewErrorf("popSize must be >= 1, got %d", popSize).WithOperation(op)
	}
	if mutationProb < 0 || mutationProb > 1 {
		return nil, 0, NewErrorf("mutationProb must be in [0, 1], got %v", mutationProb).WithOperation(op)
	}
	if maxAttempts < 1 {
		return nil, 0, NewErrorf("maxAttempts must be >= 1, got %d", maxAttempts).WithOperation(op)
	}
	if rng == nil {
		return nil, 0, NewError("random source must not be nil").WithOperation(op)
	}

	p.Reset()
	p.RandomPop(popSize)
	attempts := newAttemptCounter(maxAttempts)

	for !attempts.Exhausted() {
		p.EvalMateProbs()
		probs := p.MateProbs()
		pop := p.Population()

		nextGen := make([]State, popSize)
		for i := range nextGen {
			parent1 := pop[sampleIndex(probs, rng)]
			parent2 := pop[sampleIndex(probs, rng)]
			nextGen[i] = p.Reproduce(parent1, parent2, mutationProb)
		}
		p.SetPopulation(nextGen)

		next := p.BestChild()
		if p.EvalFitness(next) > p.Fitness() {
			p.SetState(next)
			attempts.Improved()
		} else {
			attempts.Stalled()
		}
	}

	return p.State().Clone(), p.Maximize() * p.Fitness(), nil
}

// sampleIndex draws one index from a probability distribution by inverse
// transform over the cumulative weights.
func sampleIndex(probs []float64, rng *rand.Rand) int {
	cum := make([]float64, len(probs))
	floats.CumSum(cum, probs)

	u := rng.Float64() * cum[len(cum)-1]
	for i, c := range cum {
		if u < c {
			return i
		}
	}
	return len(probs) - 1
}
