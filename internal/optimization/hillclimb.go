package optimization

import "math"

// HillClimb runs deterministic steepest-ascent local search with random
// restarts. Each restart resets the problem to a fresh random state and
// repeatedly moves to the single best neighbor until no neighbor strictly
// improves on the current fitness. Only the restart's initial state is
// random; neighbor selection is deterministic, so the run is reproducible
// given a fixed problem seed.
//
// The returned fitness is in the caller's true objective orientation.
func HillClimb(p Problem, restarts int) (State, float64, error) {
	const op = "hill_climb"

	if p == nil {
		return nil, 0, NewError("problem must not be nil").WithOperation(op)
	}
	if restarts < 1 {
		return nil, 0, NewErrorf("restarts must be >= 1, got %d", restarts).WithOperation(op)
	}

	bestFitness := math.Inf(-1)
	var bestState State

	for r := 0; r < restarts; r++ {
		p.Reset()

		for {
			p.FindNeighbors()
			next := p.BestNeighbor()
			if p.EvalFitness(next) <= p.Fitness() {
				break // local optimum
			}
			p.SetState(next)
		}

		if p.Fitness() > bestFitness {
			bestFitness = p.Fitness()
			bestState = p.State().Clone()
		}
	}

	return bestState, p.Maximize() * bestFitness, nil
}

// RandomHillClimb runs stochastic-neighbor local search with random
// restarts. Per restart it draws one random neighbor at a time, commits it
// only on strict improvement, and gives up after maxAttempts consecutive
// non-improving draws.
func RandomHillClimb(p Problem, maxAttempts, restarts int) (State, float64, error) {
	const op = "random_hill_climb"

	if p == nil {
		return nil, 0, NewError("problem must not be nil").WithOperation(op)
	}
	if maxAttempts < 1 {
		return nil, 0, NewErrorf("maxAttempts must be >= 1, got %d", maxAttempts).WithOperation(op)
	}
	if restarts < 1 {
		return nil, 0, NewErrorf("restarts must be >= 1, got %d", restarts).WithOperation(op)
	}

	bestFitness := math.Inf(-1)
	var bestState State

	for r := 0; r < restarts; r++ {
		p.Reset()
		attempts := newAttemptCounter(maxAttempts)

		for !attempts.Exhausted() {
			next := p.RandomNeighbor()
			if p.EvalFitness(next) > p.Fitness() {
				p.SetState(next)
				attempts.Improved()
			} else {
				attempts.Stalled()
			}
		}

		if p.Fitness() > bestFitness {
			bestFitness = p.Fitness()
			bestState = p.State().Clone()
		}
	}

	return bestState, p.Maximize() * bestFitness, nil
}
