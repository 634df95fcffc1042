package optimization

import (
	"math"
	"math/rand"
)

// SimulatedAnnealing runs stochastic local search with temperature-controlled
// acceptance of worsening moves. Each iteration draws one random neighbor and
// accepts it if it improves on the current fitness, or with probability
// exp(delta/temperature) otherwise. The time index advances every iteration
// whether or not the move is accepted.
//
// The run terminates when maxAttempts consecutive candidates are rejected or
// when the schedule's temperature reaches exactly zero, whichever happens
// first. The zero-temperature check short-circuits before any acceptance
// computation, so the Boltzmann exponent never divides by zero. Because the
// probability is only consulted when delta <= 0, its argument is always
// non-positive and the computed value stays in (0, 1].
func SimulatedAnnealing(p Problem, schedule Schedule, maxAttempts int, rng *rand.Rand) (State, float64, error) {
	const op = "simulated_annealing"

	if p == nil {
		return nil, 0, NewError("problem must not be nil").WithOperation(op)
	}
	if schedule == nil {
		return nil, 0, NewError("schedule must not be nil").WithOperation(op)
	}
	if maxAttempts < 1 {
		return nil, 0, NewErrorf("maxAttempts must be >= 1, got %d", maxAttempts).WithOperation(op)
	}
	if rng == nil {
		return nil, 0, NewError("random source must not be nil").WithOperation(op)
	}

	p.Reset()
	attempts := newAttemptCounter(maxAttempts)

	for t := 0; !attempts.Exhausted(); t++ {
		temp := schedule.Evaluate(t)
		if temp == 0 {
			break // annealing exhausted
		}

		next := p.RandomNeighbor()
		delta := p.EvalFitness(next) - p.Fitness()

		if delta > 0 || rng.Float64() < math.Exp(delta/temp) {
			p.SetState(next)
			attempts.Improved()
		} else {
			attempts.Stalled()
		}
	}

	return p.State().Clone(), p.Maximize() * p.Fitness(), nil
}
