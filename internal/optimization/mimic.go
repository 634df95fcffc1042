package optimization

import "math"

// MIMIC runs population-based search by iterative re-estimation of a joint
// probability model over state variables. Each generation retains the top
// keepPct fraction of the population by fitness, refits the problem's
// internal model from that elite sample and resamples a full population of
// popSize states from it. There is no pairwise parent mixing: all structural
// learning is delegated to the problem's model-estimation and sampling
// capability.
//
// The returned state has integer-valued components.
func MIMIC(p ModelProblem, popSize int, keepPct float64, maxAttempts int) (State, float64, error) {
	const op = "mimic"

	if p == nil {
		return nil, 0, NewError("problem must not be nil").WithOperation(op)
	}
	if popSize < 1 {
		return nil, 0, NewErrorf("popSize must be >= 1, got %d", popSize).WithOperation(op)
	}
	if keepPct <= 0 || keepPct > 1 {
		return nil, 0, NewErrorf("keepPct must be in (0, 1], got %v", keepPct).WithOperation(op)
	}
	if maxAttempts < 1 {
		return nil, 0, NewErrorf("maxAttempts must be >= 1, got %d", maxAttempts).WithOperation(op)
	}

	p.Reset()
	p.RandomPop(popSize)
	attempts := newAttemptCounter(maxAttempts)

	for !attempts.Exhausted() {
		p.FindTopPct(keepPct)
		p.EvalNodeProbs()
		p.SetPopulation(p.SamplePop(popSize))

		next := p.BestChild()
		if p.EvalFitness(next) > p.Fitness() {
			p.SetState(next)
			attempts.Improved()
		} else {
			attempts.Stalled()
		}
	}

	best := p.State().Clone()
	for i, v := range best {
		best[i] = math.Trunc(v)
	}
	return best, p.Maximize() * p.Fitness(), nil
}
