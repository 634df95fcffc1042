package optimization

// stubProblem is a scripted problem for driver tests. States are
// single-element vectors whose value is also their internal fitness, and
// successive candidates (neighbors or best children) are played back from a
// script; the last entry repeats once the script is exhausted. Call counts
// let tests assert on the drivers' control flow.
type stubProblem struct {
	maximize float64
	initial  float64
	script   []float64
	next     int

	state   State
	fitness float64

	resets            int
	findNeighborCalls int
	randomNeighbors   int
	bestChildCalls    int
	reproduceCalls    int
	evalMateCalls     int
	findTopPctArgs    []float64
	evalNodeCalls     int
	samplePopCalls    int
	popSizes          []int

	population []State
}

func newStubProblem(initial float64, script ...float64) *stubProblem {
	return &stubProblem{maximize: 1, initial: initial, script: script}
}

func (p *stubProblem) nextCandidate() State {
	v := p.initial
	if len(p.script) > 0 {
		i := p.next
		if i >= len(p.script) {
			i = len(p.script) - 1
		}
		v = p.script[i]
		p.next++
	}
	return State{v}
}

func (p *stubProblem) Reset() {
	p.resets++
	p.state = State{p.initial}
	p.fitness = p.initial
}

func (p *stubProblem) FindNeighbors() {
	p.findNeighborCalls++
}

func (p *stubProblem) BestNeighbor() State {
	return p.nextCandidate()
}

func (p *stubProblem) RandomNeighbor() State {
	p.randomNeighbors++
	return p.nextCandidate()
}

func (p *stubProblem) EvalFitness(s State) float64 {
	return s[0]
}

func (p *stubProblem) Fitness() float64 {
	return p.fitness
}

func (p *stubProblem) State() State {
	return p.state
}

func (p *stubProblem) SetState(s State) {
	p.state = s.Clone()
	p.fitness = s[0]
}

func (p *stubProblem) Maximize() float64 {
	return p.maximize
}

func (p *stubProblem) RandomPop(n int) {
	pop := make([]State, n)
	for i := range pop {
		pop[i] = State{0}
	}
	p.SetPopulation(pop)
}

func (p *stubProblem) Population() []State {
	return p.population
}

func (p *stubProblem) SetPopulation(pop []State) {
	p.population = pop
	p.popSizes = append(p.popSizes, len(pop))
}

func (p *stubProblem) BestChild() State {
	p.bestChildCalls++
	return p.nextCandidate()
}

func (p *stubProblem) EvalMateProbs() {
	p.evalMateCalls++
}

func (p *stubProblem) MateProbs() []float64 {
	probs := make([]float64, len(p.population))
	for i := range probs {
		probs[i] = 1 / float64(len(probs))
	}
	return probs
}

func (p *stubProblem) Reproduce(parent1, parent2 State, mutationProb float64) State {
	p.reproduceCalls++
	return State{0}
}

func (p *stubProblem) FindTopPct(pct float64) {
	p.findTopPctArgs = append(p.findTopPctArgs, pct)
}

func (p *stubProblem) EvalNodeProbs() {
	p.evalNodeCalls++
}

func (p *stubProblem) SamplePop(n int) []State {
	p.samplePopCalls++
	pop := make([]State, n)
	for i := range pop {
		pop[i] = State{0}
	}
	return pop
}

// stubSchedule plays back a fixed temperature sequence, repeating the last
// entry forever.
type stubSchedule struct {
	temps []float64
}

func (s *stubSchedule) Evaluate(t int) float64 {
	if t >= len(s.temps) {
		return s.temps[len(s.temps)-1]
	}
	return s.temps[t]
}
