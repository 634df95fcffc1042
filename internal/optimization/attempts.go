package optimization

// attemptCounter tracks consecutive non-improving iterations against a
// ceiling. Four of the five drivers share the same stopping pattern: the
// counter resets to zero on every accepted improvement, increments on every
// rejection and exhausts when it reaches the ceiling.
type attemptCounter struct {
	stalled int
	ceiling int
}

func newAttemptCounter(ceiling int) *attemptCounter {
	return &attemptCounter{ceiling: ceiling}
}

// Improved records an accepted improvement and resets the stall count.
func (c *attemptCounter) Improved() {
	c.stalled = 0
}

// Stalled records a rejected candidate.
func (c *attemptCounter) Stalled() {
	c.stalled++
}

// Exhausted reports whether the ceiling has been reached.
func (c *attemptCounter) Exhausted() bool {
	return c.stalled >= c.ceiling
}
