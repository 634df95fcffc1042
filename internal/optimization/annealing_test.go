package optimization

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedAnnealing(t *testing.T) {
	t.Run("terminates when the temperature reaches zero", func(t *testing.T) {
		p := newStubProblem(1, 0.5, 0.4, 0.3)
		sched := &stubSchedule{temps: []float64{1e9, 1e9, 0}}

		_, _, err := SimulatedAnnealing(p, sched, 10, rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		assert.Equal(t, 2, p.randomNeighbors, "no candidate may be drawn once the temperature is zero")
	})

	t.Run("accepts worsening moves at high temperature", func(t *testing.T) {
		p := newStubProblem(1, 0.5)
		sched := &stubSchedule{temps: []float64{1e9, 0}}

		_, fitness, err := SimulatedAnnealing(p, sched, 10, rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		assert.Equal(t, 0.5, fitness, "a worse state should be accepted when exp(delta/temp) is near one")
	})

	t.Run("rejects worsening moves at vanishing temperature", func(t *testing.T) {
		p := newStubProblem(1, 0.5)
		sched := &stubSchedule{temps: []float64{1e-12}}

		_, fitness, err := SimulatedAnnealing(p, sched, 4, rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		assert.Equal(t, 1.0, fitness)
		assert.Equal(t, 4, p.randomNeighbors, "the run should stop after maxAttempts consecutive rejections")
	})

	t.Run("always accepts strict improvements", func(t *testing.T) {
		p := newStubProblem(1, 2, 0.5)
		sched := &stubSchedule{temps: []float64{1e-12}}

		_, fitness, err := SimulatedAnnealing(p, sched, 3, rand.New(rand.NewSource(1)))
		require.NoError(t, err)

		assert.Equal(t, 2.0, fitness)
		assert.Equal(t, 4, p.randomNeighbors, "one improving draw plus three rejections")
	})

	t.Run("reorients the reported fitness", func(t *testing.T) {
		p := newStubProblem(1, 2, 0.5)
		p.maximize = -1
		sched := &stubSchedule{temps: []float64{1e-12}}

		_, fitness, err := SimulatedAnnealing(p, sched, 3, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		assert.Equal(t, -2.0, fitness)
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		sched := &stubSchedule{temps: []float64{1}}

		_, _, err := SimulatedAnnealing(nil, sched, 1, rng)
		assert.Error(t, err)

		_, _, err = SimulatedAnnealing(newStubProblem(1), nil, 1, rng)
		assert.Error(t, err)

		_, _, err = SimulatedAnnealing(newStubProblem(1), sched, 0, rng)
		assert.Error(t, err)

		_, _, err = SimulatedAnnealing(newStubProblem(1), sched, 1, nil)
		assert.Error(t, err)
	})
}
