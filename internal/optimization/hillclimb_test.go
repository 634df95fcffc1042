package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHillClimb(t *testing.T) {
	t.Run("climbs until no neighbor improves", func(t *testing.T) {
		p := newStubProblem(1, 2, 3, 3)

		state, fitness, err := HillClimb(p, 1)
		require.NoError(t, err)

		assert.Equal(t, State{3}, state)
		assert.Equal(t, 3.0, fitness)
		assert.Equal(t, 3, p.findNeighborCalls, "loop should stop the first time the best neighbor fails to improve")
	})

	t.Run("runs one reset per restart", func(t *testing.T) {
		p := newStubProblem(1, 2, 3, 3)

		_, fitness, err := HillClimb(p, 4)
		require.NoError(t, err)

		assert.Equal(t, 4, p.resets)
		assert.Equal(t, 3.0, fitness, "best fitness should be tracked across restarts")
	})

	t.Run("reorients the reported fitness", func(t *testing.T) {
		p := newStubProblem(1, 2, 3, 3)
		p.maximize = -1

		state, fitness, err := HillClimb(p, 1)
		require.NoError(t, err)

		assert.Equal(t, State{3}, state, "state is reported before the orientation flip")
		assert.Equal(t, -3.0, fitness)
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		_, _, err := HillClimb(nil, 1)
		assert.Error(t, err)

		_, _, err = HillClimb(newStubProblem(1), 0)
		assert.Error(t, err)
	})
}

func TestRandomHillClimb(t *testing.T) {
	t.Run("gives up after maxAttempts non-improving draws", func(t *testing.T) {
		p := newStubProblem(5, 1)

		state, fitness, err := RandomHillClimb(p, 6, 1)
		require.NoError(t, err)

		assert.Equal(t, State{5}, state)
		assert.Equal(t, 5.0, fitness)
		assert.Equal(t, 6, p.randomNeighbors, "every rejection should count against the attempt ceiling")
	})

	t.Run("improvement resets the attempt counter", func(t *testing.T) {
		p := newStubProblem(1, 2, 1, 1, 3, 1, 1, 1)

		_, fitness, err := RandomHillClimb(p, 3, 1)
		require.NoError(t, err)

		assert.Equal(t, 3.0, fitness)
		assert.Equal(t, 7, p.randomNeighbors, "the second improvement should have bought three more attempts")
	})

	t.Run("reorients the reported fitness", func(t *testing.T) {
		p := newStubProblem(1, 2, 1, 1)
		p.maximize = -1

		_, fitness, err := RandomHillClimb(p, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, -2.0, fitness)
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		_, _, err := RandomHillClimb(nil, 1, 1)
		assert.Error(t, err)

		_, _, err = RandomHillClimb(newStubProblem(1), 0, 1)
		assert.Error(t, err)

		_, _, err = RandomHillClimb(newStubProblem(1), 1, 0)
		assert.Error(t, err)
	})
}
