package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttemptCounter(t *testing.T) {
	t.Run("exhausts after ceiling stalls", func(t *testing.T) {
		c := newAttemptCounter(3)
		assert.False(t, c.Exhausted())

		c.Stalled()
		c.Stalled()
		assert.False(t, c.Exhausted(), "two stalls should not exhaust a ceiling of three")

		c.Stalled()
		assert.True(t, c.Exhausted())
	})

	t.Run("improvement resets the stall count", func(t *testing.T) {
		c := newAttemptCounter(2)
		c.Stalled()
		c.Improved()
		c.Stalled()
		assert.False(t, c.Exhausted(), "improvement should reset the counter")

		c.Stalled()
		assert.True(t, c.Exhausted())
	})

	t.Run("ceiling of one exhausts on first stall", func(t *testing.T) {
		c := newAttemptCounter(1)
		c.Stalled()
		assert.True(t, c.Exhausted())
	})
}
