// Package fitness provides the benchmark objective functions the drivers
// are exercised against. Each constructor returns a pure closure over the
// problem state; orientation (maximize or minimize) is the problem's
// concern, not the objective's.
package fitness

import (
	"fmt"
	"math"

	"github.com/copyleftdev/SCREE/internal/optimization"
)

// OneMax scores a state by the sum of its elements. For a bitstring this is
// the number of ones, with a single global optimum at all ones.
func OneMax() optimization.Objective {
	return func(s optimization.State) float64 {
		total := 0.0
		for _, v := range s {
			total += v
		}
		return total
	}
}

// FlipFlop scores a state by the number of consecutive element pairs with
// differing values.
func FlipFlop() optimization.Objective {
	return func(s optimization.State) float64 {
		total := 0.0
		for i := 1; i < len(s); i++ {
			if s[i] != s[i-1] {
				total++
			}
		}
		return total
	}
}

// FourPeaks scores a bitstring by max(head, tail) plus a bonus of n when
// both the run of leading ones and the run of trailing zeros exceed the
// threshold ceil(tPct*n). The bonus creates two global optima guarded by
// two deceptive local optima.
func FourPeaks(tPct float64) optimization.Objective {
	if tPct < 0 || tPct > 1 {
		panic(fmt.Sprintf("tPct must be in [0, 1], got %v", tPct))
	}
	return func(s optimization.State) float64 {
		n := len(s)
		head := leadingRun(s, 1)
		tail := trailingRun(s, 0)
		threshold := math.Ceil(tPct * float64(n))

		bonus := 0.0
		if float64(head) > threshold && float64(tail) > threshold {
			bonus = float64(n)
		}
		return math.Max(float64(head), float64(tail)) + bonus
	}
}

// ContinuousPeaks scores a bitstring by the longest run of identical values
// plus a bonus of n when the longest run of zeros and the longest run of
// ones both exceed ceil(tPct*n). Unlike FourPeaks the runs may occur
// anywhere in the string.
func ContinuousPeaks(tPct float64) optimization.Objective {
	if tPct < 0 || tPct > 1 {
		panic(fmt.Sprintf("tPct must be in [0, 1], got %v", tPct))
	}
	return func(s optimization.State) float64 {
		n := len(s)
		zeros := longestRun(s, 0)
		ones := longestRun(s, 1)
		threshold := math.Ceil(tPct * float64(n))

		bonus := 0.0
		if float64(zeros) > threshold && float64(ones) > threshold {
			bonus = float64(n)
		}
		return math.Max(float64(zeros), float64(ones)) + bonus
	}
}

// Queens scores a board of column-indexed queen rows by the number of pairs
// of queens attacking each other. Zero is a solved board, so the objective
// is meant to be minimized.
func Queens() optimization.Objective {
	return func(s optimization.State) float64 {
		attacks := 0.0
		for i := 0; i < len(s)-1; i++ {
			for j := i + 1; j < len(s); j++ {
				if s[j] == s[i] || math.Abs(s[j]-s[i]) == float64(j-i) {
					attacks++
				}
			}
		}
		return attacks
	}
}

// Knapsack scores a state of per-item copy counts by the total value
// carried, or zero when the total weight exceeds the capacity
// ceil(maxWeightPct * sum(weights)).
func Knapsack(weights, values []float64, maxWeightPct float64) (optimization.Objective, error) {
	if len(weights) == 0 || len(weights) != len(values) {
		return nil, fmt.Errorf("weights and values must be non-empty and of equal length, got %d and %d",
			len(weights), len(values))
	}
	if maxWeightPct <= 0 || maxWeightPct > 1 {
		return nil, fmt.Errorf("maxWeightPct must be in (0, 1], got %v", maxWeightPct)
	}
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("weights must be positive, got %v at index %d", w, i)
		}
	}

	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}
	capacity := math.Ceil(maxWeightPct * totalWeight)

	return func(s optimization.State) float64 {
		weight := 0.0
		value := 0.0
		for i, count := range s {
			if i >= len(weights) {
				break
			}
			weight += count * weights[i]
			value += count * values[i]
		}
		if weight > capacity {
			return 0
		}
		return value
	}, nil
}

// Negate flips the sign of an objective. A problem whose true goal is to
// minimize obj is constructed with Negate(obj) and maximize=false: the
// search internally maximizes the negated value and the driver's final
// orientation flip reports the minimized objective.
func Negate(obj optimization.Objective) optimization.Objective {
	return func(s optimization.State) float64 {
		return -obj(s)
	}
}

func leadingRun(s optimization.State, val float64) int {
	run := 0
	for _, v := range s {
		if v != val {
			break
		}
		run++
	}
	return run
}

func trailingRun(s optimization.State, val float64) int {
	run := 0
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != val {
			break
		}
		run++
	}
	return run
}

func longestRun(s optimization.State, val float64) int {
	best, run := 0, 0
	for _, v := range s {
		if v == val {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}
