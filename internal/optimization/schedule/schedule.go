// Package schedule provides annealing temperature schedules. Every schedule
// is a pure function of the iteration index; a schedule whose floor is zero
// eventually reports a temperature of exactly zero, which terminates a
// simulated annealing run.
package schedule

import (
	"fmt"
	"math"
)

// GeomDecay decays the temperature geometrically:
// temperature(t) = max(initTemp * decay^t, minTemp).
type GeomDecay struct {
	initTemp float64
	decay    float64
	minTemp  float64
}

// NewGeomDecay creates a geometric decay schedule.
func NewGeomDecay(initTemp, decay, minTemp float64) *GeomDecay {
	if initTemp <= 0 {
		panic(fmt.Sprintf("initTemp must be positive, got %v", initTemp))
	}
	if decay <= 0 || decay >= 1 {
		panic(fmt.Sprintf("decay must be in (0, 1), got %v", decay))
	}
	if minTemp < 0 || minTemp > initTemp {
		panic(fmt.Sprintf("minTemp must be in [0, initTemp], got %v", minTemp))
	}
	return &GeomDecay{initTemp: initTemp, decay: decay, minTemp: minTemp}
}

// Evaluate returns the temperature at time t.
func (s *GeomDecay) Evaluate(t int) float64 {
	return math.Max(s.initTemp*math.Pow(s.decay, float64(t)), s.minTemp)
}

// ArithDecay decays the temperature linearly:
// temperature(t) = max(initTemp - decay*t, minTemp).
type ArithDecay struct {
	initTemp float64
	decay    float64
	minTemp  float64
}

// NewArithDecay creates an arithmetic decay schedule.
func NewArithDecay(initTemp, decay, minTemp float64) *ArithDecay {
	if initTemp <= 0 {
		panic(fmt.Sprintf("initTemp must be positive, got %v", initTemp))
	}
	if decay <= 0 {
		panic(fmt.Sprintf("decay must be positive, got %v", decay))
	}
	if minTemp < 0 || minTemp > initTemp {
		panic(fmt.Sprintf("minTemp must be in [0, initTemp], got %v", minTemp))
	}
	return &ArithDecay{initTemp: initTemp, decay: decay, minTemp: minTemp}
}

// Evaluate returns the temperature at time t. With minTemp == 0 the
// temperature reaches exactly zero at t = initTemp/decay.
func (s *ArithDecay) Evaluate(t int) float64 {
	return math.Max(s.initTemp-s.decay*float64(t), s.minTemp)
}

// ExpDecay decays the temperature exponentially:
// temperature(t) = max(initTemp * exp(-expConst*t), minTemp).
type ExpDecay struct {
	initTemp float64
	expConst float64
	minTemp  float64
}

// NewExpDecay creates an exponential decay schedule.
func NewExpDecay(initTemp, expConst, minTemp float64) *ExpDecay {
	if initTemp <= 0 {
		panic(fmt.Sprintf("initTemp must be positive, got %v", initTemp))
	}
	if expConst <= 0 {
		panic(fmt.Sprintf("expConst must be positive, got %v", expConst))
	}
	if minTemp < 0 || minTemp > initTemp {
		panic(fmt.Sprintf("minTemp must be in [0, initTemp], got %v", minTemp))
	}
	return &ExpDecay{initTemp: initTemp, expConst: expConst, minTemp: minTemp}
}

// Evaluate returns the temperature at time t.
func (s *ExpDecay) Evaluate(t int) float64 {
	return math.Max(s.initTemp*math.Exp(-s.expConst*float64(t)), s.minTemp)
}

// Const holds the temperature fixed. It never reaches zero, so runs using it
// terminate on the attempts ceiling alone.
type Const struct {
	temp float64
}

// NewConst creates a constant-temperature schedule.
func NewConst(temp float64) *Const {
	if temp <= 0 {
		panic(fmt.Sprintf("temp must be positive, got %v", temp))
	}
	return &Const{temp: temp}
}

// Evaluate returns the fixed temperature regardless of t.
func (s *Const) Evaluate(int) float64 {
	return s.temp
}
