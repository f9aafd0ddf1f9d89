package backend

import (
	"errors"
	"math/rand/v2"
	"time"
)

// ErrNetwork is the simulated transfer failure.
var ErrNetwork = errors.New("upload failed due to network error")

// Randomizer is the source of the simulation's dice rolls.
type Randomizer interface {
	// Float64 returns a number in [0, 1).
	Float64() float64
}

type mathRand struct{}

func (mathRand) Float64() float64 { return rand.Float64() }

// Simulation shapes a simulated transfer.
type Simulation struct {
	InitialDelay time.Duration
	Steps        int

	// The tick interval is drawn once per upload from [MinStep, MaxStep).
	MinStep time.Duration
	MaxStep time.Duration

	// FailureRate is the chance an upload fails at a random offset in
	// [MinFailAfter, MaxFailAfter) from its first tick.
	FailureRate  float64
	MinFailAfter time.Duration
	MaxFailAfter time.Duration
}

// DefaultSimulation returns 20 ticks of 150-250ms after a 200ms start delay,
// with a 5% chance of failing 1-3s in.
func DefaultSimulation() Simulation {
	return Simulation{
		InitialDelay: 200 * time.Millisecond,
		Steps:        20,
		MinStep:      150 * time.Millisecond,
		MaxStep:      250 * time.Millisecond,
		FailureRate:  0.05,
		MinFailAfter: time.Second,
		MaxFailAfter: 3 * time.Second,
	}
}

// Latency is the artificial delay of each store operation.
type Latency struct {
	List   time.Duration
	Pause  time.Duration
	Resume time.Duration
	Cancel time.Duration
	Delete time.Duration
	Get    time.Duration
	Stats  time.Duration
}

func DefaultLatency() Latency {
	return Latency{
		List:   300 * time.Millisecond,
		Pause:  100 * time.Millisecond,
		Resume: 100 * time.Millisecond,
		Cancel: 100 * time.Millisecond,
		Delete: 200 * time.Millisecond,
		Get:    150 * time.Millisecond,
		Stats:  200 * time.Millisecond,
	}
}

// plan is the outcome of the dice rolls for one upload.
type plan struct {
	interval time.Duration
	fails    bool
	failAt   time.Duration
}

func between(r Randomizer, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(r.Float64()*float64(hi-lo))
}
