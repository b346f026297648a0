// Package timestep implements fixed-interval triggering on top of a variable
// tick delta. It has no knowledge of the scheduler: callers pass the tick
// delta and whether the action's gate is open, and get back how many times
// the action is due this tick.
package timestep

import "time"

// Accumulator tracks elapsed time since the last fixed step.
type Accumulator struct {
	interval    time.Duration
	policy      Policy
	maxSteps    int
	accumulated time.Duration
	fired       uint64
	skipped     uint64
}

type Option func(*Accumulator)

// WithMaxSteps caps the number of steps fired in a single tick. Steps beyond
// the cap stay in the accumulator and fire on later ticks. Zero means no cap.
func WithMaxSteps(n int) Option {
	return func(a *Accumulator) {
		if n < 0 {
			n = 0
		}
		a.maxSteps = n
	}
}

// New creates an accumulator firing once per interval. It panics if interval
// is not positive.
func New(interval time.Duration, policy Policy, opts ...Option) *Accumulator {
	if interval <= 0 {
		panic("timestep: interval must be positive")
	}
	a := &Accumulator{
		interval: interval,
		policy:   policy,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Step advances the accumulator by dt and returns the number of steps that
// fire this tick. Nothing fires while open is false. A fired step subtracts
// one interval so any remainder carries into the next step.
//
// Under FreeRunning, interval boundaries crossed while the gate is closed are
// consumed as skipped steps. The clock keeps its phase and reopening the gate
// does not release a burst of stale steps.
func (a *Accumulator) Step(dt time.Duration, open bool) int {
	if dt < 0 {
		dt = 0
	}

	switch a.policy {
	case FreeRunning:
		a.accumulated += dt
	default:
		if !open {
			return 0
		}
		a.accumulated += dt
	}

	if !open {
		n := a.accumulated / a.interval
		a.accumulated -= n * a.interval
		a.skipped += uint64(n)
		return 0
	}

	steps := 0
	for a.accumulated >= a.interval {
		if a.maxSteps > 0 && steps >= a.maxSteps {
			break
		}
		a.accumulated -= a.interval
		a.fired++
		steps++
	}
	return steps
}

// Reconfigure changes interval, policy and step cap in place. Accumulated
// time is kept, so a shorter interval may fire on the next open tick.
func (a *Accumulator) Reconfigure(interval time.Duration, policy Policy, maxSteps int) {
	if interval <= 0 {
		panic("timestep: interval must be positive")
	}
	if maxSteps < 0 {
		maxSteps = 0
	}
	a.interval = interval
	a.policy = policy
	a.maxSteps = maxSteps
}

// Reset clears accumulated time and counters.
func (a *Accumulator) Reset() {
	a.accumulated = 0
	a.fired = 0
	a.skipped = 0
}

func (a *Accumulator) Interval() time.Duration    { return a.interval }
func (a *Accumulator) Policy() Policy             { return a.policy }
func (a *Accumulator) MaxSteps() int              { return a.maxSteps }
func (a *Accumulator) Accumulated() time.Duration { return a.accumulated }

// Fired returns the number of steps that have fired since creation or Reset.
func (a *Accumulator) Fired() uint64 { return a.fired }

// Skipped returns the number of steps consumed while the gate was closed.
// Only FreeRunning skips steps.
func (a *Accumulator) Skipped() uint64 { return a.skipped }

// Progress returns the accumulated time as a fraction of the interval.
// Values above 1 mean steps are backed up behind the step cap.
func (a *Accumulator) Progress() float64 {
	return float64(a.accumulated) / float64(a.interval)
}
