package ecs

// State is a process-wide finite state value owned by storage.
// Set only queues the next value. The scheduler applies it after all systems of
// the tick have run, or before the next tick when Set is called between ticks,
// so every reader within a tick sees the same value.
type State[S comparable] struct {
	current     S
	next        S
	queued      bool
	transitions uint64
	observers   []func(from, to S)
}

type stateApplier interface {
	applyTransition() bool
}

// AddState registers a state with the scheduler and stores it as a singleton.
// Calling it again for the same S returns the existing state unchanged.
func AddState[S comparable](scheduler *Scheduler, initial S) *State[S] {
	if existing := GetSingleton[State[S]](scheduler.storage); existing != nil {
		return existing
	}

	scheduler.storage.AddSingleton(State[S]{current: initial})
	st := GetSingleton[State[S]](scheduler.storage)
	scheduler.states = append(scheduler.states, st)
	return st
}

// Current returns the value in effect for this tick.
func (s *State[S]) Current() S {
	return s.current
}

// Set queues a transition. The last Set in a tick wins. Setting the current
// value is a no-op when applied.
func (s *State[S]) Set(next S) {
	s.next = next
	s.queued = true
}

// Pending returns the queued value, if any.
func (s *State[S]) Pending() (S, bool) {
	return s.next, s.queued
}

// Transitions counts applied changes of value.
func (s *State[S]) Transitions() uint64 {
	return s.transitions
}

// OnTransition registers fn to run whenever a queued change is applied.
func (s *State[S]) OnTransition(fn func(from, to S)) {
	s.observers = append(s.observers, fn)
}

func (s *State[S]) applyTransition() bool {
	if !s.queued {
		return false
	}
	s.queued = false
	if s.next == s.current {
		return false
	}

	from := s.current
	s.current = s.next
	s.transitions++
	for _, fn := range s.observers {
		fn(from, s.current)
	}
	return true
}
