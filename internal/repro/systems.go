package repro

import (
	"github.com/plus3/fixedgate/ecs"
	"github.com/plus3/fixedgate/ecs/timestep"
	"github.com/rs/zerolog"
)

// PointerSystem turns the pointer sample into button interactions and emits
// an event for every button whose interaction changed.
type PointerSystem struct {
	Pointer ecs.Singleton[Pointer]
	Events  ecs.Singleton[Interactions]
	Buttons ecs.Query[struct {
		ecs.EntityId
		*Button
		*Interaction
	}]
}

func (s *PointerSystem) Execute(frame *ecs.UpdateFrame) {
	pointer := s.Pointer.Get()
	events := s.Events.Get()

	for item := range s.Buttons.Values() {
		kind := ResolveInteraction(*item.Button, *pointer)
		if kind == *item.Interaction {
			continue
		}
		*item.Interaction = kind
		events.Push(item.EntityId, kind)
	}
}

// ButtonSystem stops the app when the tracked button is clicked.
type ButtonSystem struct {
	Events ecs.Singleton[Interactions]
	State  ecs.Singleton[ecs.State[AppState]]
	Button ecs.EntityId
	Log    zerolog.Logger
}

func (s *ButtonSystem) Execute(frame *ecs.UpdateFrame) {
	HandleInteractions(s.Events.Get().Events, s.Button, s.State.Get(), s.Log)
}

// HandleInteractions queues Stop once for every Clicked event on button and
// returns the number of clicks seen. Other kinds and other buttons are ignored.
func HandleInteractions(events []InteractionEvent, button ecs.EntityId, state *ecs.State[AppState], log zerolog.Logger) int {
	clicks := 0
	for _, ev := range events {
		if ev.Button != button || ev.Kind != Clicked {
			continue
		}
		clicks++
		log.Info().Msg("changing state to Stop")
		state.Set(Stop)
	}
	return clicks
}

// CounterSystem increments the counter and logs the new id.
type CounterSystem struct {
	Counters ecs.Query[struct{ *Counter }]
	Log      zerolog.Logger
}

func (s *CounterSystem) Execute(frame *ecs.UpdateFrame) {
	_, item, ok := s.Counters.Single()
	if !ok {
		s.Log.Error().Int("counters", s.Counters.Count()).Msg("expected exactly one counter")
		return
	}
	id := item.Counter.Increment()
	s.Log.Info().Uint64("id", id).Uint64("tick", frame.Tick).Msg("unique id generated")
}

// ClearInteractionsSystem drops the events of the finished tick.
type ClearInteractionsSystem struct {
	Events ecs.Singleton[Interactions]
}

func (s *ClearInteractionsSystem) Execute(frame *ecs.UpdateFrame) {
	events := s.Events.Get()
	events.Events = events.Events[:0]
}

// ReconfigureSystem applies timer settings received from a config watcher.
// Only the newest pending update is applied.
type ReconfigureSystem struct {
	Updates <-chan Settings
	Timer   *timestep.Accumulator
	Log     zerolog.Logger
}

func (s *ReconfigureSystem) Execute(frame *ecs.UpdateFrame) {
	var (
		latest  Settings
		pending bool
	)
drain:
	for {
		select {
		case settings, ok := <-s.Updates:
			if !ok {
				s.Updates = nil
				break drain
			}
			latest, pending = settings, true
		default:
			break drain
		}
	}

	if !pending {
		return
	}
	s.Timer.Reconfigure(latest.Interval, latest.Policy, latest.MaxSteps)
	s.Log.Info().
		Dur("interval", latest.Interval).
		Stringer("policy", latest.Policy).
		Int("max_steps", latest.MaxSteps).
		Msg("timer reconfigured")
}

// ClickScript presses the pointer on the first button at the listed ticks and
// releases it on the following tick. It drives headless runs.
type ClickScript struct {
	Pointer ecs.Singleton[Pointer]
	Buttons ecs.Query[struct{ *Button }]
	At      map[uint64]bool

	pressed bool
}

func (s *ClickScript) Execute(frame *ecs.UpdateFrame) {
	pointer := s.Pointer.Get()
	if !s.At[frame.Tick] {
		if s.pressed {
			pointer.Pressed = false
			s.pressed = false
		}
		return
	}

	for item := range s.Buttons.Values() {
		pointer.X, pointer.Y = item.Button.Center()
		pointer.Pressed = true
		s.pressed = true
		return
	}
}
