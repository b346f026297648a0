package ecs_test

import (
	"testing"

	"github.com/plus3/fixedgate/ecs"
	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	t.Run("transition observers", func(t *testing.T) {
		scheduler := ecs.NewScheduler(ecs.NewStorage(newTestRegistry()))
		phase := ecs.AddState(scheduler, PhaseRunning)

		type change struct{ from, to Phase }
		var changes []change
		phase.OnTransition(func(from, to Phase) {
			changes = append(changes, change{from, to})
		})

		phase.Set(PhasePaused)
		next, queued := phase.Pending()
		assert.True(t, queued)
		assert.Equal(t, PhasePaused, next)
		assert.Equal(t, PhaseRunning, phase.Current(), "set must not apply immediately")

		scheduler.Once(0)
		assert.Equal(t, PhasePaused, phase.Current())
		assert.Equal(t, []change{{PhaseRunning, PhasePaused}}, changes)

		_, queued = phase.Pending()
		assert.False(t, queued)
	})

	t.Run("setting the current value is a no-op", func(t *testing.T) {
		scheduler := ecs.NewScheduler(ecs.NewStorage(newTestRegistry()))
		phase := ecs.AddState(scheduler, PhaseRunning)

		called := false
		phase.OnTransition(func(Phase, Phase) { called = true })

		phase.Set(PhaseRunning)
		scheduler.Once(0)

		assert.False(t, called)
		assert.Equal(t, uint64(0), phase.Transitions())
	})

	t.Run("last set in a tick wins", func(t *testing.T) {
		scheduler := ecs.NewScheduler(ecs.NewStorage(newTestRegistry()))
		phase := ecs.AddState(scheduler, PhaseRunning)

		phase.Set(PhasePaused)
		phase.Set(PhaseRunning)
		scheduler.Once(0)

		assert.Equal(t, PhaseRunning, phase.Current())
		assert.Equal(t, uint64(0), phase.Transitions())
	})

	t.Run("add state is idempotent", func(t *testing.T) {
		scheduler := ecs.NewScheduler(ecs.NewStorage(newTestRegistry()))
		first := ecs.AddState(scheduler, PhaseRunning)
		second := ecs.AddState(scheduler, PhasePaused)

		assert.Same(t, first, second)
		assert.Equal(t, PhaseRunning, second.Current())
		assert.Same(t, first, ecs.GetSingleton[ecs.State[Phase]](scheduler.Storage()))
	})

	t.Run("systems reach state through a singleton field", func(t *testing.T) {
		scheduler := ecs.NewScheduler(ecs.NewStorage(newTestRegistry()))
		ecs.AddState(scheduler, PhaseRunning)

		sys := &pauseSystem{}
		scheduler.Register(sys)
		scheduler.Once(0)

		assert.Equal(t, PhasePaused, sys.Phase.Get().Current())
	})
}

type pauseSystem struct {
	Phase ecs.Singleton[ecs.State[Phase]]
}

func (s *pauseSystem) Execute(*ecs.UpdateFrame) {
	s.Phase.Get().Set(PhasePaused)
}
