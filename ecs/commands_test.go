package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/fixedgate/ecs"
	"github.com/stretchr/testify/assert"
)

type testSpawnSystem struct{}

func (s *testSpawnSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	frame.Commands.Spawn(Position{X: 3, Y: 4})
}

type testMixedSystem struct {
	entity ecs.EntityId
}

func (s *testMixedSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Spawn(Position{X: 10, Y: 20})
	frame.Commands.Insert(s.entity, Velocity{DX: 1, DY: 1})
	frame.Commands.Delete(s.entity)
	frame.Commands.Spawn(Health{Current: 100, Max: 100})
}

func TestCommandsDeferredUntilEndOfTick(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	var countDuringTick int
	scheduler.Register(&testSpawnSystem{})
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		countDuringTick = frame.Storage.Len()
	}))

	scheduler.Once(0)

	assert.Equal(t, 0, countDuringTick, "spawns must not be visible inside the tick")
	assert.Equal(t, 2, storage.Len())
}

func TestCommandsDeleteWins(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	entity := storage.Spawn(Position{})
	scheduler.Register(&testMixedSystem{entity: entity})
	scheduler.Once(0)

	assert.False(t, storage.Alive(entity))
	assert.Equal(t, 2, storage.Len())
}

func TestCommandsInsertRemoveAndDefer(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	entity := storage.Spawn(Position{}, Velocity{})

	var order []string
	cmds := &ecs.Commands{}
	cmds.Remove(entity, reflect.TypeOf(Velocity{}))
	cmds.Insert(entity, Health{Current: 1, Max: 2})
	cmds.Defer(func() {
		order = append(order, "defer")
		// earlier commands are already applied
		assert.NotNil(t, ecs.ReadComponent[Health](storage, entity))
	})
	assert.Equal(t, 3, cmds.Len())

	cmds.Flush(storage)

	assert.Equal(t, []string{"defer"}, order)
	assert.Nil(t, ecs.ReadComponent[Velocity](storage, entity))
	assert.Equal(t, 0, cmds.Len())

	// flushing an empty buffer is harmless
	cmds.Flush(storage)
	assert.Equal(t, []string{"defer"}, order)
}
