package ecs

import "reflect"

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// This prevents structural changes to the ECS storage during system execution.
type Commands struct {
	spawns  [][]any
	deletes []EntityId
	inserts []insertCommand
	removes []removeCommand
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type insertCommand struct {
	entity    EntityId
	component any
}

type removeCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function to run after the other commands have been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// Insert queues adding or replacing a component.
func (c *Commands) Insert(entity EntityId, component any) {
	c.inserts = append(c.inserts, insertCommand{entity: entity, component: component})
}

// Remove queues a component removal operation.
func (c *Commands) Remove(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeCommand{entity: entity, compType: compType})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.inserts) + len(c.removes) + len(c.defers)
}

// Flush applies all commands to the provided storage, resetting the buffer.
// Deletes run first; removes and inserts aimed at entities deleted in the
// same flush are dropped.
func (c *Commands) Flush(storage *Storage) {
	deleted := make(map[EntityId]bool, len(c.deletes))

	for _, id := range c.deletes {
		storage.Delete(id)
		deleted[id] = true
	}

	for _, cmd := range c.removes {
		if !deleted[cmd.entity] {
			storage.Remove(cmd.entity, cmd.compType)
		}
	}

	for _, cmd := range c.inserts {
		if !deleted[cmd.entity] {
			storage.Insert(cmd.entity, cmd.component)
		}
	}

	for _, components := range c.spawns {
		storage.Spawn(components...)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.inserts = c.inserts[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
