package ecs

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent ECS systems to coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be used.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	r.factories[t] = func() iComponentStorage {
		return newGenericComponentStorage[T]()
	}
}

// getFactory returns the factory function for a given component type.
// Returns nil if the type is not registered.
func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

// genericComponentStorage is a sparse set: entities and values are packed densely
// and the slot map resolves an entity to its dense position.
// Values are heap allocated so pointers handed to systems stay valid when the
// dense arrays grow or get reordered by removals.
type genericComponentStorage[T any] struct {
	slots    *intmap.Map[EntityId, int]
	entities []EntityId
	values   []*T
}

func newGenericComponentStorage[T any]() *genericComponentStorage[T] {
	return &genericComponentStorage[T]{
		slots: intmap.New[EntityId, int](64),
	}
}

func (cs *genericComponentStorage[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// Insert stores item (a T or *T) for the entity, replacing any existing value.
func (cs *genericComponentStorage[T]) Insert(id EntityId, item any) bool {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return false
	}

	if pos, ok := cs.slots.Get(id); ok {
		*cs.values[pos] = value
		return true
	}

	cs.slots.Put(id, len(cs.entities))
	cs.entities = append(cs.entities, id)
	cs.values = append(cs.values, &value)
	return true
}

// Remove swaps the last element into the removed position.
func (cs *genericComponentStorage[T]) Remove(id EntityId) bool {
	pos, ok := cs.slots.Get(id)
	if !ok {
		return false
	}

	last := len(cs.entities) - 1
	if pos != last {
		moved := cs.entities[last]
		cs.entities[pos] = moved
		cs.values[pos] = cs.values[last]
		cs.slots.Put(moved, pos)
	}

	cs.entities[last] = 0
	cs.values[last] = nil
	cs.entities = cs.entities[:last]
	cs.values = cs.values[:last]
	cs.slots.Del(id)
	return true
}

// Get returns a *T for the entity, or nil.
func (cs *genericComponentStorage[T]) Get(id EntityId) any {
	if pos, ok := cs.slots.Get(id); ok {
		return cs.values[pos]
	}
	return nil
}

func (cs *genericComponentStorage[T]) get(id EntityId) *T {
	if pos, ok := cs.slots.Get(id); ok {
		return cs.values[pos]
	}
	return nil
}

func (cs *genericComponentStorage[T]) Has(id EntityId) bool {
	_, ok := cs.slots.Get(id)
	return ok
}

func (cs *genericComponentStorage[T]) Len() int {
	return len(cs.entities)
}

// Entities returns the dense entity list. Callers must not modify it.
func (cs *genericComponentStorage[T]) Entities() []EntityId {
	return cs.entities
}
