package ecs

import (
	"reflect"
	"sort"
)

// Storage is the main ECS storage interface
type Storage struct {
	registry    *ComponentRegistry
	components  map[reflect.Type]iComponentStorage
	generations []uint32
	alive       []bool
	free        []uint32
	live        int
	singletons  map[reflect.Type]any
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		components: make(map[reflect.Type]iComponentStorage),
		singletons: make(map[reflect.Type]any),
	}
}

// Spawn creates a new entity with the provided components
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	id := s.allocate()
	for _, comp := range components {
		s.insert(id, comp)
	}
	return id
}

func (s *Storage) allocate() EntityId {
	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
		s.generations[index]++
	} else {
		index = uint32(len(s.generations))
		s.generations = append(s.generations, 1)
		s.alive = append(s.alive, false)
	}
	s.alive[index] = true
	s.live++
	return NewEntityId(s.generations[index], index)
}

// Alive reports whether id refers to an entity that has not been deleted
func (s *Storage) Alive(id EntityId) bool {
	index := id.Index()
	if int(index) >= len(s.generations) {
		return false
	}
	return s.alive[index] && s.generations[index] == id.Generation()
}

// Len returns the number of live entities
func (s *Storage) Len() int {
	return s.live
}

// Entities returns the ids of all live entities in slot order
func (s *Storage) Entities() []EntityId {
	ids := make([]EntityId, 0, s.live)
	for index, alive := range s.alive {
		if alive {
			ids = append(ids, NewEntityId(s.generations[index], uint32(index)))
		}
	}
	return ids
}

// ComponentTypes lists the component types attached to an entity, sorted by name
func (s *Storage) ComponentTypes(id EntityId) []reflect.Type {
	if !s.Alive(id) {
		return nil
	}
	var types []reflect.Type
	for t, cs := range s.components {
		if cs.Has(id) {
			types = append(types, t)
		}
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}

// Delete removes all data related to the entity ID
func (s *Storage) Delete(id EntityId) bool {
	if !s.Alive(id) {
		return false
	}

	for _, cs := range s.components {
		cs.Remove(id)
	}

	index := id.Index()
	s.alive[index] = false
	s.free = append(s.free, index)
	s.live--
	return true
}

// Insert adds or replaces a component on a live entity
func (s *Storage) Insert(id EntityId, component any) bool {
	if !s.Alive(id) {
		return false
	}
	s.insert(id, component)
	return true
}

func (s *Storage) insert(id EntityId, component any) {
	cs := s.componentStorage(componentType(component))
	if !cs.Insert(id, component) {
		panic("component type mismatch for " + cs.Type().String())
	}
}

// Remove drops one component from an entity. An entity left without
// components stays alive until deleted.
func (s *Storage) Remove(id EntityId, compType reflect.Type) bool {
	if !s.Alive(id) {
		return false
	}
	cs, ok := s.components[compType]
	if !ok {
		return false
	}
	return cs.Remove(id)
}

// GetComponent returns a pointer to the component for the given entity ID and
// component type, or nil
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	if !s.Alive(id) {
		return nil
	}
	cs, ok := s.components[compType]
	if !ok {
		return nil
	}
	return cs.Get(id)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	if !s.Alive(id) {
		return false
	}
	cs, ok := s.components[compType]
	return ok && cs.Has(id)
}

func (s *Storage) componentStorage(t reflect.Type) iComponentStorage {
	if cs, ok := s.components[t]; ok {
		return cs
	}
	factory := s.registry.getFactory(t)
	if factory == nil {
		panic("component type " + t.String() + " not registered")
	}
	cs := factory()
	s.components[t] = cs
	return cs
}

// componentType resolves the component type of a value, dereferencing pointers
func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType == nil {
		panic("cannot use nil as a component")
	}

	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	// Components can be structs or primitives (int, string, etc.)
	// But not pointers, maps, channels, or functions (those aren't value types)
	switch compType.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		panic("components cannot be pointers, maps, channels, or functions")
	}
	return compType
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's T component, or nil
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return comp
}

// AddSingleton stores a value that is not attached to any entity.
// An existing singleton of the same type is replaced.
func (s *Storage) AddSingleton(value any) {
	t := reflect.TypeOf(value)
	if t == nil {
		panic("cannot use nil as a singleton")
	}
	ptr := reflect.New(t)
	ptr.Elem().Set(reflect.ValueOf(value))
	s.singletons[t] = ptr.Interface()
}

// getSingleton returns the stored *T as any, or nil
func (s *Storage) getSingleton(t reflect.Type) any {
	return s.singletons[t]
}

// ReadSingleton points *out at the stored singleton of type T
func ReadSingleton[T any](s *Storage, out **T) bool {
	ptr := GetSingleton[T](s)
	*out = ptr
	return ptr != nil
}

// GetSingleton returns the stored singleton of type T, or nil
func GetSingleton[T any](s *Storage) *T {
	ptr, _ := s.getSingleton(reflect.TypeFor[T]()).(*T)
	return ptr
}

// StorageStats summarises storage contents for debugging tools
type StorageStats struct {
	EntityCount    int
	SingletonCount int
	SingletonTypes []string
	Components     []ComponentStats
}

type ComponentStats struct {
	Type  string
	Count int
}

// CollectStats gathers entity, component and singleton counts
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		EntityCount:    s.live,
		SingletonCount: len(s.singletons),
	}

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	sort.Strings(stats.SingletonTypes)

	for t, cs := range s.components {
		stats.Components = append(stats.Components, ComponentStats{
			Type:  t.String(),
			Count: cs.Len(),
		})
	}
	sort.Slice(stats.Components, func(i, j int) bool {
		return stats.Components[i].Type < stats.Components[j].Type
	})

	return stats
}
