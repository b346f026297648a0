package ecs

import "reflect"

// iComponentStorage holds every instance of one component type, keyed by entity.
type iComponentStorage interface {
	Type() reflect.Type
	Insert(id EntityId, item any) bool
	Remove(id EntityId) bool
	Get(id EntityId) any
	Has(id EntityId) bool
	Len() int
	Entities() []EntityId
}
