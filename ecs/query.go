package ecs

import (
	"iter"
	"reflect"
)

var entityIdType = reflect.TypeFor[EntityId]()

type queryField struct {
	index    int
	typ      reflect.Type
	optional bool
}

// Query iterates entities holding a combination of components.
// T must be a struct whose fields are pointers to component types, embedded or
// named. Named fields tagged `ecs:"optional"` may be nil. A field of type
// EntityId receives the entity's id.
type Query[T any] struct {
	storage  *Storage
	fields   []queryField
	idField  int
	required int
}

// NewQuery creates a Query bound to the given storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init parses T and binds the Query to a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("Query type parameter must be a struct")
	}

	q.storage = storage
	q.fields = q.fields[:0]
	q.idField = -1
	q.required = 0

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type == entityIdType {
			q.idField = i
			continue
		}

		if field.Type.Kind() != reflect.Ptr {
			panic("Query struct fields must be pointer types or EntityId")
		}

		optional := false
		if tag := field.Tag.Get("ecs"); tag != "" {
			if tag != "optional" || field.Anonymous {
				panic("invalid ecs tag on " + field.Name + ": only named fields accept \"optional\"")
			}
			optional = true
		}
		if !optional {
			q.required++
		}

		q.fields = append(q.fields, queryField{
			index:    i,
			typ:      field.Type.Elem(),
			optional: optional,
		})
	}

	if q.required == 0 {
		panic("Query needs at least one required component")
	}
}

// driver picks the smallest required component storage to iterate.
func (q *Query[T]) driver() iComponentStorage {
	var smallest iComponentStorage
	for _, f := range q.fields {
		if f.optional {
			continue
		}
		cs, ok := q.storage.components[f.typ]
		if !ok {
			return nil
		}
		if smallest == nil || cs.Len() < smallest.Len() {
			smallest = cs
		}
	}
	return smallest
}

// Fill populates ptr with the entity's components. It returns false if the
// entity is missing a required component.
func (q *Query[T]) Fill(id EntityId, ptr *T) bool {
	if !q.storage.Alive(id) {
		return false
	}

	value := reflect.ValueOf(ptr).Elem()
	for _, f := range q.fields {
		field := value.Field(f.index)
		var comp any
		if cs, ok := q.storage.components[f.typ]; ok {
			comp = cs.Get(id)
		}
		if comp == nil {
			if !f.optional {
				return false
			}
			field.SetZero()
			continue
		}
		field.Set(reflect.ValueOf(comp))
	}

	if q.idField >= 0 {
		value.Field(q.idField).SetUint(uint64(id))
	}
	return true
}

// Get returns a populated struct for the entity, or nil.
func (q *Query[T]) Get(id EntityId) *T {
	var result T
	if !q.Fill(id, &result) {
		return nil
	}
	return &result
}

// Iter returns an iterator over entity IDs and component data.
// The entity set is captured when iteration starts; structural changes should
// go through Commands.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		cs := q.driver()
		if cs == nil {
			return
		}

		entities := append([]EntityId(nil), cs.Entities()...)
		var result T
		for _, id := range entities {
			if !q.Fill(id, &result) {
				continue
			}
			if !yield(id, result) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range q.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// Count returns the number of matching entities.
func (q *Query[T]) Count() int {
	n := 0
	for range q.Iter() {
		n++
	}
	return n
}

// Single returns the only matching entity. ok is false unless exactly one
// entity matches.
func (q *Query[T]) Single() (EntityId, T, bool) {
	var (
		id    EntityId
		item  T
		found int
	)
	for eid, it := range q.Iter() {
		found++
		if found > 1 {
			var zero T
			return 0, zero, false
		}
		id, item = eid, it
	}
	return id, item, found == 1
}
