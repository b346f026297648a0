package ecs

// Singleton provides access to a single component instance that is not
// associated with any entity. Use this for global game state, configuration,
// or other singleton data.
type Singleton[T any] struct {
	storage *Storage
	ptr     *T
}

// NewSingleton creates a new Singleton accessor for the given storage.
// If the singleton doesn't exist in storage yet it is created from the
// initializer, or the zero value when none is given.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	if GetSingleton[T](storage) == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
	}

	s := &Singleton[T]{}
	s.Init(storage)
	return s
}

// Init binds the Singleton to a storage.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.ptr = GetSingleton[T](storage)
}

// Get returns a pointer to the singleton component.
// Returns nil if the singleton has not been added to storage.
func (s *Singleton[T]) Get() *T {
	if s.ptr == nil && s.storage != nil {
		s.ptr = GetSingleton[T](s.storage)
	}
	return s.ptr
}

// Exists returns true if the singleton component has been added to storage
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}
