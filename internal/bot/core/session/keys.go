package session

// Key represents a strongly typed session key for storing arbitrary data.
type Key[T any] struct {
	name string
}

// NewKey creates a new typed session key.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Get retrieves the value for this key, or the zero value when unset.
func (k Key[T]) Get(s *Session) T {
	var value T
	s.getInterface(k.name, &value)
	return value
}

// Lookup retrieves the value for this key and whether it was set.
func (k Key[T]) Lookup(s *Session) (T, bool) {
	var value T
	ok := s.getInterface(k.name, &value)
	return value, ok
}

// Set stores the value for this key.
func (k Key[T]) Set(s *Session, value T) {
	s.set(k.name, value)
}

// Delete removes the value for this key.
func (k Key[T]) Delete(s *Session) {
	s.delete(k.name)
}
