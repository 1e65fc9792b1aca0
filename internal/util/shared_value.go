package util

import "sync"

// SharedValue is a mutex guarded slot for a single value that is written
// by a message callback and read by the control tick. The zero value is
// an empty slot.
type SharedValue[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
}

// Set stores the given value and marks the slot as set. Concurrent
// writers are serialized, the last writer wins.
func (s *SharedValue[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.set = true
}

// Get returns a snapshot of the last stored value. The flag reports
// whether Set has been called at least once, which keeps "never set"
// distinguishable from "set to the zero value".
func (s *SharedValue[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set
}
