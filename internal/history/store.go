package history

import "sort"

// Store keeps one Ring per key. Reads of unknown keys do not create entries.
type Store[T any] struct {
	capacity int
	rings    map[string]*Ring[T]
}

func NewStore[T any](capacity int) *Store[T] {
	return &Store[T]{capacity: capacity, rings: make(map[string]*Ring[T])}
}

func (s *Store[T]) Append(key string, v T) {
	r, ok := s.rings[key]
	if !ok {
		r = NewRing[T](s.capacity)
		s.rings[key] = r
	}
	r.Append(v)
}

func (s *Store[T]) Poll(key string) []T {
	if r, ok := s.rings[key]; ok {
		return r.Poll()
	}
	return nil
}

// PollAll polls every key and returns the non-empty results.
func (s *Store[T]) PollAll() map[string][]T {
	out := make(map[string][]T)
	for key, r := range s.rings {
		if items := r.Poll(); len(items) > 0 {
			out[key] = items
		}
	}
	return out
}

func (s *Store[T]) All(key string) []T {
	if r, ok := s.rings[key]; ok {
		return r.All()
	}
	return nil
}

func (s *Store[T]) Last(key string) (T, bool) {
	if r, ok := s.rings[key]; ok {
		return r.Last()
	}
	var zero T
	return zero, false
}

// Keys returns the keys that have received at least one item, sorted.
func (s *Store[T]) Keys() []string {
	keys := make([]string, 0, len(s.rings))
	for k := range s.rings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset drops every ring.
func (s *Store[T]) Reset() {
	s.rings = make(map[string]*Ring[T])
}
