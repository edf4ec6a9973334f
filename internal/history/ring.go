package history

// Ring is a bounded FIFO with one poll cursor. Appending past capacity evicts
// the oldest item and moves the cursor back by one, clamped at zero, so the
// cursor always points into the live window.
type Ring[T any] struct {
	items    []T
	capacity int
	cursor   int
}

// NewRing returns a ring holding at most capacity items. A capacity below one
// is raised to one.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{capacity: capacity}
}

func (r *Ring[T]) Append(v T) {
	r.items = append(r.items, v)
	for len(r.items) > r.capacity {
		var zero T
		r.items[0] = zero
		r.items = r.items[1:]
		r.cursor = max(r.cursor-1, 0)
	}
}

// Poll returns the items appended since the previous Poll and advances the
// cursor. The result is nil when nothing is new.
func (r *Ring[T]) Poll() []T {
	if r.cursor >= len(r.items) {
		return nil
	}
	out := append([]T(nil), r.items[r.cursor:]...)
	r.cursor = len(r.items)
	return out
}

// All returns a copy of the retained window, oldest first.
func (r *Ring[T]) All() []T {
	return append([]T(nil), r.items...)
}

func (r *Ring[T]) Last() (T, bool) {
	if len(r.items) == 0 {
		var zero T
		return zero, false
	}
	return r.items[len(r.items)-1], true
}
