package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingEvictsOldestPastCapacity(t *testing.T) {
	r := NewRing[int](3)
	for _, v := range []int{10, 11, 12, 13} {
		r.Append(v)
	}
	assert.Equal(t, []int{11, 12, 13}, r.All())
	assert.Len(t, r.items, 3)

	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, 13, last)
}

func TestRingPollAfterEvictionNeverDuplicates(t *testing.T) {
	r := NewRing[int](3)

	r.Append(10)
	assert.Equal(t, []int{10}, r.Poll())

	for _, v := range []int{11, 12, 13} {
		r.Append(v)
	}
	assert.Equal(t, []int{11, 12, 13}, r.All())
	assert.Equal(t, []int{11, 12, 13}, r.Poll())
	assert.Nil(t, r.Poll())
}

func TestRingPollIdempotentBetweenEvents(t *testing.T) {
	r := NewRing[int](5)
	assert.Nil(t, r.Poll())

	r.Append(1)
	r.Append(2)
	assert.Equal(t, []int{1, 2}, r.Poll())
	assert.Nil(t, r.Poll())
	assert.Nil(t, r.Poll())

	r.Append(3)
	assert.Equal(t, []int{3}, r.Poll())
}

func TestRingCursorClampsUnderHeavyEviction(t *testing.T) {
	r := NewRing[int](2)
	r.Append(1)
	r.Append(2)
	assert.Equal(t, []int{1, 2}, r.Poll())
	assert.Equal(t, 2, r.cursor)

	for v := 3; v <= 10; v++ {
		r.Append(v)
		assert.GreaterOrEqual(t, r.cursor, 0)
		assert.LessOrEqual(t, r.cursor, len(r.items))
	}
	assert.Equal(t, 0, r.cursor)
	assert.Equal(t, []int{9, 10}, r.Poll())
}

func TestRingCapacityFloor(t *testing.T) {
	r := NewRing[string](0)
	r.Append("a")
	r.Append("b")
	assert.Equal(t, []string{"b"}, r.All())
}

func TestRingAllIsACopy(t *testing.T) {
	r := NewRing[int](3)
	r.Append(1)
	out := r.All()
	out[0] = 99
	assert.Equal(t, []int{1}, r.All())
}

func TestStoreKeysAreIndependent(t *testing.T) {
	s := NewStore[int](2)
	assert.Nil(t, s.Poll("TOTAL"))
	assert.Nil(t, s.All("TOTAL"))
	assert.Empty(t, s.Keys(), "reads must not create entries")

	s.Append("TOTAL", 1)
	s.Append("ING", 7)
	s.Append("TOTAL", 2)
	s.Append("TOTAL", 3)

	assert.Equal(t, []int{2, 3}, s.All("TOTAL"))
	assert.Equal(t, []int{7}, s.Poll("ING"))
	assert.Equal(t, map[string][]int{"TOTAL": {2, 3}}, s.PollAll())
	assert.Empty(t, s.PollAll())
	assert.Equal(t, []string{"ING", "TOTAL"}, s.Keys())

	last, ok := s.Last("ING")
	assert.True(t, ok)
	assert.Equal(t, 7, last)

	s.Reset()
	assert.Empty(t, s.Keys())
	_, ok = s.Last("ING")
	assert.False(t, ok)
}
