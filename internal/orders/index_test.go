package orders

import (
	"testing"

	"exchangeclient/pkg/model"
	"exchangeclient/pkg/model/enum"

	"github.com/stretchr/testify/assert"
)

func TestIndexUpsertAndRemoveOnZero(t *testing.T) {
	x := NewIndex()

	assert.False(t, x.Apply(model.OrderStatus{OrderID: 1, InstrumentID: "ING", Price: 10, Volume: 5, Side: enum.SideBid}))
	assert.False(t, x.Apply(model.OrderStatus{OrderID: 2, InstrumentID: "ING", Price: 11, Volume: 3, Side: enum.SideAsk}))
	assert.False(t, x.Apply(model.OrderStatus{OrderID: 1, InstrumentID: "ING", Price: 10, Volume: 2, Side: enum.SideBid}))

	got := x.Outstanding("ING")
	assert.Len(t, got, 2)
	assert.Equal(t, int64(2), got[1].Volume)
	assert.Len(t, x.orders, 1)

	assert.True(t, x.Apply(model.OrderStatus{OrderID: 1, InstrumentID: "ING", Volume: 0}))
	assert.False(t, x.Apply(model.OrderStatus{OrderID: 1, InstrumentID: "ING", Volume: 0}), "already removed")

	got = x.Outstanding("ING")
	assert.Len(t, got, 1)
	assert.Contains(t, got, uint64(2))
}

func TestIndexOutstandingIsCopyAndNeverNil(t *testing.T) {
	x := NewIndex()

	empty := x.Outstanding("UNKNOWN")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	x.Apply(model.OrderStatus{OrderID: 7, InstrumentID: "SAN", Price: 4, Volume: 1, Side: enum.SideBid})
	snap := x.Outstanding("SAN")
	delete(snap, 7)
	assert.Len(t, x.Outstanding("SAN"), 1)

	x.Reset()
	assert.Empty(t, x.Outstanding("SAN"))
	assert.Empty(t, x.orders)
}
