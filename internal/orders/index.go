package orders

import "exchangeclient/pkg/model"

// Index tracks outstanding orders per instrument. It is owned by the
// execution loop and has no locking.
type Index struct {
	orders map[string]map[uint64]model.OrderStatus
}

func NewIndex() *Index {
	return &Index{orders: make(map[string]map[uint64]model.OrderStatus)}
}

// Apply upserts status, or removes the order when its remaining volume is
// zero. It reports whether an entry was removed.
func (x *Index) Apply(status model.OrderStatus) bool {
	byID := x.orders[status.InstrumentID]
	if isTerminal(status) {
		if _, ok := byID[status.OrderID]; !ok {
			return false
		}
		delete(byID, status.OrderID)
		if len(byID) == 0 {
			delete(x.orders, status.InstrumentID)
		}
		return true
	}

	if byID == nil {
		byID = make(map[uint64]model.OrderStatus)
		x.orders[status.InstrumentID] = byID
	}
	byID[status.OrderID] = status
	return false
}

// Outstanding returns a copy of the orders resting on instrumentID. The map is
// never nil.
func (x *Index) Outstanding(instrumentID string) map[uint64]model.OrderStatus {
	byID := x.orders[instrumentID]
	out := make(map[uint64]model.OrderStatus, len(byID))
	for id, status := range byID {
		out[id] = status
	}
	return out
}

func (x *Index) Reset() {
	x.orders = make(map[string]map[uint64]model.OrderStatus)
}

func isTerminal(status model.OrderStatus) bool {
	return status.Volume == 0
}
