package model

import "exchangeclient/pkg/model/enum"

// Trade is a private fill of one of our own orders.
type Trade struct {
	OrderID      uint64
	InstrumentID string
	Price        float64
	Volume       int64
	Side         enum.Side
}

// OrderStatus carries the remaining volume of an order. A zero volume means
// the order is no longer outstanding.
type OrderStatus struct {
	OrderID      uint64
	InstrumentID string
	Price        float64
	Volume       int64
	Side         enum.Side
}

type SingleSidedBooking struct {
	Username     string
	InstrumentID string
	Price        float64
	Volume       int64
	Action       enum.Action
}

type Position struct {
	Volume int64
	Cash   float64
}
