package model

import (
	"time"

	"exchangeclient/pkg/model/enum"
)

type Instrument struct {
	ID        string
	TickSize  float64
	ExtraInfo map[string]any
	Paused    bool
}

type PriceLevel struct {
	Price  float64
	Volume int64
}

// PriceBook is the full resting book of one instrument, best level first on
// both sides. Timestamp is the local receipt time.
type PriceBook struct {
	Timestamp    time.Time
	InstrumentID string
	Bids         []PriceLevel
	Asks         []PriceLevel
}

// Equal compares instrument and levels. The receipt timestamp is ignored.
func (b PriceBook) Equal(o PriceBook) bool {
	if b.InstrumentID != o.InstrumentID {
		return false
	}
	return levelsEqual(b.Bids, o.Bids) && levelsEqual(b.Asks, o.Asks)
}

// BestBid returns the top bid level, false if the bid side is empty.
func (b PriceBook) BestBid() (PriceLevel, bool) {
	if len(b.Bids) == 0 {
		return PriceLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the top ask level, false if the ask side is empty.
func (b PriceBook) BestAsk() (PriceLevel, bool) {
	if len(b.Asks) == 0 {
		return PriceLevel{}, false
	}
	return b.Asks[0], true
}

// Clone deep-copies the level slices.
func (b PriceBook) Clone() PriceBook {
	b.Bids = append([]PriceLevel(nil), b.Bids...)
	b.Asks = append([]PriceLevel(nil), b.Asks...)
	return b
}

func levelsEqual(a, b []PriceLevel) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TradeTick is a public trade seen by every market data subscriber.
type TradeTick struct {
	Timestamp     time.Time
	InstrumentID  string
	Price         float64
	Volume        int64
	AggressorSide enum.Side
	Buyer         string
	Seller        string
}
