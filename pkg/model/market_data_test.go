package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriceBookEqualIgnoresTimestamp(t *testing.T) {
	a := PriceBook{
		Timestamp:    time.Unix(100, 0),
		InstrumentID: "PHILIPS_A",
		Bids:         []PriceLevel{{Price: 10, Volume: 5}, {Price: 9.9, Volume: 1}},
		Asks:         []PriceLevel{{Price: 10.1, Volume: 3}},
	}
	b := a.Clone()
	b.Timestamp = time.Unix(200, 0)

	assert.True(t, a.Equal(b))

	b.Asks[0].Volume = 4
	assert.False(t, a.Equal(b))
	assert.Equal(t, int64(3), a.Asks[0].Volume, "clone must not alias the source levels")

	c := a.Clone()
	c.InstrumentID = "PHILIPS_B"
	assert.False(t, a.Equal(c))
}

func TestPriceBookBestLevels(t *testing.T) {
	var empty PriceBook
	_, ok := empty.BestBid()
	assert.False(t, ok)
	_, ok = empty.BestAsk()
	assert.False(t, ok)

	book := PriceBook{
		Bids: []PriceLevel{{Price: 10, Volume: 5}},
		Asks: []PriceLevel{{Price: 11, Volume: 2}},
	}
	bid, ok := book.BestBid()
	assert.True(t, ok)
	assert.Equal(t, PriceLevel{Price: 10, Volume: 5}, bid)
	ask, ok := book.BestAsk()
	assert.True(t, ok)
	assert.Equal(t, PriceLevel{Price: 11, Volume: 2}, ask)
}
