package exchange

import (
	"testing"

	"exchangeclient/pkg/model"

	"github.com/stretchr/testify/require"
)

func TestCalculatePnL(t *testing.T) {
	testCases := []struct {
		desc      string
		valuation float64
		position  int64
		cash      float64
		want      float64
	}{
		{desc: "flat", valuation: 10, position: 0, cash: 25.5, want: 25.5},
		{desc: "long", valuation: 10, position: 3, cash: -29, want: 1},
		{desc: "short", valuation: 10, position: -2, cash: 21, want: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			require.InDelta(t, tc.want, CalculatePnL(tc.valuation, tc.position, tc.cash), 1e-9)
		})
	}
}

func TestCalculateVWAP(t *testing.T) {
	book := model.PriceBook{
		InstrumentID: "PHILIPS_A",
		Bids:         []model.PriceLevel{{Price: 100, Volume: 10}, {Price: 99, Volume: 5}},
		Asks:         []model.PriceLevel{{Price: 101, Volume: 30}},
	}
	vwap, ok := CalculateVWAP(book)
	require.True(t, ok)
	// (100*30 + 101*10) / 40
	require.Equal(t, 100.25, vwap)

	zero := model.PriceBook{
		Bids: []model.PriceLevel{{Price: 10, Volume: 0}},
		Asks: []model.PriceLevel{{Price: 12, Volume: 0}},
	}
	vwap, ok = CalculateVWAP(zero)
	require.True(t, ok)
	require.Equal(t, 0.0, vwap)

	vwap, ok = CalculateVWAP(model.PriceBook{Bids: book.Bids})
	require.False(t, ok)
	require.Zero(t, vwap)

	vwap, ok = CalculateVWAP(model.PriceBook{Asks: book.Asks})
	require.False(t, ok)
	require.Zero(t, vwap)
}
