package exchange

import (
	"exchangeclient/pkg/model"

	"github.com/shopspring/decimal"
)

// CalculatePnL values a single position: cash plus position marked at
// valuation.
func CalculatePnL(valuation float64, position int64, cash float64) float64 {
	v := decimal.NewFromFloat(cash).Add(decimal.NewFromFloat(valuation).Mul(decimal.NewFromInt(position)))
	return v.InexactFloat64()
}

// CalculateVWAP returns the mid of the best bid and ask, each weighted by the
// opposite side's volume, rounded to two decimals.
//
// A book with an empty side has no VWAP: the formula would weight the present
// price by the missing side's zero volume and yield 0, so CalculateVWAP
// returns 0, false instead of a number. A two-sided book whose best levels
// both have zero volume still returns 0, true.
func CalculateVWAP(book model.PriceBook) (float64, bool) {
	bid, ok := book.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := book.BestAsk()
	if !ok {
		return 0, false
	}

	bidVolume := decimal.NewFromInt(bid.Volume)
	askVolume := decimal.NewFromInt(ask.Volume)
	total := bidVolume.Add(askVolume)
	if total.LessThan(decimal.NewFromInt(1)) {
		total = decimal.NewFromInt(1)
	}

	weighted := decimal.NewFromFloat(bid.Price).Mul(askVolume).
		Add(decimal.NewFromFloat(ask.Price).Mul(bidVolume))
	return weighted.Div(total).Round(2).InexactFloat64(), true
}
