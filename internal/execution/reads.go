package execution

import (
	"exchangeclient/internal/ledger"
	"exchangeclient/pkg/model"
)

func (f *Feed) Positions() map[string]int64 {
	return f.ledger.Positions()
}

func (f *Feed) PositionsAndCash() map[string]model.Position {
	return f.ledger.PositionsAndCash()
}

func (f *Feed) Cash() float64 {
	return f.ledger.TotalCash()
}

// PnL marks open positions with value.
func (f *Feed) PnL(value ledger.Valuator) (float64, error) {
	return f.ledger.PnL(value)
}

func (f *Feed) PositionSnapshot() ledger.Snapshot {
	return f.ledger.Snapshot()
}

// OutstandingOrders returns a copy of the resting orders on instrumentID.
func (f *Feed) OutstandingOrders(instrumentID string) map[uint64]model.OrderStatus {
	return f.orders.Outstanding(instrumentID)
}

func (f *Feed) TradeHistory(instrumentID string) []model.Trade {
	return f.trades.All(instrumentID)
}

// PollNewTrades returns the fills received since the previous poll of
// instrumentID.
func (f *Feed) PollNewTrades(instrumentID string) []model.Trade {
	return f.trades.Poll(instrumentID)
}

func (f *Feed) PollAllNewTrades() map[string][]model.Trade {
	return f.trades.PollAll()
}

// ClearTradeHistory drops every retained fill and every poll cursor.
func (f *Feed) ClearTradeHistory() {
	f.trades.Reset()
}
