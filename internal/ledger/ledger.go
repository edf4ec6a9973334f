package ledger

import (
	"sort"

	"exchangeclient/pkg/exception"
	"exchangeclient/pkg/model"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// Seed is one server-reported starting position.
type Seed struct {
	InstrumentID string
	Volume       int64
	Cash         float64
}

type entry struct {
	volume int64
	cash   decimal.Decimal
}

// Ledger folds fills and bookings into per-instrument volume and cash. It is
// seeded wholesale only by Seed; every other mutation is incremental. Callers
// serialize access.
type Ledger struct {
	positions map[string]*entry
}

func New() *Ledger {
	return &Ledger{positions: make(map[string]*entry)}
}

// Seed replaces the whole ledger with the given starting positions.
func (l *Ledger) Seed(seeds []Seed) {
	l.positions = make(map[string]*entry, len(seeds))
	for _, s := range seeds {
		l.positions[s.InstrumentID] = &entry{
			volume: s.Volume,
			cash:   decimal.NewFromFloat(s.Cash),
		}
	}
}

// ApplyTrade folds a private fill. An unknown side mutates nothing.
func (l *Ledger) ApplyTrade(t model.Trade) error {
	if !t.Side.IsAvailable() {
		return errors.Wrapf(exception.ErrInvalidSide, "trade %d on %s", t.OrderID, t.InstrumentID)
	}
	l.apply(t.InstrumentID, t.Side.Sign(), t.Volume, t.Price)
	return nil
}

// ApplyBooking folds a single sided booking. An unknown action mutates
// nothing.
func (l *Ledger) ApplyBooking(b model.SingleSidedBooking) error {
	if !b.Action.IsAvailable() {
		return errors.Wrapf(exception.ErrInvalidAction, "booking on %s", b.InstrumentID)
	}
	l.apply(b.InstrumentID, b.Action.Sign(), b.Volume, b.Price)
	return nil
}

func (l *Ledger) apply(instrumentID string, sign, volume int64, price float64) {
	e, ok := l.positions[instrumentID]
	if !ok {
		e = &entry{cash: decimal.Zero}
		l.positions[instrumentID] = e
	}
	signed := sign * volume
	e.volume += signed
	e.cash = e.cash.Sub(decimal.NewFromInt(signed).Mul(decimal.NewFromFloat(price)))
}

// Positions returns the volume per instrument.
func (l *Ledger) Positions() map[string]int64 {
	out := make(map[string]int64, len(l.positions))
	for id, e := range l.positions {
		out[id] = e.volume
	}
	return out
}

func (l *Ledger) PositionsAndCash() map[string]model.Position {
	out := make(map[string]model.Position, len(l.positions))
	for id, e := range l.positions {
		out[id] = model.Position{Volume: e.volume, Cash: e.cash.InexactFloat64()}
	}
	return out
}

// TotalCash sums cash across instruments.
func (l *Ledger) TotalCash() float64 {
	return l.totalCash().InexactFloat64()
}

func (l *Ledger) totalCash() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range l.positions {
		sum = sum.Add(e.cash)
	}
	return sum
}

// Valuator prices an open position. ok is false when no price is known.
type Valuator func(instrumentID string) (price float64, ok bool)

// PnL is the total cash plus every open position marked at its valuation.
// Flat instruments contribute only their cash. An open position without a
// valuation fails with ErrUnresolvableValuation.
func (l *Ledger) PnL(value Valuator) (float64, error) {
	total := decimal.Zero
	for _, id := range l.instruments() {
		e := l.positions[id]
		total = total.Add(e.cash)
		if e.volume == 0 {
			continue
		}
		price, ok := value(id)
		if !ok {
			return 0, errors.Wrapf(exception.ErrUnresolvableValuation, "instrument %s, position %d", id, e.volume)
		}
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(e.volume)))
	}
	return total.InexactFloat64(), nil
}

func (l *Ledger) instruments() []string {
	ids := make([]string, 0, len(l.positions))
	for id := range l.positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
