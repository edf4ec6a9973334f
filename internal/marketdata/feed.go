package marketdata

import (
	"maps"
	"time"

	"exchangeclient/internal/correlator"
	"exchangeclient/internal/history"
	"exchangeclient/internal/obs"
	"exchangeclient/internal/protocol"
	"exchangeclient/pkg/exception"
	"exchangeclient/pkg/model"
	"exchangeclient/pkg/model/enum"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const bookUpdateSnapshot = "snapshot"

type Config struct {
	MaxTickHistory     int
	FullMessageLogging bool
}

// Feed holds the market data state of one info connection. Every method must
// run on the event loop that owns it.
type Feed struct {
	cfg     Config
	sender  protocol.Sender
	corr    *correlator.Correlator
	metrics *obs.Metrics
	now     func() time.Time

	books       map[string]model.PriceBook
	ticks       *history.Store[model.TradeTick]
	instruments map[string]model.Instrument
}

func New(sender protocol.Sender, corr *correlator.Correlator, cfg Config, metrics *obs.Metrics) *Feed {
	return &Feed{
		cfg:         cfg,
		sender:      sender,
		corr:        corr,
		metrics:     metrics,
		now:         time.Now,
		books:       make(map[string]model.PriceBook),
		ticks:       history.NewStore[model.TradeTick](cfg.MaxTickHistory),
		instruments: make(map[string]model.Instrument),
	}
}

// Reset drops every book, tick and instrument.
func (f *Feed) Reset() {
	f.books = make(map[string]model.PriceBook)
	f.ticks.Reset()
	f.instruments = make(map[string]model.Instrument)
}

// Subscribe requests book updates. It is the first request on a fresh
// connection. adminPassword is optional.
func (f *Feed) Subscribe(adminPassword string) (<-chan correlator.Reply, error) {
	req := protocol.SubscribeRequest{
		BookUpdateType: bookUpdateSnapshot,
		AdminPassword:  adminPassword,
	}
	return f.corr.Send(func(id uint64) error {
		req.RequestID = id
		return f.transmit(req)
	})
}

func (f *Feed) transmit(msg protocol.Message) error {
	buf, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if f.cfg.FullMessageLogging {
		logs.Infof("info: send %s", buf)
	}
	if err := f.sender.Send(buf); err != nil {
		return errors.Wrapf(err, "info: send %s", msg.Kind())
	}
	f.metrics.IncOutbound(string(msg.Kind()))
	return nil
}

// Handle applies one inbound message. A returned error is fatal for the
// session.
func (f *Feed) Handle(msg protocol.Message) error {
	switch m := msg.(type) {
	case protocol.SubscribeReply:
		f.resolve(m)
	case protocol.PriceBook:
		f.onPriceBook(m)
	case protocol.TradeTick:
		return f.onTradeTick(m)
	case protocol.InstrumentCreated:
		f.onInstrumentCreated(m)
	case protocol.InstrumentExpired:
		if _, ok := f.instruments[m.InstrumentID]; !ok {
			logs.Warnf("info: expired unknown instrument %s", m.InstrumentID)
			return nil
		}
		delete(f.instruments, m.InstrumentID)
	case protocol.InstrumentPaused:
		f.setPaused(m.InstrumentID, true)
	case protocol.InstrumentResumed:
		f.setPaused(m.InstrumentID, false)
	default:
		return errors.Wrapf(exception.ErrUnknownMessage, "info: unexpected %T", msg)
	}
	return nil
}

func (f *Feed) resolve(reply protocol.SubscribeReply) {
	h := reply.Correlation()
	r := correlator.Reply{Message: reply}
	if h.Error != "" {
		r = correlator.Reply{Err: errors.Wrapf(exception.ErrRequestRejected, "subscribe: %s", h.Error)}
	}
	f.corr.Resolve(h.RequestID, r)
}

func (f *Feed) onPriceBook(m protocol.PriceBook) {
	f.books[m.InstrumentID] = model.PriceBook{
		Timestamp:    f.now(),
		InstrumentID: m.InstrumentID,
		Bids:         toLevels(m.Bids),
		Asks:         toLevels(m.Asks),
	}
}

func (f *Feed) onTradeTick(m protocol.TradeTick) error {
	side, ok := enum.ParseSide(m.AggressorSide)
	if !ok {
		return errors.Wrapf(exception.ErrInvalidSide, "info: trade tick on %s, aggressor side %q", m.InstrumentID, m.AggressorSide)
	}
	f.ticks.Append(m.InstrumentID, model.TradeTick{
		Timestamp:     time.Unix(m.Timestamp/int64(time.Second), 0),
		InstrumentID:  m.InstrumentID,
		Price:         m.Price,
		Volume:        m.Volume,
		AggressorSide: side,
		Buyer:         m.Buyer,
		Seller:        m.Seller,
	})
	return nil
}

func (f *Feed) onInstrumentCreated(m protocol.InstrumentCreated) {
	inst := model.Instrument{
		ID:       m.InstrumentID,
		TickSize: m.TickSize,
	}
	if m.ExtraInfo != "" {
		extra := map[string]any{}
		if err := sonic.UnmarshalString(m.ExtraInfo, &extra); err != nil {
			logs.Warnf("info: instrument %s has malformed extra info, err: %+v", m.InstrumentID, err)
		} else {
			inst.ExtraInfo = extra
		}
	}
	f.instruments[m.InstrumentID] = inst
}

func (f *Feed) setPaused(instrumentID string, paused bool) {
	inst, ok := f.instruments[instrumentID]
	if !ok {
		logs.Warnf("info: pause state change for unknown instrument %s", instrumentID)
		return
	}
	inst.Paused = paused
	f.instruments[instrumentID] = inst
}

// LatestBook returns the last book received for instrumentID.
func (f *Feed) LatestBook(instrumentID string) (model.PriceBook, bool) {
	book, ok := f.books[instrumentID]
	if !ok {
		return model.PriceBook{}, false
	}
	return book.Clone(), true
}

// PollNewTicks returns the ticks received since the previous poll of
// instrumentID.
func (f *Feed) PollNewTicks(instrumentID string) []model.TradeTick {
	return f.ticks.Poll(instrumentID)
}

// PollAllNewTicks polls every instrument at once.
func (f *Feed) PollAllNewTicks() map[string][]model.TradeTick {
	return f.ticks.PollAll()
}

func (f *Feed) TickHistory(instrumentID string) []model.TradeTick {
	return f.ticks.All(instrumentID)
}

// LastTickPrice returns the price of the most recent public trade.
func (f *Feed) LastTickPrice(instrumentID string) (float64, bool) {
	tick, ok := f.ticks.Last(instrumentID)
	if !ok {
		return 0, false
	}
	return tick.Price, true
}

// ClearTickHistory drops every retained tick and every poll cursor.
func (f *Feed) ClearTickHistory() {
	f.ticks.Reset()
}

// Instruments returns a copy of the registry, extra info included.
func (f *Feed) Instruments() map[string]model.Instrument {
	out := make(map[string]model.Instrument, len(f.instruments))
	for id, inst := range f.instruments {
		inst.ExtraInfo = maps.Clone(inst.ExtraInfo)
		out[id] = inst
	}
	return out
}

func toLevels(levels []protocol.Level) []model.PriceLevel {
	out := make([]model.PriceLevel, len(levels))
	for i, l := range levels {
		out[i] = model.PriceLevel{Price: l.Price, Volume: l.Volume}
	}
	return out
}
