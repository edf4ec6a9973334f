package execution

import (
	"exchangeclient/internal/correlator"
	"exchangeclient/internal/journal"
	"exchangeclient/internal/ledger"
	"exchangeclient/internal/protocol"
	"exchangeclient/pkg/exception"
	"exchangeclient/pkg/model"
	"exchangeclient/pkg/model/enum"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Handle applies one inbound message. A returned error is fatal for the
// session.
func (f *Feed) Handle(msg protocol.Message) error {
	switch m := msg.(type) {
	case protocol.LoginReply:
		f.onLoginReply(m)
	case protocol.InsertOrderReply:
		f.resolve(m.Correlation(), m)
	case protocol.AmendOrderReply:
		f.resolve(m.Correlation(), m)
	case protocol.DeleteOrderReply:
		f.resolve(m.Correlation(), m)
	case protocol.DeleteOrdersReply:
		f.resolve(m.Correlation(), m)
	case protocol.OrderUpdate:
		return f.onOrderUpdate(m)
	case protocol.Trade:
		return f.onTrade(m)
	case protocol.SingleSidedBooking:
		return f.onBooking(m)
	case protocol.ForcedDisconnect:
		logs.Errorf("exec: forced disconnect for %s, reason: %s", f.username, m.Reason)
		return errors.Wrapf(exception.ErrForcedDisconnect, "reason: %s", m.Reason)
	case protocol.Ping:
	default:
		return errors.Wrapf(exception.ErrUnknownMessage, "exec: unexpected %T", msg)
	}
	return nil
}

func (f *Feed) resolve(h protocol.Header, msg protocol.Message) {
	r := correlator.Reply{Message: msg}
	if h.Error != "" {
		r = correlator.Reply{Err: errors.Wrapf(exception.ErrRequestRejected, "%s: %s", msg.Kind(), h.Error)}
	}
	f.corr.Resolve(h.RequestID, r)
}

func (f *Feed) onLoginReply(m protocol.LoginReply) {
	h := m.Correlation()
	if h.Error != "" {
		f.corr.Resolve(h.RequestID, correlator.Reply{
			Err: errors.Wrapf(exception.ErrAuthenticationFailed, "user %s: %s", f.username, h.Error),
		})
		return
	}

	if h.RequestID == f.loginID {
		seeds := make([]ledger.Seed, len(m.Positions))
		for i, p := range m.Positions {
			seeds[i] = ledger.Seed{InstrumentID: p.InstrumentID, Volume: p.Position, Cash: p.Cash}
		}
		f.ledger.Seed(seeds)
		logs.Infof("exec: logged in as %s, %d starting positions", f.username, len(seeds))
	}
	f.corr.Resolve(h.RequestID, correlator.Reply{Message: m})
}

func (f *Feed) onOrderUpdate(m protocol.OrderUpdate) error {
	side, ok := enum.ParseSide(m.Side)
	if !ok {
		return errors.Wrapf(exception.ErrInvalidSide, "exec: order update %d, side %q", m.OrderID, m.Side)
	}
	f.orders.Apply(model.OrderStatus{
		OrderID:      m.OrderID,
		InstrumentID: m.InstrumentID,
		Price:        m.Price,
		Volume:       m.Volume,
		Side:         side,
	})
	return nil
}

func (f *Feed) onTrade(m protocol.Trade) error {
	side, ok := enum.ParseSide(m.Side)
	if !ok {
		return errors.Wrapf(exception.ErrInvalidSide, "exec: trade on order %d, side %q", m.OrderID, m.Side)
	}
	t := model.Trade{
		OrderID:      m.OrderID,
		InstrumentID: m.InstrumentID,
		Price:        m.Price,
		Volume:       m.Volume,
		Side:         side,
	}
	if err := f.ledger.ApplyTrade(t); err != nil {
		return err
	}
	f.trades.Append(t.InstrumentID, t)

	if f.recorder != nil {
		f.recorder.Record(journal.Entry{
			SessionID:    f.sessionID,
			Kind:         journal.KindTrade,
			OrderID:      t.OrderID,
			InstrumentID: t.InstrumentID,
			Price:        t.Price,
			Volume:       t.Volume,
			Side:         t.Side.String(),
			Username:     f.username,
		})
	}
	return nil
}

func (f *Feed) onBooking(m protocol.SingleSidedBooking) error {
	action, ok := enum.ParseAction(m.Action)
	if !ok {
		return errors.Wrapf(exception.ErrInvalidAction, "exec: booking on %s, action %q", m.InstrumentID, m.Action)
	}
	b := model.SingleSidedBooking{
		Username:     m.Username,
		InstrumentID: m.InstrumentID,
		Price:        m.Price,
		Volume:       m.Volume,
		Action:       action,
	}
	if err := f.ledger.ApplyBooking(b); err != nil {
		return err
	}
	logs.Infof("exec: single sided booking %s %d %s @ %f for %s", b.Action, b.Volume, b.InstrumentID, b.Price, b.Username)

	if f.recorder != nil {
		f.recorder.Record(journal.Entry{
			SessionID:    f.sessionID,
			Kind:         journal.KindBooking,
			InstrumentID: b.InstrumentID,
			Price:        b.Price,
			Volume:       b.Volume,
			Side:         b.Action.String(),
			Username:     b.Username,
		})
	}
	return nil
}
