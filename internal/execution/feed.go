package execution

import (
	"exchangeclient/internal/correlator"
	"exchangeclient/internal/history"
	"exchangeclient/internal/journal"
	"exchangeclient/internal/ledger"
	"exchangeclient/internal/obs"
	"exchangeclient/internal/orders"
	"exchangeclient/internal/protocol"
	"exchangeclient/pkg/exception"
	"exchangeclient/pkg/model"
	"exchangeclient/pkg/model/enum"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Recorder receives every fill and booking after it reached the ledger.
type Recorder interface {
	Record(e journal.Entry)
}

type Config struct {
	MaxTradeHistory    int
	FullMessageLogging bool
}

// Feed holds the private state of one exec connection. Every method must run
// on the event loop that owns it.
type Feed struct {
	cfg      Config
	sender   protocol.Sender
	corr     *correlator.Correlator
	metrics  *obs.Metrics
	recorder Recorder

	username  string
	sessionID string
	loginID   uint64

	ledger *ledger.Ledger
	orders *orders.Index
	trades *history.Store[model.Trade]
}

func New(sender protocol.Sender, corr *correlator.Correlator, cfg Config, metrics *obs.Metrics) *Feed {
	return &Feed{
		cfg:     cfg,
		sender:  sender,
		corr:    corr,
		metrics: metrics,
		ledger:  ledger.New(),
		orders:  orders.NewIndex(),
		trades:  history.NewStore[model.Trade](cfg.MaxTradeHistory),
	}
}

// SetRecorder attaches an audit sink. A nil recorder disables auditing.
func (f *Feed) SetRecorder(r Recorder) {
	f.recorder = r
}

// SetSession tags audit entries with the connection session id.
func (f *Feed) SetSession(id string) {
	f.sessionID = id
}

// Reset drops every position, order and trade.
func (f *Feed) Reset() {
	f.username = ""
	f.loginID = 0
	f.ledger = ledger.New()
	f.orders.Reset()
	f.trades.Reset()
}

func (f *Feed) Username() string {
	return f.username
}

// Login sends a login, or an admin login when adminPassword is set. The
// ledger is seeded from the reply before the waiter wakes.
func (f *Feed) Login(username, password, adminPassword string) (<-chan correlator.Reply, error) {
	if username == "" {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "exec: empty username")
	}
	req := protocol.LoginRequest{
		Username:      username,
		Password:      password,
		AdminPassword: adminPassword,
	}
	f.username = username
	return f.corr.Send(func(id uint64) error {
		req.RequestID = id
		f.loginID = id
		return f.transmit(req)
	})
}

// InsertOrder places a limit or ioc order.
func (f *Feed) InsertOrder(instrumentID string, price float64, volume int64, side enum.Side, orderType enum.OrderType) (<-chan correlator.Reply, error) {
	if err := validateInstrument(instrumentID); err != nil {
		return nil, err
	}
	if !side.IsAvailable() {
		return nil, errors.Wrapf(exception.ErrInvalidSide, "insert on %s", instrumentID)
	}
	if !orderType.IsAvailable() {
		return nil, errors.Wrapf(exception.ErrInvalidOrderType, "insert on %s", instrumentID)
	}
	if price <= 0 {
		return nil, errors.Wrapf(exception.ErrInvalidPrice, "insert on %s, price %f", instrumentID, price)
	}
	if volume <= 0 {
		return nil, errors.Wrapf(exception.ErrInvalidVolume, "insert on %s, volume %d", instrumentID, volume)
	}

	req := protocol.InsertOrderRequest{
		InstrumentID: instrumentID,
		Price:        price,
		Volume:       volume,
		Side:         side.String(),
		OrderType:    orderType.String(),
	}
	return f.corr.Send(func(id uint64) error {
		req.RequestID = id
		return f.transmit(req)
	})
}

// AmendOrder changes the volume of a live order.
func (f *Feed) AmendOrder(instrumentID string, orderID uint64, volume int64) (<-chan correlator.Reply, error) {
	if err := validateInstrument(instrumentID); err != nil {
		return nil, err
	}
	if volume <= 0 {
		return nil, errors.Wrapf(exception.ErrInvalidVolume, "amend %d on %s, volume %d", orderID, instrumentID, volume)
	}
	req := protocol.AmendOrderRequest{
		InstrumentID: instrumentID,
		OrderID:      orderID,
		Volume:       volume,
	}
	return f.corr.Send(func(id uint64) error {
		req.RequestID = id
		return f.transmit(req)
	})
}

func (f *Feed) DeleteOrder(instrumentID string, orderID uint64) (<-chan correlator.Reply, error) {
	if err := validateInstrument(instrumentID); err != nil {
		return nil, err
	}
	req := protocol.DeleteOrderRequest{
		InstrumentID: instrumentID,
		OrderID:      orderID,
	}
	return f.corr.Send(func(id uint64) error {
		req.RequestID = id
		return f.transmit(req)
	})
}

// DeleteOrders cancels every order on instrumentID.
func (f *Feed) DeleteOrders(instrumentID string) (<-chan correlator.Reply, error) {
	if err := validateInstrument(instrumentID); err != nil {
		return nil, err
	}
	req := protocol.DeleteOrdersRequest{InstrumentID: instrumentID}
	return f.corr.Send(func(id uint64) error {
		req.RequestID = id
		return f.transmit(req)
	})
}

func validateInstrument(instrumentID string) error {
	if instrumentID == "" {
		return exception.ErrEmptyInstrument
	}
	return nil
}

func (f *Feed) transmit(msg protocol.Message) error {
	buf, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if f.cfg.FullMessageLogging {
		logs.Infof("exec: send %s", msg.Kind())
	}
	if err := f.sender.Send(buf); err != nil {
		return errors.Wrapf(err, "exec: send %s", msg.Kind())
	}
	f.metrics.IncOutbound(string(msg.Kind()))
	return nil
}
