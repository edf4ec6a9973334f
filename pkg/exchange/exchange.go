package exchange

import (
	"context"

	"exchangeclient/internal/bridge"
	"exchangeclient/internal/correlator"
	"exchangeclient/internal/protocol"
	"exchangeclient/pkg/exception"
	"exchangeclient/pkg/model"
	"exchangeclient/pkg/model/enum"

	"github.com/yanun0323/errors"
)

// Exchange is a trading client holding both the market data and the
// execution connection. All methods are safe for concurrent use.
type Exchange struct {
	*client
}

func New(cfg Config) (*Exchange, error) {
	c, err := newClient(cfg, true)
	if err != nil {
		return nil, err
	}
	return &Exchange{client: c}, nil
}

// Connect opens both connections, subscribes to market data and logs in.
// It returns once the login reply seeded the positions. Connecting a
// connected client is a no-op.
func (e *Exchange) Connect(ctx context.Context, creds Credentials) error {
	if creds.Username == "" {
		return errors.Wrap(exception.ErrInvalidArgument, "exchange: empty username")
	}
	return e.connect(ctx, creds.AdminPassword, func() (<-chan correlator.Reply, error) {
		return e.trading.Login(creds.Username, creds.Password, creds.AdminPassword)
	})
}

// InsertOrder sends a new order and returns the id the exchange assigned.
func (e *Exchange) InsertOrder(ctx context.Context, instrumentID string, price float64, volume int64, side enum.Side, orderType enum.OrderType) (uint64, error) {
	msg, err := e.request(ctx, func() (<-chan correlator.Reply, error) {
		return e.trading.InsertOrder(instrumentID, price, volume, side, orderType)
	})
	if err != nil {
		return 0, err
	}
	reply, ok := msg.(protocol.InsertOrderReply)
	if !ok {
		return 0, unexpected(protocol.KindInsertOrderReply, msg)
	}
	return reply.OrderID, nil
}

// AmendOrder changes the volume of a resting order. It reports whether the
// exchange accepted the amendment.
func (e *Exchange) AmendOrder(ctx context.Context, instrumentID string, orderID uint64, volume int64) (bool, error) {
	msg, err := e.request(ctx, func() (<-chan correlator.Reply, error) {
		return e.trading.AmendOrder(instrumentID, orderID, volume)
	})
	if err != nil {
		return false, err
	}
	reply, ok := msg.(protocol.AmendOrderReply)
	if !ok {
		return false, unexpected(protocol.KindAmendOrderReply, msg)
	}
	return reply.Success, nil
}

// DeleteOrder cancels a resting order. It reports whether the order was
// still open.
func (e *Exchange) DeleteOrder(ctx context.Context, instrumentID string, orderID uint64) (bool, error) {
	msg, err := e.request(ctx, func() (<-chan correlator.Reply, error) {
		return e.trading.DeleteOrder(instrumentID, orderID)
	})
	if err != nil {
		return false, err
	}
	reply, ok := msg.(protocol.DeleteOrderReply)
	if !ok {
		return false, unexpected(protocol.KindDeleteOrderReply, msg)
	}
	return reply.Success, nil
}

// DeleteOrders cancels every resting order on instrumentID.
func (e *Exchange) DeleteOrders(ctx context.Context, instrumentID string) error {
	msg, err := e.request(ctx, func() (<-chan correlator.Reply, error) {
		return e.trading.DeleteOrders(instrumentID)
	})
	if err != nil {
		return err
	}
	if _, ok := msg.(protocol.DeleteOrdersReply); !ok {
		return unexpected(protocol.KindDeleteOrdersReply, msg)
	}
	return nil
}

func unexpected(want protocol.Kind, got protocol.Message) error {
	return errors.Wrapf(exception.ErrUnexpectedReply, "want %s, got %T", want, got)
}

func (e *Exchange) Username(ctx context.Context) (string, error) {
	return bridge.Call(ctx, e.bridge, e.trading.Username)
}

// PollNewTrades returns the own fills on instrumentID since the previous
// poll.
func (e *Exchange) PollNewTrades(ctx context.Context, instrumentID string) ([]model.Trade, error) {
	return bridge.Call(ctx, e.bridge, func() []model.Trade { return e.trading.PollNewTrades(instrumentID) })
}

func (e *Exchange) PollAllNewTrades(ctx context.Context) (map[string][]model.Trade, error) {
	return bridge.Call(ctx, e.bridge, e.trading.PollAllNewTrades)
}

func (e *Exchange) TradeHistory(ctx context.Context, instrumentID string) ([]model.Trade, error) {
	return bridge.Call(ctx, e.bridge, func() []model.Trade { return e.trading.TradeHistory(instrumentID) })
}

func (e *Exchange) ClearTradeHistory(ctx context.Context) error {
	return e.bridge.Do(ctx, e.trading.ClearTradeHistory)
}

func (e *Exchange) OutstandingOrders(ctx context.Context, instrumentID string) (map[uint64]model.OrderStatus, error) {
	return bridge.Call(ctx, e.bridge, func() map[uint64]model.OrderStatus { return e.trading.OutstandingOrders(instrumentID) })
}

func (e *Exchange) Positions(ctx context.Context) (map[string]int64, error) {
	return bridge.Call(ctx, e.bridge, e.trading.Positions)
}

func (e *Exchange) PositionsAndCash(ctx context.Context) (map[string]model.Position, error) {
	return bridge.Call(ctx, e.bridge, e.trading.PositionsAndCash)
}

func (e *Exchange) Cash(ctx context.Context) (float64, error) {
	return bridge.Call(ctx, e.bridge, e.trading.Cash)
}

// PnL values every position at valuations, falling back to the last public
// trade price of instruments missing from it.
func (e *Exchange) PnL(ctx context.Context, valuations map[string]float64) (float64, error) {
	return bridge.CallErr(ctx, e.bridge, func() (float64, error) {
		return e.trading.PnL(func(instrumentID string) (float64, bool) {
			if v, ok := valuations[instrumentID]; ok {
				return v, true
			}
			return e.market.LastTickPrice(instrumentID)
		})
	})
}
