package exchange

import (
	"context"
	stderrors "errors"
	"sync"

	"exchangeclient/internal/bridge"
	"exchangeclient/internal/correlator"
	"exchangeclient/internal/execution"
	"exchangeclient/internal/marketdata"
	"exchangeclient/internal/obs"
	"exchangeclient/internal/protocol"
	"exchangeclient/pkg/exception"
	"exchangeclient/pkg/model"
	"exchangeclient/pkg/websocket"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

type endpoint uint8

const (
	endpointInfo endpoint = iota
	endpointExec
)

func (e endpoint) String() string {
	if e == endpointExec {
		return "exec"
	}
	return "info"
}

// client is the runtime shared by Exchange and InfoOnly. Every field below
// loop is owned by the bridge goroutine.
type client struct {
	cfg     Config
	metrics *obs.Metrics
	bridge  *bridge.Bridge
	connMu  sync.Mutex

	info *websocket.Session
	exec *websocket.Session

	// loop
	connected bool
	fatal     error
	sessionID string
	epochs    [2]uint64
	infoCorr  *correlator.Correlator
	execCorr  *correlator.Correlator
	market    *marketdata.Feed
	trading   *execution.Feed
}

func newClient(cfg Config, withExec bool) (*client, error) {
	if err := cfg.validate(withExec); err != nil {
		return nil, err
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = obs.NewMetrics(cfg.Registerer)
	}
	c := &client{
		cfg:     cfg,
		metrics: metrics,
		bridge:  bridge.New(cfg.QueueSize),
	}

	info, err := c.newSession(endpointInfo, cfg.InfoPort)
	if err != nil {
		return nil, err
	}
	c.info = info
	c.infoCorr = correlator.New("info", c.metrics)
	c.market = marketdata.New(info, c.infoCorr, marketdata.Config{
		MaxTickHistory:     cfg.MaxTradeHistory,
		FullMessageLogging: cfg.FullMessageLogging,
	}, c.metrics)

	if withExec {
		exec, err := c.newSession(endpointExec, cfg.ExecPort)
		if err != nil {
			return nil, err
		}
		c.exec = exec
		c.execCorr = correlator.New("exec", c.metrics)
		c.trading = execution.New(exec, c.execCorr, execution.Config{
			MaxTradeHistory:    cfg.MaxTradeHistory,
			FullMessageLogging: cfg.FullMessageLogging,
		}, c.metrics)
		if cfg.Journal != nil {
			c.trading.SetRecorder(cfg.Journal)
		}
	}

	c.bridge.SetPanicHandler(c.fail)
	c.bridge.Start()
	return c, nil
}

func (c *client) newSession(ep endpoint, port int) (*websocket.Session, error) {
	return websocket.NewSession(websocket.Config{
		Name:           ep.String(),
		Dialer:         websocket.NewDialer(c.cfg.Host, port, "/"),
		Backoff:        c.cfg.Backoff,
		DialAttempts:   c.cfg.DialAttempts,
		WriteQueueSize: c.cfg.WriteQueueSize,
		PingInterval:   c.cfg.PingInterval,
		OnMessage: func(epoch uint64, data []byte) {
			msg, err := protocol.Decode(data)
			if postErr := c.bridge.Post(func() { c.dispatch(ep, epoch, data, msg, err) }); postErr != nil {
				logs.Warnf("%s: frame dropped after close", ep)
			}
		},
		OnDisconnect: func(epoch uint64, err error) {
			_ = c.bridge.Post(func() { c.dropped(ep, epoch, err) })
		},
	})
}

func (c *client) current(ep endpoint, epoch uint64) bool {
	return c.connected && c.epochs[ep] == epoch
}

func (c *client) dispatch(ep endpoint, epoch uint64, raw []byte, msg protocol.Message, decodeErr error) {
	if !c.current(ep, epoch) {
		return
	}
	if c.cfg.FullMessageLogging {
		logs.Infof("%s: recv %s", ep, raw)
	}
	if decodeErr != nil {
		c.fail(decodeErr)
		return
	}
	c.metrics.IncInbound(string(msg.Kind()))

	var err error
	switch ep {
	case endpointInfo:
		err = c.market.Handle(msg)
	case endpointExec:
		err = c.trading.Handle(msg)
	}
	if err != nil {
		c.fail(err)
	}
}

func (c *client) dropped(ep endpoint, epoch uint64, err error) {
	if !c.current(ep, epoch) {
		return
	}
	c.metrics.IncDisconnect(ep.String())
	c.fail(errors.Wrapf(exception.ErrConnectionLost, "%s connection dropped, err: %+v", ep, err))
}

// fail ends the session on a fatal condition and keeps the cause for Err.
func (c *client) fail(cause error) {
	if !c.connected {
		return
	}
	logs.Errorf("exchange: session %s terminated, err: %+v", c.sessionID, cause)
	c.fatal = cause
	c.metrics.IncFatal(causeLabel(cause))
	c.teardown(stderrors.Join(exception.ErrConnectionLost, cause))
}

func (c *client) teardown(waiterErr error) {
	c.connected = false
	c.info.Close()
	if c.exec != nil {
		c.exec.Close()
	}
	n := c.infoCorr.FailAll(waiterErr)
	if c.execCorr != nil {
		n += c.execCorr.FailAll(waiterErr)
	}
	if n > 0 {
		logs.Warnf("exchange: failed %d pending requests", n)
	}
}

func (c *client) reset() {
	c.market.Reset()
	if c.trading != nil {
		c.trading.Reset()
	}
}

func causeLabel(err error) string {
	switch {
	case stderrors.Is(err, exception.ErrForcedDisconnect):
		return "forced_disconnect"
	case stderrors.Is(err, exception.ErrUnknownMessage), stderrors.Is(err, exception.ErrDecodeMessage):
		return "protocol"
	case stderrors.Is(err, exception.ErrConnectionLost):
		return "connection_lost"
	case stderrors.Is(err, exception.ErrInvalidSide), stderrors.Is(err, exception.ErrInvalidAction):
		return "invalid_push"
	case stderrors.Is(err, bridge.ErrTaskPanicked):
		return "panic"
	default:
		return "other"
	}
}

// usable reports why requests cannot be sent, nil when they can.
func (c *client) usable() error {
	if c.connected {
		return nil
	}
	if c.fatal != nil {
		return stderrors.Join(exception.ErrNotConnected, c.fatal)
	}
	return exception.ErrNotConnected
}

// connect opens the sessions, subscribes to market data and, when login is
// set, authenticates. Any failure leaves the client disconnected with empty
// state.
func (c *client) connect(ctx context.Context, adminPassword string, login func() (<-chan correlator.Reply, error)) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	connected, err := bridge.Call(ctx, c.bridge, func() bool { return c.connected })
	if err != nil {
		return err
	}
	if connected {
		return nil
	}

	sessionID := uuid.NewString()
	err = c.bridge.Do(ctx, func() {
		c.reset()
		c.fatal = nil
		c.sessionID = sessionID
		if c.trading != nil {
			c.trading.SetSession(sessionID)
		}
	})
	if err != nil {
		return err
	}

	if err := c.info.Open(ctx); err != nil {
		return errors.Wrapf(err, "exchange: open info %s:%d", c.cfg.Host, c.cfg.InfoPort)
	}
	if c.exec != nil {
		if err := c.exec.Open(ctx); err != nil {
			c.info.Close()
			return errors.Wrapf(err, "exchange: open exec %s:%d", c.cfg.Host, c.cfg.ExecPort)
		}
	}

	err = c.bridge.Do(ctx, func() {
		c.epochs[endpointInfo] = c.info.Epoch()
		if c.exec != nil {
			c.epochs[endpointExec] = c.exec.Epoch()
		}
		c.connected = true
	})
	if err != nil {
		c.abort()
		return err
	}

	if _, err := c.request(ctx, func() (<-chan correlator.Reply, error) { return c.market.Subscribe(adminPassword) }); err != nil {
		c.abort()
		return errors.Wrap(err, "exchange: subscribe")
	}
	if login != nil {
		if _, err := c.request(ctx, login); err != nil {
			c.abort()
			return errors.Wrap(err, "exchange: login")
		}
	}

	logs.Infof("exchange: connected to %s, session %s", c.cfg.Host, sessionID)
	return nil
}

// abort tears down a half-made connection and drops whatever state it built.
func (c *client) abort() {
	err := c.bridge.Do(context.Background(), func() {
		if c.connected {
			c.teardown(exception.ErrConnectionLost)
		}
		c.reset()
	})
	if err != nil {
		c.info.Close()
		if c.exec != nil {
			c.exec.Close()
		}
	}
}

// Disconnect closes both connections and fails every pending request.
// Disconnecting a disconnected client is a no-op.
func (c *client) Disconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	return c.bridge.Do(context.Background(), func() {
		if !c.connected {
			return
		}
		logs.Infof("exchange: disconnecting session %s", c.sessionID)
		c.metrics.IncDisconnect("client")
		c.teardown(errors.Wrap(exception.ErrConnectionLost, "disconnected by client"))
	})
}

func (c *client) IsConnected() bool {
	connected, err := bridge.Call(context.Background(), c.bridge, func() bool { return c.connected })
	return err == nil && connected
}

// Err returns the cause of the last fatal termination, nil after a clean
// Disconnect or a fresh Connect.
func (c *client) Err() error {
	fatal, err := bridge.Call(context.Background(), c.bridge, func() error { return c.fatal })
	if err != nil {
		return err
	}
	return fatal
}

// SessionID identifies the current or last connection.
func (c *client) SessionID() string {
	id, _ := bridge.Call(context.Background(), c.bridge, func() string { return c.sessionID })
	return id
}

// Close disconnects and stops the event loop. The client is unusable after.
func (c *client) Close() error {
	err := c.Disconnect()
	c.bridge.Stop()
	if stderrors.Is(err, exception.ErrClosed) {
		return nil
	}
	return err
}

// request runs op on the loop once the connection is usable and waits for its
// reply.
func (c *client) request(ctx context.Context, op func() (<-chan correlator.Reply, error)) (protocol.Message, error) {
	return c.bridge.RunBlocking(ctx, func() (<-chan correlator.Reply, error) {
		if err := c.usable(); err != nil {
			return nil, err
		}
		return op()
	})
}

// LatestBook returns the last book of instrumentID. ok is false when none was
// received.
func (c *client) LatestBook(ctx context.Context, instrumentID string) (model.PriceBook, bool, error) {
	type result struct {
		book model.PriceBook
		ok   bool
	}
	r, err := bridge.Call(ctx, c.bridge, func() result {
		book, ok := c.market.LatestBook(instrumentID)
		return result{book: book, ok: ok}
	})
	return r.book, r.ok, err
}

// PollNewTradeTicks returns the public trades received since the previous
// poll of instrumentID.
func (c *client) PollNewTradeTicks(ctx context.Context, instrumentID string) ([]model.TradeTick, error) {
	return bridge.Call(ctx, c.bridge, func() []model.TradeTick { return c.market.PollNewTicks(instrumentID) })
}

func (c *client) PollAllNewTradeTicks(ctx context.Context) (map[string][]model.TradeTick, error) {
	return bridge.Call(ctx, c.bridge, c.market.PollAllNewTicks)
}

func (c *client) TradeTickHistory(ctx context.Context, instrumentID string) ([]model.TradeTick, error) {
	return bridge.Call(ctx, c.bridge, func() []model.TradeTick { return c.market.TickHistory(instrumentID) })
}

func (c *client) ClearTradeTickHistory(ctx context.Context) error {
	return c.bridge.Do(ctx, c.market.ClearTickHistory)
}

func (c *client) Instruments(ctx context.Context) (map[string]model.Instrument, error) {
	return bridge.Call(ctx, c.bridge, c.market.Instruments)
}
