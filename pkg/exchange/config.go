package exchange

import (
	"time"

	"exchangeclient/internal/execution"
	"exchangeclient/internal/obs"
	"exchangeclient/pkg/exception"
	"exchangeclient/pkg/websocket"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yanun0323/errors"
)

const (
	DefaultHost            = "localhost"
	DefaultInfoPort        = 7001
	DefaultExecPort        = 8001
	DefaultMaxTradeHistory = 100
	DefaultDialAttempts    = 3
)

// Config configures an Exchange or an InfoOnly client.
type Config struct {
	Host     string
	InfoPort int
	ExecPort int
	// MaxTradeHistory bounds both the private trade and the public tick
	// history of every instrument.
	MaxTradeHistory int
	// FullMessageLogging logs every frame sent and received.
	FullMessageLogging bool

	DialAttempts   int
	Backoff        websocket.Backoff
	QueueSize      int
	WriteQueueSize int
	PingInterval   time.Duration

	// Registerer receives the client metrics when set.
	Registerer prometheus.Registerer
	// Metrics, when set, is used as is and Registerer is ignored. It lets the
	// client share one collector set with other components of a process.
	Metrics *obs.Metrics
	// Journal receives every fill and booking when set.
	Journal execution.Recorder
}

func DefaultConfig() Config {
	return Config{
		Host:            DefaultHost,
		InfoPort:        DefaultInfoPort,
		ExecPort:        DefaultExecPort,
		MaxTradeHistory: DefaultMaxTradeHistory,
		DialAttempts:    DefaultDialAttempts,
		Backoff:         websocket.DefaultBackoff(),
	}
}

func (c Config) validate(withExec bool) error {
	if c.Host == "" {
		return errors.Wrap(exception.ErrInvalidConfig, "exchange: empty host")
	}
	if c.InfoPort <= 0 || c.InfoPort > 65535 {
		return errors.Wrapf(exception.ErrInvalidConfig, "exchange: info port %d", c.InfoPort)
	}
	if withExec && (c.ExecPort <= 0 || c.ExecPort > 65535) {
		return errors.Wrapf(exception.ErrInvalidConfig, "exchange: exec port %d", c.ExecPort)
	}
	if c.MaxTradeHistory <= 0 {
		return errors.Wrapf(exception.ErrInvalidConfig, "exchange: max trade history %d", c.MaxTradeHistory)
	}
	return nil
}

// Credentials authenticate the exec connection. AdminPassword, when set,
// turns the login into an admin login and is also sent with the market data
// subscription.
type Credentials struct {
	Username      string
	Password      string
	AdminPassword string
}
