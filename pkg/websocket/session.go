package websocket

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"exchangeclient/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Config configures a Session.
type Config struct {
	// Name is used as the log prefix.
	Name   string
	Dialer Dialer
	// Backoff spaces consecutive dial attempts.
	Backoff Backoff
	// DialAttempts is the number of dials Open makes before giving up.
	DialAttempts   int
	WriteQueueSize int
	// PingInterval enables client pings when positive.
	PingInterval time.Duration

	// OnMessage receives every data frame in arrival order, tagged with the
	// epoch of the connection that read it. It runs on the read goroutine.
	OnMessage func(epoch uint64, data []byte)
	// OnDisconnect reports a connection dropped by the remote side or by an
	// I/O error. It is not called for Close.
	OnDisconnect func(epoch uint64, err error)
}

func (c *Config) withDefaults() {
	if c.Name == "" {
		c.Name = "ws"
	}
	if c.DialAttempts <= 0 {
		c.DialAttempts = 1
	}
	if c.WriteQueueSize <= 0 {
		c.WriteQueueSize = 256
	}
	if c.Backoff == (Backoff{}) {
		c.Backoff = DefaultBackoff()
	}
}

// Session owns at most one live connection. Every successful Open starts a
// new epoch.
type Session struct {
	cfg Config

	mu    sync.Mutex
	link  *link
	epoch atomic.Uint64
}

type link struct {
	epoch  uint64
	conn   Conn
	writer *writer
	cancel context.CancelFunc
	down   atomic.Bool
}

// shutdown reports whether this call was the one that ended the link.
func (l *link) shutdown(reason string) bool {
	if !l.down.CompareAndSwap(false, true) {
		return false
	}
	l.cancel()
	l.writer.Drain()
	_ = l.conn.Close(CloseNormal, reason)
	return true
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.Dialer == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "websocket: nil dialer")
	}
	cfg.withDefaults()
	return &Session{cfg: cfg}, nil
}

// Open dials the endpoint. Opening an open session is a no-op.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.link != nil {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.DialAttempts; attempt++ {
		conn, err := s.cfg.Dialer.Dial(ctx)
		if err == nil {
			s.start(conn)
			return nil
		}
		lastErr = err
		logs.Warnf("%s: dial attempt %d/%d failed, err: %+v", s.cfg.Name, attempt, s.cfg.DialAttempts, err)
		if attempt == s.cfg.DialAttempts {
			break
		}
		if !s.cfg.Backoff.Wait(ctx, attempt) {
			lastErr = ctx.Err()
			break
		}
	}
	return stderrors.Join(exception.ErrDialFailed, lastErr)
}

func (s *Session) start(conn Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	l := &link{
		epoch:  s.epoch.Add(1),
		conn:   conn,
		writer: newWriter(s.cfg.WriteQueueSize),
		cancel: cancel,
	}
	s.link = l

	go s.readLoop(ctx, l)
	go s.writeLoop(ctx, l)
	logs.Infof("%s: connected, epoch %d", s.cfg.Name, l.epoch)
}

// Send queues a frame on the live connection.
func (s *Session) Send(payload []byte) error {
	l := s.current()
	if l == nil {
		return exception.ErrNotConnected
	}
	return l.writer.Send(payload)
}

// Close tears down the live connection. Closing a closed session is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	l := s.link
	s.link = nil
	s.mu.Unlock()

	if l != nil && l.shutdown("client_close") {
		logs.Infof("%s: closed, epoch %d", s.cfg.Name, l.epoch)
	}
}

func (s *Session) Connected() bool {
	return s.current() != nil
}

// Epoch returns the epoch of the most recent connection.
func (s *Session) Epoch() uint64 {
	return s.epoch.Load()
}

func (s *Session) current() *link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link
}

func (s *Session) drop(l *link, err error) {
	s.mu.Lock()
	if s.link == l {
		s.link = nil
	}
	s.mu.Unlock()

	if !l.shutdown("session_end") {
		return
	}
	logs.Warnf("%s: connection dropped, epoch %d, err: %+v", s.cfg.Name, l.epoch, err)
	if s.cfg.OnDisconnect != nil {
		s.cfg.OnDisconnect(l.epoch, err)
	}
}

func (s *Session) readLoop(ctx context.Context, l *link) {
	for {
		msgType, data, err := l.conn.Read(ctx)
		if err != nil {
			s.drop(l, err)
			return
		}
		if msgType != MessageText && msgType != MessageBinary {
			continue
		}
		if l.down.Load() {
			return
		}
		if s.cfg.OnMessage != nil {
			s.cfg.OnMessage(l.epoch, data)
		}
	}
}

func (s *Session) writeLoop(ctx context.Context, l *link) {
	var ping <-chan time.Time
	if s.cfg.PingInterval > 0 {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping:
			if err := l.conn.Write(ctx, MessagePing, nil); err != nil {
				s.drop(l, err)
				return
			}
		case buf := <-l.writer.queue:
			if err := l.conn.Write(ctx, MessageText, buf); err != nil {
				s.drop(l, err)
				return
			}
		}
	}
}
