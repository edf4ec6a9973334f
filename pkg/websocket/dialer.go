package websocket

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/yanun0323/errors"
)

const defaultControlTimeout = time.Second

// GorillaDialer dials a ws:// or wss:// endpoint with gorilla/websocket.
type GorillaDialer struct {
	URL              string
	Header           http.Header
	HandshakeTimeout time.Duration
	ReadLimit        int64
}

// NewDialer builds a dialer for ws://host:port/path.
func NewDialer(host string, port int, path string) *GorillaDialer {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   path,
	}
	return &GorillaDialer{URL: u.String(), HandshakeTimeout: 5 * time.Second}
}

func (d *GorillaDialer) Dial(ctx context.Context) (Conn, error) {
	dialer := gws.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	c, resp, err := dialer.DialContext(ctx, d.URL, d.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", d.URL)
	}
	if d.ReadLimit > 0 {
		c.SetReadLimit(d.ReadLimit)
	}
	return WrapConn(c), nil
}

// WrapConn adapts a gorilla connection to Conn. Used by the dialer and by
// servers that upgrade with gorilla directly.
func WrapConn(c *gws.Conn) Conn {
	return &gorillaConn{c: c}
}

type gorillaConn struct {
	c       *gws.Conn
	writeMu sync.Mutex
}

// Read blocks until a data frame arrives. Closing the connection unblocks it.
func (g *gorillaConn) Read(_ context.Context) (MessageType, []byte, error) {
	mt, data, err := g.c.ReadMessage()
	if err != nil {
		return 0, nil, err
	}
	return MessageType(mt), data, nil
}

func (g *gorillaConn) Write(ctx context.Context, msgType MessageType, payload []byte) error {
	deadline := time.Now().Add(defaultControlTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}

	switch msgType {
	case MessagePing, MessagePong, MessageClose:
		return g.c.WriteControl(int(msgType), payload, deadline)
	}

	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if _, ok := ctx.Deadline(); ok {
		_ = g.c.SetWriteDeadline(deadline)
		defer g.c.SetWriteDeadline(time.Time{})
	}
	return g.c.WriteMessage(int(msgType), payload)
}

func (g *gorillaConn) Close(code CloseCode, reason string) error {
	msg := gws.FormatCloseMessage(int(code), reason)
	_ = g.c.WriteControl(gws.CloseMessage, msg, time.Now().Add(defaultControlTimeout))
	return g.c.Close()
}
