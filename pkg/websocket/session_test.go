package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"exchangeclient/pkg/exception"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type echoServer struct {
	*httptest.Server

	mu    sync.Mutex
	conns []*gws.Conn
}

func newEchoServer(t *testing.T) *echoServer {
	t.Helper()
	es := &echoServer{}
	upgrader := gws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	es.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		es.mu.Lock()
		es.conns = append(es.conns, c)
		es.mu.Unlock()
		for {
			mt, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			if err := c.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(es.Close)
	return es
}

func (es *echoServer) dialer() *GorillaDialer {
	return &GorillaDialer{URL: "ws" + strings.TrimPrefix(es.URL, "http"), HandshakeTimeout: time.Second}
}

func (es *echoServer) dropAll() {
	es.mu.Lock()
	defer es.mu.Unlock()
	for _, c := range es.conns {
		_ = c.Close()
	}
	es.conns = nil
}

func TestSessionEchoAndEpoch(t *testing.T) {
	es := newEchoServer(t)

	received := make(chan string, 4)
	var gotEpoch uint64
	s, err := NewSession(Config{
		Name:   "test",
		Dialer: es.dialer(),
		OnMessage: func(epoch uint64, data []byte) {
			gotEpoch = epoch
			received <- string(data)
		},
	})
	require.NoError(t, err)
	require.ErrorIs(t, s.Send([]byte("x")), exception.ErrNotConnected)

	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Open(context.Background()), "second open is a no-op")
	require.True(t, s.Connected())
	require.Equal(t, uint64(1), s.Epoch())

	require.NoError(t, s.Send([]byte(`{"hello":1}`)))
	select {
	case msg := <-received:
		require.Equal(t, `{"hello":1}`, msg)
		require.Equal(t, uint64(1), gotEpoch)
	case <-time.After(2 * time.Second):
		t.Fatal("echo not received")
	}

	s.Close()
	s.Close()
	require.False(t, s.Connected())
	require.ErrorIs(t, s.Send([]byte("x")), exception.ErrNotConnected)

	require.NoError(t, s.Open(context.Background()))
	require.Equal(t, uint64(2), s.Epoch())
	s.Close()
}

func TestSessionRemoteDropNotifies(t *testing.T) {
	es := newEchoServer(t)

	dropped := make(chan uint64, 1)
	s, err := NewSession(Config{
		Dialer:       es.dialer(),
		OnDisconnect: func(epoch uint64, _ error) { dropped <- epoch },
	})
	require.NoError(t, err)
	require.NoError(t, s.Open(context.Background()))

	require.Eventually(t, func() bool {
		es.mu.Lock()
		defer es.mu.Unlock()
		return len(es.conns) == 1
	}, 2*time.Second, 10*time.Millisecond)
	es.dropAll()

	select {
	case epoch := <-dropped:
		require.Equal(t, uint64(1), epoch)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect not reported")
	}
	require.False(t, s.Connected())
}

func TestSessionCloseDoesNotNotify(t *testing.T) {
	es := newEchoServer(t)

	dropped := make(chan struct{}, 1)
	s, err := NewSession(Config{
		Dialer:       es.dialer(),
		OnDisconnect: func(uint64, error) { dropped <- struct{}{} },
	})
	require.NoError(t, err)
	require.NoError(t, s.Open(context.Background()))
	s.Close()

	select {
	case <-dropped:
		t.Fatal("close must not report a disconnect")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSessionDialFailure(t *testing.T) {
	s, err := NewSession(Config{
		Dialer:       &GorillaDialer{URL: "ws://127.0.0.1:1/", HandshakeTimeout: 200 * time.Millisecond},
		DialAttempts: 2,
		Backoff:      Backoff{Min: time.Millisecond, Max: time.Millisecond, Factor: 2},
	})
	require.NoError(t, err)
	require.ErrorIs(t, s.Open(context.Background()), exception.ErrDialFailed)
	require.False(t, s.Connected())
}

func TestNewSessionRequiresDialer(t *testing.T) {
	_, err := NewSession(Config{})
	require.ErrorIs(t, err, exception.ErrNilInstance)
}
