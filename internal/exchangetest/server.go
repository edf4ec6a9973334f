// Package exchangetest runs an in-process exchange with an info and an exec
// websocket endpoint for client tests.
package exchangetest

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"exchangeclient/internal/protocol"
	"exchangeclient/pkg/websocket"

	gws "github.com/gorilla/websocket"
	"github.com/yanun0323/logs"
)

// Account is a login the server accepts.
type Account struct {
	Password  string
	Positions []protocol.StartingPosition
}

type restingOrder struct {
	username string
	req      protocol.InsertOrderRequest
}

type peer struct {
	conn     websocket.Conn
	username string
}

// Server answers subscriptions, logins and order requests. Order state is
// kept per server so amend and delete report whether the order exists.
type Server struct {
	info *httptest.Server
	exec *httptest.Server

	mu            sync.Mutex
	accounts      map[string]Account
	adminPassword string
	onSubscribe   []protocol.Message
	nextOrderID   uint64
	orders        map[uint64]restingOrder
	requests      []protocol.Message
	infoPeers     map[*peer]struct{}
	execPeers     map[*peer]struct{}
	hold          bool
	held          []heldFrame
}

type heldFrame struct {
	to  *peer
	msg protocol.Message
}

// New starts both endpoints. Close stops them.
func New() *Server {
	s := &Server{
		accounts:    map[string]Account{},
		nextOrderID: 1,
		orders:      map[uint64]restingOrder{},
		infoPeers:   map[*peer]struct{}{},
		execPeers:   map[*peer]struct{}{},
	}
	s.info = httptest.NewServer(s.handler(s.infoPeers, s.onInfo))
	s.exec = httptest.NewServer(s.handler(s.execPeers, s.onExec))
	return s
}

func (s *Server) Close() {
	s.DropAll()
	s.info.Close()
	s.exec.Close()
}

func (s *Server) Host() string  { return hostPort(s.info.URL).host }
func (s *Server) InfoPort() int { return hostPort(s.info.URL).port }
func (s *Server) ExecPort() int { return hostPort(s.exec.URL).port }

type endpointAddr struct {
	host string
	port int
}

func hostPort(raw string) endpointAddr {
	u, err := url.Parse(raw)
	if err != nil {
		return endpointAddr{}
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		return endpointAddr{}
	}
	p, _ := strconv.Atoi(port)
	return endpointAddr{host: host, port: p}
}

// AddAccount registers a login and the positions its login reply carries.
func (s *Server) AddAccount(username string, acc Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = acc
}

// SetAdminPassword makes admin logins and admin subscriptions require pass.
func (s *Server) SetAdminPassword(pass string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminPassword = pass
}

// OnSubscribe queues pushes sent right after every subscribe reply.
func (s *Server) OnSubscribe(msgs ...protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSubscribe = append(s.onSubscribe, msgs...)
}

// HoldReplies keeps every reply back until ReleaseReplies.
func (s *Server) HoldReplies() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = true
}

func (s *Server) ReleaseReplies() {
	s.mu.Lock()
	s.hold = false
	held := s.held
	s.held = nil
	s.mu.Unlock()

	for _, h := range held {
		s.write(h.to, h.msg)
	}
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Message(nil), s.requests...)
}

// RequestsOf filters Requests by kind.
func (s *Server) RequestsOf(kind protocol.Kind) []protocol.Message {
	var out []protocol.Message
	for _, r := range s.Requests() {
		if r.Kind() == kind {
			out = append(out, r)
		}
	}
	return out
}

// PushInfo broadcasts msg to every info connection.
func (s *Server) PushInfo(msg protocol.Message) {
	for _, p := range s.peers(s.infoPeers) {
		s.write(p, msg)
	}
}

// PushExec broadcasts msg to every exec connection.
func (s *Server) PushExec(msg protocol.Message) {
	for _, p := range s.peers(s.execPeers) {
		s.write(p, msg)
	}
}

// PushExecRaw sends an unencoded frame to every exec connection.
func (s *Server) PushExecRaw(frame []byte) {
	for _, p := range s.peers(s.execPeers) {
		_ = p.conn.Write(context.Background(), websocket.MessageText, frame)
	}
}

// DropAll closes every live connection from the server side.
func (s *Server) DropAll() {
	s.mu.Lock()
	var all []*peer
	for p := range s.infoPeers {
		all = append(all, p)
	}
	for p := range s.execPeers {
		all = append(all, p)
	}
	s.mu.Unlock()

	for _, p := range all {
		_ = p.conn.Close(websocket.CloseGoingAway, "server_drop")
	}
}

// Connections reports the live info and exec connection counts.
func (s *Server) Connections() (info, exec int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.infoPeers), len(s.execPeers)
}

func (s *Server) peers(set map[*peer]struct{}) []*peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*peer, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

func (s *Server) handler(set map[*peer]struct{}, on func(*peer, protocol.Message)) http.Handler {
	upgrader := gws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		p := &peer{conn: websocket.WrapConn(c)}
		s.mu.Lock()
		set[p] = struct{}{}
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			delete(set, p)
			s.mu.Unlock()
			_ = c.Close()
		}()

		for {
			_, data, err := p.conn.Read(r.Context())
			if err != nil {
				return
			}
			msg, err := protocol.Decode(data)
			if err != nil {
				logs.Warnf("exchangetest: bad frame %s, err: %+v", data, err)
				continue
			}
			s.mu.Lock()
			s.requests = append(s.requests, msg)
			s.mu.Unlock()
			on(p, msg)
		}
	})
}

func (s *Server) onInfo(p *peer, msg protocol.Message) {
	req, ok := msg.(protocol.SubscribeRequest)
	if !ok {
		return
	}

	s.mu.Lock()
	admin := s.adminPassword
	pushes := append([]protocol.Message(nil), s.onSubscribe...)
	s.mu.Unlock()

	reply := protocol.SubscribeReply{}
	reply.RequestID = req.RequestID
	if req.AdminPassword != "" && req.AdminPassword != admin {
		reply.Error = "invalid admin password"
		s.reply(p, reply)
		return
	}
	s.reply(p, reply)
	for _, m := range pushes {
		s.write(p, m)
	}
}

func (s *Server) onExec(p *peer, msg protocol.Message) {
	switch req := msg.(type) {
	case protocol.LoginRequest:
		s.login(p, req)
	case protocol.InsertOrderRequest:
		s.insert(p, req)
	case protocol.AmendOrderRequest:
		s.amend(p, req)
	case protocol.DeleteOrderRequest:
		s.deleteOne(p, req)
	case protocol.DeleteOrdersRequest:
		s.deleteAll(p, req)
	}
}

func (s *Server) login(p *peer, req protocol.LoginRequest) {
	s.mu.Lock()
	acc, known := s.accounts[req.Username]
	admin := s.adminPassword
	s.mu.Unlock()

	reply := protocol.LoginReply{}
	reply.RequestID = req.RequestID
	switch {
	case !known || acc.Password != req.Password:
		reply.Error = "invalid username or password"
	case req.AdminPassword != "" && req.AdminPassword != admin:
		reply.Error = "invalid admin password"
	default:
		reply.Positions = acc.Positions
		s.mu.Lock()
		p.username = req.Username
		s.mu.Unlock()
	}
	s.reply(p, reply)
}

func (s *Server) insert(p *peer, req protocol.InsertOrderRequest) {
	s.mu.Lock()
	id := s.nextOrderID
	s.nextOrderID++
	s.orders[id] = restingOrder{username: p.username, req: req}
	s.mu.Unlock()

	reply := protocol.InsertOrderReply{OrderID: id}
	reply.RequestID = req.RequestID
	s.reply(p, reply)
	s.write(p, protocol.OrderUpdate{
		OrderID:      id,
		InstrumentID: req.InstrumentID,
		Price:        req.Price,
		Volume:       req.Volume,
		Side:         req.Side,
	})
}

func (s *Server) amend(p *peer, req protocol.AmendOrderRequest) {
	s.mu.Lock()
	o, ok := s.orders[req.OrderID]
	ok = ok && o.req.InstrumentID == req.InstrumentID && req.Volume <= o.req.Volume
	if ok {
		o.req.Volume = req.Volume
		s.orders[req.OrderID] = o
	}
	s.mu.Unlock()

	reply := protocol.AmendOrderReply{Success: ok}
	reply.RequestID = req.RequestID
	s.reply(p, reply)
	if ok {
		s.write(p, update(req.OrderID, o.req))
	}
}

func (s *Server) deleteOne(p *peer, req protocol.DeleteOrderRequest) {
	s.mu.Lock()
	o, ok := s.orders[req.OrderID]
	ok = ok && o.req.InstrumentID == req.InstrumentID
	if ok {
		delete(s.orders, req.OrderID)
	}
	s.mu.Unlock()

	reply := protocol.DeleteOrderReply{Success: ok}
	reply.RequestID = req.RequestID
	s.reply(p, reply)
	if ok {
		o.req.Volume = 0
		s.write(p, update(req.OrderID, o.req))
	}
}

func (s *Server) deleteAll(p *peer, req protocol.DeleteOrdersRequest) {
	var removed []protocol.Message
	s.mu.Lock()
	for id, o := range s.orders {
		if o.req.InstrumentID != req.InstrumentID || o.username != p.username {
			continue
		}
		delete(s.orders, id)
		o.req.Volume = 0
		removed = append(removed, update(id, o.req))
	}
	s.mu.Unlock()

	for _, m := range removed {
		s.write(p, m)
	}
	reply := protocol.DeleteOrdersReply{}
	reply.RequestID = req.RequestID
	s.reply(p, reply)
}

func update(id uint64, req protocol.InsertOrderRequest) protocol.OrderUpdate {
	return protocol.OrderUpdate{
		OrderID:      id,
		InstrumentID: req.InstrumentID,
		Price:        req.Price,
		Volume:       req.Volume,
		Side:         req.Side,
	}
}

func (s *Server) reply(p *peer, msg protocol.Message) {
	s.mu.Lock()
	if s.hold {
		s.held = append(s.held, heldFrame{to: p, msg: msg})
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.write(p, msg)
}

func (s *Server) write(p *peer, msg protocol.Message) {
	frame, err := protocol.Encode(msg)
	if err != nil {
		logs.Errorf("exchangetest: encode %s, err: %+v", msg.Kind(), err)
		return
	}
	_ = p.conn.Write(context.Background(), websocket.MessageText, frame)
}
