package protocol

// Message is implemented by every type in this package that can travel in an
// Envelope.
type Message interface {
	Kind() Kind
	message()
}

// Header carries the correlation fields of requests and replies. It lives in
// the envelope, not in the payload.
type Header struct {
	RequestID uint64 `json:"-"`
	Error     string `json:"-"`
}

func (h Header) Correlation() Header { return h }

func (h *Header) setCorrelation(id uint64, errMsg string) {
	h.RequestID = id
	h.Error = errMsg
}

// Correlated is implemented by requests and replies.
type Correlated interface {
	Message
	Correlation() Header
}

type SubscribeRequest struct {
	Header
	BookUpdateType string `json:"book_update_type"`
	AdminPassword  string `json:"admin_password,omitempty"`
}

type SubscribeReply struct {
	Header
}

// LoginRequest becomes an admin login when AdminPassword is set.
type LoginRequest struct {
	Header
	Username      string `json:"username"`
	Password      string `json:"password"`
	AdminPassword string `json:"admin_password,omitempty"`
}

type StartingPosition struct {
	InstrumentID string  `json:"instrument_id"`
	Position     int64   `json:"position"`
	Cash         float64 `json:"cash"`
}

type LoginReply struct {
	Header
	Positions []StartingPosition `json:"positions"`
}

type InsertOrderRequest struct {
	Header
	InstrumentID string  `json:"instrument_id"`
	Price        float64 `json:"price"`
	Volume       int64   `json:"volume"`
	Side         string  `json:"side"`
	OrderType    string  `json:"order_type"`
}

type InsertOrderReply struct {
	Header
	OrderID uint64 `json:"order_id"`
}

type AmendOrderRequest struct {
	Header
	InstrumentID string `json:"instrument_id"`
	OrderID      uint64 `json:"order_id"`
	Volume       int64  `json:"volume"`
}

type AmendOrderReply struct {
	Header
	Success bool `json:"success"`
}

type DeleteOrderRequest struct {
	Header
	InstrumentID string `json:"instrument_id"`
	OrderID      uint64 `json:"order_id"`
}

type DeleteOrderReply struct {
	Header
	Success bool `json:"success"`
}

type DeleteOrdersRequest struct {
	Header
	InstrumentID string `json:"instrument_id"`
}

type DeleteOrdersReply struct {
	Header
}

type Level struct {
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

type PriceBook struct {
	InstrumentID string  `json:"instrument_id"`
	Bids         []Level `json:"bids"`
	Asks         []Level `json:"asks"`
}

// TradeTick timestamps are unix nanoseconds.
type TradeTick struct {
	Timestamp     int64   `json:"timestamp"`
	InstrumentID  string  `json:"instrument_id"`
	Price         float64 `json:"price"`
	Volume        int64   `json:"volume"`
	AggressorSide string  `json:"aggressor_side"`
	Buyer         string  `json:"buyer"`
	Seller        string  `json:"seller"`
}

// InstrumentCreated.ExtraInfo is a JSON object encoded as a string.
type InstrumentCreated struct {
	InstrumentID string  `json:"instrument_id"`
	TickSize     float64 `json:"tick_size"`
	ExtraInfo    string  `json:"extra_info,omitempty"`
}

type InstrumentExpired struct {
	InstrumentID string `json:"instrument_id"`
}

type InstrumentPaused struct {
	InstrumentID string `json:"instrument_id"`
}

type InstrumentResumed struct {
	InstrumentID string `json:"instrument_id"`
}

type OrderUpdate struct {
	OrderID      uint64  `json:"order_id"`
	InstrumentID string  `json:"instrument_id"`
	Price        float64 `json:"price"`
	Volume       int64   `json:"volume"`
	Side         string  `json:"side"`
}

type Trade struct {
	OrderID      uint64  `json:"order_id"`
	InstrumentID string  `json:"instrument_id"`
	Price        float64 `json:"price"`
	Volume       int64   `json:"volume"`
	Side         string  `json:"side"`
}

type SingleSidedBooking struct {
	Username     string  `json:"username"`
	InstrumentID string  `json:"instrument_id"`
	Price        float64 `json:"price"`
	Volume       int64   `json:"volume"`
	Action       string  `json:"action"`
}

type ForcedDisconnect struct {
	Reason string `json:"reason"`
}

type Ping struct{}

func (SubscribeRequest) Kind() Kind    { return KindSubscribe }
func (SubscribeReply) Kind() Kind      { return KindSubscribeReply }
func (LoginReply) Kind() Kind          { return KindLoginReply }
func (InsertOrderRequest) Kind() Kind  { return KindInsertOrder }
func (InsertOrderReply) Kind() Kind    { return KindInsertOrderReply }
func (AmendOrderRequest) Kind() Kind   { return KindAmendOrder }
func (AmendOrderReply) Kind() Kind     { return KindAmendOrderReply }
func (DeleteOrderRequest) Kind() Kind  { return KindDeleteOrder }
func (DeleteOrderReply) Kind() Kind    { return KindDeleteOrderReply }
func (DeleteOrdersRequest) Kind() Kind { return KindDeleteOrders }
func (DeleteOrdersReply) Kind() Kind   { return KindDeleteOrdersReply }
func (PriceBook) Kind() Kind           { return KindPriceBook }
func (TradeTick) Kind() Kind           { return KindTradeTick }
func (InstrumentCreated) Kind() Kind   { return KindInstrumentCreated }
func (InstrumentExpired) Kind() Kind   { return KindInstrumentExpired }
func (InstrumentPaused) Kind() Kind    { return KindInstrumentPaused }
func (InstrumentResumed) Kind() Kind   { return KindInstrumentResumed }
func (OrderUpdate) Kind() Kind         { return KindOrderUpdate }
func (Trade) Kind() Kind               { return KindTrade }
func (SingleSidedBooking) Kind() Kind  { return KindSingleSidedBooking }
func (ForcedDisconnect) Kind() Kind    { return KindForcedDisconnect }
func (Ping) Kind() Kind                { return KindPing }

func (r LoginRequest) Kind() Kind {
	if r.AdminPassword != "" {
		return KindAdminLogin
	}
	return KindLogin
}

func (SubscribeRequest) message()    {}
func (SubscribeReply) message()      {}
func (LoginRequest) message()        {}
func (LoginReply) message()          {}
func (InsertOrderRequest) message()  {}
func (InsertOrderReply) message()    {}
func (AmendOrderRequest) message()   {}
func (AmendOrderReply) message()     {}
func (DeleteOrderRequest) message()  {}
func (DeleteOrderReply) message()    {}
func (DeleteOrdersRequest) message() {}
func (DeleteOrdersReply) message()   {}
func (PriceBook) message()           {}
func (TradeTick) message()           {}
func (InstrumentCreated) message()   {}
func (InstrumentExpired) message()   {}
func (InstrumentPaused) message()    {}
func (InstrumentResumed) message()   {}
func (OrderUpdate) message()         {}
func (Trade) message()               {}
func (SingleSidedBooking) message()  {}
func (ForcedDisconnect) message()    {}
func (Ping) message()                {}
