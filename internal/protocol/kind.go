package protocol

import "strings"

// Kind tags every frame on the wire. The set is closed.
type Kind string

// requests
const (
	KindSubscribe    Kind = "info.subscribe"
	KindLogin        Kind = "exec.login"
	KindAdminLogin   Kind = "exec.admin_login"
	KindInsertOrder  Kind = "exec.insert_order"
	KindAmendOrder   Kind = "exec.amend_order"
	KindDeleteOrder  Kind = "exec.delete_order"
	KindDeleteOrders Kind = "exec.delete_orders"
)

// replies
const (
	KindSubscribeReply    Kind = "info.subscribe_reply"
	KindLoginReply        Kind = "exec.login_reply"
	KindInsertOrderReply  Kind = "exec.insert_order_reply"
	KindAmendOrderReply   Kind = "exec.amend_order_reply"
	KindDeleteOrderReply  Kind = "exec.delete_order_reply"
	KindDeleteOrdersReply Kind = "exec.delete_orders_reply"
)

// pushes
const (
	KindPriceBook          Kind = "info.price_book"
	KindTradeTick          Kind = "info.trade_tick"
	KindInstrumentCreated  Kind = "info.instrument_created"
	KindInstrumentExpired  Kind = "info.instrument_expired"
	KindInstrumentPaused   Kind = "info.instrument_paused"
	KindInstrumentResumed  Kind = "info.instrument_resumed"
	KindOrderUpdate        Kind = "exec.order_update"
	KindTrade              Kind = "exec.trade"
	KindSingleSidedBooking Kind = "exec.single_sided_booking"
	KindForcedDisconnect   Kind = "exec.forced_disconnect"
	KindPing               Kind = "exec.ping"
)

func (k Kind) IsReply() bool {
	return strings.HasSuffix(string(k), "_reply")
}

// IsInfo reports whether the kind travels on the market data endpoint.
func (k Kind) IsInfo() bool {
	return strings.HasPrefix(string(k), "info.")
}
