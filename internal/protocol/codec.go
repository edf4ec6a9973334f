package protocol

import (
	"encoding/json"

	"exchangeclient/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// Envelope is the JSON frame exchanged on both endpoints.
type Envelope struct {
	Type      Kind            `json:"type"`
	RequestID uint64          `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Encode frames msg. Requests and replies carry the correlation fields of
// their Header in the envelope.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.Wrap(exception.ErrEncodeMessage, "nil message")
	}
	payload, err := sonic.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(exception.ErrEncodeMessage, "marshal %s payload, err: %+v", msg.Kind(), err)
	}
	env := Envelope{Type: msg.Kind(), Payload: payload}
	if c, ok := msg.(Correlated); ok {
		h := c.Correlation()
		env.RequestID = h.RequestID
		env.Error = h.Error
	}
	buf, err := sonic.Marshal(env)
	if err != nil {
		return nil, errors.Wrapf(exception.ErrEncodeMessage, "marshal %s envelope, err: %+v", msg.Kind(), err)
	}
	return buf, nil
}

// Decode parses one frame. A kind outside the catalog yields ErrUnknownMessage.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrapf(exception.ErrDecodeMessage, "envelope, err: %+v", err)
	}

	switch env.Type {
	case KindSubscribe:
		return decodeAs[SubscribeRequest](env)
	case KindSubscribeReply:
		return decodeAs[SubscribeReply](env)
	case KindLogin, KindAdminLogin:
		return decodeAs[LoginRequest](env)
	case KindLoginReply:
		return decodeAs[LoginReply](env)
	case KindInsertOrder:
		return decodeAs[InsertOrderRequest](env)
	case KindInsertOrderReply:
		return decodeAs[InsertOrderReply](env)
	case KindAmendOrder:
		return decodeAs[AmendOrderRequest](env)
	case KindAmendOrderReply:
		return decodeAs[AmendOrderReply](env)
	case KindDeleteOrder:
		return decodeAs[DeleteOrderRequest](env)
	case KindDeleteOrderReply:
		return decodeAs[DeleteOrderReply](env)
	case KindDeleteOrders:
		return decodeAs[DeleteOrdersRequest](env)
	case KindDeleteOrdersReply:
		return decodeAs[DeleteOrdersReply](env)
	case KindPriceBook:
		return decodeAs[PriceBook](env)
	case KindTradeTick:
		return decodeAs[TradeTick](env)
	case KindInstrumentCreated:
		return decodeAs[InstrumentCreated](env)
	case KindInstrumentExpired:
		return decodeAs[InstrumentExpired](env)
	case KindInstrumentPaused:
		return decodeAs[InstrumentPaused](env)
	case KindInstrumentResumed:
		return decodeAs[InstrumentResumed](env)
	case KindOrderUpdate:
		return decodeAs[OrderUpdate](env)
	case KindTrade:
		return decodeAs[Trade](env)
	case KindSingleSidedBooking:
		return decodeAs[SingleSidedBooking](env)
	case KindForcedDisconnect:
		return decodeAs[ForcedDisconnect](env)
	case KindPing:
		return decodeAs[Ping](env)
	default:
		return nil, errors.Wrapf(exception.ErrUnknownMessage, "kind %q", env.Type)
	}
}

func decodeAs[T Message](env Envelope) (Message, error) {
	var v T
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := sonic.Unmarshal(env.Payload, &v); err != nil {
			return nil, errors.Wrapf(exception.ErrDecodeMessage, "%s payload, err: %+v", env.Type, err)
		}
	}
	if h, ok := any(&v).(interface{ setCorrelation(uint64, string) }); ok {
		h.setCorrelation(env.RequestID, env.Error)
	}
	return v, nil
}

// Sender writes one encoded frame to a connection.
type Sender interface {
	Send(payload []byte) error
}
