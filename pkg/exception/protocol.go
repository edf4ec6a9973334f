package exception

import "errors"

var (
	ErrUnknownMessage  = errors.New("protocol: unknown message kind")
	ErrDecodeMessage   = errors.New("protocol: decode message")
	ErrEncodeMessage   = errors.New("protocol: encode message")
	ErrRequestRejected = errors.New("protocol: request rejected by server")
	ErrUnexpectedReply = errors.New("protocol: unexpected reply type")
)

var (
	ErrAuthenticationFailed  = errors.New("auth: authentication failed")
	ErrUnresolvableValuation = errors.New("pnl: no valuation available for open position")
	ErrPositionMismatch      = errors.New("ledger: position mismatch")
)
