package exception

import "errors"

var (
	ErrNotConnected     = errors.New("connection: not connected")
	ErrConnectionLost   = errors.New("connection: lost")
	ErrForcedDisconnect = errors.New("connection: forced disconnect by server")
	ErrQueueFull        = errors.New("connection: outbound queue full")
	ErrDialFailed       = errors.New("connection: dial failed")
)
