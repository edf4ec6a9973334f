package exception

import "errors"

var (
	ErrInvalidSide      = errors.New("order: invalid side")
	ErrInvalidOrderType = errors.New("order: invalid order type")
	ErrInvalidAction    = errors.New("order: invalid action")
	ErrInvalidPrice     = errors.New("order: price must be positive")
	ErrInvalidVolume    = errors.New("order: volume must be positive")
	ErrEmptyInstrument  = errors.New("order: empty instrument id")
)
