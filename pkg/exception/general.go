package exception

import "errors"

// General errors
var (
	ErrNilInstance     = errors.New("nil instance")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrClosed          = errors.New("closed")
)
