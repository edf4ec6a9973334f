package enum

// Side bid, ask
type Side uint8

const (
	_side_beg Side = iota
	SideBid
	SideAsk
	_side_end
)

func (s Side) IsAvailable() bool {
	return s > _side_beg && s < _side_end
}

// Sign returns +1 for bid and -1 for ask. Unavailable sides return 0.
func (s Side) Sign() int64 {
	switch s {
	case SideBid:
		return 1
	case SideAsk:
		return -1
	default:
		return 0
	}
}

func (s Side) String() string {
	switch s {
	case SideBid:
		return "bid"
	case SideAsk:
		return "ask"
	default:
		return ""
	}
}

// ParseSide maps the wire spelling to a Side.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "bid":
		return SideBid, true
	case "ask":
		return SideAsk, true
	default:
		return _side_beg, false
	}
}

// Action buy, sell
type Action uint8

const (
	_action_beg Action = iota
	ActionBuy
	ActionSell
	_action_end
)

func (a Action) IsAvailable() bool {
	return a > _action_beg && a < _action_end
}

// Sign returns +1 for buy and -1 for sell. Unavailable actions return 0.
func (a Action) Sign() int64 {
	switch a {
	case ActionBuy:
		return 1
	case ActionSell:
		return -1
	default:
		return 0
	}
}

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		return ""
	}
}

// ParseAction maps the wire spelling to an Action.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "buy":
		return ActionBuy, true
	case "sell":
		return ActionSell, true
	default:
		return _action_beg, false
	}
}
