package enum

// OrderType limit, ioc
type OrderType uint8

const (
	_order_type_beg OrderType = iota
	OrderTypeLimit
	OrderTypeIOC
	_order_type_end
)

func (t OrderType) IsAvailable() bool {
	return t > _order_type_beg && t < _order_type_end
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "limit"
	case OrderTypeIOC:
		return "ioc"
	default:
		return ""
	}
}

// ParseOrderType maps the wire spelling to an OrderType.
func ParseOrderType(s string) (OrderType, bool) {
	switch s {
	case "limit":
		return OrderTypeLimit, true
	case "ioc":
		return OrderTypeIOC, true
	default:
		return _order_type_beg, false
	}
}
