package schema

// PriceScale is the fixed-point scale for prices and instrument quantities.
const PriceScale int64 = 1_000_000

// CollateralScale is the fixed-point scale for settlement-currency amounts.
const CollateralScale int64 = 1_000_000_000

// Price is a scaled integer price (1e6 scale).
type Price int64

// Quantity is a scaled, signed instrument quantity (1e6 scale).
// Positive means long, negative means short.
type Quantity int64

// Collateral is a scaled settlement-currency amount (1e9 scale).
type Collateral int64

// Side describes order direction. Values match the wire encoding.
type Side uint8

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

// Valid reports whether the side is a known wire value.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "invalid"
	}
}

// Sign returns +1 for buy and -1 for sell.
func (s Side) Sign() int64 {
	if s == SideSell {
		return -1
	}
	return 1
}

// OrderType describes execution semantics. Values match the wire encoding.
type OrderType uint8

const (
	OrderTypeMarket OrderType = 0
	OrderTypeLimit  OrderType = 1
)

// Valid reports whether the order type is a known wire value.
func (t OrderType) Valid() bool {
	return t == OrderTypeMarket || t == OrderTypeLimit
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "market"
	case OrderTypeLimit:
		return "limit"
	default:
		return "invalid"
	}
}

// TradeMode reports how a validated trade commits collateral.
type TradeMode uint8

const (
	TradeModeSpot TradeMode = iota
	TradeModeMargin
)

func (m TradeMode) String() string {
	if m == TradeModeSpot {
		return "spot"
	}
	return "margin"
}

// MinLeverage and MaxLeverage bound the accepted leverage multiplier.
const (
	MinLeverage uint8 = 1
	MaxLeverage uint8 = 10
)
