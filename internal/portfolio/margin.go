package portfolio

import (
	"fmt"
	"math"
	"math/big"

	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// Quantities and prices carry the 1e6 scale while equity and margin
// carry the 1e9 settlement scale; this ratio converts between them.
const settlementPerPrice = schema.CollateralScale / schema.PriceScale

// InvalidLeverageError reports a leverage multiplier outside [1, 10].
type InvalidLeverageError struct {
	Leverage uint8
}

func (e InvalidLeverageError) Error() string {
	return fmt.Sprintf("trade: leverage %d out of range [%d, %d]",
		e.Leverage, schema.MinLeverage, schema.MaxLeverage)
}

func (e InvalidLeverageError) Is(target error) bool {
	return target == exception.ErrInvalidLeverage
}

// InsufficientMarginError reports a trade whose margin requirement
// exceeds the portfolio's equity.
type InsufficientMarginError struct {
	Required  schema.Collateral
	Available schema.Collateral
}

func (e InsufficientMarginError) Error() string {
	return fmt.Sprintf("trade: margin required %d exceeds equity %d",
		e.Required, e.Available)
}

func (e InsufficientMarginError) Is(target error) bool {
	return target == exception.ErrInsufficientMargin
}

// TradePlan is the collateral commitment of a validated trade.
type TradePlan struct {
	MarginCommitted schema.Collateral
	PositionSize    schema.Collateral
	ActualQuantity  schema.Quantity
	Leverage        uint8
	Mode            schema.TradeMode
}

// ValidateTrade checks a proposed trade against available equity.
// quantity and price are in the 1e6 scale while equity is in the 1e9
// settlement scale; margin committed is the full notional of the
// unleveraged quantity converted to the settlement scale, and leverage
// scales the resulting position, never the requirement.
func ValidateTrade(equity schema.Collateral, quantity schema.Quantity, price schema.Price, leverage uint8) (TradePlan, error) {
	if leverage < schema.MinLeverage || leverage > schema.MaxLeverage {
		return TradePlan{}, InvalidLeverageError{Leverage: leverage}
	}
	if quantity <= 0 {
		return TradePlan{}, exception.ErrInvalidQuantity
	}

	margin := marginRequired(quantity, price)
	if equity < margin {
		return TradePlan{}, InsufficientMarginError{Required: margin, Available: equity}
	}

	mode := schema.TradeModeMargin
	if leverage == schema.MinLeverage {
		mode = schema.TradeModeSpot
	}
	return TradePlan{
		MarginCommitted: margin,
		PositionSize:    margin * schema.Collateral(leverage),
		ActualQuantity:  quantity * schema.Quantity(leverage),
		Leverage:        leverage,
		Mode:            mode,
	}, nil
}

// marginRequired is the trade's full notional, q·p at the 1e6 scale,
// lifted to the 1e9 settlement scale equity lives in.
func marginRequired(quantity schema.Quantity, price schema.Price) schema.Collateral {
	n := new(big.Int).Mul(big.NewInt(int64(quantity)), big.NewInt(int64(price)))
	n.Quo(n, big.NewInt(schema.PriceScale))
	n.Mul(n, big.NewInt(settlementPerPrice))
	if !n.IsInt64() {
		// Larger than any representable equity, so the trade can
		// never pass the check anyway.
		return schema.Collateral(math.MaxInt64)
	}
	return schema.Collateral(n.Int64())
}

// MaxQuantity returns the largest base quantity whose full notional
// fits in equity. Leverage does not enter: it scales the position
// obtained, not the quantity affordable.
func MaxQuantity(equity schema.Collateral, price schema.Price) schema.Quantity {
	if equity <= 0 || price <= 0 {
		return 0
	}
	n := new(big.Int).Mul(big.NewInt(int64(equity)), big.NewInt(schema.PriceScale))
	n.Quo(n, big.NewInt(int64(price)))
	n.Quo(n, big.NewInt(settlementPerPrice))
	return schema.Quantity(n.Int64())
}

// Consistent reports whether a decoded portfolio satisfies
// equity == principal + pnl.
func Consistent(p schema.Portfolio) bool {
	sum := p.Principal.BigInt().Add(p.Principal.BigInt(), p.Pnl.BigInt())
	return p.Equity.BigInt().Cmp(sum) == 0
}
