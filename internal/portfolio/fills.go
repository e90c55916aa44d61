package portfolio

import (
	"math/big"

	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// Client-side previews of the ledger's position bookkeeping. The
// ledger applies the same arithmetic on commit; these helpers let the
// trader see the resulting entry price, realized PnL and margin
// release before signing.

// NewPosition seeds a position record for a first fill.
func NewPosition(owner schema.Pubkey, venueIndex, instrumentIndex uint16, fillPrice schema.Price, fillQty schema.Quantity, ts int64, margin uint64, leverage uint8) schema.PositionDetails {
	return schema.PositionDetails{
		Portfolio:       owner,
		VenueIndex:      venueIndex,
		InstrumentIndex: instrumentIndex,
		AvgEntryPrice:   fillPrice,
		TotalQty:        fillQty,
		TradeCount:      1,
		LastUpdateTs:    ts,
		MarginHeld:      schema.Uint128From64(margin),
		Leverage:        leverage,
	}
}

// ApplyFill folds a same-direction fill into the position, moving the
// entry price to the quantity-weighted average of the old and new
// cost.
func ApplyFill(d *schema.PositionDetails, fillPrice schema.Price, fillQty schema.Quantity, fee int64, ts int64, addedMargin uint64) error {
	if fillQty == 0 {
		return exception.ErrInvalidQuantity
	}
	if d.TotalQty != 0 && (d.TotalQty > 0) != (fillQty > 0) {
		return exception.ErrInvalidSide
	}

	oldCost := new(big.Int).Mul(big.NewInt(int64(d.AvgEntryPrice)), big.NewInt(abs64(int64(d.TotalQty))))
	newCost := new(big.Int).Mul(big.NewInt(int64(fillPrice)), big.NewInt(abs64(int64(fillQty))))
	totalCost := oldCost.Add(oldCost, newCost)

	newQty := d.TotalQty + fillQty
	avg := totalCost.Quo(totalCost, big.NewInt(abs64(int64(newQty))))

	d.AvgEntryPrice = schema.Price(avg.Int64())
	d.TotalQty = newQty
	d.TotalFees = addInt128(d.TotalFees, big.NewInt(fee))
	d.TradeCount++
	d.LastUpdateTs = ts
	d.MarginHeld = addUint128(d.MarginHeld, addedMargin)
	return nil
}

// ReduceFill closes up to reduceQty against the position at exitPrice
// and returns the realized PnL, the remaining quantity and the margin
// released. A full close releases the entire margin held; a partial
// close releases it pro rata.
func ReduceFill(d *schema.PositionDetails, exitPrice schema.Price, reduceQty schema.Quantity, fee int64, ts int64) (realized int64, remaining schema.Quantity, released uint64, err error) {
	if reduceQty <= 0 {
		return 0, d.TotalQty, 0, exception.ErrInvalidQuantity
	}
	if d.TotalQty == 0 {
		return 0, 0, 0, exception.ErrInvalidQuantity
	}

	before := abs64(int64(d.TotalQty))
	closed := abs64(int64(reduceQty))
	if closed > before {
		closed = before
	}

	diff := int64(exitPrice) - int64(d.AvgEntryPrice)
	pnl := new(big.Int).Mul(big.NewInt(closed), big.NewInt(diff))
	pnl.Quo(pnl, big.NewInt(schema.PriceScale))
	if d.TotalQty < 0 {
		pnl.Neg(pnl)
	}
	realized = pnl.Int64()

	d.RealizedPnl = addInt128(d.RealizedPnl, pnl)
	d.TotalFees = addInt128(d.TotalFees, big.NewInt(fee))
	d.TradeCount++
	d.LastUpdateTs = ts

	if d.TotalQty > 0 {
		d.TotalQty -= schema.Quantity(closed)
	} else {
		d.TotalQty += schema.Quantity(closed)
	}

	switch {
	case d.TotalQty == 0:
		released = d.MarginHeld.Uint64()
		d.MarginHeld = schema.Uint128{}
	default:
		held := d.MarginHeld.BigInt()
		release := new(big.Int).Mul(held, big.NewInt(closed*schema.PriceScale/before))
		release.Quo(release, big.NewInt(schema.PriceScale))
		d.MarginHeld = schema.Uint128FromBig(new(big.Int).Sub(held, release))
		released = release.Uint64()
	}
	return realized, d.TotalQty, released, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func addInt128(v schema.Int128, delta *big.Int) schema.Int128 {
	return schema.Int128FromBig(new(big.Int).Add(v.BigInt(), delta))
}

func addUint128(v schema.Uint128, delta uint64) schema.Uint128 {
	sum := new(big.Int).Add(v.BigInt(), new(big.Int).SetUint64(delta))
	return schema.Uint128FromBig(sum)
}
