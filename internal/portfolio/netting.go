package portfolio

import (
	"fmt"
	"math/big"

	"slabtrader/internal/schema"
)

// UnknownVenueError reports an exposure referencing a venue index
// missing from the registry snapshot.
type UnknownVenueError struct {
	VenueIndex uint16
}

func (e UnknownVenueError) Error() string {
	return fmt.Sprintf("portfolio: exposure references unknown venue index %d", e.VenueIndex)
}

// NettedPosition is the cross-venue aggregate for one instrument.
type NettedPosition struct {
	Instrument    schema.Pubkey
	NetQuantity   schema.Quantity
	AvgEntryPrice schema.Price
	MarginHeld    uint64
	UnrealizedPnl int64
	Legs          int
}

type resolvedLeg struct {
	instrument schema.Pubkey
	quantity   schema.Quantity
	entryPrice schema.Price
	marginHeld uint64
}

// Net aggregates a portfolio's venue-local exposures by instrument
// identity. Exposures are first resolved through the registry
// snapshot; any non-zero exposure on an unknown venue fails the whole
// call rather than silently dropping a leg. Output order follows
// first appearance in the exposure array.
func Net(p schema.Portfolio, snap schema.Snapshot, details map[schema.PositionKey]schema.PositionDetails, marks map[schema.Pubkey]schema.Price) ([]NettedPosition, error) {
	legs := make([]resolvedLeg, 0, len(p.Exposures))
	for _, e := range p.Exposures {
		if e.Quantity == 0 {
			continue
		}
		venue, ok := snap.Venue(e.VenueIndex)
		if !ok {
			return nil, UnknownVenueError{VenueIndex: e.VenueIndex}
		}
		leg := resolvedLeg{
			instrument: venue.Instrument,
			quantity:   e.Quantity,
		}
		if d, ok := details[schema.PositionKey{VenueIndex: e.VenueIndex, InstrumentIndex: e.InstrumentIndex}]; ok {
			leg.entryPrice = d.AvgEntryPrice
			leg.marginHeld = d.MarginHeld.Uint64()
		}
		legs = append(legs, leg)
	}

	var order []schema.Pubkey
	groups := make(map[schema.Pubkey]*nettingGroup, len(legs))

	for _, leg := range legs {
		g, ok := groups[leg.instrument]
		if !ok {
			g = &nettingGroup{
				pos:      NettedPosition{Instrument: leg.instrument},
				weight:   new(big.Int),
				notional: new(big.Int),
			}
			groups[leg.instrument] = g
			order = append(order, leg.instrument)
		}
		absQty := int64(leg.quantity)
		if absQty < 0 {
			absQty = -absQty
		}
		g.pos.NetQuantity += leg.quantity
		g.pos.MarginHeld += leg.marginHeld
		g.pos.Legs++
		g.weight.Add(g.weight, big.NewInt(absQty))
		g.notional.Add(g.notional, new(big.Int).Mul(big.NewInt(absQty), big.NewInt(int64(leg.entryPrice))))
	}

	out := make([]NettedPosition, 0, len(order))
	for _, instr := range order {
		g := groups[instr]
		if g.weight.Sign() > 0 {
			g.pos.AvgEntryPrice = schema.Price(new(big.Int).Quo(g.notional, g.weight).Int64())
		}
		// A flat group carries zero directional risk even when its
		// legs hold margin on both sides.
		if g.pos.NetQuantity != 0 {
			if mark, ok := marks[instr]; ok {
				pnl := new(big.Int).Mul(big.NewInt(int64(g.pos.NetQuantity)), big.NewInt(int64(mark-g.pos.AvgEntryPrice)))
				pnl.Quo(pnl, big.NewInt(schema.PriceScale))
				g.pos.UnrealizedPnl = pnl.Int64()
			}
		}
		out = append(out, g.pos)
	}
	return out, nil
}

// nettingGroup accumulates one instrument's legs. The entry weights
// and notionals are products of two 1e6-scaled values and overflow
// int64 at realistic sizes, so they stay in big.Int until the final
// division.
type nettingGroup struct {
	pos      NettedPosition
	weight   *big.Int
	notional *big.Int
}
