package router

import (
	"fmt"
	"sort"

	"slabtrader/internal/aggregator"
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// InsufficientLiquidityError reports that the quoted depth cannot
// cover the requested quantity. Remaining carries the unfilled part.
type InsufficientLiquidityError struct {
	Requested schema.Quantity
	Available schema.Quantity
	Remaining schema.Quantity
	BestPrice schema.Price
}

func (e InsufficientLiquidityError) Error() string {
	return fmt.Sprintf("trade: requested %d but only %d available (best price %d)",
		e.Requested, e.Available, e.BestPrice)
}

func (e InsufficientLiquidityError) Is(target error) bool {
	return target == exception.ErrInsufficientLiquidity
}

// Fill is one leg of an execution plan.
type Fill struct {
	Venue    schema.VenueRef
	Price    schema.Price
	Quantity schema.Quantity
}

func topLevel(q aggregator.Quote, side schema.Side) (schema.QuoteLevel, bool) {
	levels := q.Slab.Quotes.Asks
	if side == schema.SideSell {
		levels = q.Slab.Quotes.Bids
	}
	for _, l := range levels {
		if l.AvailQty > 0 {
			return l, true
		}
	}
	return schema.QuoteLevel{}, false
}

func better(price, best schema.Price, side schema.Side) bool {
	if side == schema.SideBuy {
		return price < best
	}
	return price > best
}

// FindBestVenue picks the single venue with the best top-of-book
// price for the full quantity. Ties go to the deeper venue, then to
// input order. A winner without enough depth is an
// InsufficientLiquidityError.
func FindBestVenue(quotes []aggregator.Quote, side schema.Side, qty schema.Quantity) (Fill, error) {
	if !side.Valid() {
		return Fill{}, exception.ErrInvalidSide
	}
	if qty <= 0 {
		return Fill{}, exception.ErrInvalidQuantity
	}

	bestIdx := -1
	var best schema.QuoteLevel
	for i, q := range quotes {
		level, ok := topLevel(q, side)
		if !ok {
			continue
		}
		if bestIdx < 0 || better(level.Price, best.Price, side) ||
			(level.Price == best.Price && level.AvailQty > best.AvailQty) {
			bestIdx = i
			best = level
		}
	}
	if bestIdx < 0 {
		return Fill{}, exception.ErrNoLiquidity
	}
	if best.AvailQty < qty {
		return Fill{}, InsufficientLiquidityError{
			Requested: qty,
			Available: best.AvailQty,
			Remaining: qty - best.AvailQty,
			BestPrice: best.Price,
		}
	}
	return Fill{Venue: quotes[bestIdx].Venue, Price: best.Price, Quantity: qty}, nil
}

type flatLevel struct {
	venueIdx int
	level    schema.QuoteLevel
}

// BuildOptimalSplit allocates qty across all venues' levels from best
// price outward and returns the ordered fills. When aggregate depth
// falls short the error carries the remainder.
func BuildOptimalSplit(quotes []aggregator.Quote, side schema.Side, qty schema.Quantity) ([]Fill, error) {
	if !side.Valid() {
		return nil, exception.ErrInvalidSide
	}
	if qty <= 0 {
		return nil, exception.ErrInvalidQuantity
	}

	var flat []flatLevel
	for i, q := range quotes {
		levels := q.Slab.Quotes.Asks
		if side == schema.SideSell {
			levels = q.Slab.Quotes.Bids
		}
		for _, l := range levels {
			if l.AvailQty > 0 {
				flat = append(flat, flatLevel{venueIdx: i, level: l})
			}
		}
	}
	if len(flat) == 0 {
		return nil, exception.ErrNoLiquidity
	}

	// Stable keeps input venue order on equal prices.
	sort.SliceStable(flat, func(a, b int) bool {
		return better(flat[a].level.Price, flat[b].level.Price, side)
	})

	var fills []Fill
	var total schema.Quantity
	remaining := qty
	for _, fl := range flat {
		total += fl.level.AvailQty
		if remaining <= 0 {
			continue
		}
		take := fl.level.AvailQty
		if take > remaining {
			take = remaining
		}
		fills = append(fills, Fill{
			Venue:    quotes[fl.venueIdx].Venue,
			Price:    fl.level.Price,
			Quantity: take,
		})
		remaining -= take
	}
	if remaining > 0 {
		return nil, InsufficientLiquidityError{
			Requested: qty,
			Available: total,
			Remaining: remaining,
			BestPrice: flat[0].level.Price,
		}
	}
	return fills, nil
}
