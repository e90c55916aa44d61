package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

func pk(b byte) schema.Pubkey {
	var p schema.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

func twoVenueSnapshot(instrument schema.Pubkey) schema.Snapshot {
	reg := schema.Registry{
		Entries: []schema.RegistryEntry{
			{SlabID: pk(10), OracleID: pk(30), Active: true},
			{SlabID: pk(11), OracleID: pk(31), Active: true},
		},
	}
	slabs := map[schema.Pubkey]schema.Slab{
		pk(10): {Instrument: instrument, MarkPrice: 100_000_000},
		pk(11): {Instrument: instrument, MarkPrice: 100_000_000},
	}
	return schema.NewSnapshot(reg, slabs)
}

func TestNetOppositeLegsFlat(t *testing.T) {
	instr := pk(9)
	p := schema.Portfolio{
		Exposures: []schema.Exposure{
			{VenueIndex: 0, InstrumentIndex: 0, Quantity: 5_000_000},
			{VenueIndex: 1, InstrumentIndex: 0, Quantity: -5_000_000},
		},
	}
	details := map[schema.PositionKey]schema.PositionDetails{
		{VenueIndex: 0, InstrumentIndex: 0}: {AvgEntryPrice: 90_000_000, MarginHeld: schema.Uint128From64(450)},
		{VenueIndex: 1, InstrumentIndex: 0}: {AvgEntryPrice: 110_000_000, MarginHeld: schema.Uint128From64(550)},
	}
	marks := map[schema.Pubkey]schema.Price{instr: 120_000_000}

	netted, err := Net(p, twoVenueSnapshot(instr), details, marks)
	require.NoError(t, err)
	require.Len(t, netted, 1)

	assert.Equal(t, schema.Quantity(0), netted[0].NetQuantity)
	assert.Equal(t, int64(0), netted[0].UnrealizedPnl)
	assert.Equal(t, uint64(1000), netted[0].MarginHeld)
	assert.Equal(t, 2, netted[0].Legs)
}

func TestNetSkipsZeroExposures(t *testing.T) {
	instr := pk(9)
	p := schema.Portfolio{
		Exposures: []schema.Exposure{
			{VenueIndex: 0, InstrumentIndex: 0, Quantity: 0},
			{VenueIndex: 1, InstrumentIndex: 0, Quantity: 3_000_000},
		},
	}
	details := map[schema.PositionKey]schema.PositionDetails{
		{VenueIndex: 1, InstrumentIndex: 0}: {AvgEntryPrice: 100_000_000},
	}

	netted, err := Net(p, twoVenueSnapshot(instr), details, map[schema.Pubkey]schema.Price{instr: 101_000_000})
	require.NoError(t, err)
	require.Len(t, netted, 1)
	assert.Equal(t, schema.Quantity(3_000_000), netted[0].NetQuantity)
	// 3.0 * (101 - 100) = 3.0
	assert.Equal(t, int64(3_000_000), netted[0].UnrealizedPnl)
}

// Entry-weight products of two 1e6-scaled values exceed int64 at
// realistic sizes; 200 units at a 50k entry must still average
// exactly.
func TestNetLargePosition(t *testing.T) {
	instr := pk(9)
	p := schema.Portfolio{
		Exposures: []schema.Exposure{
			{VenueIndex: 0, InstrumentIndex: 0, Quantity: 100_000_000},
			{VenueIndex: 1, InstrumentIndex: 0, Quantity: 100_000_000},
		},
	}
	details := map[schema.PositionKey]schema.PositionDetails{
		{VenueIndex: 0, InstrumentIndex: 0}: {AvgEntryPrice: 50_000_000_000},
		{VenueIndex: 1, InstrumentIndex: 0}: {AvgEntryPrice: 50_000_000_000},
	}
	marks := map[schema.Pubkey]schema.Price{instr: 50_001_000_000}

	netted, err := Net(p, twoVenueSnapshot(instr), details, marks)
	require.NoError(t, err)
	require.Len(t, netted, 1)

	assert.Equal(t, schema.Quantity(200_000_000), netted[0].NetQuantity)
	assert.Equal(t, schema.Price(50_000_000_000), netted[0].AvgEntryPrice)
	// 200 * 0.001 = 0.2 units of price movement.
	assert.Equal(t, int64(200_000_000_000), netted[0].UnrealizedPnl)
}

func TestNetUnknownVenue(t *testing.T) {
	p := schema.Portfolio{
		Exposures: []schema.Exposure{{VenueIndex: 7, Quantity: 1_000_000}},
	}
	_, err := Net(p, twoVenueSnapshot(pk(9)), nil, nil)
	var uve UnknownVenueError
	require.ErrorAs(t, err, &uve)
	assert.Equal(t, uint16(7), uve.VenueIndex)
}

func TestValidateTrade(t *testing.T) {
	// 1000 units of equity, buying 2.0 at 100.0: the notional is 200
	// units in the 1e9 settlement scale.
	plan, err := ValidateTrade(1_000_000_000_000, 2_000_000, 100_000_000, 5)
	require.NoError(t, err)

	assert.Equal(t, schema.Collateral(200_000_000_000), plan.MarginCommitted)
	assert.Equal(t, schema.Collateral(1_000_000_000_000), plan.PositionSize)
	assert.Equal(t, schema.Quantity(10_000_000), plan.ActualQuantity)
	assert.Equal(t, schema.TradeModeMargin, plan.Mode)

	plan, err = ValidateTrade(1_000_000_000_000, 2_000_000, 100_000_000, 1)
	require.NoError(t, err)
	assert.Equal(t, schema.TradeModeSpot, plan.Mode)
}

func TestValidateTradeInsufficientMargin(t *testing.T) {
	_, err := ValidateTrade(100_000_000_000, 2_000_000, 100_000_000, 3)
	require.ErrorIs(t, err, exception.ErrInsufficientMargin)

	var ime InsufficientMarginError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, schema.Collateral(200_000_000_000), ime.Required)
	assert.Equal(t, schema.Collateral(100_000_000_000), ime.Available)
}

// Equity is 1e9-scaled while the notional starts out 1e6-scaled; a
// requirement of 1000 units must not slip past 1 unit of equity.
func TestValidateTradeCrossScale(t *testing.T) {
	_, err := ValidateTrade(1_000_000_000, 10_000_000, 100_000_000, 1)
	require.ErrorIs(t, err, exception.ErrInsufficientMargin)

	var ime InsufficientMarginError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, schema.Collateral(1_000_000_000_000), ime.Required)

	// 1 unit buys 0.01 at price 100.0.
	assert.Equal(t, schema.Quantity(10_000), MaxQuantity(1_000_000_000, 100_000_000))
}

// Bad leverage must fail before the equity check runs; an equity of
// zero with leverage 11 reports the leverage error, not the margin
// one.
func TestValidateTradeLeverageBounds(t *testing.T) {
	for _, leverage := range []uint8{0, 11, 255} {
		_, err := ValidateTrade(0, 1_000_000, 100_000_000, leverage)
		require.ErrorIs(t, err, exception.ErrInvalidLeverage, "leverage %d", leverage)
		require.NotErrorIs(t, err, exception.ErrInsufficientMargin)
	}
}

func TestMaxQuantityLeverageIndependent(t *testing.T) {
	equity := schema.Collateral(5_000_000_000_000)
	price := schema.Price(100_000_000)

	max := MaxQuantity(equity, price)
	assert.Equal(t, schema.Quantity(50_000_000), max)

	for _, leverage := range []uint8{1, 5, 10} {
		plan, err := ValidateTrade(equity, max, price, leverage)
		require.NoError(t, err)
		assert.Equal(t, max*schema.Quantity(leverage), plan.ActualQuantity)
	}
}

func TestConsistent(t *testing.T) {
	p := schema.Portfolio{
		Equity:    schema.Int128From64(1_500),
		Principal: schema.Int128From64(1_000),
		Pnl:       schema.Int128From64(500),
	}
	assert.True(t, Consistent(p))

	p.Pnl = schema.Int128From64(400)
	assert.False(t, Consistent(p))
}

func TestWeightedEntryThenReduce(t *testing.T) {
	d := NewPosition(pk(1), 0, 0, 200_000_000, 10_000_000, 1000, 2_000_000_000, 1)

	require.NoError(t, ApplyFill(&d, 202_000_000, 10_000_000, 0, 1001, 2_020_000_000))
	assert.Equal(t, schema.Price(201_000_000), d.AvgEntryPrice)
	assert.Equal(t, schema.Quantity(20_000_000), d.TotalQty)

	realized, remaining, _, err := ReduceFill(&d, 203_000_000, 15_000_000, 0, 1002)
	require.NoError(t, err)
	// 15 * (203 - 201) = 30
	assert.Equal(t, int64(30_000_000), realized)
	assert.Equal(t, schema.Quantity(5_000_000), remaining)
	assert.Equal(t, schema.Price(201_000_000), d.AvgEntryPrice)
}

func TestReduceShortProfit(t *testing.T) {
	d := NewPosition(pk(1), 0, 0, 50_000_000_000, -2_000_000, 1000, 0, 1)

	realized, remaining, _, err := ReduceFill(&d, 48_000_000_000, 1_000_000, 0, 1001)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000_000), realized)
	assert.Equal(t, schema.Quantity(-1_000_000), remaining)
}

func TestReduceReleasesMargin(t *testing.T) {
	d := NewPosition(pk(1), 0, 0, 100_000_000, 4_000_000, 1000, 1_000_000, 1)

	// Closing half releases half the margin.
	_, _, released, err := ReduceFill(&d, 100_000_000, 2_000_000, 0, 1001)
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), released)
	assert.Equal(t, uint64(500_000), d.MarginHeld.Uint64())

	// Closing the rest releases everything left.
	_, remaining, released, err := ReduceFill(&d, 100_000_000, 2_000_000, 0, 1002)
	require.NoError(t, err)
	assert.Equal(t, schema.Quantity(0), remaining)
	assert.Equal(t, uint64(500_000), released)
	assert.True(t, d.MarginHeld.IsZero())
}

func TestApplyFillDirectionMismatch(t *testing.T) {
	d := NewPosition(pk(1), 0, 0, 100_000_000, 4_000_000, 1000, 0, 1)
	err := ApplyFill(&d, 100_000_000, -1_000_000, 0, 1001, 0)
	require.ErrorIs(t, err, exception.ErrInvalidSide)
}
