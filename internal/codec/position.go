package codec

import (
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// DecodePositionDetails parses a per-venue position account.
func DecodePositionDetails(buf []byte) (schema.PositionDetails, error) {
	if len(buf) < schema.PositionDetailsLen {
		return schema.PositionDetails{}, exception.ErrTruncatedRecord
	}
	if u64(buf, 0) != schema.PositionDetailsMagic {
		return schema.PositionDetails{}, exception.ErrInvalidDiscriminator
	}
	return schema.PositionDetails{
		Portfolio:       pubkey(buf, 8),
		VenueIndex:      u16(buf, 40),
		InstrumentIndex: u16(buf, 42),
		Bump:            buf[44],
		AvgEntryPrice:   schema.Price(i64(buf, 48)),
		TotalQty:        schema.Quantity(i64(buf, 56)),
		RealizedPnl:     i128(buf, 64),
		TotalFees:       i128(buf, 80),
		TradeCount:      u32(buf, 96),
		LastUpdateTs:    i64(buf, 104),
		MarginHeld:      u128(buf, 112),
		Leverage:        buf[128],
	}, nil
}

// EncodePositionDetails serializes a per-venue position account.
func EncodePositionDetails(dst []byte, d schema.PositionDetails) []byte {
	dst = sized(dst, schema.PositionDetailsLen)

	putU64(dst, 0, schema.PositionDetailsMagic)
	putPubkey(dst, 8, d.Portfolio)
	putU16(dst, 40, d.VenueIndex)
	putU16(dst, 42, d.InstrumentIndex)
	dst[44] = d.Bump
	putI64(dst, 48, int64(d.AvgEntryPrice))
	putI64(dst, 56, int64(d.TotalQty))
	putI128(dst, 64, d.RealizedPnl)
	putI128(dst, 80, d.TotalFees)
	putU32(dst, 96, d.TradeCount)
	putI64(dst, 104, d.LastUpdateTs)
	putU128(dst, 112, d.MarginHeld)
	dst[128] = d.Leverage
	return dst
}
