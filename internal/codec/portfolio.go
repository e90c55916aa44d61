package codec

import (
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

const (
	portfolioExposuresOff = 288
	portfolioExposureSize = 12
	portfolioBucketsOff   = 480
	portfolioBucketSize   = 74
)

// DecodePortfolio parses a cross-margined portfolio account.
func DecodePortfolio(buf []byte) (schema.Portfolio, error) {
	if len(buf) < schema.PortfolioLen {
		return schema.Portfolio{}, exception.ErrTruncatedRecord
	}
	if u64(buf, 0) != schema.PortfolioMagic {
		return schema.Portfolio{}, exception.ErrInvalidDiscriminator
	}

	exposureCount := int(u16(buf, 280))
	bucketCount := int(u16(buf, 282))
	if exposureCount > schema.MaxExposures || bucketCount > schema.MaxLpBuckets {
		return schema.Portfolio{}, exception.ErrMalformedTag
	}

	p := schema.Portfolio{
		User:               pubkey(buf, 8),
		Router:             pubkey(buf, 40),
		Equity:             i128(buf, 72),
		InitialMargin:      u128(buf, 88),
		MaintenanceMargin:  u128(buf, 104),
		FreeCollateral:     i128(buf, 120),
		Health:             i128(buf, 136),
		Bump:               buf[152],
		LastLiquidationTs:  i64(buf, 160),
		LiquidationPrice:   schema.Price(i64(buf, 168)),
		InsuranceDebt:      i128(buf, 176),
		Principal:          i128(buf, 200),
		Pnl:                i128(buf, 216),
		VestedPnl:          i128(buf, 232),
		PnlIndexCheckpoint: i128(buf, 248),
		LastSlot:           u64(buf, 264),
	}

	p.Exposures = make([]schema.Exposure, 0, exposureCount)
	for i := 0; i < exposureCount; i++ {
		off := portfolioExposuresOff + i*portfolioExposureSize
		p.Exposures = append(p.Exposures, schema.Exposure{
			VenueIndex:      u16(buf, off),
			InstrumentIndex: u16(buf, off+2),
			Quantity:        schema.Quantity(i64(buf, off+4)),
		})
	}

	p.LpBuckets = make([]schema.LpBucket, 0, bucketCount)
	for i := 0; i < bucketCount; i++ {
		off := portfolioBucketsOff + i*portfolioBucketSize
		b, err := decodeLpBucket(buf, off)
		if err != nil {
			return schema.Portfolio{}, err
		}
		p.LpBuckets = append(p.LpBuckets, b)
	}

	return p, nil
}

// decodeLpBucket reads one bucket slot. An absent slot (tag 0) still
// occupies the full 74-byte region, so later offsets stay aligned.
func decodeLpBucket(buf []byte, off int) (schema.LpBucket, error) {
	tag := buf[off]
	if tag > 1 {
		return schema.LpBucket{}, exception.ErrMalformedTag
	}
	b := schema.LpBucket{Present: tag == 1}
	if !b.Present {
		return b, nil
	}

	b.Market = pubkey(buf, off+1)
	b.Shares = u64(buf, off+33)
	b.ReservedQuote = u64(buf, off+41)
	b.ReservedBase = u64(buf, off+49)

	burnTag := buf[off+57]
	if burnTag > 1 {
		return schema.LpBucket{}, exception.ErrMalformedTag
	}
	if burnTag == 1 {
		b.HasPendingBurn = true
		b.PendingBurnAmount = u128(buf, off+58)
	}
	return b, nil
}

// EncodePortfolio serializes a portfolio account, mainly for fixtures
// and round-trip tests.
func EncodePortfolio(dst []byte, p schema.Portfolio) []byte {
	dst = sized(dst, schema.PortfolioLen)

	putU64(dst, 0, schema.PortfolioMagic)
	putPubkey(dst, 8, p.User)
	putPubkey(dst, 40, p.Router)
	putI128(dst, 72, p.Equity)
	putU128(dst, 88, p.InitialMargin)
	putU128(dst, 104, p.MaintenanceMargin)
	putI128(dst, 120, p.FreeCollateral)
	putI128(dst, 136, p.Health)
	dst[152] = p.Bump
	putI64(dst, 160, p.LastLiquidationTs)
	putI64(dst, 168, int64(p.LiquidationPrice))
	putI128(dst, 176, p.InsuranceDebt)
	putI128(dst, 200, p.Principal)
	putI128(dst, 216, p.Pnl)
	putI128(dst, 232, p.VestedPnl)
	putI128(dst, 248, p.PnlIndexCheckpoint)
	putU64(dst, 264, p.LastSlot)
	putU16(dst, 280, uint16(len(p.Exposures)))
	putU16(dst, 282, uint16(len(p.LpBuckets)))

	for i, e := range p.Exposures {
		off := portfolioExposuresOff + i*portfolioExposureSize
		putU16(dst, off, e.VenueIndex)
		putU16(dst, off+2, e.InstrumentIndex)
		putI64(dst, off+4, int64(e.Quantity))
	}
	for i, b := range p.LpBuckets {
		off := portfolioBucketsOff + i*portfolioBucketSize
		if !b.Present {
			continue
		}
		dst[off] = 1
		putPubkey(dst, off+1, b.Market)
		putU64(dst, off+33, b.Shares)
		putU64(dst, off+41, b.ReservedQuote)
		putU64(dst, off+49, b.ReservedBase)
		if b.HasPendingBurn {
			dst[off+57] = 1
			putU128(dst, off+58, b.PendingBurnAmount)
		}
	}
	return dst
}
