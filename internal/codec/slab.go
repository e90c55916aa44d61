package codec

import (
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// SlabSeqnoOffset is where the slab sequence number sits in the raw
// account bytes. The on-chain router re-reads it at this offset before
// committing a fill, and the gateway cache keys on it.
const SlabSeqnoOffset = 12

const (
	slabQuotesOff    = 144
	slabLevelsOff    = 152
	slabLevelSize    = 16
	slabAskLevelsOff = slabLevelsOff + schema.MaxQuoteLevels*slabLevelSize
)

// PeekSlabSeqno reads the sequence number out of raw slab bytes
// without a full decode.
func PeekSlabSeqno(buf []byte) (uint32, bool) {
	if len(buf) < schema.SlabLen || u64(buf, 0) != schema.SlabMagic {
		return 0, false
	}
	return u32(buf, SlabSeqnoOffset), true
}

// DecodeSlab parses a venue account, header and quote cache.
func DecodeSlab(buf []byte) (schema.Slab, error) {
	if len(buf) < schema.SlabLen {
		return schema.Slab{}, exception.ErrTruncatedRecord
	}
	if u64(buf, 0) != schema.SlabMagic {
		return schema.Slab{}, exception.ErrInvalidDiscriminator
	}

	bidCount := int(buf[slabQuotesOff+4])
	askCount := int(buf[slabQuotesOff+5])
	if bidCount > schema.MaxQuoteLevels || askCount > schema.MaxQuoteLevels {
		return schema.Slab{}, exception.ErrMalformedTag
	}

	s := schema.Slab{
		Version:      u32(buf, 8),
		Seqno:        u32(buf, SlabSeqnoOffset),
		LpOwner:      pubkey(buf, 16),
		Router:       pubkey(buf, 48),
		Instrument:   pubkey(buf, 80),
		MarkPrice:    schema.Price(i64(buf, 112)),
		ContractSize: i64(buf, 120),
		TakerFeeBps:  i64(buf, 128),
		Bump:         buf[136],
		Quotes: schema.QuoteCache{
			Seqno: u32(buf, slabQuotesOff),
			Bids:  make([]schema.QuoteLevel, 0, bidCount),
			Asks:  make([]schema.QuoteLevel, 0, askCount),
		},
	}
	for i := 0; i < bidCount; i++ {
		off := slabLevelsOff + i*slabLevelSize
		s.Quotes.Bids = append(s.Quotes.Bids, schema.QuoteLevel{
			Price:    schema.Price(i64(buf, off)),
			AvailQty: schema.Quantity(i64(buf, off+8)),
		})
	}
	for i := 0; i < askCount; i++ {
		off := slabAskLevelsOff + i*slabLevelSize
		s.Quotes.Asks = append(s.Quotes.Asks, schema.QuoteLevel{
			Price:    schema.Price(i64(buf, off)),
			AvailQty: schema.Quantity(i64(buf, off+8)),
		})
	}
	return s, nil
}

// EncodeSlab serializes a venue account.
func EncodeSlab(dst []byte, s schema.Slab) []byte {
	dst = sized(dst, schema.SlabLen)

	putU64(dst, 0, schema.SlabMagic)
	putU32(dst, 8, s.Version)
	putU32(dst, SlabSeqnoOffset, s.Seqno)
	putPubkey(dst, 16, s.LpOwner)
	putPubkey(dst, 48, s.Router)
	putPubkey(dst, 80, s.Instrument)
	putI64(dst, 112, int64(s.MarkPrice))
	putI64(dst, 120, s.ContractSize)
	putI64(dst, 128, s.TakerFeeBps)
	dst[136] = s.Bump

	putU32(dst, slabQuotesOff, s.Quotes.Seqno)
	dst[slabQuotesOff+4] = uint8(len(s.Quotes.Bids))
	dst[slabQuotesOff+5] = uint8(len(s.Quotes.Asks))
	for i, l := range s.Quotes.Bids {
		off := slabLevelsOff + i*slabLevelSize
		putI64(dst, off, int64(l.Price))
		putI64(dst, off+8, int64(l.AvailQty))
	}
	for i, l := range s.Quotes.Asks {
		off := slabAskLevelsOff + i*slabLevelSize
		putI64(dst, off, int64(l.Price))
		putI64(dst, off+8, int64(l.AvailQty))
	}
	return dst
}
