package codec

import (
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// Vendor oracle exponents outside this range cannot be normalized to
// the 1e6 price scale without overflow risk.
const (
	minVendorExponent = -12
	maxVendorExponent = 0
)

var pow10 = [...]int64{1, 10, 100, 1_000, 10_000, 100_000, 1_000_000}

// DecodeOracle parses a price oracle account, auto-detecting the
// native and vendor formats by magic. The result is normalized to the
// 1e6 price scale and tagged Stale when the observation is older than
// maxAge seconds relative to now.
func DecodeOracle(buf []byte, now, maxAge int64) (schema.Oracle, error) {
	if len(buf) < 4 {
		return schema.Oracle{}, exception.ErrTruncatedRecord
	}
	switch u32(buf, 0) {
	case schema.NativeOracleMagic:
		return decodeNativeOracle(buf, now, maxAge)
	case schema.VendorOracleMagic:
		return decodeVendorOracle(buf, now, maxAge)
	default:
		return schema.Oracle{}, exception.ErrInvalidDiscriminator
	}
}

func decodeNativeOracle(buf []byte, now, maxAge int64) (schema.Oracle, error) {
	if len(buf) < schema.NativeOracleLen {
		return schema.Oracle{}, exception.ErrTruncatedRecord
	}
	ts := i64(buf, 80)
	return schema.Oracle{
		Instrument: pubkey(buf, 40),
		Price:      schema.Price(i64(buf, 72)),
		Timestamp:  ts,
		Confidence: u64(buf, 88),
		Stale:      now-ts > maxAge,
	}, nil
}

func decodeVendorOracle(buf []byte, now, maxAge int64) (schema.Oracle, error) {
	if len(buf) < schema.VendorOracleLen {
		return schema.Oracle{}, exception.ErrTruncatedRecord
	}
	exponent := int32(u32(buf, 8))
	if exponent < minVendorExponent || exponent > maxVendorExponent {
		return schema.Oracle{}, exception.ErrMalformedTag
	}

	// rawPrice is 10^-exponent scaled; shift to the common 1e6 scale.
	raw := i64(buf, 48)
	shift := 6 + int(exponent)
	var px int64
	if shift >= 0 {
		px = raw * pow10[shift]
	} else {
		px = raw / pow10[-shift]
	}

	ts := i64(buf, 64)
	return schema.Oracle{
		Instrument: pubkey(buf, 16),
		Price:      schema.Price(px),
		Timestamp:  ts,
		Confidence: u64(buf, 56),
		Stale:      now-ts > maxAge,
	}, nil
}

// EncodeNativeOracle serializes a native-format oracle account.
func EncodeNativeOracle(dst []byte, o schema.Oracle, authority schema.Pubkey) []byte {
	dst = sized(dst, schema.NativeOracleLen)

	putU32(dst, 0, schema.NativeOracleMagic)
	dst[4] = 1 // version
	putPubkey(dst, 8, authority)
	putPubkey(dst, 40, o.Instrument)
	putI64(dst, 72, int64(o.Price))
	putI64(dst, 80, o.Timestamp)
	putU64(dst, 88, o.Confidence)
	return dst
}

// EncodeVendorOracle serializes a vendor-format oracle account with
// the given raw price and exponent.
func EncodeVendorOracle(dst []byte, instrument schema.Pubkey, rawPrice int64, exponent int32, confidence uint64, publishTs int64) []byte {
	dst = sized(dst, schema.VendorOracleLen)

	putU32(dst, 0, schema.VendorOracleMagic)
	putU32(dst, 4, 2) // version
	putU32(dst, 8, uint32(exponent))
	putPubkey(dst, 16, instrument)
	putI64(dst, 48, rawPrice)
	putU64(dst, 56, confidence)
	putI64(dst, 64, publishTs)
	return dst
}
