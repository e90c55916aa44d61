package codec

import (
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// RecordKind identifies an account record by its magic.
type RecordKind string

const (
	KindPortfolio       RecordKind = "portfolio"
	KindRegistry        RecordKind = "registry"
	KindVault           RecordKind = "vault"
	KindSlab            RecordKind = "slab"
	KindOracle          RecordKind = "oracle"
	KindPositionDetails RecordKind = "position-details"
)

// Sniff identifies the record kind from raw account bytes without
// decoding the body.
func Sniff(buf []byte) (RecordKind, error) {
	if len(buf) >= 8 {
		switch u64(buf, 0) {
		case schema.PortfolioMagic:
			return KindPortfolio, nil
		case schema.RegistryMagic:
			return KindRegistry, nil
		case schema.VaultMagic:
			return KindVault, nil
		case schema.SlabMagic:
			return KindSlab, nil
		case schema.PositionDetailsMagic:
			return KindPositionDetails, nil
		}
	}
	if len(buf) >= 4 {
		switch u32(buf, 0) {
		case schema.NativeOracleMagic, schema.VendorOracleMagic:
			return KindOracle, nil
		}
	}
	if len(buf) < 8 {
		return "", exception.ErrTruncatedRecord
	}
	return "", exception.ErrUnknownRecordKind
}
