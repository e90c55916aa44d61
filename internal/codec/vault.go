package codec

import (
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// DecodeVault parses the router's collateral vault account.
func DecodeVault(buf []byte) (schema.Vault, error) {
	if len(buf) < schema.VaultLen {
		return schema.Vault{}, exception.ErrTruncatedRecord
	}
	if u64(buf, 0) != schema.VaultMagic {
		return schema.Vault{}, exception.ErrInvalidDiscriminator
	}
	return schema.Vault{
		Router:           pubkey(buf, 8),
		InsuranceBalance: u128(buf, 40),
		TotalDeposits:    u128(buf, 56),
		Bump:             buf[72],
	}, nil
}

// EncodeVault serializes a collateral vault account.
func EncodeVault(dst []byte, v schema.Vault) []byte {
	dst = sized(dst, schema.VaultLen)

	putU64(dst, 0, schema.VaultMagic)
	putPubkey(dst, 8, v.Router)
	putU128(dst, 40, v.InsuranceBalance)
	putU128(dst, 56, v.TotalDeposits)
	dst[72] = v.Bump
	return dst
}
