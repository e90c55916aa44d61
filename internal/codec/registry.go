package codec

import (
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

const (
	registryEntriesOff = 88
	registryEntrySize  = 72
)

// DecodeRegistry parses the router's venue registry account.
func DecodeRegistry(buf []byte) (schema.Registry, error) {
	if len(buf) < schema.RegistryLen {
		return schema.Registry{}, exception.ErrTruncatedRecord
	}
	if u64(buf, 0) != schema.RegistryMagic {
		return schema.Registry{}, exception.ErrInvalidDiscriminator
	}

	count := int(u16(buf, 80))
	if count > schema.MaxRegistryEntries {
		return schema.Registry{}, exception.ErrMalformedTag
	}

	r := schema.Registry{
		Router:     pubkey(buf, 8),
		Governance: pubkey(buf, 40),
		Bump:       buf[72],
		Entries:    make([]schema.RegistryEntry, 0, count),
	}
	for i := 0; i < count; i++ {
		off := registryEntriesOff + i*registryEntrySize
		active := buf[off+68]
		if active > 1 {
			return schema.Registry{}, exception.ErrMalformedTag
		}
		r.Entries = append(r.Entries, schema.RegistryEntry{
			SlabID:            pubkey(buf, off),
			OracleID:          pubkey(buf, off+32),
			InitialMarginBps:  u16(buf, off+64),
			MaintenanceMargin: u16(buf, off+66),
			Active:            active == 1,
		})
	}
	return r, nil
}

// EncodeRegistry serializes a venue registry account.
func EncodeRegistry(dst []byte, r schema.Registry) []byte {
	dst = sized(dst, schema.RegistryLen)

	putU64(dst, 0, schema.RegistryMagic)
	putPubkey(dst, 8, r.Router)
	putPubkey(dst, 40, r.Governance)
	dst[72] = r.Bump
	putU16(dst, 80, uint16(len(r.Entries)))

	for i, e := range r.Entries {
		off := registryEntriesOff + i*registryEntrySize
		putPubkey(dst, off, e.SlabID)
		putPubkey(dst, off+32, e.OracleID)
		putU16(dst, off+64, e.InitialMarginBps)
		putU16(dst, off+66, e.MaintenanceMargin)
		if e.Active {
			dst[off+68] = 1
		}
	}
	return dst
}
