package codec

import (
	"encoding/binary"

	"slabtrader/internal/schema"
)

// Fixed-offset read helpers. Callers are responsible for length checks.

func u16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

func u32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

func u64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

func i64(b []byte, off int) int64 {
	return int64(binary.LittleEndian.Uint64(b[off : off+8]))
}

func i128(b []byte, off int) schema.Int128 {
	return schema.Int128{
		Lo: binary.LittleEndian.Uint64(b[off : off+8]),
		Hi: int64(binary.LittleEndian.Uint64(b[off+8 : off+16])),
	}
}

func u128(b []byte, off int) schema.Uint128 {
	return schema.Uint128{
		Lo: binary.LittleEndian.Uint64(b[off : off+8]),
		Hi: binary.LittleEndian.Uint64(b[off+8 : off+16]),
	}
}

func pubkey(b []byte, off int) schema.Pubkey {
	var pk schema.Pubkey
	copy(pk[:], b[off:off+schema.PubkeyLen])
	return pk
}

func putU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

func putU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

func putU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

func putI64(b []byte, off int, v int64) {
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(v))
}

func putI128(b []byte, off int, v schema.Int128) {
	binary.LittleEndian.PutUint64(b[off:off+8], v.Lo)
	binary.LittleEndian.PutUint64(b[off+8:off+16], uint64(v.Hi))
}

func putU128(b []byte, off int, v schema.Uint128) {
	binary.LittleEndian.PutUint64(b[off:off+8], v.Lo)
	binary.LittleEndian.PutUint64(b[off+8:off+16], v.Hi)
}

func putPubkey(b []byte, off int, pk schema.Pubkey) {
	copy(b[off:off+schema.PubkeyLen], pk[:])
}

func sized(dst []byte, n int) []byte {
	if cap(dst) < n {
		return make([]byte, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = 0
	}
	return dst
}
