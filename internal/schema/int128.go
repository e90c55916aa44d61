package schema

import "math/big"

// Int128 is a signed 128-bit wire value stored as two little-endian
// 64-bit words. Hi carries the sign.
type Int128 struct {
	Lo uint64
	Hi int64
}

// Int128From64 widens a signed 64-bit value.
func Int128From64(v int64) Int128 {
	i := Int128{Lo: uint64(v)}
	if v < 0 {
		i.Hi = -1
	}
	return i
}

// Int64 narrows to the low word. Values produced by the ledger for
// client-facing fields fit in 64 bits; callers needing full range use
// BigInt.
func (i Int128) Int64() int64 {
	return int64(i.Lo)
}

// IsNegative reports whether the value is below zero.
func (i Int128) IsNegative() bool {
	return i.Hi < 0
}

// BigInt returns the full 128-bit value.
func (i Int128) BigInt() *big.Int {
	hi := new(big.Int).Lsh(big.NewInt(i.Hi), 64)
	return hi.Add(hi, new(big.Int).SetUint64(i.Lo))
}

var wordMask = new(big.Int).SetUint64(^uint64(0))

// Int128FromBig truncates v to its low 128 bits, two's complement.
func Int128FromBig(v *big.Int) Int128 {
	mag := new(big.Int).Abs(v)
	lo := new(big.Int).And(mag, wordMask).Uint64()
	hi := new(big.Int).Rsh(mag, 64).Uint64()
	if v.Sign() < 0 {
		lo = ^lo + 1
		hi = ^hi
		if lo == 0 {
			hi++
		}
	}
	return Int128{Lo: lo, Hi: int64(hi)}
}

// Uint128 is an unsigned 128-bit wire value stored as two
// little-endian 64-bit words.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Uint128From64 widens an unsigned 64-bit value.
func Uint128From64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Uint64 narrows to the low word.
func (u Uint128) Uint64() uint64 {
	return u.Lo
}

// IsZero reports whether both words are zero.
func (u Uint128) IsZero() bool {
	return u.Lo == 0 && u.Hi == 0
}

// BigInt returns the full 128-bit value.
func (u Uint128) BigInt() *big.Int {
	hi := new(big.Int).Lsh(new(big.Int).SetUint64(u.Hi), 64)
	return hi.Add(hi, new(big.Int).SetUint64(u.Lo))
}

// Uint128FromBig truncates a non-negative v to its low 128 bits.
func Uint128FromBig(v *big.Int) Uint128 {
	return Uint128{
		Lo: new(big.Int).And(v, wordMask).Uint64(),
		Hi: new(big.Int).Rsh(v, 64).Uint64(),
	}
}
