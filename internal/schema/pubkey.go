package schema

import "encoding/hex"

// PubkeyLen is the byte length of a ledger account address.
const PubkeyLen = 32

// Pubkey is a 32-byte ledger account address.
type Pubkey [PubkeyLen]byte

// PubkeyFromBytes copies the first 32 bytes of b into a Pubkey.
// It panics if b is shorter than PubkeyLen.
func PubkeyFromBytes(b []byte) Pubkey {
	var pk Pubkey
	copy(pk[:], b[:PubkeyLen])
	return pk
}

// PubkeyFromHex parses a 64-character hex string into a Pubkey.
func PubkeyFromHex(s string) (Pubkey, error) {
	var pk Pubkey
	b, err := hex.DecodeString(s)
	if err != nil {
		return pk, err
	}
	if len(b) != PubkeyLen {
		return pk, hex.ErrLength
	}
	copy(pk[:], b)
	return pk, nil
}

// IsZero reports whether the pubkey is the all-zero address.
func (pk Pubkey) IsZero() bool {
	return pk == Pubkey{}
}

func (pk Pubkey) String() string {
	return hex.EncodeToString(pk[:])
}

// Short returns the first 4 bytes as hex, for log lines.
func (pk Pubkey) Short() string {
	return hex.EncodeToString(pk[:4])
}
