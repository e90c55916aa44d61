package gateway

import (
	"context"

	"slabtrader/internal/schema"
)

// Gateway is the ledger access surface the engine consumes. Reads are
// the only operation the trading logic performs itself; signed
// transactions come from an external signing layer and pass through
// SubmitTransaction untouched.
type Gateway interface {
	ReadAccount(ctx context.Context, address schema.Pubkey) ([]byte, error)
	SubmitTransaction(ctx context.Context, signed []byte) (string, error)
}
