package router

import (
	"slabtrader/internal/codec"
	"slabtrader/internal/schema"
)

// PlanAccounts carries the execution-wide accounts the instruction
// builder cannot derive from the fills themselves. Per-venue receipt
// and position addresses are resolved by the caller in fill order.
type PlanAccounts struct {
	Portfolio    schema.Pubkey
	User         schema.Pubkey
	Counterparty schema.Pubkey
	Registry     schema.Pubkey
	Authority    schema.Pubkey
	System       schema.Pubkey
	SlabProgram  schema.Pubkey

	Receipts  []schema.Pubkey
	Positions []schema.Pubkey
}

// SplitToInstruction bridges a fill plan to the cross-slab execution
// instruction. Each fill becomes one leg, limit-priced at its quoted
// level.
func SplitToInstruction(program schema.Pubkey, plan []Fill, side schema.Side, orderType schema.OrderType, leverage uint8, acc PlanAccounts) (schema.Instruction, error) {
	splits := make([]codec.SplitLeg, 0, len(plan))
	slabs := make([]schema.Pubkey, 0, len(plan))
	oracles := make([]schema.Pubkey, 0, len(plan))
	for _, f := range plan {
		splits = append(splits, codec.SplitLeg{
			Side:    side,
			Qty:     f.Quantity,
			LimitPx: f.Price,
		})
		slabs = append(slabs, f.Venue.SlabID)
		oracles = append(oracles, f.Venue.OracleID)
	}
	return codec.ExecuteCrossSlab(program, codec.CrossSlabAccounts{
		Portfolio:    acc.Portfolio,
		User:         acc.User,
		Counterparty: acc.Counterparty,
		Registry:     acc.Registry,
		Authority:    acc.Authority,
		System:       acc.System,
		SlabProgram:  acc.SlabProgram,
		Slabs:        slabs,
		Receipts:     acc.Receipts,
		Oracles:      oracles,
		Positions:    acc.Positions,
	}, splits, orderType, leverage)
}
