package codec

import (
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

// Router program instruction discriminators.
const (
	RouterInitializeRegistry  = 0
	RouterInitializePortfolio = 1
	RouterDeposit             = 2
	RouterWithdraw            = 3
	RouterExecuteCrossSlab    = 4
	RouterLiquidateUser       = 5
	RouterBurnLpShares        = 6
	RouterCancelLpOrders      = 7
)

// Slab program instruction discriminators.
const (
	SlabCommitFill = 1
)

const crossSlabSplitSize = 17

// The cancel handler reads order ids into a fixed stack buffer.
const maxCancelOrders = 16

// SplitLeg is one per-venue leg of a cross-slab execution.
type SplitLeg struct {
	Side    schema.Side
	Qty     schema.Quantity
	LimitPx schema.Price
}

func meta(pk schema.Pubkey, signer, writable bool) schema.AccountMeta {
	return schema.AccountMeta{Pubkey: pk, Signer: signer, Writable: writable}
}

// InitializeRegistry builds the instruction creating the venue
// registry under the given governance authority.
func InitializeRegistry(program, registry, payer, system, governance schema.Pubkey) schema.Instruction {
	data := make([]byte, 1+schema.PubkeyLen)
	data[0] = RouterInitializeRegistry
	putPubkey(data, 1, governance)
	return schema.Instruction{
		ProgramID: program,
		Accounts: []schema.AccountMeta{
			meta(registry, false, true),
			meta(payer, true, true),
			meta(system, false, false),
		},
		Data: data,
	}
}

// InitializePortfolio builds the instruction creating a portfolio
// account for the given user.
func InitializePortfolio(program, portfolio, payer, system, user schema.Pubkey) schema.Instruction {
	data := make([]byte, 1+schema.PubkeyLen)
	data[0] = RouterInitializePortfolio
	putPubkey(data, 1, user)
	return schema.Instruction{
		ProgramID: program,
		Accounts: []schema.AccountMeta{
			meta(portfolio, false, true),
			meta(payer, true, true),
			meta(system, false, false),
		},
		Data: data,
	}
}

// Deposit builds a collateral deposit instruction. amount is in the
// 1e9 settlement scale.
func Deposit(program, portfolio, vault, owner schema.Pubkey, amount uint64) schema.Instruction {
	data := make([]byte, 9)
	data[0] = RouterDeposit
	putU64(data, 1, amount)
	return schema.Instruction{
		ProgramID: program,
		Accounts: []schema.AccountMeta{
			meta(portfolio, false, true),
			meta(vault, false, true),
			meta(owner, true, true),
		},
		Data: data,
	}
}

// Withdraw builds a collateral withdrawal instruction. amount is in
// the 1e9 settlement scale.
func Withdraw(program, portfolio, vault, owner schema.Pubkey, amount uint64) schema.Instruction {
	data := make([]byte, 9)
	data[0] = RouterWithdraw
	putU64(data, 1, amount)
	return schema.Instruction{
		ProgramID: program,
		Accounts: []schema.AccountMeta{
			meta(portfolio, false, true),
			meta(vault, false, true),
			meta(owner, true, true),
		},
		Data: data,
	}
}

// CrossSlabAccounts carries the account list for ExecuteCrossSlab in
// the order the on-chain handler expects: seven base accounts, then
// one slab, receipt, oracle and position account per leg.
type CrossSlabAccounts struct {
	Portfolio    schema.Pubkey
	User         schema.Pubkey
	Counterparty schema.Pubkey
	Registry     schema.Pubkey
	Authority    schema.Pubkey
	System       schema.Pubkey
	SlabProgram  schema.Pubkey

	Slabs     []schema.Pubkey
	Receipts  []schema.Pubkey
	Oracles   []schema.Pubkey
	Positions []schema.Pubkey
}

// ExecuteCrossSlab builds the atomic multi-venue execution
// instruction. The leverage byte rides in the payload so the handler
// does not depend on account-derived defaults.
func ExecuteCrossSlab(program schema.Pubkey, acc CrossSlabAccounts, splits []SplitLeg, orderType schema.OrderType, leverage uint8) (schema.Instruction, error) {
	if len(splits) == 0 || len(splits) > 255 {
		return schema.Instruction{}, exception.ErrInvalidQuantity
	}
	if !orderType.Valid() {
		return schema.Instruction{}, exception.ErrMalformedTag
	}
	if len(acc.Slabs) != len(splits) || len(acc.Receipts) != len(splits) ||
		len(acc.Oracles) != len(splits) || len(acc.Positions) != len(splits) {
		return schema.Instruction{}, exception.ErrTruncatedRecord
	}

	data := make([]byte, 4+len(splits)*crossSlabSplitSize)
	data[0] = RouterExecuteCrossSlab
	data[1] = uint8(len(splits))
	data[2] = uint8(orderType)
	data[3] = leverage
	for i, s := range splits {
		if !s.Side.Valid() {
			return schema.Instruction{}, exception.ErrInvalidSide
		}
		off := 4 + i*crossSlabSplitSize
		data[off] = uint8(s.Side)
		putI64(data, off+1, int64(s.Qty))
		putI64(data, off+9, int64(s.LimitPx))
	}

	metas := []schema.AccountMeta{
		meta(acc.Portfolio, false, true),
		meta(acc.User, true, false),
		meta(acc.Counterparty, false, true),
		meta(acc.Registry, false, false),
		meta(acc.Authority, false, false),
		meta(acc.System, false, false),
		meta(acc.SlabProgram, false, false),
	}
	for _, pk := range acc.Slabs {
		metas = append(metas, meta(pk, false, true))
	}
	for _, pk := range acc.Receipts {
		metas = append(metas, meta(pk, false, true))
	}
	for _, pk := range acc.Oracles {
		metas = append(metas, meta(pk, false, false))
	}
	for _, pk := range acc.Positions {
		metas = append(metas, meta(pk, false, true))
	}

	return schema.Instruction{ProgramID: program, Accounts: metas, Data: data}, nil
}

// DecodeExecuteCrossSlab parses an ExecuteCrossSlab payload back into
// its legs.
func DecodeExecuteCrossSlab(data []byte) (splits []SplitLeg, orderType schema.OrderType, leverage uint8, err error) {
	if len(data) < 4 {
		return nil, 0, 0, exception.ErrTruncatedRecord
	}
	if data[0] != RouterExecuteCrossSlab {
		return nil, 0, 0, exception.ErrInvalidDiscriminator
	}
	n := int(data[1])
	orderType = schema.OrderType(data[2])
	leverage = data[3]
	if !orderType.Valid() {
		return nil, 0, 0, exception.ErrMalformedTag
	}
	if len(data) < 4+n*crossSlabSplitSize {
		return nil, 0, 0, exception.ErrTruncatedRecord
	}
	splits = make([]SplitLeg, 0, n)
	for i := 0; i < n; i++ {
		off := 4 + i*crossSlabSplitSize
		side := schema.Side(data[off])
		if !side.Valid() {
			return nil, 0, 0, exception.ErrInvalidSide
		}
		splits = append(splits, SplitLeg{
			Side:    side,
			Qty:     schema.Quantity(i64(data, off+1)),
			LimitPx: schema.Price(i64(data, off+9)),
		})
	}
	return splits, orderType, leverage, nil
}

// CommitFill builds the slab-program fill instruction. expectedSeqno
// is the sequence number observed at read time; the handler rejects
// the fill if the slab moved since. The oracle rides as the fourth
// account for the handler's price check.
func CommitFill(program, slab, receipt, authority, oracle schema.Pubkey, expectedSeqno uint32, orderType schema.OrderType, side schema.Side, qty schema.Quantity, limitPx schema.Price) (schema.Instruction, error) {
	if !side.Valid() {
		return schema.Instruction{}, exception.ErrInvalidSide
	}
	if !orderType.Valid() {
		return schema.Instruction{}, exception.ErrMalformedTag
	}
	data := make([]byte, 23)
	data[0] = SlabCommitFill
	putU32(data, 1, expectedSeqno)
	data[5] = uint8(orderType)
	data[6] = uint8(side)
	putI64(data, 7, int64(qty))
	putI64(data, 15, int64(limitPx))
	return schema.Instruction{
		ProgramID: program,
		Accounts: []schema.AccountMeta{
			meta(slab, false, true),
			meta(receipt, false, true),
			meta(authority, true, false),
			meta(oracle, false, false),
		},
		Data: data,
	}, nil
}

// DecodeCommitFill parses a CommitFill payload.
func DecodeCommitFill(data []byte) (expectedSeqno uint32, orderType schema.OrderType, side schema.Side, qty schema.Quantity, limitPx schema.Price, err error) {
	if len(data) < 23 {
		err = exception.ErrTruncatedRecord
		return
	}
	if data[0] != SlabCommitFill {
		err = exception.ErrInvalidDiscriminator
		return
	}
	expectedSeqno = u32(data, 1)
	orderType = schema.OrderType(data[5])
	side = schema.Side(data[6])
	qty = schema.Quantity(i64(data, 7))
	limitPx = schema.Price(i64(data, 15))
	if !orderType.Valid() {
		err = exception.ErrMalformedTag
	} else if !side.Valid() {
		err = exception.ErrInvalidSide
	}
	return
}

// LiquidateUser builds the liquidation instruction. The handler walks
// numOracles oracle accounts then numSlabs slab accounts from the
// remaining-accounts list.
func LiquidateUser(program, portfolio, vault, liquidator schema.Pubkey, numOracles, numSlabs uint8, forcePreliq bool, currentTs int64) schema.Instruction {
	data := make([]byte, 12)
	data[0] = RouterLiquidateUser
	data[1] = numOracles
	data[2] = numSlabs
	if forcePreliq {
		data[3] = 1
	}
	putI64(data, 4, currentTs)
	return schema.Instruction{
		ProgramID: program,
		Accounts: []schema.AccountMeta{
			meta(portfolio, false, true),
			meta(vault, false, true),
			meta(liquidator, true, false),
		},
		Data: data,
	}
}

// DecodeLiquidateUser parses a LiquidateUser payload.
func DecodeLiquidateUser(data []byte) (numOracles, numSlabs uint8, forcePreliq bool, currentTs int64, err error) {
	if len(data) < 12 {
		err = exception.ErrTruncatedRecord
		return
	}
	if data[0] != RouterLiquidateUser {
		err = exception.ErrInvalidDiscriminator
		return
	}
	if data[3] > 1 {
		err = exception.ErrMalformedTag
		return
	}
	return data[1], data[2], data[3] == 1, i64(data, 4), nil
}

// BurnLpShares builds the instruction burning LP shares against a
// market at the given share price.
func BurnLpShares(program, portfolio, owner schema.Pubkey, market schema.Pubkey, shares uint64, sharePrice schema.Price, currentTs, maxStaleness int64) schema.Instruction {
	data := make([]byte, 65)
	data[0] = RouterBurnLpShares
	putPubkey(data, 1, market)
	putU64(data, 33, shares)
	putI64(data, 41, int64(sharePrice))
	putI64(data, 49, currentTs)
	putI64(data, 57, maxStaleness)
	return schema.Instruction{
		ProgramID: program,
		Accounts: []schema.AccountMeta{
			meta(portfolio, false, true),
			meta(owner, true, false),
		},
		Data: data,
	}
}

// DecodeBurnLpShares parses a BurnLpShares payload.
func DecodeBurnLpShares(data []byte) (market schema.Pubkey, shares uint64, sharePrice schema.Price, currentTs, maxStaleness int64, err error) {
	if len(data) < 65 {
		err = exception.ErrTruncatedRecord
		return
	}
	if data[0] != RouterBurnLpShares {
		err = exception.ErrInvalidDiscriminator
		return
	}
	return pubkey(data, 1), u64(data, 33), schema.Price(i64(data, 41)),
		i64(data, 49), i64(data, 57), nil
}

// CancelLpOrders builds the instruction cancelling resting LP orders
// on a market and releasing the freed reserves. The handler caps the
// id list at 16.
func CancelLpOrders(program, portfolio, owner schema.Pubkey, market schema.Pubkey, orderIDs []uint64, freedQuote, freedBase schema.Uint128) (schema.Instruction, error) {
	if len(orderIDs) > maxCancelOrders {
		return schema.Instruction{}, exception.ErrMalformedTag
	}
	data := make([]byte, 66+8*len(orderIDs))
	data[0] = RouterCancelLpOrders
	putPubkey(data, 1, market)
	data[33] = uint8(len(orderIDs))
	for i, id := range orderIDs {
		putU64(data, 34+8*i, id)
	}
	off := 34 + 8*len(orderIDs)
	putU128(data, off, freedQuote)
	putU128(data, off+16, freedBase)
	return schema.Instruction{
		ProgramID: program,
		Accounts: []schema.AccountMeta{
			meta(portfolio, false, true),
			meta(owner, true, false),
		},
		Data: data,
	}, nil
}

// DecodeCancelLpOrders parses a CancelLpOrders payload.
func DecodeCancelLpOrders(data []byte) (market schema.Pubkey, orderIDs []uint64, freedQuote, freedBase schema.Uint128, err error) {
	if len(data) < 66 {
		err = exception.ErrTruncatedRecord
		return
	}
	if data[0] != RouterCancelLpOrders {
		err = exception.ErrInvalidDiscriminator
		return
	}
	n := int(data[33])
	if n > maxCancelOrders {
		err = exception.ErrMalformedTag
		return
	}
	if len(data) < 66+8*n {
		err = exception.ErrTruncatedRecord
		return
	}
	orderIDs = make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		orderIDs = append(orderIDs, u64(data, 34+8*i))
	}
	off := 34 + 8*n
	return pubkey(data, 1), orderIDs, u128(data, off), u128(data, off+16), nil
}
