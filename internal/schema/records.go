package schema

// Account record magics. 64-bit magics are the ASCII tag read as a
// little-endian u64; oracle magics are 32-bit.
const (
	PortfolioMagic       uint64 = 0x4f494c4654524f50 // "PORTFLIO"
	RegistryMagic        uint64 = 0x5947455242414c53 // "SLABREGY"
	VaultMagic           uint64 = 0x544c41564c4c4f43 // "COLLVALT"
	SlabMagic            uint64 = 0x4b4f4f4242414c53 // "SLABBOOK"
	PositionDetailsMagic uint64 = 0x4e534f5054524142 // "BARTPOSN"

	NativeOracleMagic uint32 = 0x4c43524f // "ORCL"
	VendorOracleMagic uint32 = 0xC434B845
)

// Fixed record lengths in bytes.
const (
	PortfolioLen       = 776
	RegistryLen        = 1240
	VaultLen           = 80
	SlabLen            = 280
	NativeOracleLen    = 96
	VendorOracleLen    = 72
	PositionDetailsLen = 144
)

// Capacity limits baked into the account layouts.
const (
	MaxExposures       = 16
	MaxLpBuckets       = 4
	MaxRegistryEntries = 16
	MaxQuoteLevels     = 4
)

// Exposure is one venue-local position slot inside a portfolio.
type Exposure struct {
	VenueIndex      uint16
	InstrumentIndex uint16
	Quantity        Quantity
}

// LpBucket is a liquidity-provider share bucket inside a portfolio.
// Present reports whether the slot is occupied; an absent slot still
// occupies its full wire region.
type LpBucket struct {
	Present           bool
	Market            Pubkey
	Shares            uint64
	ReservedQuote     uint64
	ReservedBase      uint64
	HasPendingBurn    bool
	PendingBurnAmount Uint128
}

// Portfolio is the cross-margined user account.
type Portfolio struct {
	User               Pubkey
	Router             Pubkey
	Equity             Int128
	InitialMargin      Uint128
	MaintenanceMargin  Uint128
	FreeCollateral     Int128
	Health             Int128
	Bump               uint8
	LastLiquidationTs  int64
	LiquidationPrice   Price
	InsuranceDebt      Int128
	Principal          Int128
	Pnl                Int128
	VestedPnl          Int128
	PnlIndexCheckpoint Int128
	LastSlot           uint64
	Exposures          []Exposure
	LpBuckets          []LpBucket
}

// RegistryEntry describes one venue registered with the router.
type RegistryEntry struct {
	SlabID            Pubkey
	OracleID          Pubkey
	InitialMarginBps  uint16
	MaintenanceMargin uint16
	Active            bool
}

// Registry is the router's venue registry account.
type Registry struct {
	Router     Pubkey
	Governance Pubkey
	Bump       uint8
	Entries    []RegistryEntry
}

// Vault is the router's collateral vault account.
type Vault struct {
	Router           Pubkey
	InsuranceBalance Uint128
	TotalDeposits    Uint128
	Bump             uint8
}

// QuoteLevel is one price level of a slab quote cache.
type QuoteLevel struct {
	Price    Price
	AvailQty Quantity
}

// QuoteCache is the top-of-book region of a slab account.
type QuoteCache struct {
	Seqno uint32
	Bids  []QuoteLevel
	Asks  []QuoteLevel
}

// Slab is one liquidity venue account.
type Slab struct {
	Version      uint32
	Seqno        uint32
	LpOwner      Pubkey
	Router       Pubkey
	Instrument   Pubkey
	MarkPrice    Price
	ContractSize int64
	TakerFeeBps  int64
	Bump         uint8
	Quotes       QuoteCache
}

// Oracle is a decoded price observation, normalized to the 1e6 price
// scale regardless of source format.
type Oracle struct {
	Instrument Pubkey
	Price      Price
	Confidence uint64
	Timestamp  int64
	Stale      bool
}

// PositionDetails is the per-(venue, instrument) position account.
type PositionDetails struct {
	Portfolio       Pubkey
	VenueIndex      uint16
	InstrumentIndex uint16
	Bump            uint8
	AvgEntryPrice   Price
	TotalQty        Quantity
	RealizedPnl     Int128
	TotalFees       Int128
	TradeCount      uint32
	LastUpdateTs    int64
	MarginHeld      Uint128
	Leverage        uint8
}

// PositionKey identifies a position slot within a portfolio.
type PositionKey struct {
	VenueIndex      uint16
	InstrumentIndex uint16
}

// AccountMeta is one account reference carried by an instruction.
type AccountMeta struct {
	Pubkey   Pubkey
	Signer   bool
	Writable bool
}

// Instruction is an unsigned ledger instruction ready for an external
// signer.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}
