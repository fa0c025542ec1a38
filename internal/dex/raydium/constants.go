// internal/dex/raydium/constants.go
package raydium

import (
	"github.com/gagliardetto/solana-go"
)

// Program IDs and well-known mints
var (
	RaydiumV4ProgramID = solana.MPK("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	MetadataProgramID  = solana.MPK("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	WrappedSolMint     = solana.MPK("So11111111111111111111111111111111111111112")
	USDCMint           = solana.MPK("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

// Native currency granularity
const (
	SolDecimals  uint8 = 9
	USDCDecimals uint8 = 6
)

// Liquidity state v4 layout: 32 little-endian u64 words, swap counters, then pubkeys.
const (
	PoolAccountSize       = 752
	BaseDecimalOffset     = 32
	QuoteDecimalOffset    = 40
	BaseVaultOffset       = 336
	QuoteVaultOffset      = 368
	BaseMintOffset        = 400
	QuoteMintOffset       = 432
	LPMintOffset          = 464
	OpenOrdersOffset      = 496
	MarketIDOffset        = 528
	MarketProgramIDOffset = 560
	TargetOrdersOffset    = 592
	WithdrawQueueOffset   = 624
	LPVaultOffset         = 656
)

// TokenAccountSize is the length of an SPL token account.
const TokenAccountSize = 165
