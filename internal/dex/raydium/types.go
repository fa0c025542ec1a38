// internal/dex/raydium/types.go
// Package raydium decodes Raydium AMM v4 pool keys and derives pool prices.
package raydium

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrInvalidPoolData = errors.New("invalid pool account data")
	ErrNoNativeSide    = errors.New("pool has no wrapped SOL side")
	ErrEmptyVault      = errors.New("token vault is empty")
)

// PoolKeys is the identity of an AMM v4 pool. It is read-only once decoded.
type PoolKeys struct {
	ID        solana.PublicKey
	ProgramID solana.PublicKey
	Authority solana.PublicKey

	BaseMint      solana.PublicKey
	QuoteMint     solana.PublicKey
	LPMint        solana.PublicKey
	BaseDecimals  uint8
	QuoteDecimals uint8

	BaseVault     solana.PublicKey
	QuoteVault    solana.PublicKey
	LPVault       solana.PublicKey
	OpenOrders    solana.PublicKey
	TargetOrders  solana.PublicKey
	WithdrawQueue solana.PublicKey

	MarketID        solana.PublicKey
	MarketProgramID solana.PublicKey
}

// AccountReader returns raw account bytes for an address.
type AccountReader interface {
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
}
