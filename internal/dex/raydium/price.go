// internal/dex/raydium/price.go
package raydium

import (
	"context"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PriceOracle derives the implied SOL price of the traded token from the pool vaults.
type PriceOracle struct {
	reader AccountReader
	logger *zap.Logger
}

func NewPriceOracle(reader AccountReader, logger *zap.Logger) *PriceOracle {
	return &PriceOracle{
		reader: reader,
		logger: logger.Named("price-oracle"),
	}
}

// DerivePrice returns the price of one traded token in SOL.
func (o *PriceOracle) DerivePrice(ctx context.Context, keys *PoolKeys) (float64, error) {
	nativeVault, tokenVault, tokenDecimals, err := keys.sides()
	if err != nil {
		return 0, err
	}

	var nativeRaw, tokenRaw uint64
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		amount, err := o.vaultAmount(gCtx, nativeVault)
		nativeRaw = amount
		return err
	})
	g.Go(func() error {
		amount, err := o.vaultAmount(gCtx, tokenVault)
		tokenRaw = amount
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	price, err := ImpliedPrice(nativeRaw, SolDecimals, tokenRaw, tokenDecimals)
	if err != nil {
		return 0, err
	}

	o.logger.Debug("derived pool price",
		zap.String("pool", keys.ID.String()),
		zap.Uint64("native_raw", nativeRaw),
		zap.Uint64("token_raw", tokenRaw),
		zap.Float64("price", price))

	return price, nil
}

func (o *PriceOracle) vaultAmount(ctx context.Context, vault solana.PublicKey) (uint64, error) {
	data, err := o.reader.GetAccountData(ctx, vault)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch vault %s: %w", vault, err)
	}
	return DecodeTokenAmount(data)
}

// DecodeTokenAmount returns the raw amount held by an SPL token account.
func DecodeTokenAmount(data []byte) (uint64, error) {
	if len(data) < TokenAccountSize {
		return 0, fmt.Errorf("invalid token account data length: %d", len(data))
	}

	var acc token.Account
	if err := bin.NewBinDecoder(data).Decode(&acc); err != nil {
		return 0, fmt.Errorf("failed to decode token account: %w", err)
	}
	return acc.Amount, nil
}

// ImpliedPrice scales both raw balances to whole units and returns native/token.
// Scaling happens on the full-width integers; only the final ratio is narrowed.
func ImpliedPrice(nativeRaw uint64, nativeDecimals uint8, tokenRaw uint64, tokenDecimals uint8) (float64, error) {
	if tokenRaw == 0 {
		return 0, ErrEmptyVault
	}

	native := new(big.Rat).SetFrac(new(big.Int).SetUint64(nativeRaw), pow10(nativeDecimals))
	tokens := new(big.Rat).SetFrac(new(big.Int).SetUint64(tokenRaw), pow10(tokenDecimals))

	price, _ := new(big.Rat).Quo(native, tokens).Float64()
	return price, nil
}

// UIAmount converts a raw integer amount string into whole units.
func UIAmount(raw string, decimals uint8) (float64, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return 0, fmt.Errorf("invalid raw amount %q", raw)
	}
	value, _ := new(big.Rat).SetFrac(amount, pow10(decimals)).Float64()
	return value, nil
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
