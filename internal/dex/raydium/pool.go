// internal/dex/raydium/pool.go
package raydium

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-pool-filter/internal/utils/binary"
)

// DecodePoolKeys builds PoolKeys from a liquidity state v4 account.
func DecodePoolKeys(id solana.PublicKey, data []byte) (*PoolKeys, error) {
	if len(data) < PoolAccountSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPoolData, len(data), PoolAccountSize)
	}

	baseDecimals := binary.ReadUint64LittleEndian(data, BaseDecimalOffset)
	quoteDecimals := binary.ReadUint64LittleEndian(data, QuoteDecimalOffset)
	if baseDecimals > 255 || quoteDecimals > 255 {
		return nil, fmt.Errorf("%w: decimals out of range (%d/%d)", ErrInvalidPoolData, baseDecimals, quoteDecimals)
	}

	authority, _, err := solana.FindProgramAddress([][]byte{[]byte("amm authority")}, RaydiumV4ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive amm authority: %w", err)
	}

	keys := &PoolKeys{
		ID:              id,
		ProgramID:       RaydiumV4ProgramID,
		Authority:       authority,
		BaseMint:        binary.ReadPubKey(data, BaseMintOffset),
		QuoteMint:       binary.ReadPubKey(data, QuoteMintOffset),
		LPMint:          binary.ReadPubKey(data, LPMintOffset),
		BaseDecimals:    uint8(baseDecimals),
		QuoteDecimals:   uint8(quoteDecimals),
		BaseVault:       binary.ReadPubKey(data, BaseVaultOffset),
		QuoteVault:      binary.ReadPubKey(data, QuoteVaultOffset),
		LPVault:         binary.ReadPubKey(data, LPVaultOffset),
		OpenOrders:      binary.ReadPubKey(data, OpenOrdersOffset),
		TargetOrders:    binary.ReadPubKey(data, TargetOrdersOffset),
		WithdrawQueue:   binary.ReadPubKey(data, WithdrawQueueOffset),
		MarketID:        binary.ReadPubKey(data, MarketIDOffset),
		MarketProgramID: binary.ReadPubKey(data, MarketProgramIDOffset),
	}

	if err := ValidatePoolKeys(keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// ValidatePoolKeys проверяет, что ключевые аккаунты пула заданы
func ValidatePoolKeys(keys *PoolKeys) error {
	accounts := map[string]solana.PublicKey{
		"base_mint":   keys.BaseMint,
		"quote_mint":  keys.QuoteMint,
		"base_vault":  keys.BaseVault,
		"quote_vault": keys.QuoteVault,
	}

	for name, acc := range accounts {
		if acc.IsZero() {
			return fmt.Errorf("%w: %s is zero", ErrInvalidPoolData, name)
		}
	}

	return nil
}

// TradedMint returns the mint on the non-native side of the pool.
func (k *PoolKeys) TradedMint() solana.PublicKey {
	if k.BaseMint.Equals(WrappedSolMint) {
		return k.QuoteMint
	}
	return k.BaseMint
}

// sides returns (nativeVault, tokenVault, tokenDecimals).
func (k *PoolKeys) sides() (solana.PublicKey, solana.PublicKey, uint8, error) {
	switch {
	case k.QuoteMint.Equals(WrappedSolMint):
		return k.QuoteVault, k.BaseVault, k.BaseDecimals, nil
	case k.BaseMint.Equals(WrappedSolMint):
		return k.BaseVault, k.QuoteVault, k.QuoteDecimals, nil
	default:
		return solana.PublicKey{}, solana.PublicKey{}, 0, ErrNoNativeSide
	}
}
