package raydium

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPool(baseMint, quoteMint solana.PublicKey, baseDecimals, quoteDecimals uint8) *PoolKeys {
	return &PoolKeys{
		ID:            solana.NewWallet().PublicKey(),
		BaseMint:      baseMint,
		QuoteMint:     quoteMint,
		BaseDecimals:  baseDecimals,
		QuoteDecimals: quoteDecimals,
		BaseVault:     solana.NewWallet().PublicKey(),
		QuoteVault:    solana.NewWallet().PublicKey(),
	}
}

func TestImpliedPrice(t *testing.T) {
	price, err := ImpliedPrice(5_000_000_000, SolDecimals, 2_000_000_000, 6)
	require.NoError(t, err)
	assert.InDelta(t, 0.0025, price, 1e-12)
}

func TestImpliedPriceEmptyVault(t *testing.T) {
	_, err := ImpliedPrice(5_000_000_000, SolDecimals, 0, 6)
	assert.ErrorIs(t, err, ErrEmptyVault)
}

func TestImpliedPriceSubUnitVault(t *testing.T) {
	// half a token against one SOL
	price, err := ImpliedPrice(1_000_000_000, SolDecimals, 500_000, 6)
	require.NoError(t, err)
	assert.False(t, math.IsInf(price, 0))
	assert.InDelta(t, 2.0, price, 1e-12)
}

func TestImpliedPriceWideBalances(t *testing.T) {
	// balances beyond 2^53 must not lose the scaling precision
	nativeRaw := uint64(math.MaxUint64)
	tokenRaw := uint64(math.MaxUint64)

	price, err := ImpliedPrice(nativeRaw, 9, tokenRaw, 6)
	require.NoError(t, err)
	assert.InDelta(t, 0.001, price, 1e-15)
}

func TestDerivePriceQuoteIsNative(t *testing.T) {
	token := solana.NewWallet().PublicKey()
	keys := testPool(token, WrappedSolMint, 6, SolDecimals)

	reader := new(MockAccountReader)
	reader.On("GetAccountData", mock.Anything, keys.QuoteVault).
		Return(tokenAccountData(WrappedSolMint, 5_000_000_000), nil)
	reader.On("GetAccountData", mock.Anything, keys.BaseVault).
		Return(tokenAccountData(token, 2_000_000_000), nil)

	oracle := NewPriceOracle(reader, zap.NewNop())
	price, err := oracle.DerivePrice(context.Background(), keys)

	require.NoError(t, err)
	assert.InDelta(t, 0.0025, price, 1e-12)
	reader.AssertExpectations(t)
}

func TestDerivePriceBaseIsNative(t *testing.T) {
	token := solana.NewWallet().PublicKey()
	keys := testPool(WrappedSolMint, token, SolDecimals, 6)

	reader := new(MockAccountReader)
	reader.On("GetAccountData", mock.Anything, keys.BaseVault).
		Return(tokenAccountData(WrappedSolMint, 5_000_000_000), nil)
	reader.On("GetAccountData", mock.Anything, keys.QuoteVault).
		Return(tokenAccountData(token, 2_000_000_000), nil)

	oracle := NewPriceOracle(reader, zap.NewNop())
	price, err := oracle.DerivePrice(context.Background(), keys)

	require.NoError(t, err)
	assert.InDelta(t, 0.0025, price, 1e-12)
}

func TestDerivePriceNoNativeSide(t *testing.T) {
	keys := testPool(solana.NewWallet().PublicKey(), USDCMint, 6, USDCDecimals)

	oracle := NewPriceOracle(new(MockAccountReader), zap.NewNop())
	_, err := oracle.DerivePrice(context.Background(), keys)

	assert.ErrorIs(t, err, ErrNoNativeSide)
}

func TestDerivePriceVaultFetchError(t *testing.T) {
	token := solana.NewWallet().PublicKey()
	keys := testPool(token, WrappedSolMint, 6, SolDecimals)
	rpcErr := errors.New("connection refused")

	reader := new(MockAccountReader)
	reader.On("GetAccountData", mock.Anything, keys.QuoteVault).Return(nil, rpcErr)
	reader.On("GetAccountData", mock.Anything, keys.BaseVault).
		Return(tokenAccountData(token, 1), nil).Maybe()

	oracle := NewPriceOracle(reader, zap.NewNop())
	_, err := oracle.DerivePrice(context.Background(), keys)

	assert.ErrorIs(t, err, rpcErr)
}

func TestDecodeTokenAmountShortData(t *testing.T) {
	_, err := DecodeTokenAmount(make([]byte, 64))
	assert.Error(t, err)
}

func TestUIAmount(t *testing.T) {
	amount, err := UIAmount("1000000000000", 6)
	require.NoError(t, err)
	assert.Equal(t, 1_000_000.0, amount)

	_, err = UIAmount("not-a-number", 6)
	assert.Error(t, err)
}
