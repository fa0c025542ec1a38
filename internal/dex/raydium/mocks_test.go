// internal/dex/raydium/mocks_test.go
package raydium

import (
	"context"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
)

// MockAccountReader реализует интерфейс AccountReader
type MockAccountReader struct {
	mock.Mock
}

func (m *MockAccountReader) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	args := m.Called(ctx, pubkey)
	if data := args.Get(0); data != nil {
		return data.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// tokenAccountData builds an SPL token account with the given amount.
func tokenAccountData(mint solana.PublicKey, amount uint64) []byte {
	data := make([]byte, TokenAccountSize)
	copy(data[0:32], mint[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // initialized
	return data
}
