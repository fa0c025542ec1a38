package sniping

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"

	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
	"github.com/rovshanmuradov/solana-pool-filter/internal/transaction"
)

// scriptedEvaluator returns verdicts in order and repeats the last one.
type scriptedEvaluator struct {
	mu       sync.Mutex
	verdicts []bool
	calls    int
}

func (e *scriptedEvaluator) Execute(context.Context, *raydium.PoolKeys) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.calls
	if i >= len(e.verdicts) {
		i = len(e.verdicts) - 1
	}
	e.calls++
	return e.verdicts[i]
}

func (e *scriptedEvaluator) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// MockExecutor is a mock implementation of transaction.TransactionExecutor
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) ExecuteAndConfirm(ctx context.Context, tx *solana.Transaction, blockhash transaction.Blockhash, payer *solana.PrivateKey) (transaction.ConfirmResult, error) {
	args := m.Called(ctx, tx, blockhash, payer)
	return args.Get(0).(transaction.ConfirmResult), args.Error(1)
}

func newKeys() *raydium.PoolKeys {
	return &raydium.PoolKeys{
		ID:        solana.NewWallet().PublicKey(),
		BaseMint:  solana.NewWallet().PublicKey(),
		QuoteMint: raydium.WrappedSolMint,
	}
}
