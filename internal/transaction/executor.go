// internal/transaction/executor.go
// Package transaction defines the boundary to whatever submits and confirms trades.
package transaction

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// ConfirmResult is the outcome of one submission.
type ConfirmResult struct {
	Confirmed bool
	Signature solana.Signature
	Error     string
}

// Blockhash pins a transaction to a recent blockhash and its expiry height.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

// TransactionExecutor submits a signed transaction and waits for confirmation.
// Payer is optional; implementations fall back to their own wallet when nil.
type TransactionExecutor interface {
	ExecuteAndConfirm(ctx context.Context, tx *solana.Transaction, blockhash Blockhash, payer *solana.PrivateKey) (ConfirmResult, error)
}
