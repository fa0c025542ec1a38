// internal/filter/filter.go
// Package filter decides whether a freshly discovered pool is eligible for trading.
package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
)

// Result is the verdict of one filter for one pool. Message is set only on reject.
type Result struct {
	OK      bool
	Message string
}

// Filter is one independent acceptance check. Implementations keep no per-call
// state and are shared across concurrent evaluations.
type Filter interface {
	Name() string
	Execute(ctx context.Context, keys *raydium.PoolKeys) Result
}

// ChainReader is the on-chain data source used by the filters.
type ChainReader interface {
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
	GetTokenSupply(ctx context.Context, mint solana.PublicKey) (float64, error)
}

// DocumentFetcher loads the off-chain JSON document behind a metadata URI.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, uri string) (map[string]any, error)
}

// PriceSource returns the SOL price of the traded token of a pool.
type PriceSource interface {
	DerivePrice(ctx context.Context, keys *raydium.PoolKeys) (float64, error)
}

// Recorder receives rejection reasons. It is never read back by the pipeline.
type Recorder interface {
	Record(pool, filter, reason string)
}

// Observer receives timing and verdicts for metrics.
type Observer interface {
	ObserveFilter(name string, ok bool, duration time.Duration)
	ObservePipeline(ok bool, duration time.Duration)
}

func pass() Result {
	return Result{OK: true}
}

func reject(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}
