// internal/sniping/sniper.go
package sniping

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
	"github.com/rovshanmuradov/solana-pool-filter/internal/transaction"
)

// BuildFunc prepares a signed buy transaction for an accepted pool.
type BuildFunc func(ctx context.Context, keys *raydium.PoolKeys) (*solana.Transaction, transaction.Blockhash, error)

// Outcome is what happened to one pool.
type Outcome struct {
	Pool     string
	Accepted bool
	Result   *transaction.ConfirmResult
	Err      error
}

// Sniper watches pools and hands accepted ones to the executor.
// Without an executor it only reports verdicts.
type Sniper struct {
	watcher  *Watcher
	executor transaction.TransactionExecutor
	build    BuildFunc
	workers  int
	logger   *zap.Logger
}

func NewSniper(watcher *Watcher, executor transaction.TransactionExecutor, build BuildFunc, workers int, logger *zap.Logger) *Sniper {
	if workers <= 0 {
		workers = 1
	}
	return &Sniper{
		watcher:  watcher,
		executor: executor,
		build:    build,
		workers:  workers,
		logger:   logger.Named("sniper"),
	}
}

// Run processes pools with a fixed worker pool and returns one outcome per pool, in input order.
func (s *Sniper) Run(ctx context.Context, pools []*raydium.PoolKeys) []Outcome {
	outcomes := make([]Outcome, len(pools))
	jobs := make(chan int, len(pools))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = s.handle(ctx, pools[idx])
			}
		}()
	}

	for i := range pools {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	s.logger.Info("Sniper finished", zap.Int("pools", len(pools)))
	return outcomes
}

func (s *Sniper) handle(ctx context.Context, keys *raydium.PoolKeys) Outcome {
	out := Outcome{Pool: keys.ID.String()}

	out.Accepted = s.watcher.Watch(ctx, keys)
	if !out.Accepted {
		s.logger.Info("Pool rejected", zap.String("pool", out.Pool))
		return out
	}
	s.logger.Info("Pool accepted", zap.String("pool", out.Pool))

	if s.executor == nil || s.build == nil {
		return out
	}

	tx, blockhash, err := s.build(ctx, keys)
	if err != nil {
		out.Err = fmt.Errorf("failed to build transaction: %w", err)
		return out
	}

	result, err := s.executor.ExecuteAndConfirm(ctx, tx, blockhash, nil)
	if err != nil {
		s.logger.Error("Failed to execute transaction",
			zap.String("pool", out.Pool),
			zap.Error(err))
		out.Err = err
		return out
	}
	out.Result = &result
	return out
}
