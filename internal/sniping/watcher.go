// internal/sniping/watcher.go
package sniping

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
)

// Evaluator is one full pass of the pool filters.
type Evaluator interface {
	Execute(ctx context.Context, keys *raydium.PoolKeys) bool
}

// WatchConfig controls how a pool is re-checked before it is accepted.
// A zero Interval or Duration means a single evaluation.
type WatchConfig struct {
	Interval           time.Duration
	Duration           time.Duration
	ConsecutiveMatches int
}

// Watcher re-runs the filters until the pool passes ConsecutiveMatches times in
// a row or the duration runs out.
type Watcher struct {
	filters Evaluator
	cfg     WatchConfig
	logger  *zap.Logger
}

func NewWatcher(filters Evaluator, cfg WatchConfig, logger *zap.Logger) *Watcher {
	if cfg.ConsecutiveMatches <= 0 {
		cfg.ConsecutiveMatches = 1
	}
	return &Watcher{
		filters: filters,
		cfg:     cfg,
		logger:  logger.Named("watcher"),
	}
}

// Watch returns true once the pool has matched enough consecutive times.
func (w *Watcher) Watch(ctx context.Context, keys *raydium.PoolKeys) bool {
	if w.cfg.Interval <= 0 || w.cfg.Duration <= 0 {
		return w.filters.Execute(ctx, keys)
	}

	timesToCheck := int(w.cfg.Duration / w.cfg.Interval)
	matches := 0

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for checked := 0; checked <= timesToCheck; checked++ {
		if w.filters.Execute(ctx, keys) {
			matches++
			if matches >= w.cfg.ConsecutiveMatches {
				w.logger.Debug("Filter match",
					zap.String("pool", keys.ID.String()),
					zap.Int("checks", checked+1))
				return true
			}
		} else {
			matches = 0
		}

		w.logger.Debug("Waiting for next filter check",
			zap.String("pool", keys.ID.String()),
			zap.Int("matches", matches),
			zap.Int("check", checked+1),
			zap.Int("of", timesToCheck+1))

		if checked == timesToCheck {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}

	return false
}
