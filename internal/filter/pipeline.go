// internal/filter/pipeline.go
package filter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-pool-filter/internal/config"
	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
)

// Deps are the collaborators shared by every filter of a pipeline.
// Price defaults to a raydium.PriceOracle over Chain. Recorder and Observer are optional.
type Deps struct {
	Chain     ChainReader
	Documents DocumentFetcher
	Price     PriceSource
	Recorder  Recorder
	Observer  Observer
}

// PoolFilters runs the configured filters against a pool and combines the verdicts.
type PoolFilters struct {
	filters  []Filter
	recorder Recorder
	observer Observer
	logger   *zap.Logger
}

// NewPoolFilters builds the active filters in a fixed order:
// mint suffix, mutable metadata, market cap.
func NewPoolFilters(cfg config.FilterConfig, deps Deps, logger *zap.Logger) *PoolFilters {
	price := deps.Price
	if price == nil && deps.Chain != nil {
		price = raydium.NewPriceOracle(deps.Chain, logger)
	}

	var filters []Filter
	if cfg.CheckMintSuffix {
		filters = append(filters, NewMintSuffixFilter())
	}
	if cfg.CheckSocials {
		filters = append(filters, NewMutableFilter(deps.Chain, deps.Documents, cfg.CheckSocials, logger))
	}
	if cfg.MinMarketCap != 0 || cfg.MaxMarketCap != 0 {
		filters = append(filters, NewMarketCapFilter(deps.Chain, price, cfg.MinMarketCap, cfg.MaxMarketCap, logger))
	}

	return NewPipeline(filters, deps.Recorder, deps.Observer, logger)
}

// NewPipeline wraps an explicit filter list.
func NewPipeline(filters []Filter, recorder Recorder, observer Observer, logger *zap.Logger) *PoolFilters {
	return &PoolFilters{
		filters:  filters,
		recorder: recorder,
		observer: observer,
		logger:   logger.Named("pool-filters"),
	}
}

// Names returns the active filter names in evaluation order.
func (p *PoolFilters) Names() []string {
	names := make([]string, 0, len(p.filters))
	for _, f := range p.filters {
		names = append(names, f.Name())
	}
	return names
}

// Execute runs every filter concurrently, waits for all of them and reports
// whether all passed. Rejection reasons go to the logger and the recorder.
func (p *PoolFilters) Execute(ctx context.Context, keys *raydium.PoolKeys) bool {
	if len(p.filters) == 0 {
		return true
	}

	start := time.Now()
	results := make([]Result, len(p.filters))

	// Фильтры не возвращают ошибок, поэтому ни один не отменяет соседей
	var g errgroup.Group
	for i, f := range p.filters {
		g.Go(func() error {
			results[i] = p.run(ctx, f, keys)
			return nil
		})
	}
	_ = g.Wait()

	ok := true
	pool := keys.ID.String()
	for i, res := range results {
		if res.OK {
			continue
		}
		ok = false
		name := p.filters[i].Name()
		p.logger.Debug(res.Message,
			zap.String("pool", pool),
			zap.String("mint", keys.BaseMint.String()),
			zap.String("filter", name))
		if p.recorder != nil {
			p.recorder.Record(pool, name, res.Message)
		}
	}

	if p.observer != nil {
		p.observer.ObservePipeline(ok, time.Since(start))
	}
	return ok
}

func (p *PoolFilters) run(ctx context.Context, f Filter, keys *raydium.PoolKeys) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("filter panicked",
				zap.String("filter", f.Name()),
				zap.Any("panic", r))
			res = Result{Message: fmt.Sprintf("%s -> panic: %v", f.Name(), r)}
		}
		if p.observer != nil {
			p.observer.ObserveFilter(f.Name(), res.OK, time.Since(start))
		}
	}()

	return f.Execute(ctx, keys)
}
