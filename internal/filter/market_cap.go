// internal/filter/market_cap.go
package filter

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
)

const msgMarketCapFailed = "marketcap -> Failed to check sol mkt cap"

// MarketCapFilter bounds supply × price of the traded token, in SOL.
// A zero bound is disabled.
type MarketCapFilter struct {
	chain  ChainReader
	price  PriceSource
	min    float64
	max    float64
	logger *zap.Logger
}

func NewMarketCapFilter(chain ChainReader, price PriceSource, minCap, maxCap float64, logger *zap.Logger) *MarketCapFilter {
	return &MarketCapFilter{
		chain:  chain,
		price:  price,
		min:    minCap,
		max:    maxCap,
		logger: logger.Named("market-cap-filter"),
	}
}

func (f *MarketCapFilter) Name() string { return "market_cap" }

func (f *MarketCapFilter) Execute(ctx context.Context, keys *raydium.PoolKeys) Result {
	mint := keys.TradedMint()

	var supply, price float64
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		supply, err = f.chain.GetTokenSupply(gCtx, mint)
		return err
	})
	g.Go(func() error {
		var err error
		price, err = f.price.DerivePrice(gCtx, keys)
		return err
	})
	if err := g.Wait(); err != nil {
		f.logger.Warn("Failed to check sol mkt cap",
			zap.String("mint", mint.String()),
			zap.Error(err))
		return reject(msgMarketCapFailed)
	}

	marketCap := supply * price

	if f.max != 0 && marketCap > f.max {
		return reject("marketcap -> sol mkt cap %s > %s", formatSOL(marketCap), formatSOL(f.max))
	}
	if f.min != 0 && marketCap < f.min {
		return reject("marketcap -> sol mkt cap %s < %s", formatSOL(marketCap), formatSOL(f.min))
	}
	return pass()
}

func formatSOL(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
