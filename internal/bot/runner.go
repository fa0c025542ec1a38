// internal/bot/runner.go
// Package bot wires configuration, chain access and the pool filters into a runnable service.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-pool-filter/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-pool-filter/internal/config"
	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
	"github.com/rovshanmuradov/solana-pool-filter/internal/filter"
	rejectlog "github.com/rovshanmuradov/solana-pool-filter/internal/logger"
	"github.com/rovshanmuradov/solana-pool-filter/internal/offchain"
	"github.com/rovshanmuradov/solana-pool-filter/internal/sniping"
	"github.com/rovshanmuradov/solana-pool-filter/internal/utils/metrics"
)

const rejectionFlushInterval = 5 * time.Second

// Runner owns every long-lived component of one process.
type Runner struct {
	logger     *zap.Logger
	config     *config.Config
	quote      config.Token
	chain      filter.ChainReader
	filters    *filter.PoolFilters
	rejections *rejectlog.RejectionLog
	registry   *prometheus.Registry
	shutdownCh chan os.Signal
	flushDone  chan struct{}
}

// NewRunner builds the component graph from cfg. chain may be nil, in which
// case a solbc client over cfg.RPCList is created.
func NewRunner(cfg *config.Config, chain filter.ChainReader, logger *zap.Logger) (*Runner, error) {
	quote, err := config.GetToken(cfg.QuoteMint)
	if err != nil {
		return nil, err
	}

	if chain == nil {
		client, err := solbc.NewClient(cfg.RPCList, solbc.Options{
			Commitment: cfg.Commitment,
			Timeout:    cfg.RPCTimeout(),
			MaxRetries: cfg.Retries,
			RateLimit:  cfg.RPCRateLimit,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create solana client: %w", err)
		}
		chain = client
	}

	rejections, err := rejectlog.NewRejectionLog(rejectlog.DefaultRejectionCapacity, cfg.RejectionLog, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	fetcher := offchain.NewFetcher(offchain.Config{
		Timeout:     cfg.HTTPTimeout(),
		IPFSGateway: cfg.IPFSGateway,
	}, logger)

	filters := filter.NewPoolFilters(cfg.Filters, filter.Deps{
		Chain:     chain,
		Documents: fetcher,
		Recorder:  rejections,
		Observer:  collector,
	}, logger)

	logger.Info("Pool filters ready",
		zap.Strings("filters", filters.Names()),
		zap.String("quote", quote.Symbol),
		zap.Float64("min_market_cap", cfg.Filters.MinMarketCap),
		zap.Float64("max_market_cap", cfg.Filters.MaxMarketCap))

	return &Runner{
		logger:     logger,
		config:     cfg,
		quote:      quote,
		chain:      chain,
		filters:    filters,
		rejections: rejections,
		registry:   registry,
		shutdownCh: make(chan os.Signal, 1),
		flushDone:  rejections.StartPeriodicFlush(rejectionFlushInterval),
	}, nil
}

// LoadPool fetches and decodes an AMM v4 pool account.
func (r *Runner) LoadPool(ctx context.Context, id solana.PublicKey) (*raydium.PoolKeys, error) {
	data, err := r.chain.GetAccountData(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool %s: %w", id, err)
	}
	keys, err := raydium.DecodePoolKeys(id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode pool %s: %w", id, err)
	}
	return keys, nil
}

// Run evaluates every pool. With watch set each pool is re-checked on the
// configured schedule instead of once.
func (r *Runner) Run(ctx context.Context, ids []solana.PublicKey, watch bool, workers int) ([]sniping.Outcome, error) {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(r.shutdownCh)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case sig := <-r.shutdownCh:
			r.logger.Info("Signal received: " + sig.String())
			cancel()
		case <-runCtx.Done():
		}
	}()

	stopMetrics := r.serveMetrics()
	defer stopMetrics()

	pools := make([]*raydium.PoolKeys, len(ids))
	g, gCtx := errgroup.WithContext(runCtx)
	for i, id := range ids {
		g.Go(func() error {
			keys, err := r.LoadPool(gCtx, id)
			if err != nil {
				return err
			}
			pools[i] = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	watchCfg := sniping.WatchConfig{}
	if watch {
		watchCfg = sniping.WatchConfig{
			Interval:           r.config.FilterCheckInterval(),
			Duration:           r.config.FilterCheckDuration(),
			ConsecutiveMatches: r.config.ConsecutiveFilterMatches,
		}
	}

	watcher := sniping.NewWatcher(r.filters, watchCfg, r.logger)
	sniper := sniping.NewSniper(watcher, nil, nil, workers, r.logger)
	return sniper.Run(runCtx, pools), nil
}

// Rejections returns the most recent rejection reasons.
func (r *Runner) Rejections(limit int) []rejectlog.Rejection {
	return r.rejections.Recent(limit)
}

func (r *Runner) serveMetrics() (stop func()) {
	if r.config.MetricsAddr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              r.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		r.logger.Info("Serving metrics", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// Shutdown flushes the rejection log.
func (r *Runner) Shutdown() error {
	r.logger.Info("Shutting down")
	close(r.flushDone)
	return r.rejections.Close()
}
