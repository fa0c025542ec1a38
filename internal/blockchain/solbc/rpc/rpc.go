// internal/blockchain/solbc/rpc/rpc.go
package rpc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultMaxRetries = 3
	DefaultMaxElapsed = 10 * time.Second
)

// Options настраивает RPCClient
type Options struct {
	// Timeout ограничивает каждый отдельный запрос к узлу.
	Timeout time.Duration
	// MaxRetries включает первую попытку.
	MaxRetries int
	// MaxElapsed ограничивает суммарное время всех попыток.
	MaxElapsed time.Duration
	// RateLimit в запросах в секунду; 0 отключает ограничение.
	RateLimit float64
	Burst     int
}

// RPCClient распределяет запросы по узлам round-robin и повторяет временные ошибки
type RPCClient struct {
	nodes   []*solanarpc.Client
	urls    []string
	current int
	mu      sync.Mutex
	limiter *rate.Limiter
	opts    Options
	logger  *zap.Logger
}

// NewClient создает новый RPC клиент
func NewClient(urls []string, opts Options, logger *zap.Logger) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, ErrNoRPCNodes
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = DefaultMaxElapsed
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	nodes := make([]*solanarpc.Client, len(urls))
	for i, url := range urls {
		nodes[i] = solanarpc.New(url)
	}

	return &RPCClient{
		nodes:   nodes,
		urls:    urls,
		limiter: limiter,
		opts:    opts,
		logger:  logger.Named("rpc-client"),
	}, nil
}

// next возвращает текущий узел и сдвигает указатель
func (c *RPCClient) next() (*solanarpc.Client, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, url := c.nodes[c.current], c.urls[c.current]
	c.current = (c.current + 1) % len(c.nodes)
	return node, url
}

// Execute выполняет запрос, переключая узлы при временных ошибках.
// Каждая попытка ограничена Options.Timeout, все попытки вместе ограничены Options.MaxElapsed.
func Execute[T any](ctx context.Context, c *RPCClient, method string, call func(context.Context, *solanarpc.Client) (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		var zero T
		attempt++

		if err := c.limiter.Wait(ctx); err != nil {
			return zero, backoff.Permanent(NewError(errors.Join(ErrRateLimit, err), "", method))
		}

		node, url := c.next()
		callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()

		out, err := call(callCtx, node)
		if err == nil {
			return out, nil
		}
		err = classify(callCtx, err)

		rpcErr := NewError(err, url, method)
		if ctx.Err() != nil || !IsRetryableError(err) {
			return zero, backoff.Permanent(rpcErr)
		}

		c.logger.Debug("RPC request failed, trying next node",
			zap.String("url", url),
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return zero, rpcErr
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = time.Second

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.opts.MaxRetries)),
		backoff.WithMaxElapsedTime(c.opts.MaxElapsed),
	)
}
