// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-pool-filter/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
)

// Client – тонкий адаптер чтения состояния Solana поверх пула RPC узлов.
type Client struct {
	rpc        *rpc.RPCClient
	commitment solanarpc.CommitmentType
	logger     *zap.Logger
}

// Определение ошибок
var (
	ErrAccountNotFound = errors.New("account not found")
)

// Options настраивает клиент
type Options struct {
	Commitment string
	Timeout    time.Duration
	MaxRetries int
	RateLimit  float64
}

// NewClient создаёт новый клиент, принимая список RPC URL и логгер через dependency injection.
func NewClient(urls []string, opts Options, logger *zap.Logger) (*Client, error) {
	pool, err := rpc.NewClient(urls, rpc.Options{
		Timeout:    opts.Timeout,
		MaxRetries: opts.MaxRetries,
		MaxElapsed: opts.Timeout * time.Duration(max(opts.MaxRetries, 1)),
		RateLimit:  opts.RateLimit,
		Burst:      int(opts.RateLimit),
	}, logger)
	if err != nil {
		return nil, err
	}

	commitment := solanarpc.CommitmentType(opts.Commitment)
	if commitment == "" {
		commitment = solanarpc.CommitmentConfirmed
	}

	return &Client{
		rpc:        pool,
		commitment: commitment,
		logger:     logger.Named("solbc-client"),
	}, nil
}

// GetAccountData возвращает сырые данные аккаунта или ErrAccountNotFound.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	result, err := rpc.Execute(ctx, c.rpc, "getAccountInfo",
		func(ctx context.Context, node *solanarpc.Client) (*solanarpc.GetAccountInfoResult, error) {
			return node.GetAccountInfoWithOpts(ctx, pubkey, &solanarpc.GetAccountInfoOpts{
				Encoding:   solana.EncodingBase64,
				Commitment: c.commitment,
			})
		})
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey)
		}
		c.logger.Debug("GetAccountData error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}

	if result == nil || result.Value == nil || result.Value.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, pubkey)
	}

	data := result.Value.Data.GetBinary()
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s has no data", ErrAccountNotFound, pubkey)
	}
	return data, nil
}

// GetTokenSupply возвращает общее предложение токена в целых единицах.
func (c *Client) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (float64, error) {
	result, err := rpc.Execute(ctx, c.rpc, "getTokenSupply",
		func(ctx context.Context, node *solanarpc.Client) (*solanarpc.GetTokenSupplyResult, error) {
			return node.GetTokenSupply(ctx, mint, c.commitment)
		})
	if err != nil {
		c.logger.Debug("GetTokenSupply error",
			zap.String("mint", mint.String()),
			zap.Error(err))
		return 0, err
	}

	if result == nil || result.Value == nil {
		return 0, fmt.Errorf("empty token supply response for %s", mint)
	}

	return raydium.UIAmount(result.Value.Amount, result.Value.Decimals)
}
