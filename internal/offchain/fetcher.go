// internal/offchain/fetcher.go
// Package offchain fetches token metadata documents referenced by on-chain URIs.
package offchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultTimeout     = 3 * time.Second
	DefaultMaxBodySize = 1 << 20
	DefaultIPFSGateway = "https://ipfs.io/ipfs/"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported metadata URI scheme")
	ErrUnexpectedStatus  = errors.New("unexpected metadata response status")
	// ErrBadDocument marks failures caused by one document rather than its host.
	ErrBadDocument = errors.New("bad metadata document")
)

// Config настраивает Fetcher
type Config struct {
	Timeout     time.Duration
	MaxBodySize int64
	IPFSGateway string
	// BreakerFailures consecutive failures against one host open its breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Fetcher GETs metadata JSON with a hard timeout and a circuit breaker per host.
type Fetcher struct {
	client   *http.Client
	cfg      Config
	logger   *zap.Logger
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewFetcher(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.IPFSGateway == "" {
		cfg.IPFSGateway = DefaultIPFSGateway
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:      cfg,
		logger:   logger.Named("offchain-fetcher"),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// FetchDocument downloads uri and decodes it as a loosely typed JSON object.
func (f *Fetcher) FetchDocument(ctx context.Context, uri string) (map[string]any, error) {
	target, err := f.resolve(uri)
	if err != nil {
		return nil, err
	}

	result, err := f.breaker(target.Host).Execute(func() (interface{}, error) {
		return f.get(ctx, target.String())
	})
	if err != nil {
		f.logger.Debug("metadata fetch failed",
			zap.String("host", target.Host),
			zap.Error(err))
		return nil, err
	}
	return result.(map[string]any), nil
}

func (f *Fetcher) get(ctx context.Context, target string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d: %w", ErrUnexpectedStatus, resp.StatusCode, ErrBadDocument)
	}

	var doc map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, f.cfg.MaxBodySize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode metadata document: %w: %w", ErrBadDocument, err)
	}
	return doc, nil
}

// resolve maps ipfs:// URIs onto the configured gateway and rejects other schemes.
func (f *Fetcher) resolve(uri string) (*url.URL, error) {
	uri = strings.TrimSpace(uri)
	if rest, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		uri = strings.TrimRight(f.cfg.IPFSGateway, "/") + "/" + strings.TrimPrefix(rest, "ipfs/")
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata URI: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid metadata URI: missing host")
	}
	return parsed, nil
}

func (f *Fetcher) breaker(host string) *gobreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cb, ok := f.breakers[host]; ok {
		return cb
	}

	failures := f.cfg.BreakerFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "metadata:" + host,
		MaxRequests: 1,
		Timeout:     f.cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isHostFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Info("metadata host breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	f.breakers[host] = cb
	return cb
}

// isHostFailure: только транспорт, таймауты и 5xx считаются отказом хоста.
// Плохой документ одного пула не должен блокировать хост для остальных.
func isHostFailure(err error) bool {
	switch {
	case errors.Is(err, ErrBadDocument):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return true
}
