package filter

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"

	"github.com/rovshanmuradov/solana-pool-filter/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
)

// MockChainReader is a mock implementation of ChainReader
type MockChainReader struct {
	mock.Mock
}

func (m *MockChainReader) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	args := m.Called(ctx, pubkey)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockChainReader) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (float64, error) {
	args := m.Called(ctx, mint)
	return args.Get(0).(float64), args.Error(1)
}

// MockDocumentFetcher is a mock implementation of DocumentFetcher
type MockDocumentFetcher struct {
	mock.Mock
}

func (m *MockDocumentFetcher) FetchDocument(ctx context.Context, uri string) (map[string]any, error) {
	args := m.Called(ctx, uri)
	doc, _ := args.Get(0).(map[string]any)
	return doc, args.Error(1)
}

type fixedPrice struct {
	price float64
	err   error
}

func (p fixedPrice) DerivePrice(context.Context, *raydium.PoolKeys) (float64, error) {
	return p.price, p.err
}

type rejection struct {
	pool, filter, reason string
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []rejection
}

func (r *memoryRecorder) Record(pool, filter, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, rejection{pool, filter, reason})
}

func (r *memoryRecorder) reasons() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.reason)
	}
	return out
}

type countingObserver struct {
	mu        sync.Mutex
	filters   map[string]bool
	pipelines []bool
}

func (o *countingObserver) ObserveFilter(name string, ok bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.filters == nil {
		o.filters = make(map[string]bool)
	}
	o.filters[name] = ok
}

func (o *countingObserver) ObservePipeline(ok bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pipelines = append(o.pipelines, ok)
}

// stubFilter returns a fixed result, optionally after running hook.
type stubFilter struct {
	name   string
	result Result
	hook   func()
}

func (s *stubFilter) Name() string { return s.name }

func (s *stubFilter) Execute(context.Context, *raydium.PoolKeys) Result {
	if s.hook != nil {
		s.hook()
	}
	return s.result
}

func newPoolKeys() *raydium.PoolKeys {
	return &raydium.PoolKeys{
		ID:            solana.NewWallet().PublicKey(),
		BaseMint:      solana.NewWallet().PublicKey(),
		QuoteMint:     raydium.WrappedSolMint,
		BaseDecimals:  6,
		QuoteDecimals: raydium.SolDecimals,
		BaseVault:     solana.NewWallet().PublicKey(),
		QuoteVault:    solana.NewWallet().PublicKey(),
	}
}

func metadataAddress(mint solana.PublicKey) solana.PublicKey {
	addr, err := solbc.MetadataAddress(raydium.MetadataProgramID, mint)
	if err != nil {
		panic(err)
	}
	return addr
}

// metadataAccount encodes a minimal Metaplex metadata record without creators.
func metadataAccount(mint solana.PublicKey, uri string) []byte {
	buf := []byte{solbc.MetadataKeyV1}
	buf = append(buf, solana.NewWallet().PublicKey().Bytes()...)
	buf = append(buf, mint.Bytes()...)
	for _, s := range []string{"Token", "TKN", uri} {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
		buf = append(buf, s...)
	}
	buf = binary.LittleEndian.AppendUint16(buf, 0)
	buf = append(buf, 0) // creators: none
	buf = append(buf, 0) // primary sale happened
	buf = append(buf, 1) // is mutable
	return buf
}

// tokenAccount encodes an initialized SPL token account holding amount.
func tokenAccount(amount uint64) []byte {
	data := make([]byte, raydium.TokenAccountSize)
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1
	return data
}
