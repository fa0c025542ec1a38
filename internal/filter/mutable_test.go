package filter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-pool-filter/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-pool-filter/internal/offchain"
)

const testURI = "https://example.com/token.json"

func TestMutableFilterMetadataAbsent(t *testing.T) {
	keys := newPoolKeys()
	chain := new(MockChainReader)
	chain.On("GetAccountData", mock.Anything, metadataAddress(keys.BaseMint)).
		Return(nil, solbc.ErrAccountNotFound)

	f := NewMutableFilter(chain, new(MockDocumentFetcher), true, zap.NewNop())
	res := f.Execute(context.Background(), keys)

	assert.False(t, res.OK)
	assert.Equal(t, "Mutable -> Failed to fetch account data", res.Message)
	chain.AssertExpectations(t)
}

func TestMutableFilterMalformedMetadata(t *testing.T) {
	keys := newPoolKeys()
	chain := new(MockChainReader)
	chain.On("GetAccountData", mock.Anything, metadataAddress(keys.BaseMint)).
		Return([]byte{9, 1, 2}, nil)

	res := NewMutableFilter(chain, new(MockDocumentFetcher), true, zap.NewNop()).
		Execute(context.Background(), keys)

	assert.False(t, res.OK)
	assert.Equal(t, msgDecodeFailed, res.Message)
}

func TestMutableFilterSocialsDisabled(t *testing.T) {
	keys := newPoolKeys()
	chain := new(MockChainReader)
	chain.On("GetAccountData", mock.Anything, metadataAddress(keys.BaseMint)).
		Return(metadataAccount(keys.BaseMint, testURI), nil)
	docs := new(MockDocumentFetcher)

	res := NewMutableFilter(chain, docs, false, zap.NewNop()).Execute(context.Background(), keys)

	assert.True(t, res.OK)
	docs.AssertNotCalled(t, "FetchDocument", mock.Anything, mock.Anything)
}

func TestMutableFilterSocials(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]any
		err     error
		want    bool
		message string
	}{
		{
			name:    "empty extensions",
			doc:     map[string]any{"extensions": map[string]any{}},
			message: "MutableSocials -> Token has no socials",
		},
		{
			name:    "no extensions key",
			doc:     map[string]any{"name": "Token"},
			message: "MutableSocials -> Token has no socials",
		},
		{
			name: "twitter link",
			doc:  map[string]any{"extensions": map[string]any{"twitter": "https://x.com/token"}},
			want: true,
		},
		{
			name:    "only blank values",
			doc:     map[string]any{"extensions": map[string]any{"twitter": "", "website": nil}},
			message: "MutableSocials -> Token has no socials",
		},
		{
			name:    "fetch failure",
			err:     errors.New("context deadline exceeded"),
			message: "MutableSocials -> Failed to check socials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := newPoolKeys()
			chain := new(MockChainReader)
			chain.On("GetAccountData", mock.Anything, metadataAddress(keys.BaseMint)).
				Return(metadataAccount(keys.BaseMint, testURI), nil)
			docs := new(MockDocumentFetcher)
			docs.On("FetchDocument", mock.Anything, testURI).Return(tt.doc, tt.err)

			res := NewMutableFilter(chain, docs, true, zap.NewNop()).Execute(context.Background(), keys)

			assert.Equal(t, tt.want, res.OK)
			assert.Equal(t, tt.message, res.Message)
			docs.AssertExpectations(t)
		})
	}
}

func TestMutableFilterWithHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/socials.json":
			_, _ = w.Write([]byte(`{"extensions":{"telegram":"https://t.me/token"}}`))
		case "/slow.json":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"extensions":{"twitter":"x"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetcher := offchain.NewFetcher(offchain.Config{Timeout: 50 * time.Millisecond}, zap.NewNop())

	tests := []struct {
		path string
		want bool
	}{
		{"/socials.json", true},
		{"/slow.json", false},
		{"/missing.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			keys := newPoolKeys()
			chain := new(MockChainReader)
			chain.On("GetAccountData", mock.Anything, metadataAddress(keys.BaseMint)).
				Return(metadataAccount(keys.BaseMint, srv.URL+tt.path), nil)

			res := NewMutableFilter(chain, fetcher, true, zap.NewNop()).Execute(context.Background(), keys)
			assert.Equal(t, tt.want, res.OK)
		})
	}
}

// Bogus documents from other pools on a shared host must not reject a good pool.
func TestMutableFilterSharedFetcherIsolatesPools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good.json":
			_, _ = w.Write([]byte(`{"extensions":{"website":"https://token.example"}}`))
		case "/garbage.json":
			_, _ = w.Write([]byte(`not json`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetcher := offchain.NewFetcher(offchain.Config{}, zap.NewNop())
	chain := new(MockChainReader)
	mutable := NewMutableFilter(chain, fetcher, true, zap.NewNop())

	for i := 0; i < 10; i++ {
		path := "/missing.json"
		if i%2 == 1 {
			path = "/garbage.json"
		}
		keys := newPoolKeys()
		chain.On("GetAccountData", mock.Anything, metadataAddress(keys.BaseMint)).
			Return(metadataAccount(keys.BaseMint, srv.URL+path), nil)

		res := mutable.Execute(context.Background(), keys)
		assert.False(t, res.OK)
		assert.Equal(t, msgSocialsFailed, res.Message)
	}

	good := newPoolKeys()
	chain.On("GetAccountData", mock.Anything, metadataAddress(good.BaseMint)).
		Return(metadataAccount(good.BaseMint, srv.URL+"/good.json"), nil)

	res := mutable.Execute(context.Background(), good)
	assert.True(t, res.OK)
}

func TestHasSocials(t *testing.T) {
	assert.True(t, HasSocials(map[string]any{"extensions": map[string]any{"links": []any{"a"}}}))
	assert.True(t, HasSocials(map[string]any{"extensions": map[string]any{"nested": map[string]any{"a": 1}}}))
	assert.False(t, HasSocials(map[string]any{"extensions": map[string]any{"links": []any{}}}))
	assert.False(t, HasSocials(map[string]any{"extensions": "twitter"}))
	assert.False(t, HasSocials(nil))
}
