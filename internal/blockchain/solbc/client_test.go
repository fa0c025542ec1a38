package solbc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// newRPCServer отвечает на JSON-RPC запросы заданными результатами по имени метода
func newRPCServer(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, ok := results[req.Method]
		if !ok {
			http.Error(w, "unexpected method", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	}))
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient([]string{url}, Options{Timeout: 2 * time.Second, MaxRetries: 2}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestGetAccountData(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	encoded := base64.StdEncoding.EncodeToString(payload)
	server := newRPCServer(t, map[string]string{
		"getAccountInfo": `{"context":{"slot":1},"value":{"data":["` + encoded + `","base64"],` +
			`"executable":false,"lamports":1000,"owner":"11111111111111111111111111111111","rentEpoch":0}}`,
	})
	defer server.Close()

	data, err := newTestClient(t, server.URL).GetAccountData(context.Background(), solana.NewWallet().PublicKey())

	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestGetAccountDataNotFound(t *testing.T) {
	server := newRPCServer(t, map[string]string{
		"getAccountInfo": `{"context":{"slot":1},"value":null}`,
	})
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetAccountData(context.Background(), solana.NewWallet().PublicKey())

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetTokenSupply(t *testing.T) {
	server := newRPCServer(t, map[string]string{
		"getTokenSupply": `{"context":{"slot":1},"value":{"amount":"1000000000000","decimals":6,` +
			`"uiAmount":1000000.0,"uiAmountString":"1000000"}}`,
	})
	defer server.Close()

	supply, err := newTestClient(t, server.URL).GetTokenSupply(context.Background(), solana.NewWallet().PublicKey())

	require.NoError(t, err)
	assert.Equal(t, 1_000_000.0, supply)
}

func TestGetTokenSupplyRetriesUnavailableNode(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		var req rpcRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":{"context":{"slot":1},` +
			`"value":{"amount":"42","decimals":0,"uiAmount":42,"uiAmountString":"42"}}}`))
	}))
	defer server.Close()

	supply, err := newTestClient(t, server.URL).GetTokenSupply(context.Background(), solana.NewWallet().PublicKey())

	require.NoError(t, err)
	assert.Equal(t, 42.0, supply)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
