package chain

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params []interface{}   `json:"params"`
}

func newRPCServer(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req rpcRequest
		require.NoError(t, json.Unmarshal(body, &req))

		result, ok := results[req.Method]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchNativeBalance(t *testing.T) {
	srv := newRPCServer(t, map[string]string{
		"eth_getBalance": "0x14d1120d7b160000",
		"eth_chainId":    "0x1",
	})

	client, err := NewClient(context.Background(), srv.URL)
	require.NoError(t, err)
	defer client.Close()

	wei, err := client.FetchNativeBalance(context.Background(), "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", wei.String())

	chainID, err := client.GetChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), chainID.Int64())
}

func TestFetchNativeBalanceInvalidAddress(t *testing.T) {
	srv := newRPCServer(t, nil)

	client, err := NewClient(context.Background(), srv.URL)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.FetchNativeBalance(context.Background(), "nope")
	assert.Error(t, err)
}

func TestFetchNativeBalanceRPCError(t *testing.T) {
	srv := newRPCServer(t, map[string]string{})

	client, err := NewClient(context.Background(), srv.URL)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.FetchNativeBalance(context.Background(), "0x00000000000000000000000000000000000000aa")
	assert.Error(t, err)
}
