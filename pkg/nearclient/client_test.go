package nearclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/nearclient/near-go/pkg/keys"
	"github.com/nearclient/near-go/pkg/rpcclient"
)

type testReq struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func writeResult(t *testing.T, w http.ResponseWriter, id uint64, result interface{}) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	blockHash := base58.Encode(make([]byte, 32))
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req testReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Method {
		case "status":
			writeResult(t, w, req.ID, map[string]interface{}{
				"chain_id": "testnet",
				"sync_info": map[string]interface{}{
					"latest_block_hash": blockHash,
				},
			})
		case "query":
			var params map[string]interface{}
			require.NoError(t, json.Unmarshal(req.Params, &params))
			switch params["request_type"] {
			case "view_account":
				writeResult(t, w, req.ID, map[string]interface{}{"amount": "1000000000000000000000000", "code_hash": "11111111111111111111111111111111"})
			case "view_access_key":
				writeResult(t, w, req.ID, map[string]interface{}{"nonce": 7, "permission": "FullAccess"})
			case "call_function":
				writeResult(t, w, req.ID, map[string]interface{}{"result": []int{1, 2, 3}, "logs": []string{}})
			default:
				t.Fatalf("unexpected request_type %v", params["request_type"])
			}
		case "gas_price":
			writeResult(t, w, req.ID, map[string]interface{}{"gas_price": "100000000"})
		case "send_tx":
			writeResult(t, w, req.ID, map[string]interface{}{"final_execution_status": "NONE"})
		default:
			t.Fatalf("unexpected method %q", req.Method)
		}
	}))
}

func TestNewResolvesNetworkPreset(t *testing.T) {
	c, err := New(WithNetwork("testnet"))
	require.NoError(t, err)
	require.Equal(t, "https://rpc.testnet.near.org", c.cfg.rpcURL)
}

func TestNewRejectsUnknownNetwork(t *testing.T) {
	_, err := New(WithNetwork("bogus"))
	require.Error(t, err)
}

func TestNewRegistersPrivateKeyAndDefaultSigner(t *testing.T) {
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)
	c, err := New(WithNetwork("localnet"), WithPrivateKey("alice.near", kp.SecretString()))
	require.NoError(t, err)
	require.Equal(t, "alice.near", c.cfg.defaultSignerID)
	got, err := c.cfg.store.Get("alice.near")
	require.NoError(t, err)
	require.Equal(t, kp.PublicKey().String(), got.PublicKey().String())
}

func TestViewAndAccountAndGasPrice(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c, err := New(WithRPCURL(srv.URL), WithRetryConfig(0, 1))
	require.NoError(t, err)

	result, err := c.View(context.Background(), "contract.near", "get_value", nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, result)

	acc, err := c.Account(context.Background(), "alice.near")
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000000000", acc.Amount)

	gp, err := c.GasPrice(context.Background())
	require.NoError(t, err)
	require.Equal(t, "100000000", gp.GasPrice)
}

func TestTransactionSendUsesConfiguredSigner(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)
	c, err := New(WithRPCURL(srv.URL), WithRetryConfig(0, 1), WithPrivateKey("alice.near", kp.SecretString()))
	require.NoError(t, err)

	result, err := c.Call(context.Background(), "", "contract.near", "increment", []byte(`{}`), 30_000_000_000_000, uint256.NewInt(0))
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestTransactionFailsWithoutSigner(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c, err := New(WithRPCURL(srv.URL))
	require.NoError(t, err)
	_, err = c.Transaction("")
	require.Error(t, err)
}

func TestConfigRetryOverride(t *testing.T) {
	c, err := New(WithRPCURL("http://localhost:1"), WithRetryConfig(2, 5))
	require.NoError(t, err)
	require.Equal(t, 2, c.cfg.maxRetries)
	require.Equal(t, 5*time.Millisecond, c.cfg.initialDelay)
}
