package rpcclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nearclient/near-go/pkg/rpcerrors"
)

func writeResult(t *testing.T, w http.ResponseWriter, id uint64, result interface{}) {
	t.Helper()
	resultBytes, err := json.Marshal(result)
	require.NoError(t, err)
	env := response{Jsonrpc: "2.0", ID: id, Result: resultBytes}
	require.NoError(t, json.NewEncoder(w).Encode(env))
}

func TestCallSucceedsFirstTry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeResult(t, w, req.ID, map[string]string{"chain_id": "testnet"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithInitialDelay(time.Millisecond))
	var out map[string]string
	require.NoError(t, c.Call(context.Background(), "status", []interface{}{}, &out))
	require.Equal(t, "testnet", out["chain_id"])
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestCallRetriesOn503ThenSucceeds(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeResult(t, w, req.ID, map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithInitialDelay(time.Millisecond))
	var out map[string]string
	require.NoError(t, c.Call(context.Background(), "status", []interface{}{}, &out))
	require.Equal(t, "yes", out["ok"])
	require.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestCallDoesNotRetryOn400(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, WithInitialDelay(time.Millisecond))
	err := c.Call(context.Background(), "status", []interface{}{}, nil)
	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestCallExhaustsRetriesAndSurfacesLastError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, WithInitialDelay(time.Millisecond), WithMaxRetries(2))
	err := c.Call(context.Background(), "status", []interface{}{}, nil)
	require.Error(t, err)
	var rerr *rpcerrors.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, rpcerrors.KindNetworkError, rerr.Kind)
	require.EqualValues(t, 3, atomic.LoadInt32(&hits)) // 1 + maxRetries
}

func TestClassifyRPCErrorByCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		env := response{
			Jsonrpc: "2.0",
			ID:      req.ID,
			Error: &rpcErrorObject{
				Name:    "HANDLER_ERROR",
				Message: "boom",
				Cause:   &rpcErrorCause{Name: "TIMEOUT_ERROR"},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(env))
	}))
	defer srv.Close()

	c := New(srv.URL, WithInitialDelay(time.Millisecond))
	err := c.Call(context.Background(), "status", []interface{}{}, nil)
	require.Error(t, err)
	var rerr *rpcerrors.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, rpcerrors.KindTimeoutError, rerr.Kind)
}

func TestClassifyRPCErrorInvalidNonce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		env := response{
			Jsonrpc: "2.0",
			ID:      req.ID,
			Error: &rpcErrorObject{
				Name:    "HANDLER_ERROR",
				Message: "[InvalidNonce]",
				Cause: &rpcErrorCause{
					Name: "INVALID_TRANSACTION",
					Info: json.RawMessage(`{"InvalidNonce":{"tx_nonce":8,"ak_nonce":9}}`),
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(env))
	}))
	defer srv.Close()

	c := New(srv.URL, WithInitialDelay(time.Millisecond), WithMaxRetries(0))
	err := c.Call(context.Background(), "send_tx", []interface{}{}, nil)
	require.Error(t, err)
	var rerr *rpcerrors.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, rpcerrors.KindInvalidNonceError, rerr.Kind)
	details, ok := rerr.Details.(rpcerrors.InvalidNonceDetails)
	require.True(t, ok)
	require.Equal(t, uint64(8), details.TxNonce)
	require.Equal(t, uint64(9), details.AkNonce)
}

func TestClassifyRPCErrorInvalidTransactionWithoutInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		env := response{
			Jsonrpc: "2.0",
			ID:      req.ID,
			Error: &rpcErrorObject{
				Name:    "HANDLER_ERROR",
				Message: "invalid transaction",
				Cause:   &rpcErrorCause{Name: "INVALID_TRANSACTION"},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(env))
	}))
	defer srv.Close()

	c := New(srv.URL, WithInitialDelay(time.Millisecond), WithMaxRetries(0))
	err := c.Call(context.Background(), "send_tx", []interface{}{}, nil)
	require.Error(t, err)
	var rerr *rpcerrors.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, rpcerrors.KindInvalidTransactionError, rerr.Kind)
	require.False(t, rerr.Retryable())
}

func TestGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "status", req.Method)
		writeResult(t, w, req.ID, StatusResult{ChainID: "mainnet"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithInitialDelay(time.Millisecond))
	status, err := c.GetStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, "mainnet", status.ChainID)
}

func TestViewFunctionEmptyResultIsNilNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeResult(t, w, req.ID, ViewFunctionResult{Result: ByteArray{}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithInitialDelay(time.Millisecond))
	out, err := c.ViewFunction(context.Background(), "c.near", "m", []byte("{}"), BlockReference{})
	require.NoError(t, err)
	require.Nil(t, out)
}
