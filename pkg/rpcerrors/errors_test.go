package rpcerrors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorErrorsAs(t *testing.T) {
	err := New(KindInternalServerError, "boom")
	wrapped := fmt.Errorf("wrapping: %w", err)

	var actual *Error
	require.True(t, errors.As(wrapped, &actual))
	require.Equal(t, "InternalServerError - boom", actual.Error())

	var bad *fs.PathError
	require.False(t, errors.As(wrapped, &bad))
}

func TestErrorErrorsIs(t *testing.T) {
	err := New(KindTimeoutError, "slow")
	wrapped := fmt.Errorf("wrapping: %w", err)

	ref := New(KindTimeoutError, "different message")
	require.True(t, errors.Is(wrapped, ref))

	require.False(t, errors.Is(wrapped, New(KindParseError, "slow")))
}

func TestDefaultRetryability(t *testing.T) {
	require.True(t, New(KindNetworkError, "").Retryable())
	require.True(t, New(KindTimeoutError, "").Retryable())
	require.True(t, New(KindInternalServerError, "").Retryable())
	require.True(t, New(KindShardUnavailableError, "").Retryable())
	require.True(t, New(KindNodeNotSyncedError, "").Retryable())
	require.True(t, New(KindInvalidNonceError, "").Retryable())

	require.False(t, New(KindAccountDoesNotExist, "").Retryable())
	require.False(t, New(KindParseError, "").Retryable())
	require.False(t, New(KindSignatureError, "").Retryable())
}

func TestInvalidTransactionErrorRetryableOnlyWhenCongestedOrStuck(t *testing.T) {
	require.False(t, NewInvalidTransactionError("x", false, false).Retryable())
	require.True(t, NewInvalidTransactionError("x", true, false).Retryable())
	require.True(t, NewInvalidTransactionError("x", false, true).Retryable())
}

func TestIsRetryableStatus(t *testing.T) {
	retryable := []int{408, 429, 500, 503, 599}
	for _, c := range retryable {
		require.True(t, IsRetryableStatus(c), "status %d should be retryable", c)
	}
	nonRetryable := []int{200, 400, 401, 403, 404, 407, 499}
	for _, c := range nonRetryable {
		require.False(t, IsRetryableStatus(c), "status %d should not be retryable", c)
	}
}

func TestFromHTTPStatus(t *testing.T) {
	e := FromHTTPStatus(503, "service unavailable")
	require.Equal(t, KindNetworkError, e.Kind)
	require.True(t, e.Retryable())

	e2 := FromHTTPStatus(404, "not found")
	require.False(t, e2.Retryable())
}

func TestFromCauseStructuredKinds(t *testing.T) {
	e := FromCause("TIMEOUT_ERROR", "timed out")
	require.Equal(t, KindTimeoutError, e.Kind)
	require.True(t, e.Retryable())

	e2 := FromCause("UNKNOWN_ACCOUNT", "missing.near")
	require.Equal(t, KindAccountDoesNotExist, e2.Kind)
	details, ok := e2.Details.(AccountIDDetails)
	require.True(t, ok)
	require.Equal(t, "missing.near", details.AccountID)
}

func TestFromCauseWithInfoInvalidNonce(t *testing.T) {
	info := []byte(`{"InvalidNonce":{"tx_nonce":8,"ak_nonce":9}}`)
	e := FromCauseWithInfo("INVALID_TRANSACTION", "[InvalidNonce]", info)
	require.Equal(t, KindInvalidNonceError, e.Kind)
	require.True(t, e.Retryable())
	d, ok := e.Details.(InvalidNonceDetails)
	require.True(t, ok)
	require.Equal(t, uint64(8), d.TxNonce)
	require.Equal(t, uint64(9), d.AkNonce)
}

func TestFromCauseWithInfoInvalidTransactionFallback(t *testing.T) {
	e := FromCauseWithInfo("INVALID_TRANSACTION", "bad tx", nil)
	require.Equal(t, KindInvalidTransactionError, e.Kind)
	require.False(t, e.Retryable())

	e2 := FromCauseWithInfo("INVALID_TRANSACTION", "congested", []byte(`{"ShardCongested":{}}`))
	require.Equal(t, KindInvalidTransactionError, e2.Kind)
	require.True(t, e2.Retryable())
}

func TestFromCauseHasNoInfoByDefault(t *testing.T) {
	e := FromCause("INVALID_TRANSACTION", "bad tx")
	require.Equal(t, KindInvalidTransactionError, e.Kind)
	require.False(t, e.Retryable())
}

func TestInvalidNonceErrorDetails(t *testing.T) {
	e := NewInvalidNonceError(11, 10)
	require.True(t, e.Retryable())
	d, ok := e.Details.(InvalidNonceDetails)
	require.True(t, ok)
	require.Equal(t, uint64(11), d.TxNonce)
	require.Equal(t, uint64(10), d.AkNonce)
}
