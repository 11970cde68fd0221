// Package rpcerrors is the client-side error taxonomy for the NEAR JSON-RPC
// surface: a single Error type carrying a stable Kind, a human message, a
// Retryable verdict, and kind-specific structured Details, plus the
// classifiers that turn RPC causes, HTTP statuses, and in-result query
// errors into that taxonomy (§7).
package rpcerrors

import (
	"encoding/json"
	"fmt"
)

// Kind identifies one taxonomy member. Downstream code switches on Kind
// rather than on message text.
type Kind string

// The full error taxonomy (§7).
const (
	KindNetworkError            Kind = "NetworkError"
	KindTimeoutError            Kind = "TimeoutError"
	KindInternalServerError     Kind = "InternalServerError"
	KindShardUnavailableError   Kind = "ShardUnavailableError"
	KindNodeNotSyncedError      Kind = "NodeNotSyncedError"
	KindInvalidNonceError       Kind = "InvalidNonceError"
	KindInvalidTransactionError Kind = "InvalidTransactionError"
	KindAccountDoesNotExist     Kind = "AccountDoesNotExistError"
	KindAccessKeyDoesNotExist   Kind = "AccessKeyDoesNotExistError"
	KindInvalidAccountError     Kind = "InvalidAccountError"
	KindInvalidAccountIdError   Kind = "InvalidAccountIdError"
	KindContractNotDeployed     Kind = "ContractNotDeployedError"
	KindContractStateTooLarge   Kind = "ContractStateTooLargeError"
	KindContractExecutionError  Kind = "ContractExecutionError"
	KindFunctionCallError       Kind = "FunctionCallError"
	KindUnknownBlockError       Kind = "UnknownBlockError"
	KindUnknownChunkError       Kind = "UnknownChunkError"
	KindUnknownEpochError       Kind = "UnknownEpochError"
	KindUnknownReceiptError     Kind = "UnknownReceiptError"
	KindInvalidShardIdError     Kind = "InvalidShardIdError"
	KindParseError              Kind = "ParseError"
	KindInsufficientBalance     Kind = "InsufficientBalanceError"
	KindGasLimitExceeded        Kind = "GasLimitExceededError"
	KindSignatureError          Kind = "SignatureError"
	KindWalletError             Kind = "WalletError"
)

// InvalidNonceDetails is Error.Details for KindInvalidNonceError.
type InvalidNonceDetails struct {
	TxNonce uint64
	AkNonce uint64
}

// InvalidTransactionDetails is Error.Details for KindInvalidTransactionError.
type InvalidTransactionDetails struct {
	ShardCongested bool
	ShardStuck     bool
}

// AccessKeyDoesNotExistDetails is Error.Details for KindAccessKeyDoesNotExist.
type AccessKeyDoesNotExistDetails struct {
	AccountID string
	PublicKey string
}

// FunctionCallDetails is Error.Details for KindFunctionCallError.
type FunctionCallDetails struct {
	ContractID string
	MethodName string
	Panic      string
	Logs       []string
}

// InsufficientBalanceDetails is Error.Details for KindInsufficientBalance.
type InsufficientBalanceDetails struct {
	Required  string
	Available string
}

// GasLimitExceededDetails is Error.Details for KindGasLimitExceeded.
type GasLimitExceededDetails struct {
	Used  uint64
	Limit uint64
}

// AccountIDDetails is Error.Details for the simple {accountId} kinds:
// AccountDoesNotExistError, InvalidAccountError, ContractNotDeployedError,
// ContractStateTooLargeError.
type AccountIDDetails struct {
	AccountID string
}

// ContractExecutionDetails is Error.Details for KindContractExecutionError.
type ContractExecutionDetails struct {
	ContractID string
	MethodName string
	Details    string
}

// Error is the common base every taxonomy member shares.
type Error struct {
	Kind      Kind
	Message   string
	retryable bool
	Details   interface{}
	cause     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s - %s", e.Kind, e.Message)
}

// Retryable reports whether the RPC client's retry loop may resubmit the
// request that produced this error.
func (e *Error) Retryable() bool { return e.retryable }

// Unwrap exposes the underlying transport/library error, if any, to
// errors.Is/errors.As chains.
func (e *Error) Unwrap() error { return e.cause }

// Is reports two *Error values equal when they share a Kind, so callers
// can write errors.Is(err, rpcerrors.New(rpcerrors.KindTimeoutError, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs a bare Error of the given kind. Retryability is looked
// up from the taxonomy table; use the New*Error constructors below when a
// structured Details payload applies.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, retryable: defaultRetryable(kind)}
}

// Wrap is like New but attaches cause as the Unwrap target.
func Wrap(kind Kind, message string, cause error) *Error {
	e := New(kind, message)
	e.cause = cause
	return e
}

func defaultRetryable(kind Kind) bool {
	switch kind {
	case KindNetworkError, KindTimeoutError, KindInternalServerError,
		KindShardUnavailableError, KindNodeNotSyncedError, KindInvalidNonceError:
		return true
	default:
		return false
	}
}

// NewInvalidNonceError builds the InvalidNonceError parsed from an
// InvalidTxError.InvalidNonce cause; always retryable (the builder
// refreshes the nonce and resubmits, §4.6).
func NewInvalidNonceError(txNonce, akNonce uint64) *Error {
	e := New(KindInvalidNonceError, fmt.Sprintf("tx nonce %d invalid for access key nonce %d", txNonce, akNonce))
	e.Details = InvalidNonceDetails{TxNonce: txNonce, AkNonce: akNonce}
	return e
}

// NewInvalidTransactionError builds INVALID_TRANSACTION, retryable only
// when the shard is congested or stuck (§7).
func NewInvalidTransactionError(message string, shardCongested, shardStuck bool) *Error {
	e := New(KindInvalidTransactionError, message)
	e.retryable = shardCongested || shardStuck
	e.Details = InvalidTransactionDetails{ShardCongested: shardCongested, ShardStuck: shardStuck}
	return e
}

// NewAccountDoesNotExistError builds UNKNOWN_ACCOUNT.
func NewAccountDoesNotExistError(accountID string) *Error {
	e := New(KindAccountDoesNotExist, fmt.Sprintf("account %q does not exist", accountID))
	e.Details = AccountIDDetails{AccountID: accountID}
	return e
}

// NewAccessKeyDoesNotExistError is produced by classifying an in-result
// query error against the calling context (accountId, publicKey).
func NewAccessKeyDoesNotExistError(accountID, publicKey string) *Error {
	e := New(KindAccessKeyDoesNotExist, fmt.Sprintf("access key %s does not exist for account %q", publicKey, accountID))
	e.Details = AccessKeyDoesNotExistDetails{AccountID: accountID, PublicKey: publicKey}
	return e
}

// NewInvalidAccountError builds INVALID_ACCOUNT.
func NewInvalidAccountError(accountID string) *Error {
	e := New(KindInvalidAccountError, fmt.Sprintf("invalid account %q", accountID))
	e.Details = AccountIDDetails{AccountID: accountID}
	return e
}

// NewInvalidAccountIdError builds the bare account-id-syntax variant.
func NewInvalidAccountIdError(accountID string) *Error {
	e := New(KindInvalidAccountIdError, fmt.Sprintf("invalid account id %q", accountID))
	e.Details = AccountIDDetails{AccountID: accountID}
	return e
}

// NewContractNotDeployedError builds NO_CONTRACT_CODE.
func NewContractNotDeployedError(accountID string) *Error {
	e := New(KindContractNotDeployed, fmt.Sprintf("no contract deployed at %q", accountID))
	e.Details = AccountIDDetails{AccountID: accountID}
	return e
}

// NewContractStateTooLargeError builds TOO_LARGE_CONTRACT_STATE.
func NewContractStateTooLargeError(accountID string) *Error {
	e := New(KindContractStateTooLarge, fmt.Sprintf("contract state too large at %q", accountID))
	e.Details = AccountIDDetails{AccountID: accountID}
	return e
}

// NewContractExecutionError builds CONTRACT_EXECUTION_ERROR.
func NewContractExecutionError(contractID, methodName, details string) *Error {
	e := New(KindContractExecutionError, details)
	e.Details = ContractExecutionDetails{ContractID: contractID, MethodName: methodName, Details: details}
	return e
}

// NewFunctionCallError is parsed from an ActionError.kind.FunctionCallError
// (ExecutionError or HostError variants) or from an in-result query error.
func NewFunctionCallError(contractID, methodName, panicMsg string, logs []string) *Error {
	e := New(KindFunctionCallError, panicMsg)
	e.Details = FunctionCallDetails{ContractID: contractID, MethodName: methodName, Panic: panicMsg, Logs: logs}
	return e
}

// NewInsufficientBalanceError builds the transaction-validation balance
// failure.
func NewInsufficientBalanceError(required, available string) *Error {
	e := New(KindInsufficientBalance, fmt.Sprintf("insufficient balance: required %s, available %s", required, available))
	e.Details = InsufficientBalanceDetails{Required: required, Available: available}
	return e
}

// NewGasLimitExceededError builds the execution gas-limit failure.
func NewGasLimitExceededError(used, limit uint64) *Error {
	e := New(KindGasLimitExceeded, fmt.Sprintf("gas limit exceeded: used %d, limit %d", used, limit))
	e.Details = GasLimitExceededDetails{Used: used, Limit: limit}
	return e
}

// NewSignatureError builds a local signing/verification failure.
func NewSignatureError(message string) *Error {
	return New(KindSignatureError, message)
}

// NewWalletError builds a local wallet-adapter failure, e.g. a missing
// capability: "does not support signMessage".
func NewWalletError(message string) *Error {
	return New(KindWalletError, message)
}

// NewNetworkError builds a transport-layer failure; retryable mirrors
// IsRetryableStatus for HTTP-sourced failures, or true for bare socket
// failures (no status available).
func NewNetworkError(message string, retryable bool) *Error {
	e := New(KindNetworkError, message)
	e.retryable = retryable
	return e
}

// simpleCause are RPC causes that map 1:1 onto a taxonomy Kind with no
// structured Details.
var simpleCause = map[string]Kind{
	"TIMEOUT_ERROR":           KindTimeoutError,
	"INTERNAL_ERROR":          KindInternalServerError,
	"UNAVAILABLE_SHARD":       KindShardUnavailableError,
	"NO_SYNCED_BLOCKS":        KindNodeNotSyncedError,
	"NOT_SYNCED_YET":          KindNodeNotSyncedError,
	"UNKNOWN_BLOCK":           KindUnknownBlockError,
	"UNKNOWN_CHUNK":           KindUnknownChunkError,
	"UNKNOWN_EPOCH":           KindUnknownEpochError,
	"UNKNOWN_RECEIPT":         KindUnknownReceiptError,
	"INVALID_SHARD_ID":        KindInvalidShardIdError,
	"PARSE_ERROR":             KindParseError,
	"REQUEST_VALIDATION_ERROR": KindParseError,
}

// FromCause classifies an RPC-layer error by its cause.name (preferred)
// or top-level name, per §4.5/§7, with no cause.info available. Prefer
// FromCauseWithInfo when the RPC response carries a cause.info payload,
// since INVALID_TRANSACTION can't be classified down to InvalidNonceError
// without it.
func FromCause(cause, message string) *Error {
	return FromCauseWithInfo(cause, message, nil)
}

// invalidTxCauseInfo is the externally-tagged shape of an
// InvalidTxError's cause.info payload: exactly one field is non-nil,
// naming which InvalidTxError variant occurred.
type invalidTxCauseInfo struct {
	InvalidNonce *struct {
		TxNonce uint64 `json:"tx_nonce"`
		AkNonce uint64 `json:"ak_nonce"`
	} `json:"InvalidNonce"`
	ShardCongested *struct{} `json:"ShardCongested"`
	ShardStuck     *struct{} `json:"ShardStuck"`
}

// FromCauseWithInfo is FromCause plus the cause's structured info, needed
// to tell an InvalidNonce InvalidTxError (retryable, carries the nonces
// the builder needs to resubmit, §4.6/§8 scenario S2) apart from any other
// INVALID_TRANSACTION shape.
func FromCauseWithInfo(cause, message string, info json.RawMessage) *Error {
	if kind, ok := simpleCause[cause]; ok {
		return New(kind, message)
	}
	switch cause {
	case "INVALID_ACCOUNT":
		return NewInvalidAccountError(message)
	case "NO_CONTRACT_CODE":
		return NewContractNotDeployedError(message)
	case "TOO_LARGE_CONTRACT_STATE":
		return NewContractStateTooLargeError(message)
	case "CONTRACT_EXECUTION_ERROR":
		return NewContractExecutionError("", "", message)
	case "UNKNOWN_ACCOUNT":
		return NewAccountDoesNotExistError(message)
	case "INVALID_TRANSACTION":
		return fromInvalidTransactionInfo(message, info)
	default:
		return New(KindInternalServerError, message)
	}
}

// fromInvalidTransactionInfo distinguishes InvalidNonce from the other
// InvalidTxError variants by inspecting cause.info; with no parseable
// info it falls back to a non-retryable InvalidTransactionError rather
// than guessing shard state.
func fromInvalidTransactionInfo(message string, info json.RawMessage) *Error {
	var parsed invalidTxCauseInfo
	if len(info) > 0 && json.Unmarshal(info, &parsed) == nil {
		if parsed.InvalidNonce != nil {
			return NewInvalidNonceError(parsed.InvalidNonce.TxNonce, parsed.InvalidNonce.AkNonce)
		}
		return NewInvalidTransactionError(message, parsed.ShardCongested != nil, parsed.ShardStuck != nil)
	}
	return NewInvalidTransactionError(message, false, false)
}

// IsRetryableStatus implements §8 invariant 7: a response is retryable
// iff its HTTP status is 408, 429, or in [500,600).
func IsRetryableStatus(code int) bool {
	return code == 408 || code == 429 || (code >= 500 && code < 600)
}

// FromHTTPStatus builds a NetworkError for a non-2xx HTTP response,
// retryable per IsRetryableStatus (§4.5).
func FromHTTPStatus(code int, message string) *Error {
	return NewNetworkError(fmt.Sprintf("http %d: %s", code, message), IsRetryableStatus(code))
}
