package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nearclient/near-go/pkg/keys"
	"github.com/nearclient/near-go/pkg/rpcerrors"
)

// BlockReference selects which block a view call is evaluated against.
// The zero value means "final" (§4.5's default). Block-id and epoch-id
// selectors both flow through the single BlockID field rather than being
// split into separate typed fields, so callers and the wire encoding agree
// on one representation instead of the two the source RPC inconsistently
// accepts.
type BlockReference struct {
	Finality string      // "final", "optimistic", or "" (defaults to "final")
	BlockID  interface{} // a block height (uint64) or hash (string); takes precedence over Finality
}

func (b BlockReference) apply(params map[string]interface{}) {
	if b.BlockID != nil {
		params["block_id"] = b.BlockID
		return
	}
	finality := b.Finality
	if finality == "" {
		finality = "final"
	}
	params["finality"] = finality
}

// Query wraps the "query" RPC method, defaulting to final-block reads
// unless blockRef overrides it (§4.5).
func (c *Client) Query(ctx context.Context, requestType string, extra map[string]interface{}, blockRef BlockReference) (json.RawMessage, error) {
	params := map[string]interface{}{"request_type": requestType}
	for k, v := range extra {
		params[k] = v
	}
	blockRef.apply(params)

	var raw json.RawMessage
	if err := c.Call(ctx, "query", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetAccount fetches the account view for accountID.
func (c *Client) GetAccount(ctx context.Context, accountID string, blockRef BlockReference) (*AccountView, error) {
	raw, err := c.Query(ctx, "view_account", map[string]interface{}{"account_id": accountID}, blockRef)
	if err != nil {
		return nil, classifyAccountQueryError(err, accountID)
	}
	var v AccountView
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, rpcerrors.New(rpcerrors.KindParseError, err.Error())
	}
	return &v, nil
}

// GetAccessKey fetches the access key view for (accountID, publicKey).
func (c *Client) GetAccessKey(ctx context.Context, accountID string, pub *keys.PublicKey, blockRef BlockReference) (*AccessKeyView, error) {
	raw, err := c.Query(ctx, "view_access_key", map[string]interface{}{
		"account_id": accountID,
		"public_key": pub.String(),
	}, blockRef)
	if err != nil {
		return nil, classifyAccessKeyQueryError(err, accountID, pub.String())
	}
	var v AccessKeyView
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, rpcerrors.New(rpcerrors.KindParseError, err.Error())
	}
	return &v, nil
}

// GetAccessKeyList fetches every access key registered to accountID.
func (c *Client) GetAccessKeyList(ctx context.Context, accountID string, blockRef BlockReference) (*AccessKeyListView, error) {
	raw, err := c.Query(ctx, "view_access_key_list", map[string]interface{}{"account_id": accountID}, blockRef)
	if err != nil {
		return nil, classifyAccountQueryError(err, accountID)
	}
	var v AccessKeyListView
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, rpcerrors.New(rpcerrors.KindParseError, err.Error())
	}
	return &v, nil
}

// ViewFunction calls a read-only contract method and decodes the
// returned bytes. An empty result (S4) is returned as (nil, nil), never
// as an error.
func (c *Client) ViewFunction(ctx context.Context, contractID, methodName string, args []byte, blockRef BlockReference) ([]byte, error) {
	raw, err := c.Query(ctx, "call_function", map[string]interface{}{
		"account_id":  contractID,
		"method_name": methodName,
		"args_base64": base64Encode(args),
	}, blockRef)
	if err != nil {
		return nil, err
	}

	var v ViewFunctionResult
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, rpcerrors.New(rpcerrors.KindParseError, err.Error())
	}
	if len(v.Error) > 0 {
		return nil, classifyViewFunctionError(v.Error, contractID, methodName)
	}
	if len(v.Result) == 0 {
		return nil, nil
	}
	return []byte(v.Result), nil
}

// SendTransaction submits a signed transaction's canonical bytes and
// waits until waitUntil, per §4.5.
func (c *Client) SendTransaction(ctx context.Context, signedTxBytes []byte, waitUntil WaitUntil) (*SendTransactionResult, error) {
	params := map[string]interface{}{
		"signed_tx_base64": base64Encode(signedTxBytes),
		"wait_until":       string(waitUntil),
	}
	var result SendTransactionResult
	if err := c.Call(ctx, "send_tx", params, &result); err != nil {
		return nil, err
	}
	if waitUntil.hasExecutionDetail() {
		if fcErr := scanForFunctionCallError(&result); fcErr != nil {
			return nil, fcErr
		}
	}
	return &result, nil
}

// GetTransactionStatus fetches a previously submitted transaction's
// outcome via EXPERIMENTAL_tx_status, including its receipts.
func (c *Client) GetTransactionStatus(ctx context.Context, txHash, senderAccountID string, waitUntil WaitUntil) (*SendTransactionResult, error) {
	params := map[string]interface{}{
		"tx_hash":           txHash,
		"sender_account_id": senderAccountID,
		"wait_until":        string(waitUntil),
	}
	var result SendTransactionResult
	if err := c.Call(ctx, "EXPERIMENTAL_tx_status", params, &result); err != nil {
		return nil, err
	}
	if waitUntil.hasExecutionDetail() {
		if fcErr := scanForFunctionCallError(&result); fcErr != nil {
			return nil, fcErr
		}
	}
	return &result, nil
}

// GetStatus fetches node status (chain id, sync info, latest block hash).
func (c *Client) GetStatus(ctx context.Context) (*StatusResult, error) {
	var result StatusResult
	if err := c.Call(ctx, "status", []interface{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetGasPrice fetches the gas price at blockHash, or the latest price if
// blockHash is empty.
func (c *Client) GetGasPrice(ctx context.Context, blockHash string) (*GasPriceResult, error) {
	var params []interface{}
	if blockHash == "" {
		params = []interface{}{nil}
	} else {
		params = []interface{}{blockHash}
	}
	var result GasPriceResult
	if err := c.Call(ctx, "gas_price", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// functionCallErrorPayload mirrors the subset of ActionError.kind.
// FunctionCallError (and the bare Failure.FunctionCallError shape) this
// client extracts (§4.5, §7).
type functionCallErrorPayload struct {
	ActionError *struct {
		Kind struct {
			FunctionCallError json.RawMessage `json:"FunctionCallError"`
		} `json:"kind"`
	} `json:"ActionError"`
	FunctionCallError json.RawMessage `json:"FunctionCallError"`
}

type executionErrorDetail struct {
	ExecutionError string `json:"ExecutionError"`
	HostError      struct {
		Panic string `json:"Panic"`
	} `json:"HostError"`
}

// scanForFunctionCallError walks transaction_outcome and every
// receipts_outcome looking for a function-call failure, per §4.5/§7.
func scanForFunctionCallError(result *SendTransactionResult) *rpcerrors.Error {
	if err := functionCallErrorFromStatus(result.TransactionOutcome.Outcome.Status, result.TransactionOutcome.Outcome.Logs); err != nil {
		return err
	}
	for _, r := range result.ReceiptsOutcome {
		if err := functionCallErrorFromStatus(r.Outcome.Status, r.Outcome.Logs); err != nil {
			return err
		}
	}
	return nil
}

func functionCallErrorFromStatus(status ExecutionStatus, logs []string) *rpcerrors.Error {
	if len(status.Failure) == 0 {
		return nil
	}
	var payload functionCallErrorPayload
	if err := json.Unmarshal(status.Failure, &payload); err != nil {
		return nil
	}
	raw := payload.FunctionCallError
	if payload.ActionError != nil && len(payload.ActionError.Kind.FunctionCallError) > 0 {
		raw = payload.ActionError.Kind.FunctionCallError
	}
	if len(raw) == 0 {
		return nil
	}
	var detail executionErrorDetail
	_ = json.Unmarshal(raw, &detail)
	panicMsg := detail.HostError.Panic
	if panicMsg == "" {
		panicMsg = detail.ExecutionError
	}
	return rpcerrors.NewFunctionCallError("", "", panicMsg, logs)
}

// classifyAccountQueryError upgrades a generic query failure to
// AccountDoesNotExistError when the underlying cause names the account.
func classifyAccountQueryError(err error, accountID string) error {
	rerr, ok := err.(*rpcerrors.Error)
	if !ok {
		return err
	}
	if rerr.Kind == rpcerrors.KindInternalServerError && strings.Contains(rerr.Message, accountID) {
		return rpcerrors.NewAccountDoesNotExistError(accountID)
	}
	return err
}

// classifyAccessKeyQueryError upgrades a generic query failure to
// AccessKeyDoesNotExistError when it plausibly concerns accountID/publicKey.
func classifyAccessKeyQueryError(err error, accountID, publicKey string) error {
	rerr, ok := err.(*rpcerrors.Error)
	if !ok {
		return err
	}
	if rerr.Kind == rpcerrors.KindInternalServerError &&
		(strings.Contains(rerr.Message, publicKey) || strings.Contains(rerr.Message, accountID)) {
		return rpcerrors.NewAccessKeyDoesNotExistError(accountID, publicKey)
	}
	return err
}

// classifyViewFunctionError turns an in-result query error field into a
// FunctionCallError carrying the calling context (§4.5).
func classifyViewFunctionError(raw json.RawMessage, contractID, methodName string) error {
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		msg = string(raw)
	}
	return rpcerrors.NewFunctionCallError(contractID, methodName, fmt.Sprintf("%v", msg), nil)
}
