package rpcclient

import "encoding/json"

// request is the JSON-RPC 2.0 envelope every call sends (§4.5, §6.3).
type request struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// response is the JSON-RPC 2.0 envelope every call receives.
type response struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcErrorObject `json:"error"`
}

// rpcErrorObject is the NEAR RPC-layer error shape: a name, an optional
// nested cause (itself named), and a free-form message/data (§4.5, §7).
type rpcErrorObject struct {
	Name    string          `json:"name"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Cause   *rpcErrorCause  `json:"cause"`
}

type rpcErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info"`
}

// AccessKeyView is the result shape of a query(request_type:"view_access_key").
type AccessKeyView struct {
	Nonce      uint64          `json:"nonce"`
	Permission json.RawMessage `json:"permission"`
	BlockHash  string          `json:"block_hash"`
	BlockHeight uint64         `json:"block_height"`
}

// AccessKeyListEntry is one entry of query(request_type:"view_access_key_list").
type AccessKeyListEntry struct {
	PublicKey  string          `json:"public_key"`
	AccessKey  AccessKeyView   `json:"access_key"`
}

// AccessKeyListView is the result of query(request_type:"view_access_key_list").
type AccessKeyListView struct {
	Keys []AccessKeyListEntry `json:"keys"`
}

// AccountView is the result shape of a query(request_type:"view_account").
type AccountView struct {
	Amount        string `json:"amount"`
	Locked        string `json:"locked"`
	CodeHash      string `json:"code_hash"`
	StorageUsage  uint64 `json:"storage_usage"`
	StoragePaidAt uint64 `json:"storage_paid_at"`
	BlockHash     string `json:"block_hash"`
	BlockHeight   uint64 `json:"block_height"`
}

// ByteArray is a NEAR RPC `[u8]` field: the wire form is a JSON array of
// byte values (not a base64 string).
type ByteArray []byte

// MarshalJSON encodes b as a JSON array of byte values.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON decodes a JSON array of byte values into b.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// ViewFunctionResult is the result shape of query(request_type:"call_function").
type ViewFunctionResult struct {
	Result      ByteArray       `json:"result"`
	Logs        []string        `json:"logs"`
	BlockHash   string          `json:"block_hash"`
	BlockHeight uint64          `json:"block_height"`
	Error       json.RawMessage `json:"error"`
}

// StatusResult is the result of the status RPC.
type StatusResult struct {
	ChainID           string `json:"chain_id"`
	LatestProtocolVer int    `json:"latest_protocol_version"`
	SyncInfo          struct {
		LatestBlockHash   string `json:"latest_block_hash"`
		LatestBlockHeight uint64 `json:"latest_block_height"`
		Syncing           bool   `json:"syncing"`
	} `json:"sync_info"`
}

// GasPriceResult is the result of the gas_price RPC.
type GasPriceResult struct {
	GasPrice string `json:"gas_price"`
}

// WaitUntil is the finality level a caller requests when submitting or
// polling a transaction (§2, §4.5).
type WaitUntil string

// The ladder of finality levels, from no-wait through fully final (§2).
const (
	WaitNone            WaitUntil = "NONE"
	WaitIncluded        WaitUntil = "INCLUDED"
	WaitExecutedOptimistic WaitUntil = "EXECUTED_OPTIMISTIC"
	WaitIncludedFinal   WaitUntil = "INCLUDED_FINAL"
	WaitExecuted        WaitUntil = "EXECUTED"
	WaitFinal           WaitUntil = "FINAL"
)

// hasExecutionDetail reports whether w is one of the variants that carries
// transaction_outcome/receipts_outcome (as opposed to NONE/INCLUDED/
// INCLUDED_FINAL, which the builder fills in locally, §4.5).
func (w WaitUntil) hasExecutionDetail() bool {
	switch w {
	case WaitExecutedOptimistic, WaitExecuted, WaitFinal:
		return true
	default:
		return false
	}
}

// ExecutionStatus is the tagged-union outcome of one transaction or
// receipt application: exactly one field is populated.
type ExecutionStatus struct {
	SuccessValue       []byte          `json:"SuccessValue,omitempty"`
	SuccessReceiptID   string          `json:"SuccessReceiptId,omitempty"`
	Failure            json.RawMessage `json:"Failure,omitempty"`
	Unknown            bool            `json:"-"`
}

// Outcome is one transaction_outcome/receipts_outcome entry.
type Outcome struct {
	ID      string `json:"id"`
	Outcome struct {
		Logs     []string        `json:"logs"`
		Status   ExecutionStatus `json:"status"`
		GasBurnt uint64          `json:"gas_burnt"`
	} `json:"outcome"`
}

// SendTransactionResult is the tagged-union response of send_tx /
// EXPERIMENTAL_tx_status (§4.5, §6.3).
type SendTransactionResult struct {
	FinalExecutionStatus string          `json:"final_execution_status"`
	Status                ExecutionStatus `json:"status"`
	Transaction           json.RawMessage `json:"transaction"`
	TransactionOutcome    Outcome         `json:"transaction_outcome"`
	ReceiptsOutcome       []Outcome       `json:"receipts_outcome"`
}

// LocalTransactionRef is what the builder synthesizes for NONE/INCLUDED/
// INCLUDED_FINAL responses, which carry no execution detail (§4.5).
type LocalTransactionRef struct {
	Hash       string `json:"hash"`
	SignerID   string `json:"signer_id"`
	ReceiverID string `json:"receiver_id"`
	Nonce      uint64 `json:"nonce"`
}
