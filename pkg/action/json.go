package action

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nearclient/near-go/pkg/keys"
)

// MarshalJSON renders a the way the RPC surface does: snake_case fields,
// `{"Variant": {...}}` tagging, big integers as decimal strings, gas as a
// JSON number (§6.3).
func MarshalJSON(a Action) ([]byte, error) {
	switch v := a.(type) {
	case *CreateAccount:
		return json.Marshal(map[string]any{"CreateAccount": struct{}{}})
	case *DeployContract:
		return json.Marshal(map[string]any{"DeployContract": map[string]any{
			"code": base64.StdEncoding.EncodeToString(v.Code),
		}})
	case *FunctionCall:
		return json.Marshal(map[string]any{"FunctionCall": map[string]any{
			"method_name": v.MethodName,
			"args":        base64.StdEncoding.EncodeToString(v.Args),
			"gas":         v.Gas,
			"deposit":     v.Deposit.Dec(),
		}})
	case *Transfer:
		return json.Marshal(map[string]any{"Transfer": map[string]any{
			"deposit": v.Deposit.Dec(),
		}})
	case *Stake:
		return json.Marshal(map[string]any{"Stake": map[string]any{
			"stake":      v.StakeAmount.Dec(),
			"public_key": v.PublicKey.String(),
		}})
	case *AddKey:
		return json.Marshal(map[string]any{"AddKey": map[string]any{
			"public_key": v.PublicKey.String(),
			"access_key": accessKeyToJSON(v.AccessKey),
		}})
	case *DeleteKey:
		return json.Marshal(map[string]any{"DeleteKey": map[string]any{
			"public_key": v.PublicKey.String(),
		}})
	case *DeleteAccount:
		return json.Marshal(map[string]any{"DeleteAccount": map[string]any{
			"beneficiary_id": v.BeneficiaryID,
		}})
	case *Delegate:
		daJSON, err := delegateActionToJSON(v.DelegateAction)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]any{"Delegate": map[string]any{
			"delegate_action": daJSON,
			"signature":       v.Signature.String(),
		}})
	case *DeployGlobalContract:
		return json.Marshal(map[string]any{"DeployGlobalContract": map[string]any{
			"code":        base64.StdEncoding.EncodeToString(v.Code),
			"deploy_mode": identifierModeToJSON(v.DeployMode),
		}})
	case *UseGlobalContract:
		return json.Marshal(map[string]any{"UseGlobalContract": map[string]any{
			"contract_identifier": contractIdentifierToJSON(v.ContractIdentifier),
		}})
	case *DeterministicStateInit:
		return json.Marshal(map[string]any{"DeterministicStateInit": map[string]any{
			"deposit":    v.Deposit.Dec(),
			"state_init": stateInitToJSON(v.StateInit),
		}})
	default:
		return nil, fmt.Errorf("action: unsupported action type %T", a)
	}
}

// UnmarshalJSON is the inverse of MarshalJSON. It accepts the bare string
// "CreateAccount" as well as the object form `{"CreateAccount":{}}` (§4.1).
func UnmarshalJSON(data []byte) (Action, error) {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != KindCreateAccount.String() {
			return nil, fmt.Errorf("action: bare string form only valid for CreateAccount, got %q", tag)
		}
		return &CreateAccount{}, nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("action: not a string or object: %w", err)
	}
	if len(m) != 1 {
		return nil, fmt.Errorf("action: expected exactly one variant key, got %d", len(m))
	}
	for tagName, raw := range m {
		return decodeVariantJSON(tagName, raw)
	}
	panic("unreachable")
}

func decodeVariantJSON(tag string, raw json.RawMessage) (Action, error) {
	switch tag {
	case "CreateAccount":
		return &CreateAccount{}, nil
	case "DeployContract":
		var p struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		code, err := base64.StdEncoding.DecodeString(p.Code)
		if err != nil {
			return nil, fmt.Errorf("action: DeployContract.code: %w", err)
		}
		return &DeployContract{Code: code}, nil
	case "FunctionCall":
		var p struct {
			MethodName string `json:"method_name"`
			Args       string `json:"args"`
			Gas        uint64 `json:"gas"`
			Deposit    string `json:"deposit"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		args, err := base64.StdEncoding.DecodeString(p.Args)
		if err != nil {
			return nil, fmt.Errorf("action: FunctionCall.args: %w", err)
		}
		deposit, err := uint256.FromDecimal(p.Deposit)
		if err != nil {
			return nil, fmt.Errorf("action: FunctionCall.deposit: %w", err)
		}
		return &FunctionCall{MethodName: p.MethodName, Args: args, Gas: p.Gas, Deposit: deposit}, nil
	case "Transfer":
		var p struct {
			Deposit string `json:"deposit"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		deposit, err := uint256.FromDecimal(p.Deposit)
		if err != nil {
			return nil, fmt.Errorf("action: Transfer.deposit: %w", err)
		}
		return &Transfer{Deposit: deposit}, nil
	case "Stake":
		var p struct {
			Stake     string `json:"stake"`
			PublicKey string `json:"public_key"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		stake, err := uint256.FromDecimal(p.Stake)
		if err != nil {
			return nil, fmt.Errorf("action: Stake.stake: %w", err)
		}
		pk, err := keys.NewPublicKeyFromString(p.PublicKey)
		if err != nil {
			return nil, err
		}
		return &Stake{StakeAmount: stake, PublicKey: pk}, nil
	case "AddKey":
		var p struct {
			PublicKey string          `json:"public_key"`
			AccessKey json.RawMessage `json:"access_key"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		pk, err := keys.NewPublicKeyFromString(p.PublicKey)
		if err != nil {
			return nil, err
		}
		ak, err := accessKeyFromJSON(p.AccessKey)
		if err != nil {
			return nil, err
		}
		return &AddKey{PublicKey: pk, AccessKey: ak}, nil
	case "DeleteKey":
		var p struct {
			PublicKey string `json:"public_key"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		pk, err := keys.NewPublicKeyFromString(p.PublicKey)
		if err != nil {
			return nil, err
		}
		return &DeleteKey{PublicKey: pk}, nil
	case "DeleteAccount":
		var p struct {
			BeneficiaryID string `json:"beneficiary_id"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &DeleteAccount{BeneficiaryID: p.BeneficiaryID}, nil
	case "Delegate":
		var p struct {
			DelegateAction json.RawMessage `json:"delegate_action"`
			Signature      string          `json:"signature"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		da, err := delegateActionFromJSON(p.DelegateAction)
		if err != nil {
			return nil, err
		}
		sig, err := parseSignatureString(p.Signature)
		if err != nil {
			return nil, err
		}
		return &Delegate{DelegateAction: da, Signature: sig}, nil
	case "DeployGlobalContract":
		var p struct {
			Code       string          `json:"code"`
			DeployMode json.RawMessage `json:"deploy_mode"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		code, err := base64.StdEncoding.DecodeString(p.Code)
		if err != nil {
			return nil, err
		}
		mode, err := identifierModeFromJSON(p.DeployMode)
		if err != nil {
			return nil, err
		}
		return &DeployGlobalContract{Code: code, DeployMode: mode}, nil
	case "UseGlobalContract":
		var p struct {
			ContractIdentifier json.RawMessage `json:"contract_identifier"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		id, err := contractIdentifierFromJSON(p.ContractIdentifier)
		if err != nil {
			return nil, err
		}
		return &UseGlobalContract{ContractIdentifier: id}, nil
	case "DeterministicStateInit":
		var p struct {
			Deposit   string          `json:"deposit"`
			StateInit json.RawMessage `json:"state_init"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		deposit, err := uint256.FromDecimal(p.Deposit)
		if err != nil {
			return nil, err
		}
		si, err := stateInitFromJSON(p.StateInit)
		if err != nil {
			return nil, err
		}
		return &DeterministicStateInit{Deposit: deposit, StateInit: si}, nil
	default:
		return nil, fmt.Errorf("action: unknown JSON action tag %q", tag)
	}
}

func accessKeyToJSON(ak AccessKey) map[string]any {
	return map[string]any{
		"nonce":      ak.Nonce,
		"permission": permissionToJSON(ak.Permission),
	}
}

func permissionToJSON(p Permission) any {
	switch v := p.(type) {
	case FullAccessPermission:
		return "FullAccess"
	case FunctionCallPermission:
		var allowance any
		if v.Allowance != nil {
			allowance = v.Allowance.Dec()
		}
		return map[string]any{"FunctionCall": map[string]any{
			"receiver_id":  v.ReceiverID,
			"method_names": v.MethodNames,
			"allowance":    allowance,
		}}
	default:
		return nil
	}
}

func accessKeyFromJSON(raw json.RawMessage) (AccessKey, error) {
	var p struct {
		Nonce      uint64          `json:"nonce"`
		Permission json.RawMessage `json:"permission"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return AccessKey{}, err
	}
	perm, err := permissionFromJSON(p.Permission)
	if err != nil {
		return AccessKey{}, err
	}
	return AccessKey{Nonce: p.Nonce, Permission: perm}, nil
}

func permissionFromJSON(raw json.RawMessage) (Permission, error) {
	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		if tag == "FullAccess" {
			return FullAccessPermission{}, nil
		}
		return nil, fmt.Errorf("action: unknown permission string %q", tag)
	}
	var m struct {
		FunctionCall struct {
			ReceiverID  string   `json:"receiver_id"`
			MethodNames []string `json:"method_names"`
			Allowance   *string  `json:"allowance"`
		} `json:"FunctionCall"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("action: invalid permission: %w", err)
	}
	var allowance *uint256.Int
	if m.FunctionCall.Allowance != nil {
		v, err := uint256.FromDecimal(*m.FunctionCall.Allowance)
		if err != nil {
			return nil, err
		}
		allowance = v
	}
	return FunctionCallPermission{
		ReceiverID:  m.FunctionCall.ReceiverID,
		MethodNames: m.FunctionCall.MethodNames,
		Allowance:   allowance,
	}, nil
}

func identifierModeToJSON(m GlobalContractDeployMode) any {
	switch v := m.(type) {
	case CodeHashMode:
		return "CodeHash"
	case AccountIDMode:
		return map[string]any{"AccountId": string(v)}
	default:
		return nil
	}
}

func identifierModeFromJSON(raw json.RawMessage) (GlobalContractDeployMode, error) {
	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		if tag == "CodeHash" {
			return CodeHashMode{}, nil
		}
		return nil, fmt.Errorf("action: unknown deploy mode string %q", tag)
	}
	var m struct {
		AccountID string `json:"AccountId"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return AccountIDMode(m.AccountID), nil
}

func contractIdentifierToJSON(id ContractIdentifier) any {
	switch v := id.(type) {
	case CodeHashIdentifier:
		return map[string]any{"CodeHash": base64.StdEncoding.EncodeToString(v[:])}
	case AccountIDIdentifier:
		return map[string]any{"AccountId": string(v)}
	default:
		return nil
	}
}

func contractIdentifierFromJSON(raw json.RawMessage) (ContractIdentifier, error) {
	var m struct {
		CodeHash  string `json:"CodeHash"`
		AccountID string `json:"AccountId"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m.CodeHash != "" {
		b, err := base64.StdEncoding.DecodeString(m.CodeHash)
		if err != nil {
			return nil, err
		}
		if len(b) != CodeHashLen {
			return nil, fmt.Errorf("action: CodeHash identifier must be %d bytes, got %d", CodeHashLen, len(b))
		}
		var h CodeHashIdentifier
		copy(h[:], b)
		return h, nil
	}
	return AccountIDIdentifier(m.AccountID), nil
}

func stateInitToJSON(s StateInit) map[string]any {
	entries := make([]map[string]string, len(s.Data))
	for i, e := range s.Data {
		entries[i] = map[string]string{
			"key":   base64.StdEncoding.EncodeToString(e.Key),
			"value": base64.StdEncoding.EncodeToString(e.Value),
		}
	}
	var code any
	if s.Code != nil {
		code = base64.StdEncoding.EncodeToString(*s.Code)
	}
	return map[string]any{"code": code, "data": entries}
}

func stateInitFromJSON(raw json.RawMessage) (StateInit, error) {
	var p struct {
		Code *string `json:"code"`
		Data []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return StateInit{}, err
	}
	var code *[]byte
	if p.Code != nil {
		b, err := base64.StdEncoding.DecodeString(*p.Code)
		if err != nil {
			return StateInit{}, err
		}
		code = &b
	}
	entries := make([]StateEntry, len(p.Data))
	for i, e := range p.Data {
		k, err := base64.StdEncoding.DecodeString(e.Key)
		if err != nil {
			return StateInit{}, err
		}
		v, err := base64.StdEncoding.DecodeString(e.Value)
		if err != nil {
			return StateInit{}, err
		}
		entries[i] = StateEntry{Key: k, Value: v}
	}
	return StateInit{Code: code, Data: entries}, nil
}

func delegateActionToJSON(d *DelegateAction) (map[string]any, error) {
	actions := make([]json.RawMessage, len(d.Actions))
	for i, a := range d.Actions {
		raw, err := MarshalJSON(a)
		if err != nil {
			return nil, err
		}
		actions[i] = raw
	}
	return map[string]any{
		"sender_id":        d.SenderID,
		"receiver_id":      d.ReceiverID,
		"actions":          actions,
		"nonce":             d.Nonce,
		"max_block_height": d.MaxBlockHeight,
		"public_key":       d.PublicKey.String(),
	}, nil
}

func delegateActionFromJSON(raw json.RawMessage) (*DelegateAction, error) {
	var p struct {
		SenderID       string            `json:"sender_id"`
		ReceiverID     string            `json:"receiver_id"`
		Actions        []json.RawMessage `json:"actions"`
		Nonce          uint64            `json:"nonce"`
		MaxBlockHeight uint64            `json:"max_block_height"`
		PublicKey      string            `json:"public_key"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	acts := make([]Action, len(p.Actions))
	for i, a := range p.Actions {
		act, err := UnmarshalJSON(a)
		if err != nil {
			return nil, err
		}
		acts[i] = act
	}
	pk, err := keys.NewPublicKeyFromString(p.PublicKey)
	if err != nil {
		return nil, err
	}
	return &DelegateAction{
		SenderID:       p.SenderID,
		ReceiverID:     p.ReceiverID,
		Actions:        acts,
		Nonce:          p.Nonce,
		MaxBlockHeight: p.MaxBlockHeight,
		PublicKey:      pk,
	}, nil
}

func parseSignatureString(s string) (*keys.Signature, error) {
	return keys.NewSignatureFromString(s)
}
