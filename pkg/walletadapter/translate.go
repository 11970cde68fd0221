package walletadapter

import (
	"fmt"

	ojson "github.com/nspcc-dev/go-ordered-json"

	"github.com/nearclient/near-go/pkg/action"
)

// ActionToWalletJSON turns one internal Action into the ordered,
// key-stable JSON object a browser/hardware wallet expects: binary
// `args` become a parsed JSON object, amounts and gas become decimal
// strings (§4.8).
func ActionToWalletJSON(a action.Action) (ojson.OrderedObject, error) {
	switch v := a.(type) {
	case *action.CreateAccount:
		return wrap("CreateAccount", ojson.OrderedObject{}), nil
	case *action.DeployContract:
		return wrap("DeployContract", ojson.OrderedObject{
			{Key: "code", Value: v.Code},
		}), nil
	case *action.FunctionCall:
		args, err := decodeArgs(v.Args)
		if err != nil {
			return nil, err
		}
		return wrap("FunctionCall", ojson.OrderedObject{
			{Key: "methodName", Value: v.MethodName},
			{Key: "args", Value: args},
			{Key: "gas", Value: fmt.Sprintf("%d", v.Gas)},
			{Key: "deposit", Value: v.Deposit.Dec()},
		}), nil
	case *action.Transfer:
		return wrap("Transfer", ojson.OrderedObject{
			{Key: "deposit", Value: v.Deposit.Dec()},
		}), nil
	case *action.Stake:
		return wrap("Stake", ojson.OrderedObject{
			{Key: "stake", Value: v.StakeAmount.Dec()},
			{Key: "publicKey", Value: v.PublicKey.String()},
		}), nil
	case *action.AddKey:
		perm, err := permissionToWalletJSON(v.AccessKey.Permission)
		if err != nil {
			return nil, err
		}
		return wrap("AddKey", ojson.OrderedObject{
			{Key: "publicKey", Value: v.PublicKey.String()},
			{Key: "accessKey", Value: ojson.OrderedObject{
				{Key: "nonce", Value: fmt.Sprintf("%d", v.AccessKey.Nonce)},
				{Key: "permission", Value: perm},
			}},
		}), nil
	case *action.DeleteKey:
		return wrap("DeleteKey", ojson.OrderedObject{
			{Key: "publicKey", Value: v.PublicKey.String()},
		}), nil
	case *action.DeleteAccount:
		return wrap("DeleteAccount", ojson.OrderedObject{
			{Key: "beneficiaryId", Value: v.BeneficiaryID},
		}), nil
	default:
		return nil, fmt.Errorf("walletadapter: action kind %v has no wallet JSON translation", a.Kind())
	}
}

func wrap(name string, body ojson.OrderedObject) ojson.OrderedObject {
	return ojson.OrderedObject{{Key: name, Value: body}}
}

// decodeArgs turns FunctionCall.Args (UTF-8 JSON bytes on the happy
// path) into a parsed JSON value the wallet can render. If the bytes are
// not valid UTF-8 JSON, they are passed through as a plain string.
func decodeArgs(args []byte) (interface{}, error) {
	if len(args) == 0 {
		return map[string]interface{}{}, nil
	}
	var v interface{}
	if err := ojson.Unmarshal(args, &v); err != nil {
		return string(args), nil
	}
	return v, nil
}

func permissionToWalletJSON(p action.Permission) (ojson.OrderedObject, error) {
	switch perm := p.(type) {
	case action.FullAccessPermission:
		return wrap("FullAccess", ojson.OrderedObject{}), nil
	case action.FunctionCallPermission:
		allowance := interface{}(nil)
		if perm.Allowance != nil {
			allowance = perm.Allowance.Dec()
		}
		return wrap("FunctionCall", ojson.OrderedObject{
			{Key: "receiverId", Value: perm.ReceiverID},
			{Key: "methodNames", Value: perm.MethodNames},
			{Key: "allowance", Value: allowance},
		}), nil
	default:
		return nil, fmt.Errorf("walletadapter: unknown permission type %T", p)
	}
}
