// Package action implements the NEAR Action tagged union: Borsh encoding
// with a frozen, on-chain-protocol tag order, and the JSON shape the RPC
// surface uses (snake_case fields, `{"Variant":{...}}` tagging, with the
// nullary CreateAccount variant additionally accepted as a bare string).
package action

// Kind tags which of the fourteen-case Action variant set a given Action
// carries. The table in the specification enumerates twelve concrete
// payload shapes; this package implements exactly those twelve, in the
// fixed order the on-chain runtime assigns tags, matching the frozen
// encoding invariant: implementations must not reorder (§3, §4.1). See
// DESIGN.md for the "14 vs. 12" discrepancy between the spec's prose and
// its own payload table.
type Kind uint8

const (
	KindCreateAccount Kind = iota
	KindDeployContract
	KindFunctionCall
	KindTransfer
	KindStake
	KindAddKey
	KindDeleteKey
	KindDeleteAccount
	KindDelegate
	KindDeployGlobalContract
	KindUseGlobalContract
	KindDeterministicStateInit
)

// String names a Kind the way it appears in the RPC JSON tag.
func (k Kind) String() string {
	switch k {
	case KindCreateAccount:
		return "CreateAccount"
	case KindDeployContract:
		return "DeployContract"
	case KindFunctionCall:
		return "FunctionCall"
	case KindTransfer:
		return "Transfer"
	case KindStake:
		return "Stake"
	case KindAddKey:
		return "AddKey"
	case KindDeleteKey:
		return "DeleteKey"
	case KindDeleteAccount:
		return "DeleteAccount"
	case KindDelegate:
		return "Delegate"
	case KindDeployGlobalContract:
		return "DeployGlobalContract"
	case KindUseGlobalContract:
		return "UseGlobalContract"
	case KindDeterministicStateInit:
		return "DeterministicStateInit"
	default:
		return "Unknown"
	}
}
