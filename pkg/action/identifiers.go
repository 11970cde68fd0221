package action

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nearclient/near-go/pkg/codec"
)

// identifierTag orders the two ways a global contract can be named.
// CodeHash sorts before AccountID in both ContractIdentifier and
// GlobalContractDeployMode.
type identifierTag uint8

const (
	identifierTagCodeHash identifierTag = iota
	identifierTagAccountID
)

// CodeHashLen is the fixed width of a global contract's code hash.
const CodeHashLen = 32

// ContractIdentifier names a previously-deployed global contract, either by
// the account that deployed it or by its code hash.
type ContractIdentifier interface {
	identifierTag() identifierTag
	encodeBorsh(w *codec.Writer)
}

// AccountIDIdentifier names a global contract by the account it was
// deployed under.
type AccountIDIdentifier string

func (AccountIDIdentifier) identifierTag() identifierTag { return identifierTagAccountID }
func (a AccountIDIdentifier) encodeBorsh(w *codec.Writer) {
	w.WriteString(string(a))
}

// CodeHashIdentifier names a global contract by its 32-byte code hash.
type CodeHashIdentifier [CodeHashLen]byte

func (CodeHashIdentifier) identifierTag() identifierTag { return identifierTagCodeHash }
func (c CodeHashIdentifier) encodeBorsh(w *codec.Writer) {
	w.WriteBytesRaw(c[:])
}

func decodeContractIdentifier(r *codec.Reader) ContractIdentifier {
	tag := r.ReadU8()
	if r.Err() != nil {
		return nil
	}
	switch identifierTag(tag) {
	case identifierTagCodeHash:
		var h CodeHashIdentifier
		for i := range h {
			h[i] = r.ReadU8()
		}
		return h
	case identifierTagAccountID:
		return AccountIDIdentifier(r.ReadString())
	default:
		r.SetErr(fmt.Errorf("action: unknown contract identifier tag %d", tag))
		return nil
	}
}

// GlobalContractDeployMode selects how a DeployGlobalContract action's code
// is subsequently addressed by UseGlobalContract.
type GlobalContractDeployMode interface {
	identifierTag() identifierTag
	encodeBorsh(w *codec.Writer)
}

// AccountIDMode deploys the global contract addressable by account id.
type AccountIDMode string

func (AccountIDMode) identifierTag() identifierTag { return identifierTagAccountID }
func (a AccountIDMode) encodeBorsh(w *codec.Writer) {
	w.WriteString(string(a))
}

// CodeHashMode deploys the global contract addressable by its code hash
// (computed on-chain; the payload carries no extra data beyond the tag).
type CodeHashMode struct{}

func (CodeHashMode) identifierTag() identifierTag  { return identifierTagCodeHash }
func (CodeHashMode) encodeBorsh(w *codec.Writer) {}

func decodeDeployMode(r *codec.Reader) GlobalContractDeployMode {
	tag := r.ReadU8()
	if r.Err() != nil {
		return nil
	}
	switch identifierTag(tag) {
	case identifierTagCodeHash:
		return CodeHashMode{}
	case identifierTagAccountID:
		return AccountIDMode(r.ReadString())
	default:
		r.SetErr(fmt.Errorf("action: unknown deploy mode tag %d", tag))
		return nil
	}
}

// DeployGlobalContract deploys code once, addressable thereafter by
// account id or code hash per DeployMode.
type DeployGlobalContract struct {
	Code       []byte
	DeployMode GlobalContractDeployMode
}

func (a *DeployGlobalContract) Kind() Kind { return KindDeployGlobalContract }
func (a *DeployGlobalContract) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindDeployGlobalContract))
	w.WriteBytes(a.Code)
	w.WriteU8(uint8(a.DeployMode.identifierTag()))
	a.DeployMode.encodeBorsh(w)
}

// UseGlobalContract points the receiver account's runtime code at a
// previously deployed global contract.
type UseGlobalContract struct {
	ContractIdentifier ContractIdentifier
}

func (a *UseGlobalContract) Kind() Kind { return KindUseGlobalContract }
func (a *UseGlobalContract) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindUseGlobalContract))
	w.WriteU8(uint8(a.ContractIdentifier.identifierTag()))
	a.ContractIdentifier.encodeBorsh(w)
}

// StateEntry is one on-chain contract storage key/value pair seeded at
// deterministic-init time.
type StateEntry struct {
	Key   []byte
	Value []byte
}

func (e StateEntry) encodeBorsh(w *codec.Writer) {
	w.WriteBytes(e.Key)
	w.WriteBytes(e.Value)
}

func decodeStateEntry(r *codec.Reader) StateEntry {
	return StateEntry{Key: r.ReadBytes(), Value: r.ReadBytes()}
}

// StateInit is the construction-time state bundle a DeterministicStateInit
// action seeds a freshly-created account with: optional contract code, plus
// zero or more storage entries.
type StateInit struct {
	Code *[]byte
	Data []StateEntry
}

func (s StateInit) encodeBorsh(w *codec.Writer) {
	codec.WriteOption(w, s.Code, func(w *codec.Writer, v []byte) { w.WriteBytes(v) })
	codec.WriteVec(w, s.Data, func(w *codec.Writer, e StateEntry) { e.encodeBorsh(w) })
}

func decodeStateInit(r *codec.Reader) StateInit {
	code := codec.ReadOption(r, func(r *codec.Reader) []byte { return r.ReadBytes() })
	data := codec.ReadVec(r, decodeStateEntry)
	return StateInit{Code: code, Data: data}
}

// DeterministicStateInit creates an account whose address is derived
// deterministically from its initial state, attaching deposit yoctoNEAR.
type DeterministicStateInit struct {
	Deposit   *uint256.Int
	StateInit StateInit
}

func (a *DeterministicStateInit) Kind() Kind { return KindDeterministicStateInit }
func (a *DeterministicStateInit) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindDeterministicStateInit))
	w.WriteU128LE(a.Deposit)
	a.StateInit.encodeBorsh(w)
}
