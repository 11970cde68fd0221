package action

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nearclient/near-go/pkg/codec"
	"github.com/nearclient/near-go/pkg/keys"
)

// Action is implemented by every one of the twelve concrete variants. The
// Borsh encoding always starts with the u8 tag for Kind(), frozen in the
// order kind.go declares (§3, §4.1).
type Action interface {
	Kind() Kind
	EncodeBorsh(w *codec.Writer)
}

// Decode at the package level dispatches on the tag byte so callers
// holding a slice of Action (a Transaction's actions, say) don't need a
// type switch of their own.

// Decode reads one tagged Action from r.
func Decode(r *codec.Reader) Action {
	tag := r.ReadU8()
	if r.Err() != nil {
		return nil
	}
	switch Kind(tag) {
	case KindCreateAccount:
		return &CreateAccount{}
	case KindDeployContract:
		a := &DeployContract{}
		a.Code = r.ReadBytes()
		return a
	case KindFunctionCall:
		a := &FunctionCall{}
		a.MethodName = r.ReadString()
		a.Args = r.ReadBytes()
		a.Gas = r.ReadU64LE()
		a.Deposit = r.ReadU128LE()
		return a
	case KindTransfer:
		a := &Transfer{}
		a.Deposit = r.ReadU128LE()
		return a
	case KindStake:
		a := &Stake{}
		a.StakeAmount = r.ReadU128LE()
		a.PublicKey = decodePublicKey(r)
		return a
	case KindAddKey:
		a := &AddKey{}
		a.PublicKey = decodePublicKey(r)
		a.AccessKey = decodeAccessKey(r)
		return a
	case KindDeleteKey:
		a := &DeleteKey{}
		a.PublicKey = decodePublicKey(r)
		return a
	case KindDeleteAccount:
		a := &DeleteAccount{}
		a.BeneficiaryID = r.ReadString()
		return a
	case KindDelegate:
		a := &Delegate{}
		a.DelegateAction = decodeDelegateAction(r)
		a.Signature = decodeSignature(r)
		return a
	case KindDeployGlobalContract:
		a := &DeployGlobalContract{}
		a.Code = r.ReadBytes()
		a.DeployMode = decodeDeployMode(r)
		return a
	case KindUseGlobalContract:
		a := &UseGlobalContract{}
		a.ContractIdentifier = decodeContractIdentifier(r)
		return a
	case KindDeterministicStateInit:
		a := &DeterministicStateInit{}
		a.Deposit = r.ReadU128LE()
		a.StateInit = decodeStateInit(r)
		return a
	default:
		r.SetErr(fmt.Errorf("action: unknown tag %d", tag))
		return nil
	}
}

func decodePublicKey(r *codec.Reader) *keys.PublicKey {
	pk := &keys.PublicKey{}
	pk.DecodeBorsh(r)
	return pk
}

func decodeSignature(r *codec.Reader) *keys.Signature {
	sig := &keys.Signature{}
	sig.DecodeBorsh(r)
	return sig
}

// CreateAccount creates a new account at the transaction's receiverId.
type CreateAccount struct{}

func (a *CreateAccount) Kind() Kind { return KindCreateAccount }
func (a *CreateAccount) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindCreateAccount))
}

// DeployContract deploys WASM code to the receiver account.
type DeployContract struct {
	Code []byte
}

func (a *DeployContract) Kind() Kind { return KindDeployContract }
func (a *DeployContract) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindDeployContract))
	w.WriteBytes(a.Code)
}

// FunctionCall invokes a contract method with the given args, gas budget,
// and attached deposit.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    *uint256.Int
}

func (a *FunctionCall) Kind() Kind { return KindFunctionCall }
func (a *FunctionCall) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindFunctionCall))
	w.WriteString(a.MethodName)
	w.WriteBytes(a.Args)
	w.WriteU64LE(a.Gas)
	w.WriteU128LE(a.Deposit)
}

// Transfer moves deposit yoctoNEAR to the receiver.
type Transfer struct {
	Deposit *uint256.Int
}

func (a *Transfer) Kind() Kind { return KindTransfer }
func (a *Transfer) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindTransfer))
	w.WriteU128LE(a.Deposit)
}

// Stake registers the receiver account as a validator candidate with the
// given stake amount and validator public key.
type Stake struct {
	StakeAmount *uint256.Int
	PublicKey   *keys.PublicKey
}

func (a *Stake) Kind() Kind { return KindStake }
func (a *Stake) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindStake))
	w.WriteU128LE(a.StakeAmount)
	a.PublicKey.EncodeBorsh(w)
}

// AddKey registers publicKey on the receiver account with the given
// permission scope.
type AddKey struct {
	PublicKey *keys.PublicKey
	AccessKey AccessKey
}

func (a *AddKey) Kind() Kind { return KindAddKey }
func (a *AddKey) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindAddKey))
	a.PublicKey.EncodeBorsh(w)
	a.AccessKey.EncodeBorsh(w)
}

// DeleteKey removes publicKey from the receiver account.
type DeleteKey struct {
	PublicKey *keys.PublicKey
}

func (a *DeleteKey) Kind() Kind { return KindDeleteKey }
func (a *DeleteKey) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindDeleteKey))
	a.PublicKey.EncodeBorsh(w)
}

// DeleteAccount removes the receiver account, sending its remaining
// balance to BeneficiaryID.
type DeleteAccount struct {
	BeneficiaryID string
}

func (a *DeleteAccount) Kind() Kind { return KindDeleteAccount }
func (a *DeleteAccount) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindDeleteAccount))
	w.WriteString(a.BeneficiaryID)
}

// Delegate embeds a signed meta-transaction (NEP-366) as an action so a
// relayer can wrap it into its own transaction. Also known as
// SignedDelegate.
type Delegate struct {
	DelegateAction *DelegateAction
	Signature      *keys.Signature
}

func (a *Delegate) Kind() Kind { return KindDelegate }
func (a *Delegate) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(KindDelegate))
	a.DelegateAction.EncodeBorsh(w)
	a.Signature.EncodeBorsh(w)
}
