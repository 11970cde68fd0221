package action

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nearclient/near-go/pkg/codec"
)

// permissionTag orders Permission's two cases. FunctionCall sorts before
// FullAccess, matching the on-chain AccessKeyPermission enum.
type permissionTag uint8

const (
	permissionTagFunctionCall permissionTag = iota
	permissionTagFullAccess
)

// Permission is an AccessKey's scope: either FullAccess or a
// FunctionCallPermission restricted to one receiver and method allow-list.
type Permission interface {
	permissionTag() permissionTag
	encodeBorsh(w *codec.Writer)
}

// FullAccessPermission grants unrestricted use of the account.
type FullAccessPermission struct{}

func (FullAccessPermission) permissionTag() permissionTag { return permissionTagFullAccess }
func (FullAccessPermission) encodeBorsh(w *codec.Writer)  {}

// FunctionCallPermission restricts the key to calling methods in
// MethodNames (or any method, if empty) on ReceiverID, optionally capping
// total attached-deposit-free allowance spend.
type FunctionCallPermission struct {
	ReceiverID  string
	MethodNames []string
	// Allowance is nil when unlimited, matching the option encoding.
	Allowance *uint256.Int
}

func (FunctionCallPermission) permissionTag() permissionTag { return permissionTagFunctionCall }
func (p FunctionCallPermission) encodeBorsh(w *codec.Writer) {
	codec.WriteOption(w, p.Allowance, func(w *codec.Writer, v uint256.Int) { w.WriteU128LE(&v) })
	w.WriteString(p.ReceiverID)
	codec.WriteVec(w, p.MethodNames, func(w *codec.Writer, s string) { w.WriteString(s) })
}

// AccessKey is the nonce + permission pair AddKey registers.
type AccessKey struct {
	Nonce      uint64
	Permission Permission
}

// EncodeBorsh writes nonce, then the tagged permission.
func (k AccessKey) EncodeBorsh(w *codec.Writer) {
	w.WriteU64LE(k.Nonce)
	w.WriteU8(uint8(k.Permission.permissionTag()))
	k.Permission.encodeBorsh(w)
}

func decodeAccessKey(r *codec.Reader) AccessKey {
	nonce := r.ReadU64LE()
	tag := r.ReadU8()
	if r.Err() != nil {
		return AccessKey{}
	}
	switch permissionTag(tag) {
	case permissionTagFunctionCall:
		allowance := codec.ReadOption(r, func(r *codec.Reader) uint256.Int { return *r.ReadU128LE() })
		receiver := r.ReadString()
		methods := codec.ReadVec(r, func(r *codec.Reader) string { return r.ReadString() })
		return AccessKey{Nonce: nonce, Permission: FunctionCallPermission{
			ReceiverID:  receiver,
			MethodNames: methods,
			Allowance:   allowance,
		}}
	case permissionTagFullAccess:
		return AccessKey{Nonce: nonce, Permission: FullAccessPermission{}}
	default:
		r.SetErr(fmt.Errorf("action: unknown access key permission tag %d", tag))
		return AccessKey{}
	}
}
