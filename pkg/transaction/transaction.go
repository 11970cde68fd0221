// Package transaction implements the NEAR Transaction and SignedTransaction
// data model: canonical encoding, hash identity, and the construction-time
// invariants a builder must enforce before signing (§3, §6.1).
package transaction

import (
	"errors"
	"fmt"

	"github.com/nearclient/near-go/pkg/action"
	"github.com/nearclient/near-go/pkg/codec"
	"github.com/nearclient/near-go/pkg/keys"
)

// BlockHashLen is the fixed width of a transaction's reference block hash.
const BlockHashLen = 32

// Transaction is the unsigned payload a SignedTransaction wraps.
type Transaction struct {
	SignerID   string
	PublicKey  *keys.PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [BlockHashLen]byte
	Actions    []action.Action
}

// ErrEmptyActions mirrors action.ErrEmptyActions for the Transaction-level
// invariant: actions must be non-empty before signing.
var ErrEmptyActions = action.ErrEmptyActions

// ErrMultipleDelegates is returned when a Transaction's actions contain
// more than one Delegate action; at most one is permitted (§3).
var ErrMultipleDelegates = errors.New("transaction: at most one Delegate action is permitted")

// ErrDelegateReceiverMismatch is returned when a Transaction whose only
// action is Delegate does not target the delegate's own sender as receiver.
var ErrDelegateReceiverMismatch = errors.New("transaction: a transaction containing only a Delegate action must have receiverId == delegateAction.senderId")

// Validate checks §3's Transaction invariants.
func (t *Transaction) Validate() error {
	if len(t.Actions) == 0 {
		return ErrEmptyActions
	}
	delegates := 0
	for _, a := range t.Actions {
		if a.Kind() == action.KindDelegate {
			delegates++
		}
	}
	if delegates > 1 {
		return ErrMultipleDelegates
	}
	if len(t.Actions) == 1 {
		if d, ok := t.Actions[0].(*action.Delegate); ok {
			if t.ReceiverID != d.DelegateAction.SenderID {
				return ErrDelegateReceiverMismatch
			}
		}
	}
	return nil
}

// EncodeBorsh writes the fields in exactly the order §6.1 requires.
func (t *Transaction) EncodeBorsh(w *codec.Writer) {
	w.WriteString(t.SignerID)
	t.PublicKey.EncodeBorsh(w)
	w.WriteU64LE(t.Nonce)
	w.WriteString(t.ReceiverID)
	w.WriteBytesRaw(t.BlockHash[:])
	codec.WriteVec(w, t.Actions, func(w *codec.Writer, a action.Action) { a.EncodeBorsh(w) })
}

// DecodeBorsh is the inverse of EncodeBorsh.
func (t *Transaction) DecodeBorsh(r *codec.Reader) {
	t.SignerID = r.ReadString()
	t.PublicKey = &keys.PublicKey{}
	t.PublicKey.DecodeBorsh(r)
	t.Nonce = r.ReadU64LE()
	t.ReceiverID = r.ReadString()
	for i := range t.BlockHash {
		t.BlockHash[i] = r.ReadU8()
	}
	t.Actions = codec.ReadVec(r, action.Decode)
}

// Hash returns sha256(borsh(t)), the transaction's identity (§3).
func (t *Transaction) Hash() ([32]byte, error) {
	encoded, err := codec.Encode(t)
	if err != nil {
		return [32]byte{}, fmt.Errorf("transaction: encode for hashing: %w", err)
	}
	var out [32]byte
	copy(out[:], keys.Sha256(encoded))
	return out, nil
}

// SignedTransaction pairs a Transaction with its Signature. Wire identity
// is borsh(Transaction) || borsh(Signature) (§6.1).
type SignedTransaction struct {
	Transaction *Transaction
	Signature   *keys.Signature
}

// EncodeBorsh writes transaction bytes followed by signature bytes.
func (s *SignedTransaction) EncodeBorsh(w *codec.Writer) {
	s.Transaction.EncodeBorsh(w)
	s.Signature.EncodeBorsh(w)
}

// DecodeBorsh is the inverse of EncodeBorsh.
func (s *SignedTransaction) DecodeBorsh(r *codec.Reader) {
	s.Transaction = &Transaction{}
	s.Transaction.DecodeBorsh(r)
	s.Signature = &keys.Signature{}
	s.Signature.DecodeBorsh(r)
}

// Sign validates t, encodes it, hashes it, and signs the hash with kp,
// returning a SignedTransaction.
func Sign(t *Transaction, kp keys.KeyPair) (*SignedTransaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	encoded, err := codec.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("transaction: encode: %w", err)
	}
	digest := keys.Sha256(encoded)
	sig, err := kp.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("transaction: sign: %w", err)
	}
	return &SignedTransaction{Transaction: t, Signature: sig}, nil
}

// Verify reports whether sig is valid over sha256(borsh(t)) under pub
// (§8 invariant 3).
func Verify(t *Transaction, pub *keys.PublicKey, sig *keys.Signature) (bool, error) {
	encoded, err := codec.Encode(t)
	if err != nil {
		return false, err
	}
	digest := keys.Sha256(encoded)
	return keys.Verify(pub, digest, sig), nil
}
