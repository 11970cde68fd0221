package action

import (
	"errors"

	"github.com/nearclient/near-go/pkg/codec"
	"github.com/nearclient/near-go/pkg/keys"
)

// DelegateAction is a NEP-366 meta-transaction payload: a user signs it
// once, and any relayer account can later wrap it (as a Delegate action,
// aka SignedDelegate) into a transaction it submits and pays gas for.
type DelegateAction struct {
	SenderID       string
	ReceiverID     string
	Actions        []Action
	Nonce          uint64
	MaxBlockHeight uint64
	PublicKey      *keys.PublicKey
}

// EncodeBorsh writes the fields in declaration order, matching §3.
func (d *DelegateAction) EncodeBorsh(w *codec.Writer) {
	w.WriteString(d.SenderID)
	w.WriteString(d.ReceiverID)
	codec.WriteVec(w, d.Actions, func(w *codec.Writer, a Action) { a.EncodeBorsh(w) })
	w.WriteU64LE(d.Nonce)
	w.WriteU64LE(d.MaxBlockHeight)
	d.PublicKey.EncodeBorsh(w)
}

func decodeDelegateAction(r *codec.Reader) *DelegateAction {
	d := &DelegateAction{}
	d.SenderID = r.ReadString()
	d.ReceiverID = r.ReadString()
	d.Actions = codec.ReadVec(r, Decode)
	d.Nonce = r.ReadU64LE()
	d.MaxBlockHeight = r.ReadU64LE()
	d.PublicKey = decodePublicKey(r)
	return d
}

// ErrNestedDelegate is returned when a DelegateAction (or the actions list
// of a Transaction) contains a nested Delegate action. Recursion is
// disallowed both when building a delegate action and on receipt (§3, §4.7).
var ErrNestedDelegate = errors.New("action: cannot contain nested signed delegate actions")

// ErrEmptyActions is returned when a DelegateAction (or TransactionBuilder)
// is asked to sign with zero accumulated actions.
var ErrEmptyActions = errors.New("action: requires at least one action")

// Validate checks the non-empty and non-nested-delegate invariants.
func (d *DelegateAction) Validate() error {
	if len(d.Actions) == 0 {
		return ErrEmptyActions
	}
	for _, a := range d.Actions {
		if a.Kind() == KindDelegate {
			return ErrNestedDelegate
		}
	}
	return nil
}
