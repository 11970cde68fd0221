package transaction

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/nearclient/near-go/pkg/action"
	"github.com/nearclient/near-go/pkg/codec"
	"github.com/nearclient/near-go/pkg/keys"
)

func mustBlockHash(t *testing.T) [32]byte {
	t.Helper()
	var h [32]byte
	for i := range h {
		h[i] = byte(i)
	}
	return h
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)

	tx := &Transaction{
		SignerID:   "alice.near",
		PublicKey:  kp.PublicKey(),
		Nonce:      101,
		ReceiverID: "bob.near",
		BlockHash:  mustBlockHash(t),
		Actions:    []action.Action{&action.Transfer{Deposit: uint256.MustFromDecimal("1000000000000000000000000")}},
	}

	signed, err := Sign(tx, kp)
	require.NoError(t, err)

	ok, err := Verify(tx, kp.PublicKey(), signed.Signature)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	kp, err := keys.Generate(keys.Secp256k1)
	require.NoError(t, err)
	tx := &Transaction{
		SignerID:   "alice.near",
		PublicKey:  kp.PublicKey(),
		Nonce:      5,
		ReceiverID: "bob.near",
		BlockHash:  mustBlockHash(t),
		Actions:    []action.Action{&action.CreateAccount{}},
	}
	encoded, err := codec.Encode(tx)
	require.NoError(t, err)

	var got Transaction
	require.NoError(t, codec.Decode(encoded, &got))
	require.Equal(t, tx.SignerID, got.SignerID)
	require.Equal(t, tx.Nonce, got.Nonce)
	require.Equal(t, tx.ReceiverID, got.ReceiverID)
	require.Equal(t, tx.BlockHash, got.BlockHash)
	require.Len(t, got.Actions, 1)
}

func TestValidateEmptyActions(t *testing.T) {
	tx := &Transaction{}
	require.ErrorIs(t, tx.Validate(), ErrEmptyActions)
}

func TestValidateMultipleDelegates(t *testing.T) {
	sig := &keys.Signature{Kind: keys.Ed25519, Bytes: make([]byte, keys.Ed25519SignatureLen)}
	d := &action.Delegate{DelegateAction: &action.DelegateAction{Actions: []action.Action{&action.CreateAccount{}}, PublicKey: &keys.PublicKey{Kind: keys.Ed25519, Bytes: make([]byte, keys.Ed25519PublicKeyLen)}}, Signature: sig}
	tx := &Transaction{Actions: []action.Action{d, d}}
	require.ErrorIs(t, tx.Validate(), ErrMultipleDelegates)
}

func TestValidateDelegateReceiverMismatch(t *testing.T) {
	sig := &keys.Signature{Kind: keys.Ed25519, Bytes: make([]byte, keys.Ed25519SignatureLen)}
	da := &action.DelegateAction{
		SenderID:  "carol.near",
		Actions:   []action.Action{&action.CreateAccount{}},
		PublicKey: &keys.PublicKey{Kind: keys.Ed25519, Bytes: make([]byte, keys.Ed25519PublicKeyLen)},
	}
	d := &action.Delegate{DelegateAction: da, Signature: sig}
	tx := &Transaction{ReceiverID: "relay.near", Actions: []action.Action{d}}
	require.ErrorIs(t, tx.Validate(), ErrDelegateReceiverMismatch)

	tx.ReceiverID = "carol.near"
	require.NoError(t, tx.Validate())
}
