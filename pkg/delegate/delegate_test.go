package delegate

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/nearclient/near-go/pkg/action"
	"github.com/nearclient/near-go/pkg/keys"
)

func TestPrefixBytes(t *testing.T) {
	require.Equal(t, [4]byte{0x6E, 0x01, 0x00, 0x40}, Prefix())
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)

	da := &action.DelegateAction{
		SenderID:       "alice.near",
		ReceiverID:     "contract.near",
		Actions:        []action.Action{&action.Transfer{Deposit: uint256.NewInt(1)}},
		Nonce:          1,
		MaxBlockHeight: 100,
		PublicKey:      kp.PublicKey(),
	}

	signed, err := Sign(da, kp)
	require.NoError(t, err)
	require.Same(t, da, signed.DelegateAction)

	ok, err := Verify(da, kp.PublicKey(), signed.Signature)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsUnprefixedSignature(t *testing.T) {
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)

	da := &action.DelegateAction{
		SenderID:  "alice.near",
		Actions:   []action.Action{&action.Transfer{Deposit: uint256.NewInt(1)}},
		PublicKey: kp.PublicKey(),
	}

	encoded, err := envelope(da)
	require.NoError(t, err)
	rawSig, err := kp.Sign(keys.Sha256(encoded[4:])) // missing the NEP-461 prefix
	require.NoError(t, err)

	ok, err := Verify(da, kp.PublicKey(), rawSig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSignRejectsInvalidDelegateAction(t *testing.T) {
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)
	_, err = Sign(&action.DelegateAction{}, kp)
	require.ErrorIs(t, err, action.ErrEmptyActions)
}
