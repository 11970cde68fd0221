package offchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nearclient/near-go/pkg/keys"
	"github.com/nearclient/near-go/pkg/keystore"
)

func TestSignAndVerifyRoundTripViaKeyStore(t *testing.T) {
	store := keystore.NewInMemory()
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)
	require.NoError(t, store.Add("alice.near", kp))

	signer := New(nil, store)
	msg := Message{Message: "hello", Recipient: "app.near", Nonce: [32]byte{1, 2, 3}}

	signed, err := signer.Sign(context.Background(), "alice.near", msg)
	require.NoError(t, err)

	ok, err := Verify(msg, signed.PublicKey, signed.Signature)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignFailsForUnknownAccount(t *testing.T) {
	signer := New(nil, keystore.NewInMemory())
	_, err := signer.Sign(context.Background(), "nobody.near", Message{})
	require.Error(t, err)
}

func TestSignFailsForSecp256k1Key(t *testing.T) {
	store := keystore.NewInMemory()
	kp, err := keys.Generate(keys.Secp256k1)
	require.NoError(t, err)
	require.NoError(t, store.Add("alice.near", kp))

	signer := New(nil, store)
	_, err = signer.Sign(context.Background(), "alice.near", Message{Message: "hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "UNSUPPORTED_OPERATION")
}

func TestVerifyRejectsWrongRecipient(t *testing.T) {
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)
	msg := Message{Message: "hello", Recipient: "app.near"}
	d, err := digest(msg)
	require.NoError(t, err)
	sig, err := kp.Sign(d)
	require.NoError(t, err)

	ok, err := Verify(Message{Message: "hello", Recipient: "other.near"}, kp.PublicKey(), sig)
	require.NoError(t, err)
	require.False(t, ok)
}
