// Package offchain implements NEP-413 off-chain message signing: a
// domain-separated envelope distinct from both raw transaction signing
// and the NEP-461 delegate envelope, wallet-first with a key-store
// fallback (§4.9).
package offchain

import (
	"context"
	"fmt"

	"github.com/nearclient/near-go/pkg/codec"
	"github.com/nearclient/near-go/pkg/keys"
	"github.com/nearclient/near-go/pkg/keystore"
	"github.com/nearclient/near-go/pkg/rpcerrors"
	"github.com/nearclient/near-go/pkg/walletadapter"
)

// NEP413Prefix domain-separates off-chain messages from both raw
// transactions and NEP-461 delegate actions: 2^31 + 413.
const NEP413Prefix uint32 = 1<<31 + 413

// Message is the triple NEP-413 signs.
type Message struct {
	Message   string
	Recipient string
	Nonce     [32]byte
}

// envelope encodes prefix || message || recipient || nonce || [callbackUrl]
// (no callback URL is modeled; §4.9 does not require it).
func envelope(w *codec.Writer, m Message) {
	w.WriteU32LE(NEP413Prefix)
	w.WriteString(m.Message)
	w.WriteString(m.Recipient)
	w.WriteBytesRaw(m.Nonce[:])
	codec.WriteOption(w, (*string)(nil), func(w *codec.Writer, s string) { w.WriteString(s) })
}

func digest(m Message) ([]byte, error) {
	w := codec.NewBufWriter()
	envelope(w, m)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("offchain: encode envelope: %w", err)
	}
	return keys.Sha256(w.Bytes()), nil
}

// SignedMessage is a NEP-413 signature over a Message.
type SignedMessage struct {
	PublicKey *keys.PublicKey
	Signature *keys.Signature
}

// Signer tries the wallet capability first (if present), falling back to
// the key store; it fails with UNSUPPORTED_OPERATION-flavored WalletError
// if the resolved key kind cannot produce a NEP-413 signature (§4.9).
type Signer struct {
	wallet *walletadapter.Adapter
	store  keystore.KeyStore
}

// New returns a Signer that prefers wallet over store. wallet may be nil
// to always use the key store.
func New(wallet *walletadapter.Adapter, store keystore.KeyStore) *Signer {
	return &Signer{wallet: wallet, store: store}
}

// Sign produces a NEP-413 signature over msg for accountID.
func (s *Signer) Sign(ctx context.Context, accountID string, msg Message) (*SignedMessage, error) {
	if s.wallet != nil && s.wallet.SupportsSignMessage() {
		resp, err := s.wallet.SignMessage(ctx, walletadapter.SignMessageRequest{
			Message:   msg.Message,
			Recipient: msg.Recipient,
			Nonce:     msg.Nonce,
		})
		if err != nil {
			return s.signWithKeyStore(accountID, msg)
		}
		return &SignedMessage{PublicKey: resp.PublicKey, Signature: resp.Signature}, nil
	}
	return s.signWithKeyStore(accountID, msg)
}

func (s *Signer) signWithKeyStore(accountID string, msg Message) (*SignedMessage, error) {
	kp, err := s.store.Get(accountID)
	if err != nil {
		return nil, fmt.Errorf("offchain: %w", err)
	}
	if kp.PublicKey().Kind != keys.Ed25519 {
		return nil, rpcerrors.New(rpcerrors.KindWalletError, "UNSUPPORTED_OPERATION: key kind cannot produce a NEP-413 signature")
	}
	d, err := digest(msg)
	if err != nil {
		return nil, err
	}
	sig, err := kp.Sign(d)
	if err != nil {
		return nil, rpcerrors.New(rpcerrors.KindSignatureError, err.Error())
	}
	return &SignedMessage{PublicKey: kp.PublicKey(), Signature: sig}, nil
}

// Verify reports whether sig is a valid NEP-413 signature by pub over msg.
func Verify(msg Message, pub *keys.PublicKey, sig *keys.Signature) (bool, error) {
	d, err := digest(msg)
	if err != nil {
		return false, err
	}
	return keys.Verify(pub, d, sig), nil
}
