// Package delegate implements the NEP-366/NEP-461 meta-transaction signing
// envelope: a 4-byte little-endian domain-separation prefix prepended to a
// Borsh-encoded DelegateAction before hashing and signing, so a delegate
// signature can never be replayed as a raw transaction signature (§4.7,
// §6.2).
package delegate

import (
	"encoding/binary"
	"fmt"

	"github.com/nearclient/near-go/pkg/action"
	"github.com/nearclient/near-go/pkg/codec"
	"github.com/nearclient/near-go/pkg/keys"
)

// NEP461Prefix is 2^30 + 366, the magic constant NEP-461 prepends to every
// delegate action before it is hashed and signed.
const NEP461Prefix uint32 = 1<<30 + 366

// Prefix returns the 4 little-endian bytes of NEP461Prefix: 0x6E 0x01 0x00 0x40.
func Prefix() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], NEP461Prefix)
	return b
}

// envelope returns prefix || borsh(da), the exact bytes the signature
// covers a sha256 of (§6.2).
func envelope(da *action.DelegateAction) ([]byte, error) {
	encoded, err := codec.Encode(da)
	if err != nil {
		return nil, fmt.Errorf("delegate: encode: %w", err)
	}
	prefix := Prefix()
	out := make([]byte, 0, len(prefix)+len(encoded))
	out = append(out, prefix[:]...)
	out = append(out, encoded...)
	return out, nil
}

// Sign validates da, builds the NEP-461 envelope, and signs its sha256
// digest with kp, returning the action that wraps it for a relayer
// (action.Delegate, aka SignedDelegate).
func Sign(da *action.DelegateAction, kp keys.KeyPair) (*action.Delegate, error) {
	if err := da.Validate(); err != nil {
		return nil, err
	}
	payload, err := envelope(da)
	if err != nil {
		return nil, err
	}
	digest := keys.Sha256(payload)
	sig, err := kp.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("delegate: sign: %w", err)
	}
	return &action.Delegate{DelegateAction: da, Signature: sig}, nil
}

// Verify reports whether sig is a valid signature by pub over da's NEP-461
// envelope. It MUST NOT accept a signature computed over borsh(da) without
// the prefix (§4.7, §6.2, §8 invariant 4).
func Verify(da *action.DelegateAction, pub *keys.PublicKey, sig *keys.Signature) (bool, error) {
	payload, err := envelope(da)
	if err != nil {
		return false, err
	}
	digest := keys.Sha256(payload)
	return keys.Verify(pub, digest, sig), nil
}
