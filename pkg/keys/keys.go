// Package keys implements the cryptographic primitives the client library
// signs and verifies with: ed25519 and secp256k1 key generation, signing,
// and verification, plus the base58 string forms used at the NEAR wire
// boundary. Binary (Borsh) forms never use base58 — only display/string
// forms do (§4.1).
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"

	"github.com/nearclient/near-go/pkg/codec"
)

// Kind tags which curve a key or signature belongs to. The numeric value is
// also the Borsh curve tag (§4.1): it is frozen by the on-chain protocol and
// must never be renumbered.
type Kind uint8

const (
	Ed25519 Kind = iota
	Secp256k1
)

// String renders the kind the way it appears in string key forms
// ("ed25519:...", "secp256k1:...").
func (k Kind) String() string {
	switch k {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

func parseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "ed25519":
		return Ed25519, nil
	case "secp256k1":
		return Secp256k1, nil
	default:
		return 0, fmt.Errorf("keys: unknown key kind %q", s)
	}
}

// Byte lengths fixed by §3.
const (
	Ed25519PublicKeyLen   = 32
	Ed25519SignatureLen   = 64
	Secp256k1PublicKeyLen = 64 // uncompressed X||Y, no 0x04 prefix
	Secp256k1SignatureLen = 65 // r||s||v
)

// PublicKey is a tagged, curve-specific public key.
type PublicKey struct {
	Kind  Kind
	Bytes []byte
}

// String renders "<kind>:<base58-of-raw-bytes>".
func (p *PublicKey) String() string {
	return p.Kind.String() + ":" + base58.Encode(p.Bytes)
}

// NewPublicKeyFromString parses "<kind>:<base58>", validating length.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	kindStr, b58, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("keys: public key %q missing kind prefix", s)
	}
	kind, err := parseKind(kindStr)
	if err != nil {
		return nil, err
	}
	raw, err := base58.Decode(b58)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid base58 public key %q: %w", s, err)
	}
	if err := validatePublicKeyLen(kind, len(raw)); err != nil {
		return nil, err
	}
	return &PublicKey{Kind: kind, Bytes: raw}, nil
}

func validatePublicKeyLen(kind Kind, n int) error {
	switch kind {
	case Ed25519:
		if n != Ed25519PublicKeyLen {
			return fmt.Errorf("keys: ed25519 public key must be %d bytes, got %d", Ed25519PublicKeyLen, n)
		}
	case Secp256k1:
		if n != Secp256k1PublicKeyLen {
			return fmt.Errorf("keys: secp256k1 public key must be %d bytes, got %d", Secp256k1PublicKeyLen, n)
		}
	default:
		return fmt.Errorf("keys: unknown key kind %d", kind)
	}
	return nil
}

// EncodeBorsh writes "u8 curve_tag || raw_bytes" (§4.1).
func (p *PublicKey) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(p.Kind))
	w.WriteBytesRaw(p.Bytes)
}

// DecodeBorsh is the inverse of EncodeBorsh.
func (p *PublicKey) DecodeBorsh(r *codec.Reader) {
	p.Kind = Kind(r.ReadU8())
	if r.Err() != nil {
		return
	}
	n := publicKeyLenForKind(p.Kind)
	if n == 0 {
		r.SetErr(fmt.Errorf("keys: unknown public key curve tag %d", p.Kind))
		return
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = r.ReadU8()
	}
	if r.Err() != nil {
		return
	}
	p.Bytes = buf
}

func publicKeyLenForKind(k Kind) int {
	switch k {
	case Ed25519:
		return Ed25519PublicKeyLen
	case Secp256k1:
		return Secp256k1PublicKeyLen
	default:
		return 0
	}
}

// Signature is a tagged, curve-specific signature.
type Signature struct {
	Kind  Kind
	Bytes []byte
}

// String renders "<kind>:<base58-of-raw-bytes>".
func (s *Signature) String() string {
	return s.Kind.String() + ":" + base58.Encode(s.Bytes)
}

// NewSignatureFromString parses "<kind>:<base58>", validating length.
func NewSignatureFromString(s string) (*Signature, error) {
	kindStr, b58, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("keys: signature %q missing kind prefix", s)
	}
	kind, err := parseKind(kindStr)
	if err != nil {
		return nil, err
	}
	raw, err := base58.Decode(b58)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid base58 signature %q: %w", s, err)
	}
	n := signatureLenForKind(kind)
	if n == 0 || len(raw) != n {
		return nil, fmt.Errorf("keys: %s signature must be %d bytes, got %d", kind, n, len(raw))
	}
	return &Signature{Kind: kind, Bytes: raw}, nil
}

// EncodeBorsh writes "u8 curve_tag || raw_bytes" (§4.1).
func (s *Signature) EncodeBorsh(w *codec.Writer) {
	w.WriteU8(uint8(s.Kind))
	w.WriteBytesRaw(s.Bytes)
}

// DecodeBorsh is the inverse of EncodeBorsh.
func (s *Signature) DecodeBorsh(r *codec.Reader) {
	s.Kind = Kind(r.ReadU8())
	if r.Err() != nil {
		return
	}
	n := signatureLenForKind(s.Kind)
	if n == 0 {
		r.SetErr(fmt.Errorf("keys: unknown signature curve tag %d", s.Kind))
		return
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = r.ReadU8()
	}
	if r.Err() != nil {
		return
	}
	s.Bytes = buf
}

func signatureLenForKind(k Kind) int {
	switch k {
	case Ed25519:
		return Ed25519SignatureLen
	case Secp256k1:
		return Secp256k1SignatureLen
	default:
		return 0
	}
}

// KeyPair owns raw secret bytes and exposes a read-only public-key view and
// a sign operation. Implementations are exclusively owned by whichever
// KeyStore entry holds them; handing one to a transaction builder is a
// shared read-only borrow for the duration of one sign() call.
type KeyPair interface {
	Kind() Kind
	PublicKey() *PublicKey
	Sign(data []byte) (*Signature, error)
	// SecretString renders "<kind>:<base58-of-raw-secret>", the inverse of
	// ParseSecret.
	SecretString() string
}

type ed25519KeyPair struct {
	priv ed25519.PrivateKey
}

func (k *ed25519KeyPair) Kind() Kind { return Ed25519 }

func (k *ed25519KeyPair) PublicKey() *PublicKey {
	pub := k.priv.Public().(ed25519.PublicKey)
	return &PublicKey{Kind: Ed25519, Bytes: []byte(pub)}
}

func (k *ed25519KeyPair) Sign(data []byte) (*Signature, error) {
	return &Signature{Kind: Ed25519, Bytes: ed25519.Sign(k.priv, data)}, nil
}

func (k *ed25519KeyPair) SecretString() string {
	return Ed25519.String() + ":" + base58.Encode(k.priv)
}

type secp256k1KeyPair struct {
	priv *secp256k1.PrivateKey
}

func (k *secp256k1KeyPair) Kind() Kind { return Secp256k1 }

func (k *secp256k1KeyPair) PublicKey() *PublicKey {
	pub := k.priv.PubKey()
	return &PublicKey{Kind: Secp256k1, Bytes: uncompressedXY(pub)}
}

// uncompressedXY returns the 64-byte X||Y form (no leading 0x04 tag), per
// §3's secp256k1 public-key layout.
func uncompressedXY(pub *secp256k1.PublicKey) []byte {
	full := pub.SerializeUncompressed() // 0x04 || X(32) || Y(32)
	out := make([]byte, 64)
	copy(out, full[1:])
	return out
}

func (k *secp256k1KeyPair) Sign(data []byte) (*Signature, error) {
	digest := sha256.Sum256(data)
	sig, err := ecdsa.SignCompact(k.priv, digest[:], false)
	if err != nil {
		return nil, fmt.Errorf("keys: secp256k1 sign failed: %w", err)
	}
	// SignCompact returns recovery-id-prefixed "v || r || s"; the wire form
	// here is "r || s || v".
	rsv := make([]byte, Secp256k1SignatureLen)
	copy(rsv, sig[1:])
	rsv[64] = sig[0] - 27 // SignCompact biases v by 27
	return &Signature{Kind: Secp256k1, Bytes: rsv}, nil
}

func (k *secp256k1KeyPair) SecretString() string {
	return Secp256k1.String() + ":" + base58.Encode(k.priv.Serialize())
}

// Generate produces a fresh CSPRNG-backed key pair of the requested kind.
func Generate(kind Kind) (KeyPair, error) {
	switch kind {
	case Ed25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("keys: ed25519 generation failed: %w", err)
		}
		return &ed25519KeyPair{priv: priv}, nil
	case Secp256k1:
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, fmt.Errorf("keys: secp256k1 generation failed: %w", err)
		}
		return &secp256k1KeyPair{priv: priv}, nil
	default:
		return nil, fmt.Errorf("keys: unknown key kind %d", kind)
	}
}

// ParseSecret parses "<kind>:<base58-secret>", validating length per kind.
func ParseSecret(s string) (KeyPair, error) {
	kindStr, b58, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("keys: secret key %q missing kind prefix", s)
	}
	kind, err := parseKind(kindStr)
	if err != nil {
		return nil, err
	}
	raw, err := base58.Decode(b58)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid base58 secret key: %w", err)
	}
	switch kind {
	case Ed25519:
		if len(raw) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("keys: ed25519 secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
		}
		return &ed25519KeyPair{priv: ed25519.PrivateKey(raw)}, nil
	case Secp256k1:
		if len(raw) != 32 {
			return nil, fmt.Errorf("keys: secp256k1 secret key must be 32 bytes, got %d", len(raw))
		}
		priv := secp256k1.PrivKeyFromBytes(raw)
		return &secp256k1KeyPair{priv: priv}, nil
	default:
		return nil, fmt.Errorf("keys: unknown key kind %d", kind)
	}
}

// Verify reports whether sig is a valid signature by pub over data, per the
// same per-curve hashing rule Sign uses.
func Verify(pub *PublicKey, data []byte, sig *Signature) bool {
	if pub.Kind != sig.Kind {
		return false
	}
	switch pub.Kind {
	case Ed25519:
		if len(pub.Bytes) != Ed25519PublicKeyLen || len(sig.Bytes) != Ed25519SignatureLen {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(pub.Bytes), data, sig.Bytes)
	case Secp256k1:
		if len(pub.Bytes) != Secp256k1PublicKeyLen || len(sig.Bytes) != Secp256k1SignatureLen {
			return false
		}
		digest := sha256.Sum256(data)
		uncompressed := make([]byte, 65)
		uncompressed[0] = 0x04
		copy(uncompressed[1:], pub.Bytes)
		pk, err := secp256k1.ParsePubKey(uncompressed)
		if err != nil {
			return false
		}
		r := new(secp256k1.ModNScalar)
		s := new(secp256k1.ModNScalar)
		if r.SetByteSlice(sig.Bytes[:32]) || s.SetByteSlice(sig.Bytes[32:64]) {
			return false // overflowed the group order
		}
		signature := ecdsa.NewSignature(r, s)
		return signature.Verify(digest[:], pk)
	default:
		return false
	}
}

// Sha256 hashes data, the only hash function the protocol uses (§4.2).
func Sha256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}
