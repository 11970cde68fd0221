// Package builder implements the fluent TransactionBuilder: an action
// accumulator that resolves a signer (key store or wallet), fetches a
// block hash and nonce, signs, caches the signed bytes, and submits with
// the nonce-collision retry policy (§4.6).
package builder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"

	"github.com/nearclient/near-go/pkg/action"
	"github.com/nearclient/near-go/pkg/codec"
	"github.com/nearclient/near-go/pkg/delegate"
	"github.com/nearclient/near-go/pkg/keys"
	"github.com/nearclient/near-go/pkg/keystore"
	"github.com/nearclient/near-go/pkg/noncemgr"
	"github.com/nearclient/near-go/pkg/rpcclient"
	"github.com/nearclient/near-go/pkg/rpcerrors"
	"github.com/nearclient/near-go/pkg/transaction"
	"github.com/nearclient/near-go/pkg/walletadapter"
)

// ErrReceiverMismatch is returned when an action targets a different
// account than one already fixed the builder's receiverId (§4.6).
var ErrReceiverMismatch = errors.New("builder: action targets a different account than the transaction's fixed receiverId")

// ErrNoSigner is returned by Sign when neither a signer override nor a
// key-store entry for signerId is available.
var ErrNoSigner = errors.New("builder: no signer available for signerId")

// ErrNotSigned is returned by Serialize when no fresh signature exists.
var ErrNotSigned = errors.New("builder: serialize called with no fresh signature; call Sign first")

// maxSendAttempts bounds the nonce-collision retry loop in Send (§4.6,
// §8 scenario S2).
const maxSendAttempts = 3

// Deps are the collaborators a Builder needs; all are required except
// Wallet.
type Deps struct {
	RPC      *rpcclient.Client
	Store    keystore.KeyStore
	NonceMgr *noncemgr.Manager
	Wallet   *walletadapter.Adapter
}

// Builder accumulates actions for one transaction and signs/sends them.
type Builder struct {
	deps Deps

	signerID      string
	receiverID    string
	receiverFixed bool
	actions       []action.Action
	signerOverride keys.KeyPair

	cachedBytes []byte
	cachedHash  [32]byte
	cachedNonce uint64
	hasCached   bool

	keystoreReady <-chan struct{}
}

// New starts an empty builder for signerID. readyCh, if non-nil, is
// awaited once before the first key-store lookup (§5's pending-init
// marker); pass nil when the key store needs no async warm-up.
func New(signerID string, deps Deps, readyCh <-chan struct{}) *Builder {
	return &Builder{signerID: signerID, deps: deps, keystoreReady: readyCh}
}

// WithSigner overrides the key resolved from the key store/wallet.
func (b *Builder) WithSigner(kp keys.KeyPair) *Builder {
	b.signerOverride = kp
	b.invalidateCache()
	return b
}

func (b *Builder) invalidateCache() {
	b.cachedBytes = nil
	b.hasCached = false
}

func (b *Builder) fixReceiver(receiverID string) error {
	if !b.receiverFixed {
		b.receiverID = receiverID
		b.receiverFixed = true
		return nil
	}
	if b.receiverID != receiverID {
		return ErrReceiverMismatch
	}
	return nil
}

func (b *Builder) add(a action.Action) {
	b.actions = append(b.actions, a)
	b.invalidateCache()
}

// CreateAccount adds a CreateAccount action targeting receiverID.
func (b *Builder) CreateAccount(receiverID string) (*Builder, error) {
	if err := b.fixReceiver(receiverID); err != nil {
		return b, err
	}
	b.add(&action.CreateAccount{})
	return b, nil
}

// DeployContract adds a DeployContract action targeting receiverID.
func (b *Builder) DeployContract(receiverID string, code []byte) (*Builder, error) {
	if err := b.fixReceiver(receiverID); err != nil {
		return b, err
	}
	b.add(&action.DeployContract{Code: code})
	return b, nil
}

// FunctionCall adds a FunctionCall action targeting receiverID.
func (b *Builder) FunctionCall(receiverID, methodName string, args []byte, gas uint64, deposit *uint256.Int) (*Builder, error) {
	if err := b.fixReceiver(receiverID); err != nil {
		return b, err
	}
	b.add(&action.FunctionCall{MethodName: methodName, Args: args, Gas: gas, Deposit: deposit})
	return b, nil
}

// Transfer adds a Transfer action targeting receiverID.
func (b *Builder) Transfer(receiverID string, deposit *uint256.Int) (*Builder, error) {
	if err := b.fixReceiver(receiverID); err != nil {
		return b, err
	}
	b.add(&action.Transfer{Deposit: deposit})
	return b, nil
}

// Stake adds a Stake action against the signer's own account; it does
// not carry a receiver and so never participates in receiver-fixing.
func (b *Builder) Stake(stake *uint256.Int, pub *keys.PublicKey) *Builder {
	b.add(&action.Stake{StakeAmount: stake, PublicKey: pub})
	return b
}

// AddKey adds an AddKey action. If receiverID is non-empty it is treated
// as the target account and participates in receiver-fixing; pass "" to
// add a key to the signer's own account.
func (b *Builder) AddKey(receiverID string, pub *keys.PublicKey, ak action.AccessKey) (*Builder, error) {
	if receiverID != "" {
		if err := b.fixReceiver(receiverID); err != nil {
			return b, err
		}
	}
	b.add(&action.AddKey{PublicKey: pub, AccessKey: ak})
	return b, nil
}

// DeleteKey adds a DeleteKey action.
func (b *Builder) DeleteKey(pub *keys.PublicKey) *Builder {
	b.add(&action.DeleteKey{PublicKey: pub})
	return b
}

// DeleteAccount adds a DeleteAccount action.
func (b *Builder) DeleteAccount(beneficiaryID string) *Builder {
	b.add(&action.DeleteAccount{BeneficiaryID: beneficiaryID})
	return b
}

// PublishContract adds a DeployGlobalContract action targeting receiverID.
func (b *Builder) PublishContract(receiverID string, code []byte, mode action.GlobalContractDeployMode) (*Builder, error) {
	if err := b.fixReceiver(receiverID); err != nil {
		return b, err
	}
	b.add(&action.DeployGlobalContract{Code: code, DeployMode: mode})
	return b, nil
}

// DeployFromPublished adds a UseGlobalContract action targeting receiverID.
func (b *Builder) DeployFromPublished(receiverID string, identifier action.ContractIdentifier) (*Builder, error) {
	if err := b.fixReceiver(receiverID); err != nil {
		return b, err
	}
	b.add(&action.UseGlobalContract{ContractIdentifier: identifier})
	return b, nil
}

// SignedDelegateAction adds an already-signed delegate as a Delegate
// action, for a relayer wrapping someone else's meta-transaction. The
// relayer's receiverId must equal the delegate's senderId (enforced by
// transaction.Validate at Sign time).
func (b *Builder) SignedDelegateAction(receiverID string, d *action.Delegate) (*Builder, error) {
	if err := b.fixReceiver(receiverID); err != nil {
		return b, err
	}
	b.add(d)
	return b, nil
}

// DelegateOptions configures Delegate's receiver and nonce bound.
type DelegateOptions struct {
	ReceiverID     string // overrides action-derived inference when set
	MaxBlockHeight uint64
}

// DelegateResult is what Delegate returns: either a wallet-produced
// signed delegate response or a locally-signed one, normalized to the
// same envelope (§4.6, §8 round-trip law).
type DelegateResult struct {
	SignedDelegateAction *action.Delegate
	Payload              []byte
	Format               string
}

// Delegate wraps the accumulated actions in a DelegateAction (rejecting
// nested Delegate actions) and signs it: via the wallet if it advertises
// signDelegateActions, otherwise locally with the NEP-461 envelope
// (§4.6, §4.7).
func (b *Builder) Delegate(ctx context.Context, opts DelegateOptions) (*DelegateResult, error) {
	if len(b.actions) == 0 {
		return nil, action.ErrEmptyActions
	}
	receiverID := opts.ReceiverID
	if receiverID == "" {
		receiverID = b.receiverID
	}

	kp, err := b.resolveSigner(ctx)
	if err != nil && b.deps.Wallet == nil {
		return nil, err
	}

	da := &action.DelegateAction{
		SenderID:       b.signerID,
		ReceiverID:     receiverID,
		Actions:        b.actions,
		MaxBlockHeight: opts.MaxBlockHeight,
	}
	if kp != nil {
		da.PublicKey = kp.PublicKey()
	}
	if err := da.Validate(); err != nil {
		return nil, err
	}

	if kp != nil {
		nonce, nerr := b.deps.NonceMgr.Next(ctx, b.signerID, da.PublicKey)
		if nerr != nil {
			return nil, fmt.Errorf("builder: allocate delegate nonce: %w", nerr)
		}
		da.Nonce = nonce
	}

	if b.deps.Wallet != nil && b.deps.Wallet.SupportsSignDelegateActions() {
		resp, werr := b.deps.Wallet.SignDelegateActions(ctx, walletadapter.SignDelegateActionsRequest{
			SignerID: b.signerID,
			DelegateActions: []walletadapter.DelegateActionsEntry{
				{Actions: b.actions, ReceiverID: receiverID},
			},
		})
		if werr != nil {
			return nil, werr
		}
		if len(resp.SignedDelegateActions) == 0 {
			return nil, rpcerrors.New(rpcerrors.KindWalletError, "wallet returned no signed delegate actions")
		}
		signed := resp.SignedDelegateActions[0].SignedDelegate
		payload, perr := codec.Encode(signed)
		if perr != nil {
			return nil, perr
		}
		return &DelegateResult{SignedDelegateAction: signed, Payload: []byte(base58.Encode(payload)), Format: "base58"}, nil
	}

	if kp == nil {
		return nil, err
	}
	signed, serr := delegate.Sign(da, kp)
	if serr != nil {
		return nil, serr
	}
	encoded, eerr := codec.Encode(signed)
	if eerr != nil {
		return nil, eerr
	}
	return &DelegateResult{SignedDelegateAction: signed, Payload: []byte(base64Encode(encoded)), Format: "base64"}, nil
}

// resolveSigner returns the key pair to sign with: override, else
// key-store lookup by signerID.
func (b *Builder) resolveSigner(ctx context.Context) (keys.KeyPair, error) {
	if b.signerOverride != nil {
		return b.signerOverride, nil
	}
	if b.keystoreReady != nil {
		select {
		case <-b.keystoreReady:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	kp, err := b.deps.Store.Get(b.signerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSigner, err)
	}
	return kp, nil
}

// usesWalletPath reports whether this Sign/Send should delegate signing
// and submission to the configured wallet rather than the local key store.
func (b *Builder) usesWalletPath() bool {
	return b.signerOverride == nil && b.deps.Wallet != nil
}

// Sign performs the full §4.6 pipeline against the local key store:
// validate, resolve signer, fetch block hash, allocate a nonce, encode,
// sign, cache. On the wallet path, signing happens inside Send instead
// (the wallet signs and submits in one round trip), so Sign returns
// WalletError there.
func (b *Builder) Sign(ctx context.Context) (*transaction.SignedTransaction, error) {
	if len(b.actions) == 0 {
		return nil, action.ErrEmptyActions
	}
	if b.usesWalletPath() {
		return nil, rpcerrors.New(rpcerrors.KindWalletError, "sign() is not meaningful on the wallet path; call Send instead")
	}

	kp, err := b.resolveSigner(ctx)
	if err != nil {
		return nil, err
	}

	status, err := b.deps.RPC.GetStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("builder: fetch block hash: %w", err)
	}
	blockHash, err := decodeBase58BlockHash(status.SyncInfo.LatestBlockHash)
	if err != nil {
		return nil, err
	}

	nonce, err := b.deps.NonceMgr.Next(ctx, b.signerID, kp.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("builder: allocate nonce: %w", err)
	}

	tx := &transaction.Transaction{
		SignerID:   b.signerID,
		PublicKey:  kp.PublicKey(),
		Nonce:      nonce,
		ReceiverID: b.receiverID,
		BlockHash:  blockHash,
		Actions:    b.actions,
	}
	signed, err := transaction.Sign(tx, kp)
	if err != nil {
		return nil, err
	}

	encoded, err := codec.Encode(signed)
	if err != nil {
		return nil, fmt.Errorf("builder: encode signed transaction: %w", err)
	}
	hash, err := tx.Hash()
	if err != nil {
		return nil, err
	}
	b.cachedBytes = encoded
	b.cachedHash = hash
	b.cachedNonce = nonce
	b.hasCached = true
	return signed, nil
}

// Serialize returns the cached signed-transaction bytes, or ErrNotSigned
// if no fresh signature exists.
func (b *Builder) Serialize() ([]byte, error) {
	if !b.hasCached {
		return nil, ErrNotSigned
	}
	return b.cachedBytes, nil
}

// Send signs if needed, submits, and retries on InvalidNonce up to
// maxSendAttempts total (§4.6, §8 scenario S2).
func (b *Builder) Send(ctx context.Context, waitUntil rpcclient.WaitUntil) (*rpcclient.SendTransactionResult, error) {
	if b.usesWalletPath() {
		return b.deps.Wallet.SignAndSendTransaction(ctx, walletadapter.SignAndSendTransactionRequest{
			SignerID:   b.signerID,
			ReceiverID: b.receiverID,
			Actions:    b.actions,
		})
	}

	var lastErr error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if !b.hasCached {
			if _, err := b.Sign(ctx); err != nil {
				return nil, err
			}
		}

		result, err := b.deps.RPC.SendTransaction(ctx, b.cachedBytes, waitUntil)
		if err == nil {
			return b.withLocalOutcome(result, waitUntil), nil
		}

		var rerr *rpcerrors.Error
		if errors.As(err, &rerr) && rerr.Kind == rpcerrors.KindInvalidNonceError {
			if kp, kerr := b.resolveSigner(ctx); kerr == nil {
				b.deps.NonceMgr.Invalidate(b.signerID, kp.PublicKey())
			}
			b.invalidateCache()
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// withLocalOutcome fills in the client-synthesized transaction reference
// for NONE/INCLUDED/INCLUDED_FINAL responses, which carry no execution
// detail (§4.5, §8 round-trip law).
func (b *Builder) withLocalOutcome(result *rpcclient.SendTransactionResult, waitUntil rpcclient.WaitUntil) *rpcclient.SendTransactionResult {
	switch waitUntil {
	case rpcclient.WaitNone, rpcclient.WaitIncluded, rpcclient.WaitIncludedFinal:
		ref := rpcclient.LocalTransactionRef{
			Hash:       base58.Encode(b.cachedHash[:]),
			SignerID:   b.signerID,
			ReceiverID: b.receiverID,
			Nonce:      b.cachedNonce,
		}
		if data, err := json.Marshal(ref); err == nil {
			result.Transaction = data
		}
	}
	return result
}

func decodeBase58BlockHash(s string) ([transaction.BlockHashLen]byte, error) {
	var out [transaction.BlockHashLen]byte
	raw, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("builder: decode block hash: %w", err)
	}
	if len(raw) != transaction.BlockHashLen {
		return out, fmt.Errorf("builder: block hash has %d bytes, want %d", len(raw), transaction.BlockHashLen)
	}
	copy(out[:], raw)
	return out, nil
}

func base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
