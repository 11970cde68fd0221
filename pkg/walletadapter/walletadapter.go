// Package walletadapter normalizes the handful of capabilities a browser
// or hardware wallet offers into one interface core components consume,
// with feature detection and the translation between the binary action
// model and a wallet's typed JSON form (§4.8).
package walletadapter

import (
	"context"

	"github.com/nearclient/near-go/pkg/action"
	"github.com/nearclient/near-go/pkg/keys"
	"github.com/nearclient/near-go/pkg/rpcclient"
	"github.com/nearclient/near-go/pkg/rpcerrors"
)

// AccountInfo is one account a wallet currently has connected.
type AccountInfo struct {
	AccountID string
	PublicKey *keys.PublicKey
}

// SignAndSendTransactionRequest is the required capability's input.
type SignAndSendTransactionRequest struct {
	SignerID   string
	ReceiverID string
	Actions    []action.Action
}

// SignMessageRequest is the optional NEP-413 capability's input.
type SignMessageRequest struct {
	Message   string
	Recipient string
	Nonce     [32]byte
}

// SignedMessage is the optional NEP-413 capability's output.
type SignedMessage struct {
	PublicKey *keys.PublicKey
	Signature *keys.Signature
}

// DelegateActionsEntry is one unsigned delegate request passed to
// SignDelegateActions.
type DelegateActionsEntry struct {
	Actions    []action.Action
	ReceiverID string
}

// SignDelegateActionsRequest is the optional delegate-signing
// capability's input.
type SignDelegateActionsRequest struct {
	SignerID        string
	DelegateActions []DelegateActionsEntry
}

// SignedDelegateActionEntry pairs a delegate hash with its signed form.
type SignedDelegateActionEntry struct {
	DelegateHash string
	SignedDelegate *action.Delegate
}

// SignDelegateActionsResult is the optional delegate-signing
// capability's output.
type SignDelegateActionsResult struct {
	SignedDelegateActions []SignedDelegateActionEntry
}

// Wallet is the required capability surface every wallet must implement
// (§4.8).
type Wallet interface {
	GetAccounts(ctx context.Context) ([]AccountInfo, error)
	SignAndSendTransaction(ctx context.Context, req SignAndSendTransactionRequest) (*rpcclient.SendTransactionResult, error)
}

// MessageSigner is the optional NEP-413 capability.
type MessageSigner interface {
	SignMessage(ctx context.Context, req SignMessageRequest) (*SignedMessage, error)
}

// DelegateSigner is the optional meta-transaction signing capability.
type DelegateSigner interface {
	SignDelegateActions(ctx context.Context, req SignDelegateActionsRequest) (*SignDelegateActionsResult, error)
}

// Manifest lets a caller force a capability absent even when the
// underlying Wallet value implements its Go interface — mirroring a
// wallet whose manifest explicitly advertises the capability as
// unsupported (§4.8).
type Manifest struct {
	SignMessage         *bool
	SignDelegateActions *bool
}

// Adapter is the capability-detecting façade core components hold
// instead of a raw Wallet.
type Adapter struct {
	wallet   Wallet
	manifest Manifest
}

// New wraps wallet with manifest-driven capability overrides.
func New(wallet Wallet, manifest Manifest) *Adapter {
	return &Adapter{wallet: wallet, manifest: manifest}
}

// GetAccounts delegates to the wallet's required capability.
func (a *Adapter) GetAccounts(ctx context.Context) ([]AccountInfo, error) {
	return a.wallet.GetAccounts(ctx)
}

// SignAndSendTransaction delegates to the wallet's required capability.
func (a *Adapter) SignAndSendTransaction(ctx context.Context, req SignAndSendTransactionRequest) (*rpcclient.SendTransactionResult, error) {
	return a.wallet.SignAndSendTransaction(ctx, req)
}

// SupportsSignMessage reports whether SignMessage may be called, per the
// manifest override or Go-interface detection.
func (a *Adapter) SupportsSignMessage() bool {
	if a.manifest.SignMessage != nil {
		return *a.manifest.SignMessage
	}
	_, ok := a.wallet.(MessageSigner)
	return ok
}

// SignMessage calls the optional NEP-413 capability, failing with
// WalletError if the wallet does not support it (§4.8).
func (a *Adapter) SignMessage(ctx context.Context, req SignMessageRequest) (*SignedMessage, error) {
	if !a.SupportsSignMessage() {
		return nil, rpcerrors.NewWalletError("wallet does not support signMessage")
	}
	signer := a.wallet.(MessageSigner)
	return signer.SignMessage(ctx, req)
}

// SupportsSignDelegateActions reports whether SignDelegateActions may be
// called, per the manifest override or Go-interface detection.
func (a *Adapter) SupportsSignDelegateActions() bool {
	if a.manifest.SignDelegateActions != nil {
		return *a.manifest.SignDelegateActions
	}
	_, ok := a.wallet.(DelegateSigner)
	return ok
}

// SignDelegateActions calls the optional delegate-signing capability,
// failing with WalletError if the wallet does not support it (§4.8).
func (a *Adapter) SignDelegateActions(ctx context.Context, req SignDelegateActionsRequest) (*SignDelegateActionsResult, error) {
	if !a.SupportsSignDelegateActions() {
		return nil, rpcerrors.NewWalletError("wallet does not support signDelegateActions")
	}
	signer := a.wallet.(DelegateSigner)
	return signer.SignDelegateActions(ctx, req)
}
