// Package nearclient is the top-level facade: it wires rpcclient,
// keystore, noncemgr, walletadapter, builder, and offchain behind the
// operations named in spec.md §4.11 and the configuration surface of
// §6.4 (view, call, send, transaction, signMessage).
package nearclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/nearclient/near-go/pkg/action"
	"github.com/nearclient/near-go/pkg/builder"
	"github.com/nearclient/near-go/pkg/keys"
	"github.com/nearclient/near-go/pkg/noncemgr"
	"github.com/nearclient/near-go/pkg/offchain"
	"github.com/nearclient/near-go/pkg/rpcclient"
	"github.com/nearclient/near-go/pkg/rpcerrors"
)

// Client is the library's entry point: one configured RPC endpoint plus
// the signer machinery (key store and/or wallet) needed to build and
// submit transactions.
type Client struct {
	cfg      *Config
	rpc      *rpcclient.Client
	nonceMgr *noncemgr.Manager
	offchain *offchain.Signer
	log      *zap.Logger
}

// New builds a Client from opts. It fails fast on an unknown network
// preset or an unparseable private key (§6.4).
func New(opts ...Option) (*Client, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	rpcOpts := []rpcclient.Option{
		rpcclient.WithMaxRetries(cfg.maxRetries),
		rpcclient.WithInitialDelay(cfg.initialDelay),
		rpcclient.WithLogger(cfg.logger),
		rpcclient.WithHTTPClient(&http.Client{Timeout: cfg.httpTimeout}),
	}
	if len(cfg.headers) > 0 {
		rpcOpts = append(rpcOpts, rpcclient.WithHeaders(cfg.headers))
	}
	if cfg.metrics != nil {
		rpcOpts = append(rpcOpts, rpcclient.WithMetrics(cfg.metrics))
	}
	rpc := rpcclient.New(cfg.rpcURL, rpcOpts...)

	fetch := func(ctx context.Context, accountID string, pub *keys.PublicKey) (uint64, error) {
		ak, err := rpc.GetAccessKey(ctx, accountID, pub, rpcclient.BlockReference{})
		if err != nil {
			return 0, err
		}
		return ak.Nonce, nil
	}
	nonceMgr, err := noncemgr.New(fetch)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:      cfg,
		rpc:      rpc,
		nonceMgr: nonceMgr,
		offchain: offchain.New(cfg.wallet, cfg.store),
		log:      cfg.logger.With(zap.String("component", "nearclient")),
	}, nil
}

// deps assembles the builder.Deps shared by every Transaction call.
func (c *Client) deps() builder.Deps {
	return builder.Deps{RPC: c.rpc, Store: c.cfg.store, NonceMgr: c.nonceMgr, Wallet: c.cfg.wallet}
}

// Transaction starts a fluent TransactionBuilder for signerID, or for
// cfg.defaultSignerID if signerID is "".
func (c *Client) Transaction(signerID string) (*builder.Builder, error) {
	if signerID == "" {
		signerID = c.cfg.defaultSignerID
	}
	if signerID == "" {
		return nil, fmt.Errorf("nearclient: no signerId given and no defaultSignerId configured")
	}
	return builder.New(signerID, c.deps(), nil), nil
}

// View calls a read-only contract method (§4.11's "view").
func (c *Client) View(ctx context.Context, contractID, methodName string, args []byte) ([]byte, error) {
	return c.rpc.ViewFunction(ctx, contractID, methodName, args, rpcclient.BlockReference{})
}

// Call signs and submits a single FunctionCall action from signerID to
// contractID, waiting until cfg.defaultWaitUntil (§4.11's "call").
func (c *Client) Call(ctx context.Context, signerID, contractID, methodName string, args []byte, gas uint64, deposit *uint256.Int) (*rpcclient.SendTransactionResult, error) {
	tx, err := c.Transaction(signerID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.FunctionCall(contractID, methodName, args, gas, deposit); err != nil {
		return nil, err
	}
	return tx.Send(ctx, c.cfg.defaultWaitUntil)
}

// Send signs and submits the given actions against receiverID from
// signerID, waiting until waitUntil, or cfg.defaultWaitUntil when
// waitUntil is empty (§4.11's "send").
func (c *Client) Send(ctx context.Context, signerID, receiverID string, actions []action.Action, waitUntil rpcclient.WaitUntil) (*rpcclient.SendTransactionResult, error) {
	tx, err := c.Transaction(signerID)
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		if _, err := addActionToBuilder(tx, receiverID, a); err != nil {
			return nil, err
		}
	}
	if waitUntil == "" {
		waitUntil = c.cfg.defaultWaitUntil
	}
	return tx.Send(ctx, waitUntil)
}

// SignMessage produces a NEP-413 off-chain signature for accountID,
// preferring the configured wallet and falling back to the key store
// (§4.9, §4.11's "signMessage").
func (c *Client) SignMessage(ctx context.Context, accountID string, msg offchain.Message) (*offchain.SignedMessage, error) {
	return c.offchain.Sign(ctx, accountID, msg)
}

// Account fetches an account's view (balance, storage usage, code hash).
func (c *Client) Account(ctx context.Context, accountID string) (*rpcclient.AccountView, error) {
	return c.rpc.GetAccount(ctx, accountID, rpcclient.BlockReference{})
}

// AccessKey fetches a single access key's nonce and permission.
func (c *Client) AccessKey(ctx context.Context, accountID string, pub *keys.PublicKey) (*rpcclient.AccessKeyView, error) {
	return c.rpc.GetAccessKey(ctx, accountID, pub, rpcclient.BlockReference{})
}

// GasPrice fetches the current gas price.
func (c *Client) GasPrice(ctx context.Context) (*rpcclient.GasPriceResult, error) {
	return c.rpc.GetGasPrice(ctx, "")
}

func addActionToBuilder(b *builder.Builder, receiverID string, a action.Action) (*builder.Builder, error) {
	switch v := a.(type) {
	case *action.CreateAccount:
		return b.CreateAccount(receiverID)
	case *action.DeployContract:
		return b.DeployContract(receiverID, v.Code)
	case *action.FunctionCall:
		return b.FunctionCall(receiverID, v.MethodName, v.Args, v.Gas, v.Deposit)
	case *action.Transfer:
		return b.Transfer(receiverID, v.Deposit)
	case *action.AddKey:
		return b.AddKey(receiverID, v.PublicKey, v.AccessKey)
	case *action.DeployGlobalContract:
		return b.PublishContract(receiverID, v.Code, v.DeployMode)
	case *action.UseGlobalContract:
		return b.DeployFromPublished(receiverID, v.ContractIdentifier)
	case *action.Delegate:
		return b.SignedDelegateAction(receiverID, v)
	default:
		return nil, rpcerrors.New(rpcerrors.KindWalletError, fmt.Sprintf("nearclient: action kind %T has no receiver-bearing builder method; use Stake/DeleteKey/DeleteAccount directly via Transaction()", a))
	}
}
