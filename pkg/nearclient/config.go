package nearclient

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nearclient/near-go/pkg/keys"
	"github.com/nearclient/near-go/pkg/keystore"
	"github.com/nearclient/near-go/pkg/rpcclient"
	"github.com/nearclient/near-go/pkg/walletadapter"
)

// networkPresets maps §6.4's named networks to their default RPC endpoints.
var networkPresets = map[string]string{
	"mainnet":  "https://rpc.mainnet.near.org",
	"testnet":  "https://rpc.testnet.near.org",
	"localnet": "http://localhost:3030",
}

// Config collects every option recognized by §6.4. It is built exclusively
// through functional options (no YAML/JSON config file, §A.3 of
// SPEC_FULL.md); the teacher's node-level config.go has no client-library
// equivalent here.
type Config struct {
	network          string
	rpcURL           string
	headers          map[string]string
	maxRetries       int
	initialDelay     time.Duration
	store            keystore.KeyStore
	wallet           *walletadapter.Adapter
	defaultSignerID  string
	defaultWaitUntil rpcclient.WaitUntil
	logger           *zap.Logger
	metrics          prometheus.Registerer
	httpTimeout      time.Duration

	pendingSecrets map[string]string
}

// Option configures a Config.
type Option func(*Config)

// WithNetwork selects a named preset ("mainnet", "testnet", "localnet").
// Overridden by WithRPCURL if both are set.
func WithNetwork(name string) Option {
	return func(c *Config) { c.network = name }
}

// WithRPCURL overrides the endpoint resolved from WithNetwork.
func WithRPCURL(url string) Option {
	return func(c *Config) { c.rpcURL = url }
}

// WithHeaders attaches extra HTTP headers to every RPC request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) { c.headers = headers }
}

// WithRetryConfig overrides the default retry policy (§4.5).
func WithRetryConfig(maxRetries int, initialDelayMs int) Option {
	return func(c *Config) {
		c.maxRetries = maxRetries
		c.initialDelay = time.Duration(initialDelayMs) * time.Millisecond
	}
}

// WithKeyStore installs a pre-populated key store.
func WithKeyStore(store keystore.KeyStore) Option {
	return func(c *Config) { c.store = store }
}

// WithPrivateKey registers secret against accountID in the client's key
// store, creating an in-memory store first if none was supplied (§6.4).
func WithPrivateKey(accountID, secret string) Option {
	return func(c *Config) {
		if c.pendingSecrets == nil {
			c.pendingSecrets = make(map[string]string)
		}
		c.pendingSecrets[accountID] = secret
	}
}

// WithWallet installs a wallet adapter, taking priority over the key store
// for signing unless a per-call signer override is supplied (§4.8).
func WithWallet(wallet *walletadapter.Adapter) Option {
	return func(c *Config) { c.wallet = wallet }
}

// WithDefaultSignerID sets the signer used when a call omits one.
func WithDefaultSignerID(accountID string) Option {
	return func(c *Config) { c.defaultSignerID = accountID }
}

// WithDefaultWaitUntil overrides the default finality level
// (EXECUTED_OPTIMISTIC per §6.4).
func WithDefaultWaitUntil(w rpcclient.WaitUntil) Option {
	return func(c *Config) { c.defaultWaitUntil = w }
}

// WithLogger attaches a zap.Logger shared by the client and its RPC client.
func WithLogger(log *zap.Logger) Option {
	return func(c *Config) { c.logger = log }
}

// WithMetrics registers every subsystem's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) { c.metrics = reg }
}

// WithHTTPTimeout overrides the transport's per-request timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Config) { c.httpTimeout = d }
}

func newConfig(opts ...Option) (*Config, error) {
	c := &Config{
		network:          "mainnet",
		maxRetries:       rpcclient.DefaultMaxRetries,
		initialDelay:     rpcclient.DefaultInitialDelay,
		defaultWaitUntil: rpcclient.WaitExecutedOptimistic,
		logger:           zap.NewNop(),
		httpTimeout:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.rpcURL == "" {
		url, ok := networkPresets[c.network]
		if !ok {
			return nil, fmt.Errorf("nearclient: unknown network %q and no rpcUrl override given", c.network)
		}
		c.rpcURL = url
	}

	if c.store == nil {
		c.store = keystore.NewInMemory()
	}
	for accountID, secret := range c.pendingSecrets {
		kp, err := keys.ParseSecret(secret)
		if err != nil {
			return nil, fmt.Errorf("nearclient: parse private key for %q: %w", accountID, err)
		}
		if err := c.store.Add(accountID, kp); err != nil {
			return nil, fmt.Errorf("nearclient: register private key for %q: %w", accountID, err)
		}
		if c.defaultSignerID == "" {
			c.defaultSignerID = accountID
		}
	}

	return c, nil
}
