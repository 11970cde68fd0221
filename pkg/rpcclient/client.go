// Package rpcclient is the JSON-RPC 2.0 transport to a NEAR RPC node:
// request/response envelopes, an exponential-backoff retry loop, error
// classification into pkg/rpcerrors, and the operations the rest of the
// client builds on (§4.5).
package rpcclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nearclient/near-go/pkg/rpcerrors"
)

// DefaultMaxRetries and DefaultInitialDelay are the §4.5 retry defaults:
// total attempts = 1 + maxRetries, delay before retry N is
// initialDelay * 2^N.
const (
	DefaultMaxRetries   = 4
	DefaultInitialDelay = time.Second
)

// Client is a single NEAR RPC endpoint's JSON-RPC transport.
type Client struct {
	endpoint     string
	http         *http.Client
	log          *zap.Logger
	maxRetries   int
	initialDelay time.Duration
	idCounter    uint64
	metrics      *clientMetrics
	headers      map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client (timeouts, transport
// pooling, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a zap.Logger; defaults to zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log.With(zap.String("component", "rpcclient")) }
}

// WithMaxRetries overrides DefaultMaxRetries.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithInitialDelay overrides DefaultInitialDelay.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Client) { c.initialDelay = d }
}

// WithMetrics registers this client's request/retry/error counters with
// reg. Safe to omit; metrics are simply not exported.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = newClientMetrics(reg)
	}
}

// WithHeaders attaches extra HTTP headers to every request (§6.4).
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) { c.headers = headers }
}

// New returns a Client that talks to endpoint (e.g.
// "https://rpc.mainnet.near.org").
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:     endpoint,
		http:         &http.Client{Timeout: 30 * time.Second},
		log:          zap.NewNop(),
		maxRetries:   DefaultMaxRetries,
		initialDelay: DefaultInitialDelay,
		metrics:      noopMetrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) nextID() uint64 {
	return atomic.AddUint64(&c.idCounter, 1)
}

// Call performs method(params), retrying per §4.5, and decodes the
// result into out (skipped if out is nil).
func (c *Client) Call(ctx context.Context, method string, params interface{}, out interface{}) error {
	correlationID := uuid.New().String()
	attempts := 1 + c.maxRetries

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := c.initialDelay * time.Duration(uint64(1)<<uint(attempt-1))
			c.log.Debug("retrying rpc call",
				zap.String("correlation_id", correlationID),
				zap.String("method", method),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		c.metrics.requests.WithLabelValues(method).Inc()
		raw, err := c.doOnce(ctx, method, params, correlationID)
		if err == nil {
			if out == nil {
				return nil
			}
			return json.Unmarshal(raw, out)
		}

		lastErr = err
		rerr, ok := err.(*rpcerrors.Error)
		if !ok || !rerr.Retryable() {
			c.metrics.errors.WithLabelValues(method, string(errKind(err))).Inc()
			return err
		}
		if attempt < attempts-1 {
			c.metrics.retries.WithLabelValues(method).Inc()
		}
	}
	c.metrics.errors.WithLabelValues(method, string(errKind(lastErr))).Inc()
	return lastErr
}

func errKind(err error) rpcerrors.Kind {
	if rerr, ok := err.(*rpcerrors.Error); ok {
		return rerr.Kind
	}
	return rpcerrors.KindNetworkError
}

func (c *Client) doOnce(ctx context.Context, method string, params interface{}, correlationID string) (json.RawMessage, error) {
	body, err := json.Marshal(request{Jsonrpc: "2.0", ID: c.nextID(), Method: method, Params: params})
	if err != nil {
		return nil, rpcerrors.New(rpcerrors.KindParseError, fmt.Sprintf("marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, rpcerrors.NewNetworkError(err.Error(), false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-Id", correlationID)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, rpcerrors.NewNetworkError(err.Error(), true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rpcerrors.NewNetworkError(err.Error(), true)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, rpcerrors.FromHTTPStatus(resp.StatusCode, string(respBody))
	}

	var env response
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, rpcerrors.New(rpcerrors.KindParseError, fmt.Sprintf("unmarshal response: %v", err))
	}
	if env.Error != nil {
		return nil, classifyRPCError(env.Error)
	}
	return env.Result, nil
}

// classifyRPCError maps an RPC-layer error object by cause.name
// (preferred) or top-level name, plus cause.info when present, into the
// §7 taxonomy (§4.5). cause.info is what lets INVALID_TRANSACTION/
// InvalidNonce classify down to InvalidNonceError instead of the generic
// InvalidTransactionError catch-all.
func classifyRPCError(e *rpcErrorObject) *rpcerrors.Error {
	cause := e.Name
	var info json.RawMessage
	if e.Cause != nil && e.Cause.Name != "" {
		cause = e.Cause.Name
		info = e.Cause.Info
	}
	return rpcerrors.FromCauseWithInfo(cause, e.Message, info)
}

func base64Encode(b []byte) string { return base64.StdEncoding.EncodeToString(b) }
