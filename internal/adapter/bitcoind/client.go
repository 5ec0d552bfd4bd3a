// Package bitcoind implements ports.NodeClient against Bitcoin Core's
// JSON-RPC interface. Wallet-scoped calls go to /wallet/<name> so multiple
// custodial wallets can be driven over one endpoint.
package bitcoind

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"paybit/config"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/rs/zerolog"
)

// Client talks JSON-RPC 1.0 to a Bitcoin Core node.
type Client struct {
	baseURL string
	user    string
	pass    string
	timeout time.Duration
	httpc   *http.Client
	log     zerolog.Logger
}

// NewClient builds a node client from configuration. The per-call timeout
// bounds every RPC individually.
func NewClient(cfg config.NodeConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		user:    cfg.User,
		pass:    cfg.Pass,
		timeout: timeout,
		httpc:   &http.Client{},
		log:     log.With().Str("component", "bitcoind").Logger(),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *NodeError      `json:"error"`
}

// call performs one RPC against the node. An empty wallet targets the
// node-level endpoint. Node-side errors come back as *NodeError; transport
// failures as plain errors.
func (c *Client) call(ctx context.Context, wallet, method string, params []any, result any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "1.0", ID: "paybit", Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshaling rpc request: %w", err)
	}

	endpoint := c.baseURL
	if wallet != "" {
		endpoint = c.baseURL + "/wallet/" + url.PathEscape(wallet)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building rpc request: %w", err)
	}
	req.SetBasicAuth(c.user, c.pass)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Msg("node rpc transport failure")
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading rpc response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("decoding rpc response (status %d): %w", resp.StatusCode, err)
	}
	if rpcResp.Error != nil {
		c.log.Debug().Str("method", method).Int("code", rpcResp.Error.Code).
			Dur("took", time.Since(start)).Msg("node rpc error")
		return rpcResp.Error
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decoding %s result: %w", method, err)
		}
	}
	return nil
}

// ListWallets returns the wallets currently loaded on the node.
func (c *Client) ListWallets(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.call(ctx, "", "listwallets", nil, &names); err != nil {
		return nil, apperror.ErrNodeUnavailable(err)
	}
	return names, nil
}

// LoadWallet loads a wallet. A wallet that is already loaded is a success;
// a wallet that does not exist yields ports.ErrWalletMissing.
func (c *Client) LoadWallet(ctx context.Context, name string) error {
	err := c.call(ctx, "", "loadwallet", []any{name}, nil)
	if err == nil {
		return nil
	}
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		if isAlreadyLoaded(nodeErr) {
			return nil
		}
		if isWalletMissing(nodeErr) {
			return fmt.Errorf("loadwallet %s: %w", name, ports.ErrWalletMissing)
		}
	}
	return apperror.ErrNodeUnavailable(err)
}

// CreateWallet creates a wallet on the node. A wallet that already exists
// is a success (it may just need loading, which the node does on create
// collision anyway on recent versions).
func (c *Client) CreateWallet(ctx context.Context, name string) error {
	err := c.call(ctx, "", "createwallet", []any{name}, nil)
	if err == nil {
		return nil
	}
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) && isAlreadyExists(nodeErr) {
		return nil
	}
	return apperror.ErrNodeUnavailable(err)
}

// UnloadWallet unloads a wallet. Unloading a wallet that is not loaded is
// treated as done.
func (c *Client) UnloadWallet(ctx context.Context, name string) error {
	err := c.call(ctx, "", "unloadwallet", []any{name}, nil)
	if err == nil {
		return nil
	}
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) && isWalletMissing(nodeErr) {
		return nil
	}
	return apperror.ErrNodeUnavailable(err)
}

// GetNewAddress generates a fresh bech32m (taproot) receiving address in
// the wallet. Nodes that reject the type fall back to their default.
func (c *Client) GetNewAddress(ctx context.Context, wallet string) (string, error) {
	var addr string
	err := c.call(ctx, wallet, "getnewaddress", []any{"", "bech32m"}, &addr)
	if err != nil {
		var nodeErr *NodeError
		if errors.As(err, &nodeErr) && nodeErr.Code == codeInvalidParameter {
			err = c.call(ctx, wallet, "getnewaddress", []any{}, &addr)
		}
	}
	if err != nil {
		return "", apperror.ErrNodeUnavailable(err)
	}
	return addr, nil
}

// GetBalance returns the wallet's confirmed balance. A wallet unknown to
// the node reads as zero.
func (c *Client) GetBalance(ctx context.Context, wallet string) (btcutil.Amount, error) {
	var btc float64
	err := c.call(ctx, wallet, "getbalance", nil, &btc)
	if err != nil {
		var nodeErr *NodeError
		if errors.As(err, &nodeErr) && isWalletMissing(nodeErr) {
			return 0, nil
		}
		return 0, apperror.ErrNodeUnavailable(err)
	}
	amt, err := btcutil.NewAmount(btc)
	if err != nil {
		return 0, apperror.ErrNodeUnavailable(fmt.Errorf("node returned unusable balance %v: %w", btc, err))
	}
	return amt, nil
}

// SendToAddress broadcasts a payment from the wallet and returns the node
// txid. A timeout mid-send is indeterminate: the payment may have gone
// through, so the caller must not retry it blindly.
func (c *Client) SendToAddress(ctx context.Context, wallet, address string, amount btcutil.Amount) (string, error) {
	var txid string
	err := c.call(ctx, wallet, "sendtoaddress", []any{address, amount.ToBTC()}, &txid)
	if err == nil {
		return txid, nil
	}
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		// A well-formed error reply means the node understood the send
		// and declined it (insufficient funds, bad address, fee failure,
		// locked wallet). Surface the node's reason verbatim; retrying
		// as-is cannot succeed.
		return "", apperror.ErrTransferRejected(nodeErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "", apperror.ErrTransferIndeterminate(err)
	}
	return "", apperror.ErrNodeUnavailable(err)
}

// Ping verifies node connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.call(ctx, "", "getblockchaininfo", nil, nil); err != nil {
		return apperror.ErrNodeUnavailable(err)
	}
	return nil
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string { return "bitcoind" }
