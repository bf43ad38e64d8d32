package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/rpcclient"
)

// RPCClient implements Client over the btcd rpcclient library. bitcoind
// exposes wallet RPCs on per-wallet endpoints, so one underlying client is
// kept per wallet in addition to the node-level one.
type RPCClient struct {
	cfg  *Config
	base *rpcclient.Client

	mu      sync.Mutex
	wallets map[string]*rpcclient.Client
}

var _ Client = (*RPCClient)(nil)

// NewRPCClient connects to the node described by cfg.
func NewRPCClient(cfg *Config) (*RPCClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	base, err := rpcclient.New(connConfig(cfg.Host, cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to node: %w", err)
	}

	return &RPCClient{
		cfg:     cfg,
		base:    base,
		wallets: make(map[string]*rpcclient.Client),
	}, nil
}

// Close shuts down the node-level client and all wallet-scoped clients.
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base.Shutdown()
	for _, wc := range c.wallets {
		wc.Shutdown()
	}
}

func connConfig(host string, cfg *Config) *rpcclient.ConnConfig {
	return &rpcclient.ConnConfig{
		Host:         host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		HTTPPostMode: true,
		DisableTLS:   true,
	}
}

// walletClient returns (creating if needed) the client bound to the wallet's
// RPC endpoint.
func (c *RPCClient) walletClient(wallet string) (*rpcclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wc, ok := c.wallets[wallet]; ok {
		return wc, nil
	}

	host := c.cfg.Host + "/wallet/" + url.PathEscape(wallet)
	wc, err := rpcclient.New(connConfig(host, c.cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to wallet %q: %w", wallet, err)
	}
	c.wallets[wallet] = wc
	return wc, nil
}

func (c *RPCClient) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.base.GetBlockCount()
	return err
}

func (c *RPCClient) CreateWallet(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.base.CreateWallet(name); err != nil {
		// A wallet left over from a previous run can be loaded instead.
		if _, loadErr := c.base.LoadWallet(name); loadErr != nil {
			return fmt.Errorf("create wallet %q: %w", name, err)
		}
	}
	return nil
}

func (c *RPCClient) NewAddress(ctx context.Context, wallet string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	wc, err := c.walletClient(wallet)
	if err != nil {
		return "", err
	}

	res, err := wc.RawRequest("getnewaddress", params("", "bech32"))
	if err != nil {
		return "", fmt.Errorf("getnewaddress on %q: %w", wallet, err)
	}
	var addr string
	if err := json.Unmarshal(res, &addr); err != nil {
		return "", err
	}
	return addr, nil
}

func (c *RPCClient) GenerateToAddress(ctx context.Context, count int64, address string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr, err := btcutil.DecodeAddress(address, &chaincfg.RegressionNetParams)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", address, err)
	}

	hashes, err := c.base.GenerateToAddress(count, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("generatetoaddress: %w", err)
	}

	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = h.String()
	}
	return out, nil
}

func (c *RPCClient) Balance(ctx context.Context, wallet string) (btcutil.Amount, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	wc, err := c.walletClient(wallet)
	if err != nil {
		return 0, err
	}
	return wc.GetBalance("*")
}

func (c *RPCClient) SendToAddress(ctx context.Context, wallet, address string, amount btcutil.Amount) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	wc, err := c.walletClient(wallet)
	if err != nil {
		return "", err
	}
	addr, err := btcutil.DecodeAddress(address, &chaincfg.RegressionNetParams)
	if err != nil {
		return "", fmt.Errorf("decode address %q: %w", address, err)
	}

	hash, err := wc.SendToAddress(addr, amount)
	if err != nil {
		return "", fmt.Errorf("sendtoaddress from %q: %w", wallet, err)
	}
	return hash.String(), nil
}

func (c *RPCClient) WalletCreateFundedPSBT(ctx context.Context, wallet string, outputs map[string]float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	wc, err := c.walletClient(wallet)
	if err != nil {
		return "", err
	}

	res, err := wc.RawRequest("walletcreatefundedpsbt",
		params([]any{}, outputs, 0, map[string]any{"replaceable": true}))
	if err != nil {
		return "", fmt.Errorf("walletcreatefundedpsbt on %q: %w", wallet, err)
	}

	var out struct {
		PSBT string  `json:"psbt"`
		Fee  float64 `json:"fee"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return "", err
	}
	return out.PSBT, nil
}

func (c *RPCClient) WalletProcessPSBT(ctx context.Context, wallet, psbt string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	wc, err := c.walletClient(wallet)
	if err != nil {
		return "", false, err
	}

	res, err := wc.RawRequest("walletprocesspsbt", params(psbt))
	if err != nil {
		return "", false, fmt.Errorf("walletprocesspsbt on %q: %w", wallet, err)
	}

	var out struct {
		PSBT     string `json:"psbt"`
		Complete bool   `json:"complete"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return "", false, err
	}
	return out.PSBT, out.Complete, nil
}

func (c *RPCClient) FinalizePSBT(ctx context.Context, psbt string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	res, err := c.base.RawRequest("finalizepsbt", params(psbt))
	if err != nil {
		return "", false, fmt.Errorf("finalizepsbt: %w", err)
	}

	var out struct {
		Hex      string `json:"hex"`
		Complete bool   `json:"complete"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return "", false, err
	}
	return out.Hex, out.Complete, nil
}

func (c *RPCClient) SendRawTransaction(ctx context.Context, hexTx string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := c.base.RawRequest("sendrawtransaction", params(hexTx))
	if err != nil {
		return "", fmt.Errorf("sendrawtransaction: %w", err)
	}
	var txid string
	if err := json.Unmarshal(res, &txid); err != nil {
		return "", err
	}
	return txid, nil
}

func (c *RPCClient) TestMempoolAccept(ctx context.Context, hexTx string) (bool, string, error) {
	if err := ctx.Err(); err != nil {
		return false, "", err
	}

	res, err := c.base.RawRequest("testmempoolaccept", params([]string{hexTx}))
	if err != nil {
		return false, "", fmt.Errorf("testmempoolaccept: %w", err)
	}

	var out []struct {
		Allowed      bool   `json:"allowed"`
		RejectReason string `json:"reject-reason"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return false, "", err
	}
	if len(out) == 0 {
		return false, "", fmt.Errorf("testmempoolaccept: empty result")
	}
	return out[0].Allowed, out[0].RejectReason, nil
}

func (c *RPCClient) InMempool(ctx context.Context, txid string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := c.base.GetMempoolEntry(txid)
	if err != nil {
		var rpcErr *btcjson.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == btcjson.ErrRPCInvalidAddressOrKey {
			return false, nil
		}
		return false, fmt.Errorf("getmempoolentry: %w", err)
	}
	return true, nil
}

func (c *RPCClient) BumpFee(ctx context.Context, wallet, txid string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	wc, err := c.walletClient(wallet)
	if err != nil {
		return "", err
	}

	res, err := wc.RawRequest("bumpfee", params(txid))
	if err != nil {
		return "", fmt.Errorf("bumpfee %s on %q: %w", txid, wallet, err)
	}

	var out struct {
		Txid string `json:"txid"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return "", err
	}
	return out.Txid, nil
}

func (c *RPCClient) CreateMultisig(ctx context.Context, required int, pubkeys []string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	res, err := c.base.RawRequest("createmultisig", params(required, pubkeys, "p2sh-segwit"))
	if err != nil {
		return "", "", fmt.Errorf("createmultisig: %w", err)
	}

	var out struct {
		Address      string `json:"address"`
		RedeemScript string `json:"redeemScript"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return "", "", err
	}
	return out.Address, out.RedeemScript, nil
}

func (c *RPCClient) AddressPubKey(ctx context.Context, wallet, address string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	wc, err := c.walletClient(wallet)
	if err != nil {
		return "", err
	}

	res, err := wc.RawRequest("getaddressinfo", params(address))
	if err != nil {
		return "", fmt.Errorf("getaddressinfo on %q: %w", wallet, err)
	}

	var out struct {
		PubKey string `json:"pubkey"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return "", err
	}
	if out.PubKey == "" {
		return "", fmt.Errorf("address %s has no pubkey in wallet %q", address, wallet)
	}
	return out.PubKey, nil
}

// params marshals positional RPC arguments for RawRequest.
func params(args ...any) []json.RawMessage {
	out := make([]json.RawMessage, len(args))
	for i, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			// Arguments are plain values assembled by this package; a
			// marshal failure is a programming error.
			panic(err)
		}
		out[i] = raw
	}
	return out
}
