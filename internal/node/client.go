// Package node provides the RPC boundary to the regtest bitcoind instance.
// Services talk to the narrow Client interface; the rpcclient-backed
// implementation and the dry-run simulator both satisfy it.
package node

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
)

// Config holds the static connection parameters for the regtest node.
type Config struct {
	Host string
	User string
	Pass string
}

// DefaultConfig returns the standard local regtest connection parameters.
func DefaultConfig() *Config {
	return &Config{
		Host: "127.0.0.1:18443",
		User: "user",
		Pass: "pass",
	}
}

// Client is the RPC surface the engine's services depend on. Wallet-scoped
// calls take the wallet name explicitly; the implementation routes them to
// the node's per-wallet endpoint.
type Client interface {
	// Ping verifies connectivity to the node.
	Ping(ctx context.Context) error

	// CreateWallet creates (or loads, if it already exists) a named wallet.
	CreateWallet(ctx context.Context, name string) error

	// NewAddress derives a fresh receive address from the wallet.
	NewAddress(ctx context.Context, wallet string) (string, error)

	// GenerateToAddress mines count blocks paying the coinbase to address
	// and returns the block hashes in order.
	GenerateToAddress(ctx context.Context, count int64, address string) ([]string, error)

	// Balance returns the wallet's confirmed balance.
	Balance(ctx context.Context, wallet string) (btcutil.Amount, error)

	// SendToAddress spends from the wallet to a single address and returns
	// the txid. The transaction is flagged replaceable.
	SendToAddress(ctx context.Context, wallet, address string, amount btcutil.Amount) (string, error)

	// WalletCreateFundedPSBT builds and funds a PSBT spending from the
	// wallet to the given address->amount outputs.
	WalletCreateFundedPSBT(ctx context.Context, wallet string, outputs map[string]float64) (string, error)

	// WalletProcessPSBT signs the PSBT with the wallet's keys. The returned
	// bool reports whether the PSBT is now complete.
	WalletProcessPSBT(ctx context.Context, wallet, psbt string) (string, bool, error)

	// FinalizePSBT extracts the network-serialized transaction from a
	// complete PSBT.
	FinalizePSBT(ctx context.Context, psbt string) (hexTx string, complete bool, err error)

	// SendRawTransaction broadcasts a raw transaction and returns its txid.
	SendRawTransaction(ctx context.Context, hexTx string) (string, error)

	// TestMempoolAccept checks whether the raw transaction would be accepted
	// without broadcasting it.
	TestMempoolAccept(ctx context.Context, hexTx string) (allowed bool, reason string, err error)

	// InMempool reports whether the txid is currently visible in the node's
	// mempool.
	InMempool(ctx context.Context, txid string) (bool, error)

	// BumpFee replaces an unconfirmed wallet transaction with a higher-fee
	// version and returns the replacement txid.
	BumpFee(ctx context.Context, wallet, txid string) (string, error)

	// CreateMultisig builds an m-of-n multisig address from public keys.
	CreateMultisig(ctx context.Context, required int, pubkeys []string) (address, redeemScript string, err error)

	// AddressPubKey returns the public key backing a wallet-owned address.
	AddressPubKey(ctx context.Context, wallet, address string) (string, error)
}
