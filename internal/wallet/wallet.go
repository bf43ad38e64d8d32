// Package wallet implements the wallet service the engine injects into
// running scripts.
package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/regweaver/regweaver/internal/logger"
	"github.com/regweaver/regweaver/internal/node"
)

// Ref identifies a wallet created during a run. Simulated marks refs
// synthesized under dry-run; those never correspond to a wallet on the node.
type Ref struct {
	Name      string
	Address   string
	Simulated bool
}

// Service creates and inspects wallets on the regtest node. One Service is
// built per execution; dry-run behavior comes from the node client it wraps.
type Service struct {
	node   node.Client
	dryRun bool
	log    *logger.Logger
}

// NewService constructs a wallet service over the given node client.
func NewService(nc node.Client, dryRun bool, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{node: nc, dryRun: dryRun, log: log}
}

// Create makes the named wallet on the node and derives its first receive
// address. Under dry-run it returns a simulated ref without touching the
// node's wallet set.
func (s *Service) Create(ctx context.Context, name string) (*Ref, error) {
	if name == "" {
		return nil, fmt.Errorf("wallet name is required")
	}

	if err := s.node.CreateWallet(ctx, name); err != nil {
		return nil, err
	}

	addr, err := s.node.NewAddress(ctx, name)
	if err != nil {
		return nil, err
	}

	ref := &Ref{Name: name, Address: addr, Simulated: s.dryRun}
	s.log.WithFields(map[string]any{"wallet": name, "address": addr, "simulated": ref.Simulated}).Debug("wallet created")
	return ref, nil
}

// NewAddress derives a fresh receive address from an existing wallet.
func (s *Service) NewAddress(ctx context.Context, wallet string) (string, error) {
	return s.node.NewAddress(ctx, wallet)
}

// Balance returns the wallet's confirmed balance. Dry-run reports zero
// without querying, since the wallet may only exist as a preview.
func (s *Service) Balance(ctx context.Context, wallet string) (btcutil.Amount, error) {
	if s.dryRun {
		s.log.WithFields(map[string]any{"wallet": wallet}).Warn("dry-run balance is synthesized as zero")
		return 0, nil
	}
	return s.node.Balance(ctx, wallet)
}

// Mine mines count blocks with the coinbase paid to the given address and
// returns the block hashes in order.
func (s *Service) Mine(ctx context.Context, count int64, address string) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("block count must be positive, got %d", count)
	}
	hashes, err := s.node.GenerateToAddress(ctx, count, address)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]any{"count": count, "to": address}).Debug("blocks mined")
	return hashes, nil
}
