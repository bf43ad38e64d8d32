// Package coordinator drives m-of-n multisig sessions: collecting signer
// public keys, deriving the shared address, and running a PSBT through the
// signer wallets until enough signatures accumulate.
package coordinator

import (
	"context"
	"fmt"

	"github.com/regweaver/regweaver/internal/logger"
	"github.com/regweaver/regweaver/internal/node"
	"github.com/regweaver/regweaver/internal/wallet"
)

// Session is one m-of-n arrangement between signer wallets.
type Session struct {
	Required     int
	Signers      []string
	PubKeys      []string
	Address      string
	RedeemScript string
}

// Service coordinates multisig sessions. Key derivation goes through the
// wallet service; the node client handles the multisig and PSBT verbs.
type Service struct {
	wallets *wallet.Service
	node    node.Client
	log     *logger.Logger
}

// NewService constructs a coordinator over the given wallet service and node
// client.
func NewService(wallets *wallet.Service, nc node.Client, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{wallets: wallets, node: nc, log: log}
}

// CreateSession derives a fresh key from each signer wallet and builds the
// shared m-of-n address.
func (s *Service) CreateSession(ctx context.Context, required int, signers []string) (*Session, error) {
	if required < 1 || required > len(signers) {
		return nil, fmt.Errorf("required signatures %d out of range for %d signers", required, len(signers))
	}

	pubkeys := make([]string, 0, len(signers))
	for _, signer := range signers {
		addr, err := s.wallets.NewAddress(ctx, signer)
		if err != nil {
			return nil, fmt.Errorf("derive key for signer %q: %w", signer, err)
		}
		pubkey, err := s.node.AddressPubKey(ctx, signer, addr)
		if err != nil {
			return nil, fmt.Errorf("pubkey for signer %q: %w", signer, err)
		}
		pubkeys = append(pubkeys, pubkey)
	}

	address, redeemScript, err := s.node.CreateMultisig(ctx, required, pubkeys)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"required": required,
		"signers":  len(signers),
		"address":  address,
	}).Debug("multisig session created")

	return &Session{
		Required:     required,
		Signers:      append([]string(nil), signers...),
		PubKeys:      pubkeys,
		Address:      address,
		RedeemScript: redeemScript,
	}, nil
}

// SignRound passes the PSBT through the session's signer wallets in order,
// stopping as soon as the PSBT reports complete. It returns the signed PSBT
// and whether completion was reached.
func (s *Service) SignRound(ctx context.Context, session *Session, psbt string) (string, bool, error) {
	if session == nil {
		return "", false, fmt.Errorf("session is nil")
	}

	for _, signer := range session.Signers {
		signed, complete, err := s.node.WalletProcessPSBT(ctx, signer, psbt)
		if err != nil {
			return "", false, fmt.Errorf("signer %q: %w", signer, err)
		}
		psbt = signed
		if complete {
			return psbt, true, nil
		}
	}
	return psbt, false, nil
}
