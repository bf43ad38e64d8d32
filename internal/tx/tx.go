// Package tx implements the transaction service: PSBT construction, signing,
// broadcast, and the record of each transaction's lifecycle within a run.
package tx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/regweaver/regweaver/internal/logger"
	"github.com/regweaver/regweaver/internal/node"
)

// Status tracks a record's lifecycle. Transitions are monotonic
// Created -> Signed -> Broadcasted, except Failed, which is terminal and
// reachable from any state. Simulated marks dry-run previews; a simulated
// record never advances to Broadcasted.
type Status string

const (
	StatusCreated     Status = "created"
	StatusSigned      Status = "signed"
	StatusBroadcasted Status = "broadcasted"
	StatusFailed      Status = "failed"
	StatusSimulated   Status = "simulated"
)

// Output is one address/amount pair in a transaction.
type Output struct {
	Address string
	Amount  float64
}

// Record captures one transaction created during a run.
type Record struct {
	ID            string
	FromWallet    string
	Outputs       []Output
	Status        Status
	PSBT          string
	Hex           string
	BroadcastTxid string
	CreatedAt     time.Time
}

// Service builds, signs, and broadcasts transactions through the node
// client. One Service is built per execution.
type Service struct {
	node   node.Client
	dryRun bool
	log    *logger.Logger

	mu   sync.Mutex
	next int
}

// NewService constructs a transaction service over the given node client.
func NewService(nc node.Client, dryRun bool, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{node: nc, dryRun: dryRun, log: log}
}

func (s *Service) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("tx-%d", s.next)
}

// Create funds a PSBT spending from the wallet to the given outputs and
// returns a new record. Dry-run records carry StatusSimulated from birth.
func (s *Service) Create(ctx context.Context, fromWallet string, outputs []Output) (*Record, error) {
	if fromWallet == "" {
		return nil, fmt.Errorf("fromWallet is required")
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("at least one output is required")
	}

	byAddress := make(map[string]float64, len(outputs))
	for _, out := range outputs {
		if out.Address == "" {
			return nil, fmt.Errorf("output address is required")
		}
		if out.Amount <= 0 {
			return nil, fmt.Errorf("output amount must be positive, got %v", out.Amount)
		}
		byAddress[out.Address] += out.Amount
	}

	psbt, err := s.node.WalletCreateFundedPSBT(ctx, fromWallet, byAddress)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:         s.nextID(),
		FromWallet: fromWallet,
		Outputs:    outputs,
		Status:     StatusCreated,
		PSBT:       psbt,
		CreatedAt:  time.Now(),
	}
	if s.dryRun {
		rec.Status = StatusSimulated
	}
	s.log.WithFields(map[string]any{"tx": rec.ID, "from": fromWallet}).Debug("transaction created")
	return rec, nil
}

// Sign runs the signer wallet over the record's PSBT. Repeated signing is
// allowed so multisig rounds can accumulate signatures; the record reaches
// Signed once the PSBT is complete.
func (s *Service) Sign(ctx context.Context, rec *Record, signerWallet string) error {
	if rec == nil {
		return fmt.Errorf("transaction record is nil")
	}
	switch rec.Status {
	case StatusCreated, StatusSigned, StatusSimulated:
	default:
		return fmt.Errorf("transaction %s cannot be signed from status %s", rec.ID, rec.Status)
	}

	psbt, complete, err := s.node.WalletProcessPSBT(ctx, signerWallet, rec.PSBT)
	if err != nil {
		rec.Status = StatusFailed
		return err
	}

	rec.PSBT = psbt
	if s.dryRun {
		rec.Status = StatusSimulated
		return nil
	}
	if complete {
		rec.Status = StatusSigned
	}
	return nil
}

// Broadcast finalizes the record's PSBT, checks mempool acceptance, and
// submits the transaction to the network. A record that is not fully signed
// or fails the acceptance check is rejected and marked Failed.
func (s *Service) Broadcast(ctx context.Context, rec *Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("transaction record is nil")
	}
	switch rec.Status {
	case StatusSigned, StatusSimulated:
	case StatusCreated:
		rec.Status = StatusFailed
		return "", fmt.Errorf("transaction %s is not fully signed", rec.ID)
	default:
		return "", fmt.Errorf("transaction %s cannot be broadcast from status %s", rec.ID, rec.Status)
	}

	hexTx, complete, err := s.node.FinalizePSBT(ctx, rec.PSBT)
	if err != nil {
		rec.Status = StatusFailed
		return "", err
	}
	if !complete {
		rec.Status = StatusFailed
		return "", fmt.Errorf("transaction %s is not fully signed", rec.ID)
	}
	rec.Hex = hexTx

	allowed, reason, err := s.node.TestMempoolAccept(ctx, hexTx)
	if err != nil {
		rec.Status = StatusFailed
		return "", err
	}
	if !allowed {
		rec.Status = StatusFailed
		return "", fmt.Errorf("transaction %s rejected by mempool preflight: %s", rec.ID, reason)
	}

	txid, err := s.node.SendRawTransaction(ctx, hexTx)
	if err != nil {
		rec.Status = StatusFailed
		return "", err
	}

	rec.BroadcastTxid = txid
	if s.dryRun {
		rec.Status = StatusSimulated
	} else {
		rec.Status = StatusBroadcasted
	}
	s.log.WithFields(map[string]any{"tx": rec.ID, "txid": txid}).Debug("transaction broadcast")
	return txid, nil
}

// Send spends directly from the wallet to a single address, skipping the
// explicit PSBT staging. The returned record is already broadcast. The node
// flags the transaction replaceable, so it remains eligible for fee bumping.
func (s *Service) Send(ctx context.Context, fromWallet, address string, amount float64) (*Record, error) {
	amt, err := btcutil.NewAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("amount %v: %w", amount, err)
	}

	txid, err := s.node.SendToAddress(ctx, fromWallet, address, amt)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:            s.nextID(),
		FromWallet:    fromWallet,
		Outputs:       []Output{{Address: address, Amount: amount}},
		Status:        StatusBroadcasted,
		BroadcastTxid: txid,
		CreatedAt:     time.Now(),
	}
	if s.dryRun {
		rec.Status = StatusSimulated
	}
	s.log.WithFields(map[string]any{"tx": rec.ID, "txid": txid, "from": fromWallet}).Debug("transaction sent")
	return rec, nil
}

// WaitForMempool polls the node until the txid shows up in the mempool or
// the timeout elapses. This replaces fixed propagation sleeps with a
// condition the node can actually answer.
func (s *Service) WaitForMempool(ctx context.Context, txid string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	deadline := time.Now().Add(timeout)

	for {
		found, err := s.node.InMempool(ctx, txid)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("transaction %s not in mempool after %s", txid, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// BumpFee replaces the record's broadcast transaction with a higher-fee
// version and returns a new record for the replacement.
func (s *Service) BumpFee(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, fmt.Errorf("transaction record is nil")
	}
	if rec.BroadcastTxid == "" {
		return nil, fmt.Errorf("transaction %s has not been broadcast", rec.ID)
	}

	newTxid, err := s.node.BumpFee(ctx, rec.FromWallet, rec.BroadcastTxid)
	if err != nil {
		return nil, err
	}

	replacement := &Record{
		ID:            s.nextID(),
		FromWallet:    rec.FromWallet,
		Outputs:       rec.Outputs,
		Status:        StatusBroadcasted,
		BroadcastTxid: newTxid,
		CreatedAt:     time.Now(),
	}
	if s.dryRun {
		replacement.Status = StatusSimulated
	}
	return replacement, nil
}
