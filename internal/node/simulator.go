package node

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
)

// Simulator is the dry-run stand-in for the real node. Every mutating verb
// returns a deterministic synthesized value instead of touching the ledger,
// so a preview run is repeatable and leaves no trace on the node. One
// Simulator belongs to exactly one execution.
type Simulator struct {
	mu      sync.Mutex
	counter int
	mined   map[string]int64
	mempool map[string]bool
}

var _ Client = (*Simulator)(nil)

// NewSimulator creates a fresh simulator with empty state.
func NewSimulator() *Simulator {
	return &Simulator{
		mined:   make(map[string]int64),
		mempool: make(map[string]bool),
	}
}

func (s *Simulator) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return fmt.Sprintf("simulated-%s-%d", prefix, s.counter)
}

func (s *Simulator) Ping(context.Context) error { return nil }

func (s *Simulator) CreateWallet(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mined[name]; !ok {
		s.mined[name] = 0
	}
	return nil
}

func (s *Simulator) NewAddress(_ context.Context, wallet string) (string, error) {
	return s.next("address"), nil
}

func (s *Simulator) GenerateToAddress(_ context.Context, count int64, address string) ([]string, error) {
	hashes := make([]string, count)
	for i := range hashes {
		hashes[i] = s.next("block")
	}
	s.mu.Lock()
	s.mined[address] += count
	s.mu.Unlock()
	return hashes, nil
}

func (s *Simulator) Balance(context.Context, string) (btcutil.Amount, error) {
	return 0, nil
}

func (s *Simulator) SendToAddress(_ context.Context, wallet, address string, amount btcutil.Amount) (string, error) {
	txid := s.next("txid")
	s.mu.Lock()
	s.mempool[txid] = true
	s.mu.Unlock()
	return txid, nil
}

func (s *Simulator) WalletCreateFundedPSBT(_ context.Context, wallet string, outputs map[string]float64) (string, error) {
	return s.next("psbt"), nil
}

func (s *Simulator) WalletProcessPSBT(_ context.Context, wallet, psbt string) (string, bool, error) {
	return psbt + "+sig", true, nil
}

func (s *Simulator) FinalizePSBT(_ context.Context, psbt string) (string, bool, error) {
	return s.next("rawtx"), true, nil
}

func (s *Simulator) SendRawTransaction(_ context.Context, hexTx string) (string, error) {
	txid := s.next("txid")
	s.mu.Lock()
	s.mempool[txid] = true
	s.mu.Unlock()
	return txid, nil
}

func (s *Simulator) TestMempoolAccept(context.Context, string) (bool, string, error) {
	return true, "", nil
}

func (s *Simulator) InMempool(_ context.Context, txid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mempool[txid], nil
}

func (s *Simulator) BumpFee(_ context.Context, wallet, txid string) (string, error) {
	replacement := s.next("txid")
	s.mu.Lock()
	delete(s.mempool, txid)
	s.mempool[replacement] = true
	s.mu.Unlock()
	return replacement, nil
}

func (s *Simulator) CreateMultisig(_ context.Context, required int, pubkeys []string) (string, string, error) {
	return s.next("address"), s.next("script"), nil
}

func (s *Simulator) AddressPubKey(_ context.Context, wallet, address string) (string, error) {
	return s.next("pubkey"), nil
}
