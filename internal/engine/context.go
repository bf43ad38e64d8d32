package engine

import (
	"github.com/regweaver/regweaver/internal/coordinator"
	"github.com/regweaver/regweaver/internal/logger"
	"github.com/regweaver/regweaver/internal/node"
	"github.com/regweaver/regweaver/internal/script"
	"github.com/regweaver/regweaver/internal/tx"
	"github.com/regweaver/regweaver/internal/wallet"
)

// Options are the orthogonal execution-mode flags. Any combination is legal;
// dry-run plus interactive previews with per-step confirmation.
type Options struct {
	DryRun      bool
	Verbose     bool
	Interactive bool
}

// ExecutionContext is the per-run environment a script executes in: the
// service handles, the mutable state registries, and the logging sink. It is
// exclusively owned by one execution and never persisted.
type ExecutionContext struct {
	Options  Options
	Bindings *script.Bindings
	Logger   *logger.Logger
	Capture  *logger.Capture
	Prompter Prompter
}

// NewContext builds a fresh execution context over the shared node client.
// Under dry-run the node handle is swapped for a per-run simulator so no
// call with ledger side effects can reach the real node. Construction
// performs no I/O.
func NewContext(opts Options, nc node.Client, cfg *node.Config, prompter Prompter) (*ExecutionContext, error) {
	if cfg == nil {
		cfg = node.DefaultConfig()
	}
	if opts.DryRun {
		nc = node.NewSimulator()
	}
	if prompter == nil {
		prompter = AutoApprove{}
	}

	capture := logger.NewCapture()
	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	// Verbose runs surface the captured lines to the user, so format them
	// for reading rather than as raw JSON.
	log, err := logger.New(logger.Options{Level: level, HumanReadable: opts.Verbose, Writer: capture})
	if err != nil {
		return nil, err
	}

	walletSvc := wallet.NewService(nc, opts.DryRun, log)
	txSvc := tx.NewService(nc, opts.DryRun, log)
	coordSvc := coordinator.NewService(walletSvc, nc, log)

	return &ExecutionContext{
		Options: opts,
		Bindings: &script.Bindings{
			WalletService:      walletSvc,
			TransactionService: txSvc,
			RPCClient:          nc,
			CoordinatorService: coordSvc,
			Config:             cfg,
			Wallets:            make(map[string]*wallet.Ref),
			Transactions:       make(map[string]*tx.Record),
		},
		Logger:   log,
		Capture:  capture,
		Prompter: prompter,
	}, nil
}
