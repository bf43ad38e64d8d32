// Package actions defines the built-in action set available to declarative
// scripts and wires it into an engine registry.
package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/regweaver/regweaver/internal/engine"
	"github.com/regweaver/regweaver/internal/script"
)

// Action names understood by declarative scripts.
const (
	CreateWallet         = "CREATE_WALLET"
	MineBlocks           = "MINE_BLOCKS"
	CreateTransaction    = "CREATE_TRANSACTION"
	SignTransaction      = "SIGN_TRANSACTION"
	BroadcastTransaction = "BROADCAST_TRANSACTION"
	Wait                 = "WAIT"
	WaitForTransaction   = "WAIT_FOR_TX"
	GetBalance           = "GET_BALANCE"
	SendToAddress        = "SEND_TO_ADDRESS"
)

// DefaultRegistry returns the closed registry of built-in actions.
func DefaultRegistry() *engine.Registry {
	reg := engine.NewRegistry()
	for _, a := range []engine.Action{
		{Name: CreateWallet, RequiredParams: []string{"name"}, Handler: createWallet},
		{Name: MineBlocks, RequiredParams: []string{"count", "toWallet"}, Handler: mineBlocks},
		{Name: CreateTransaction, RequiredParams: []string{"fromWallet", "outputs"}, Handler: createTransaction},
		{Name: SignTransaction, RequiredParams: []string{"txId", "signerWallet"}, Handler: signTransaction},
		{Name: BroadcastTransaction, RequiredParams: []string{"txId"}, Handler: broadcastTransaction},
		{Name: Wait, RequiredParams: []string{"milliseconds"}, Handler: wait},
		{Name: WaitForTransaction, RequiredParams: []string{"txId"}, Handler: waitForTransaction},
		{Name: GetBalance, RequiredParams: []string{"wallet"}, Handler: getBalance},
		{Name: SendToAddress, RequiredParams: []string{"fromWallet", "toAddress", "amount"}, Handler: sendToAddress},
	} {
		// Registration of the built-in set cannot collide.
		if err := reg.Register(a); err != nil {
			panic(err)
		}
	}
	return reg
}

func createWallet(ctx context.Context, ec *engine.ExecutionContext, params script.Params) (any, error) {
	name, err := params.String("name")
	if err != nil {
		return nil, err
	}

	ref, err := ec.Bindings.WalletService.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	ec.Bindings.Wallets[name] = ref
	return ref, nil
}

func mineBlocks(ctx context.Context, ec *engine.ExecutionContext, params script.Params) (any, error) {
	count, err := params.Int64("count")
	if err != nil {
		return nil, err
	}
	toWallet, err := params.String("toWallet")
	if err != nil {
		return nil, err
	}

	ref, ok := ec.Bindings.Wallets[toWallet]
	if !ok {
		return nil, fmt.Errorf("wallet %q has not been created in this run", toWallet)
	}

	hashes, err := ec.Bindings.WalletService.Mine(ctx, count, ref.Address)
	if err != nil {
		return nil, err
	}
	ec.Bindings.Blocks = append(ec.Bindings.Blocks, hashes...)
	return hashes, nil
}

func createTransaction(ctx context.Context, ec *engine.ExecutionContext, params script.Params) (any, error) {
	fromWallet, err := params.String("fromWallet")
	if err != nil {
		return nil, err
	}
	if _, ok := ec.Bindings.Wallets[fromWallet]; !ok {
		return nil, fmt.Errorf("wallet %q has not been created in this run", fromWallet)
	}

	outputs, err := params.Outputs("outputs")
	if err != nil {
		return nil, err
	}
	// Output addresses may name wallets created earlier in the run.
	for i, out := range outputs {
		if ref, ok := ec.Bindings.Wallets[out.Address]; ok {
			outputs[i].Address = ref.Address
		}
	}

	rec, err := ec.Bindings.TransactionService.Create(ctx, fromWallet, outputs)
	if err != nil {
		return nil, err
	}
	ec.Bindings.Transactions[rec.ID] = rec
	return rec, nil
}

func signTransaction(ctx context.Context, ec *engine.ExecutionContext, params script.Params) (any, error) {
	txID, err := params.String("txId")
	if err != nil {
		return nil, err
	}
	signer, err := params.String("signerWallet")
	if err != nil {
		return nil, err
	}

	rec, ok := ec.Bindings.Transactions[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %q has not been created in this run", txID)
	}

	if err := ec.Bindings.TransactionService.Sign(ctx, rec, signer); err != nil {
		return nil, err
	}
	return rec, nil
}

func broadcastTransaction(ctx context.Context, ec *engine.ExecutionContext, params script.Params) (any, error) {
	txID, err := params.String("txId")
	if err != nil {
		return nil, err
	}

	rec, ok := ec.Bindings.Transactions[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %q has not been created in this run", txID)
	}

	txid, err := ec.Bindings.TransactionService.Broadcast(ctx, rec)
	if err != nil {
		return nil, err
	}
	return txid, nil
}

func wait(ctx context.Context, ec *engine.ExecutionContext, params script.Params) (any, error) {
	ms, err := params.Int64("milliseconds")
	if err != nil {
		return nil, err
	}
	if ms < 0 {
		return nil, fmt.Errorf("milliseconds must not be negative, got %d", ms)
	}

	// A preview has nothing to wait for.
	if ec.Options.DryRun {
		return fmt.Sprintf("simulated wait of %dms", ms), nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Duration(ms) * time.Millisecond):
	}
	return fmt.Sprintf("waited %dms", ms), nil
}

func waitForTransaction(ctx context.Context, ec *engine.ExecutionContext, params script.Params) (any, error) {
	txID, err := params.String("txId")
	if err != nil {
		return nil, err
	}

	txid := txID
	if rec, ok := ec.Bindings.Transactions[txID]; ok {
		if rec.BroadcastTxid == "" {
			return nil, fmt.Errorf("transaction %q has not been broadcast", txID)
		}
		txid = rec.BroadcastTxid
	}

	timeout := 10 * time.Second
	if ms, err := params.Int64("timeoutMs"); err == nil {
		timeout = time.Duration(ms) * time.Millisecond
	}

	if err := ec.Bindings.TransactionService.WaitForMempool(ctx, txid, timeout); err != nil {
		return nil, err
	}
	return txid, nil
}

func getBalance(ctx context.Context, ec *engine.ExecutionContext, params script.Params) (any, error) {
	walletName, err := params.String("wallet")
	if err != nil {
		return nil, err
	}

	amount, err := ec.Bindings.WalletService.Balance(ctx, walletName)
	if err != nil {
		return nil, err
	}
	return amount.ToBTC(), nil
}

func sendToAddress(ctx context.Context, ec *engine.ExecutionContext, params script.Params) (any, error) {
	fromWallet, err := params.String("fromWallet")
	if err != nil {
		return nil, err
	}
	toAddress, err := params.String("toAddress")
	if err != nil {
		return nil, err
	}
	amount, err := params.Float("amount")
	if err != nil {
		return nil, err
	}

	if ref, ok := ec.Bindings.Wallets[toAddress]; ok {
		toAddress = ref.Address
	}

	rec, err := ec.Bindings.TransactionService.Send(ctx, fromWallet, toAddress, amount)
	if err != nil {
		return nil, err
	}
	ec.Bindings.Transactions[rec.ID] = rec
	return rec, nil
}
