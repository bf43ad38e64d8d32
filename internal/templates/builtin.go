package templates

import (
	"context"
	"fmt"
	"time"

	"github.com/regweaver/regweaver/internal/actions"
	"github.com/regweaver/regweaver/internal/script"
	"github.com/regweaver/regweaver/internal/tx"
)

// twoWalletSend is the canonical declarative scenario: fund one wallet,
// send to a second, confirm.
func twoWalletSend() *script.Script {
	return &script.Script{
		Name:        "two-wallet-send",
		Description: "Create two wallets, fund the first, and send coins to the second.",
		Version:     "1.0",
		Kind:        script.Declarative,
		Steps: []script.Step{
			{Action: actions.CreateWallet, Params: script.Params{"name": "alice"}},
			{Action: actions.CreateWallet, Params: script.Params{"name": "bob"}},
			{Action: actions.MineBlocks, Params: script.Params{"count": 101, "toWallet": "alice"}},
			{Action: actions.CreateTransaction, Params: script.Params{
				"fromWallet": "alice",
				"outputs":    []any{map[string]any{"bob": 5.0}},
			}},
			{Action: actions.SignTransaction, Params: script.Params{"txId": "tx-1", "signerWallet": "alice"}},
			{Action: actions.BroadcastTransaction, Params: script.Params{"txId": "tx-1"}},
			{Action: actions.MineBlocks, Params: script.Params{"count": 1, "toWallet": "alice"}},
		},
	}
}

// replaceByFee demonstrates RBF: broadcast a replaceable spend, wait for it
// to reach the mempool, then replace it with a higher-fee version.
func replaceByFee() *script.Script {
	return &script.Script{
		Name:        "Replace-By-Fee Transaction Example",
		Description: "Broadcast a replaceable transaction and bump its fee before confirmation.",
		Version:     "1.0",
		Kind:        script.Imperative,
		Program: func(ctx context.Context, env *script.Bindings) error {
			sender, err := env.WalletService.Create(ctx, "rbf_sender")
			if err != nil {
				return err
			}
			env.Wallets[sender.Name] = sender

			recipient, err := env.WalletService.Create(ctx, "rbf_recipient")
			if err != nil {
				return err
			}
			env.Wallets[recipient.Name] = recipient

			hashes, err := env.WalletService.Mine(ctx, 101, sender.Address)
			if err != nil {
				return err
			}
			env.Blocks = append(env.Blocks, hashes...)

			original, err := env.TransactionService.Send(ctx, sender.Name, recipient.Address, 1.0)
			if err != nil {
				return err
			}
			env.Transactions[original.ID] = original

			if err := env.TransactionService.WaitForMempool(ctx, original.BroadcastTxid, 10*time.Second); err != nil {
				return err
			}

			replacement, err := env.TransactionService.BumpFee(ctx, original)
			if err != nil {
				return err
			}
			env.Transactions[replacement.ID] = replacement

			hashes, err = env.WalletService.Mine(ctx, 1, sender.Address)
			if err != nil {
				return err
			}
			env.Blocks = append(env.Blocks, hashes...)
			return nil
		},
	}
}

// multisigCPFP sets up a 2-of-3 multisig session, funds its address with a
// parent transaction, and attaches a child spend so the child's fee pulls
// the parent in.
func multisigCPFP() *script.Script {
	return &script.Script{
		Name:        "Multisig CPFP Test",
		Description: "Fund a 2-of-3 multisig address and accelerate the parent with a child spend.",
		Version:     "1.0",
		Kind:        script.Imperative,
		Program: func(ctx context.Context, env *script.Bindings) error {
			signers := []string{"ms_signer_1", "ms_signer_2", "ms_signer_3"}
			for _, name := range signers {
				ref, err := env.WalletService.Create(ctx, name)
				if err != nil {
					return err
				}
				env.Wallets[name] = ref
			}

			funder, err := env.WalletService.Create(ctx, "ms_funder")
			if err != nil {
				return err
			}
			env.Wallets[funder.Name] = funder

			hashes, err := env.WalletService.Mine(ctx, 101, funder.Address)
			if err != nil {
				return err
			}
			env.Blocks = append(env.Blocks, hashes...)

			session, err := env.CoordinatorService.CreateSession(ctx, 2, signers)
			if err != nil {
				return err
			}

			parent, err := env.TransactionService.Send(ctx, funder.Name, session.Address, 1.0)
			if err != nil {
				return err
			}
			env.Transactions[parent.ID] = parent

			if err := env.TransactionService.WaitForMempool(ctx, parent.BroadcastTxid, 10*time.Second); err != nil {
				return err
			}

			// The child spends the funder's unconfirmed change, raising the
			// effective fee rate of the still-unconfirmed parent.
			child, err := env.TransactionService.Send(ctx, funder.Name, funder.Address, 0.5)
			if err != nil {
				return err
			}
			env.Transactions[child.ID] = child

			staged, err := env.TransactionService.Create(ctx, funder.Name,
				[]tx.Output{{Address: session.Address, Amount: 0.25}})
			if err != nil {
				return err
			}
			env.Transactions[staged.ID] = staged

			signed, complete, err := env.CoordinatorService.SignRound(ctx, session, staged.PSBT)
			if err != nil {
				return err
			}
			if !complete {
				return fmt.Errorf("multisig signing round did not complete")
			}
			staged.PSBT = signed

			hashes, err = env.WalletService.Mine(ctx, 1, funder.Address)
			if err != nil {
				return err
			}
			env.Blocks = append(env.Blocks, hashes...)
			return nil
		},
	}
}
