package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/regweaver/regweaver/internal/actions"
	"github.com/regweaver/regweaver/internal/engine"
	"github.com/regweaver/regweaver/internal/node"
	"github.com/regweaver/regweaver/internal/script"
	"github.com/regweaver/regweaver/internal/templates"
)

type runOptions struct {
	FilePath    string
	Template    string
	Interactive bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a scenario script or built-in template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.FilePath == "") == (opts.Template == "") {
				return fmt.Errorf("exactly one of --file or --template is required")
			}
			if opts.Interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("interactive mode requires a terminal")
			}
			return runScenario(root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.FilePath, "file", "f", "", "Path to a declarative script file")
	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "Name of a built-in template")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Confirm each step before it runs")

	return cmd
}

func runScenario(root *rootFlags, opts runOptions) error {
	var (
		scenario *script.Script
		err      error
	)
	if opts.Template != "" {
		scenario, err = templates.Resolve(opts.Template)
	} else {
		scenario, err = script.Parse(opts.FilePath)
	}
	if err != nil {
		return err
	}

	execOpts := engine.Options{
		DryRun:      root.dryRun,
		Verbose:     root.verbose,
		Interactive: opts.Interactive,
	}

	cfg := &node.Config{Host: root.rpcHost, User: root.rpcUser, Pass: root.rpcPass}

	ctx := context.Background()

	// The context builder swaps in a simulator under dry-run, so the real
	// node is only dialed when the run will actually touch it.
	var nc node.Client
	if !execOpts.DryRun {
		rpc, err := node.NewRPCClient(cfg)
		if err != nil {
			return err
		}
		defer rpc.Close()
		if err := rpc.Ping(ctx); err != nil {
			return fmt.Errorf("node unreachable at %s: %w", cfg.Host, err)
		}
		nc = rpc
	}

	var prompter engine.Prompter
	if execOpts.Interactive {
		prompter = newStdinPrompter(os.Stdin, os.Stdout)
	}

	execCtx, err := engine.NewContext(execOpts, nc, cfg, prompter)
	if err != nil {
		return err
	}

	interp := engine.NewInterpreter(actions.DefaultRegistry())
	report := interp.Execute(ctx, execCtx, scenario)

	fmt.Fprintln(os.Stdout, renderReport(report, execOpts.Verbose))

	if !report.Success {
		return report.Err
	}
	return nil
}
