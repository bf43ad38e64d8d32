package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	dryRun  bool
	rpcHost string
	rpcUser string
	rpcPass string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "regweaver",
		Short:         "regweaver runs scripted scenarios against a bitcoin regtest node",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Preview execution without touching the node")
	cmd.PersistentFlags().StringVar(&flags.rpcHost, "rpc-host", "127.0.0.1:18443", "Node RPC host:port")
	cmd.PersistentFlags().StringVar(&flags.rpcUser, "rpc-user", "user", "Node RPC username")
	cmd.PersistentFlags().StringVar(&flags.rpcPass, "rpc-pass", "pass", "Node RPC password")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newTemplatesCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
