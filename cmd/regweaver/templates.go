package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regweaver/regweaver/internal/templates"
)

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in scenario templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, entry := range templates.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s (%s) %s\n", entry.Name, entry.Kind, entry.Description)
			}
			return nil
		},
	}
}
