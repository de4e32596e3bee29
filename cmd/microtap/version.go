package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deixis/microtap"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "microtap %s\n", microtap.Version)
			return nil
		},
	}
}
